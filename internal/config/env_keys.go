package config

// Environment Variable Keys
const (
	// EnvAppEnv 定義應用程式執行環境 (local, dev, prod)
	EnvAppEnv = "APP_ENV"

	// EnvPort 定義 HTTP/Websocket 服務 Port
	EnvPort = "PORT"

	// EnvRedisAddr 定義 Redis 服務地址 (host:port)
	EnvRedisAddr = "REDIS_ADDR"

	// EnvRedisPassword 定義 Redis 密碼
	EnvRedisPassword = "REDIS_PASSWORD"

	// EnvRedisDB 定義 Redis 資料庫編號
	EnvRedisDB = "REDIS_DB"

	// EnvNATSURL 定義 NATS 連線網址
	EnvNATSURL = "NATS_URL"

	// EnvBroadcastDriver 定義房間事件的轉送方式 (local, redis, nats)
	EnvBroadcastDriver = "BROADCAST_DRIVER"

	// EnvAllowedOrigins 以逗號分隔的允許來源
	EnvAllowedOrigins = "ALLOWED_ORIGINS"

	// EnvRollDelayMS 定義擲骰動畫等待毫秒數
	EnvRollDelayMS = "ROLL_DELAY_MS"
)
