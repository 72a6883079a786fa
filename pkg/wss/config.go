package wss

import "time"

// Config WebSocket 伺服器設定
type Config struct {
	AllowedOrigins  []string      // 允許的 Origin，"*" 代表全部允許
	ReadBufferSize  int           // 讀取緩衝大小
	WriteBufferSize int           // 寫入緩衝大小
	WriteWait       time.Duration // 單次寫入的逾時時間
	PongWait        time.Duration // 等待 Pong 的逾時時間
	PingPeriod      time.Duration // 發送 Ping 的週期 (須小於 PongWait)
	MaxMessageSize  int64         // 單一訊息的最大長度
	SendBufferSize  int           // 每個連線的發送佇列長度
}

func (c *Config) sendBufferSize() int {
	if c.SendBufferSize > 0 {
		return c.SendBufferSize
	}
	return 256
}
