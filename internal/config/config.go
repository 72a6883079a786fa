package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 廣播驅動
const (
	DriverLocal = "local"
	DriverRedis = "redis"
	DriverNATS  = "nats"
)

// Config 總配置結構
type Config struct {
	App       AppConfig       `yaml:"app"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	WSS       WSSConfig       `yaml:"wss"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Game      GameConfig      `yaml:"game"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
	Port int    `yaml:"port"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type WSSConfig struct {
	Path            string   `yaml:"path"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ReadBufferSize  int      `yaml:"read_buffer_size"`
	WriteBufferSize int      `yaml:"write_buffer_size"`
	WriteWaitSec    int      `yaml:"write_wait_sec"`
	PongWaitSec     int      `yaml:"pong_wait_sec"`
	MaxMessageSize  int64    `yaml:"max_message_size"`
}

// BroadcastConfig 房間事件的轉送方式: local | redis | nats
type BroadcastConfig struct {
	Driver string `yaml:"driver"`
}

type GameConfig struct {
	RollDelayMS int `yaml:"roll_delay_ms"` // 擲骰動畫等待時間
	// Seed 非 0 時以固定種子建立亂數 (除錯/重播用)
	Seed uint64 `yaml:"seed"`
}

// RollDelay 擲骰動畫等待時間
func (g GameConfig) RollDelay() time.Duration {
	return time.Duration(g.RollDelayMS) * time.Millisecond
}

// Default 回傳所有欄位皆有預設值的設定
func Default() Config {
	return Config{
		App: AppConfig{
			Name: "farm-dice-server",
			Env:  "local",
			Port: 3000,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		NATS:  NATSConfig{URL: "nats://localhost:4222"},
		WSS: WSSConfig{
			Path:            "/ws",
			AllowedOrigins:  []string{"*"},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			WriteWaitSec:    10,
			PongWaitSec:     60,
			MaxMessageSize:  4096,
		},
		Broadcast: BroadcastConfig{Driver: DriverLocal},
		Game:      GameConfig{RollDelayMS: 1999},
	}
}

// Load 讀取設定
// 順序: 預設值 -> config/config.yaml (可不存在) -> .env -> 環境變數覆蓋
func Load(configPath ...string) (*Config, error) {
	dir := "./config"
	if len(configPath) > 0 {
		dir = configPath[0]
	}
	fullPath := filepath.Join(dir, "config.yaml")

	cfg := Default()

	data, err := os.ReadFile(fullPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml at %s: %w", fullPath, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// 沒有設定檔時全靠預設值與環境變數
	default:
		return nil, fmt.Errorf("failed to read config file at %s: %w", fullPath, err)
	}

	// .env 不覆蓋已存在的環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查設定是否可用
func (c *Config) Validate() error {
	switch c.Broadcast.Driver {
	case DriverLocal, DriverRedis, DriverNATS:
	default:
		return fmt.Errorf("unknown broadcast driver %q", c.Broadcast.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	if c.Game.RollDelayMS < 0 {
		return fmt.Errorf("invalid roll_delay_ms %d", c.Game.RollDelayMS)
	}
	return nil
}

func overrideWithEnv(cfg *Config) {
	// App
	if env := os.Getenv(EnvAppEnv); env != "" {
		cfg.App.Env = env
	}
	if portVal := os.Getenv(EnvPort); portVal != "" {
		if p, err := strconv.Atoi(portVal); err == nil {
			cfg.App.Port = p
		}
	}

	// Redis
	if val := os.Getenv(EnvRedisAddr); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv(EnvRedisPassword); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv(EnvRedisDB); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}

	// NATS
	if val := os.Getenv(EnvNATSURL); val != "" {
		cfg.NATS.URL = val
	}

	// Broadcast
	if val := os.Getenv(EnvBroadcastDriver); val != "" {
		cfg.Broadcast.Driver = strings.ToLower(val)
	}

	// WSS
	if val := os.Getenv(EnvAllowedOrigins); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.WSS.AllowedOrigins = origins
	}

	// Game
	if val := os.Getenv(EnvRollDelayMS); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			cfg.Game.RollDelayMS = ms
		}
	}
}
