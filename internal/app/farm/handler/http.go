package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/JoeShih716/farm-dice-server/internal/app/farm/session"
)

// RouterConfig HTTP 路由所需的依賴
type RouterConfig struct {
	Engine         GameEngine
	Rooms          RoomRegistry
	Sessions       *session.Manager
	WebSocket      http.Handler // WebSocket 升級入口 (wss.Server)
	WebSocketPath  string
	AllowedOrigins []string
}

// SetupRouter 建立 HTTP 路由：房間建立/查詢、狀態與 WebSocket 入口
func SetupRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Game server is running")
	})

	r.POST("/create-room/:hostId", func(c *gin.Context) {
		roomID := cfg.Rooms.Create(c.Param("hostId"))
		cfg.Engine.CreateGame(roomID)
		slog.Info("Room created", "room_id", roomID, "host_id", c.Param("hostId"))
		c.JSON(http.StatusOK, gin.H{"roomId": roomID})
	})

	r.GET("/rooms/:roomId", func(c *gin.Context) {
		rm, ok := cfg.Rooms.Get(c.Param("roomId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, rm)
	})

	r.GET("/games/:roomId", func(c *gin.Context) {
		game, ok := cfg.Engine.GetGame(c.Param("roomId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown room"})
			return
		}
		c.JSON(http.StatusOK, game)
	})

	r.GET("/status", func(c *gin.Context) {
		var online int64
		if cfg.Sessions != nil {
			online = cfg.Sessions.Count()
		}
		c.JSON(http.StatusOK, gin.H{
			"rooms":    cfg.Rooms.Count(),
			"games":    cfg.Engine.Count(),
			"sessions": online,
		})
	})

	if cfg.WebSocket != nil {
		path := cfg.WebSocketPath
		if path == "" {
			path = "/ws"
		}
		r.GET(path, gin.WrapH(cfg.WebSocket))
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// corsConfig 未設定或含 "*" 時允許所有來源
func corsConfig(allowed []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type"}
	cfg.MaxAge = 12 * time.Hour

	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}
