package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JoeShih716/farm-dice-server/internal/app/farm/handler"
	"github.com/JoeShih716/farm-dice-server/internal/app/farm/session"
	"github.com/JoeShih716/farm-dice-server/internal/core/room"
	"github.com/JoeShih716/farm-dice-server/internal/di"
	"github.com/JoeShih716/farm-dice-server/internal/engine"
	"github.com/JoeShih716/farm-dice-server/internal/kit/bootstrap"
	"github.com/JoeShih716/farm-dice-server/pkg/wss"
)

func main() {
	app := bootstrap.NewApp("farm")
	cfg := app.Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. 核心: 遊戲引擎與房間名單
	engineOpts := []engine.Option{engine.WithLogger(app.Logger)}
	if cfg.Game.Seed != 0 {
		engineOpts = append(engineOpts, engine.WithRand(engine.NewSeededRand(cfg.Game.Seed, cfg.Game.Seed)))
		app.Logger.Warn("Using fixed dice seed", "seed", cfg.Game.Seed)
	}
	gameEngine := engine.New(engineOpts...)
	rooms := room.NewRegistry()

	// 2. 連線與房間事件廣播
	sessionMgr := session.NewManager()
	broadcaster, closeBroadcaster, err := di.ProvideBroadcaster(ctx, cfg, sessionMgr, app.Logger)
	if err != nil {
		slog.Error("Failed to init broadcaster", "driver", cfg.Broadcast.Driver, "error", err)
		os.Exit(1)
	}

	wsServer := wss.NewServer(ctx, &wss.Config{
		AllowedOrigins:  cfg.WSS.AllowedOrigins,
		ReadBufferSize:  cfg.WSS.ReadBufferSize,
		WriteBufferSize: cfg.WSS.WriteBufferSize,
		WriteWait:       time.Duration(cfg.WSS.WriteWaitSec) * time.Second,
		PongWait:        time.Duration(cfg.WSS.PongWaitSec) * time.Second,
		MaxMessageSize:  cfg.WSS.MaxMessageSize,
	}, app.Logger)
	wsServer.Register(handler.NewWebsocketHandler(sessionMgr, gameEngine, rooms, broadcaster, cfg.Game.RollDelay()))

	// 3. HTTP
	router := handler.SetupRouter(handler.RouterConfig{
		Engine:         gameEngine,
		Rooms:          rooms,
		Sessions:       sessionMgr,
		WebSocket:      wsServer,
		WebSocketPath:  cfg.WSS.Path,
		AllowedOrigins: cfg.WSS.AllowedOrigins,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.Run(func(context.Context) error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown failed", "error", err)
		}
		cancel()
		closeBroadcaster()
	})
}
