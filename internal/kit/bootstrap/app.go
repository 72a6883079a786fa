package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JoeShih716/farm-dice-server/internal/config"
)

// App 封裝了應用程式的基礎組件
type App struct {
	Name   string
	Config *config.Config
	Logger *slog.Logger

	quit chan os.Signal
}

// NewApp 建立一個新的應用程式實例
//
// 1. 初始化 Default Logger
// 2. 載入 Config (config.yaml + .env + Env Override)
// 3. 依環境切換 Logger 格式
func NewApp(appName string) *App {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	return &App{
		Name:   appName,
		Config: cfg,
		Logger: NewLogger(cfg.App.Env, os.Stdout),
		quit:   make(chan os.Signal, 1),
	}
}

// NewLogger Production -> JSON (Structured Logging)，其他 -> Text，並設為 Default Logger
func NewLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, nil)
	case "dev", "local":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewTextHandler(w, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Run 啟動應用程式並等待停止信號
//
// startFunc: 啟動服務的邏輯 (Blocking operation like http.ListenAndServe)
// cleanupFunc: 收到停止信號後的清理邏輯，ctx 會在停止信號後取消
func (a *App) Run(startFunc func(ctx context.Context) error, cleanupFunc func()) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		a.Logger.Info("Starting service", "app", a.Name, "env", a.Config.App.Env, "port", a.Config.App.Port)
		if err := startFunc(ctx); err != nil {
			a.Logger.Error("Service startup failed", "error", err)
			os.Exit(1)
		}
	}()

	signal.Notify(a.quit, syscall.SIGINT, syscall.SIGTERM)
	<-a.quit
	cancel()

	a.Logger.Info("Shutting down service...", "app", a.Name)
	if cleanupFunc != nil {
		cleanupFunc()
	}
	a.Logger.Info("Service exited", "app", a.Name)
}
