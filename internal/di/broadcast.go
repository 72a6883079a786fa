package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JoeShih716/farm-dice-server/internal/config"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
	"github.com/JoeShih716/farm-dice-server/internal/infrastructure/broadcast"
	pkgRedis "github.com/JoeShih716/farm-dice-server/pkg/redis"
)

// ProvideBroadcaster 依 broadcast.driver 建立房間事件廣播器
//
// 回傳值:
//
//	ports.Broadcaster: 廣播器
//	func(): 關閉廣播器與底層連線
//	error: 連線或訂閱失敗
func ProvideBroadcaster(ctx context.Context, cfg *config.Config, deliverer ports.RoomDeliverer, logger *slog.Logger) (ports.Broadcaster, func(), error) {
	switch cfg.Broadcast.Driver {
	case config.DriverRedis:
		client, err := pkgRedis.NewClient(ctx, pkgRedis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		b, err := broadcast.NewRedis(ctx, client, deliverer, logger)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("Room events via redis", "addr", cfg.Redis.Addr, "channel", broadcast.RedisChannel)
		return b, func() {
			_ = b.Close()
			_ = client.Close()
		}, nil

	case config.DriverNATS:
		nc, err := broadcast.ConnectNATS(cfg.NATS.URL, cfg.App.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
		b, err := broadcast.NewNATS(nc, deliverer, logger)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		logger.Info("Room events via nats", "url", cfg.NATS.URL, "subject", broadcast.NATSSubject)
		return b, func() { _ = b.Close() }, nil

	default:
		b := broadcast.NewLocal(deliverer)
		return b, func() { _ = b.Close() }, nil
	}
}
