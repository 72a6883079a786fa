package ports

import (
	"context"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// Broadcaster 將房間事件送到所有持有該房間連線的實例。
// 單機部署直接本地投遞，多實例部署經由 Redis 或 NATS 轉送。
//
//go:generate mockgen -destination=../../../test/mocks/ports/mock_broadcaster.go -package=mock_ports . Broadcaster
type Broadcaster interface {
	Publish(ctx context.Context, ev domain.RoomEvent) error
	Close() error
}

// RoomDeliverer 把事件寫給本實例上屬於該房間的連線
type RoomDeliverer interface {
	Deliver(ev domain.RoomEvent)
}
