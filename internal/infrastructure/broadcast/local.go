package broadcast

import (
	"context"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
)

// Local 單機部署：事件直接交給本實例的連線
type Local struct {
	deliverer ports.RoomDeliverer
}

var _ ports.Broadcaster = (*Local)(nil)

func NewLocal(deliverer ports.RoomDeliverer) *Local {
	return &Local{deliverer: deliverer}
}

func (l *Local) Publish(_ context.Context, ev domain.RoomEvent) error {
	l.deliverer.Deliver(ev)
	return nil
}

func (l *Local) Close() error {
	return nil
}
