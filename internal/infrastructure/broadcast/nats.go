package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
)

// NATSSubject 所有實例共用的房間事件主題
const NATSSubject = "farm.room.events"

// natsConn 由 *nats.Conn 實作
type natsConn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
}

// NATS 經由 NATS 主題轉送事件
type NATS struct {
	conn   natsConn
	logger *slog.Logger
}

var _ ports.Broadcaster = (*NATS)(nil)

// ConnectNATS 以重連設定連上 NATS
func ConnectNATS(url, name string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	return nats.Connect(url, opts...)
}

// NewNATS 訂閱事件主題，收到的事件交給 deliverer
func NewNATS(conn natsConn, deliverer ports.RoomDeliverer, logger *slog.Logger) (*NATS, error) {
	logger = logger.With("component", "broadcast", "driver", "nats")

	_, err := conn.Subscribe(NATSSubject, func(m *nats.Msg) {
		var ev domain.RoomEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			logger.Warn("Invalid room event payload", "error", err)
			return
		}
		deliverer.Deliver(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", NATSSubject, err)
	}

	return &NATS{conn: conn, logger: logger}, nil
}

func (n *NATS) Publish(_ context.Context, ev domain.RoomEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.conn.Publish(NATSSubject, b)
}

// Close 處理完已收到的訊息後關閉連線
func (n *NATS) Close() error {
	return n.conn.Drain()
}
