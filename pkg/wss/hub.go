package wss

import (
	"context"
	"log/slog"
	"sync"
)

// hub 管理所有連線的註冊與註銷，並通知 Subscribers。
// 連線的新增/移除只在 run() 的 goroutine 中進行。
type hub struct {
	ctx    context.Context
	logger *slog.Logger

	register   chan *connection
	unregister chan *connection

	connections map[*connection]struct{}

	subsMu      sync.RWMutex
	subscribers []Subscriber
}

func newHub(ctx context.Context, logger *slog.Logger) *hub {
	return &hub{
		ctx:         ctx,
		logger:      logger,
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		connections: make(map[*connection]struct{}),
	}
}

func (h *hub) registerSubscriber(s Subscriber) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	h.subscribers = append(h.subscribers, s)
}

func (h *hub) snapshotSubscribers() []Subscriber {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()
	return append([]Subscriber(nil), h.subscribers...)
}

func (h *hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			for c := range h.connections {
				c.shutdown()
				delete(h.connections, c)
			}
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.connections[c] = struct{}{}
			for _, s := range h.snapshotSubscribers() {
				s.OnConnect(c)
			}

		case c := <-h.unregister:
			if _, ok := h.connections[c]; !ok {
				continue
			}
			delete(h.connections, c)
			c.shutdown()
			for _, s := range h.snapshotSubscribers() {
				s.OnDisconnect(c)
			}
		}
	}
}

// dispatch 將收到的訊息交給所有 Subscribers (在該連線的 readPump goroutine 中執行)
func (h *hub) dispatch(c *connection, msg []byte) {
	for _, s := range h.snapshotSubscribers() {
		s.OnMessage(c, msg)
	}
}

// enqueue 向 hub 送出註冊/註銷請求，hub 已停止時直接放棄
func (h *hub) enqueue(ch chan *connection, c *connection) {
	select {
	case ch <- c:
	case <-h.ctx.Done():
	}
}
