package wss

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// connection 單一 WebSocket 連線，實作 Client 介面
type connection struct {
	id      string
	hub     *hub
	conn    *websocket.Conn
	request *http.Request
	logger  *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	tagsMu sync.RWMutex
	tags   map[string]any
}

var _ Client = (*connection)(nil)

func newConnection(h *hub, conn *websocket.Conn, r *http.Request, cfg *Config, logger *slog.Logger) *connection {
	id := uuid.NewString()
	return &connection{
		id:      id,
		hub:     h,
		conn:    conn,
		request: r,
		logger:  logger.With("conn_id", id),
		send:    make(chan []byte, cfg.sendBufferSize()),
		done:    make(chan struct{}),
		tags:    make(map[string]any),
	}
}

func (c *connection) ID() string {
	return c.id
}

func (c *connection) SendMessage(msg string) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- []byte(msg):
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, dropping message")
		return ErrSendBufferFull
	}
}

// Kick 送出 Close Frame 後關閉底層連線，readPump 會因此結束並觸發註銷
func (c *connection) Kick(reason string) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *connection) SetTag(key string, value any) {
	c.tagsMu.Lock()
	defer c.tagsMu.Unlock()
	c.tags[key] = value
}

func (c *connection) GetTag(key string) (any, bool) {
	c.tagsMu.RLock()
	defer c.tagsMu.RUnlock()
	v, ok := c.tags[key]
	return v, ok
}

// shutdown 通知 writePump 結束 (可重複呼叫)
func (c *connection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump 讀取客戶端訊息並派送給 Subscribers，每個連線一個 goroutine
func (c *connection) readPump(cfg *Config) {
	defer func() {
		c.hub.enqueue(c.hub.unregister, c)
		_ = c.conn.Close()
	}()

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(cfg.MaxMessageSize)
	}
	if cfg.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		})
	}

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", "error", err)
			}
			return
		}
		c.hub.dispatch(c, msg)
	}
}

// writePump 將發送佇列寫到連線上並定期送出 Ping
func (c *connection) writePump(cfg *Config) {
	var tick <-chan time.Time
	if cfg.PingPeriod > 0 {
		ticker := time.NewTicker(cfg.PingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.setWriteDeadline(cfg)
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}

		case <-tick:
			c.setWriteDeadline(cfg)
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.setWriteDeadline(cfg)
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *connection) setWriteDeadline(cfg *Config) {
	if cfg.WriteWait > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
	}
}
