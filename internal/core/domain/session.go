package domain

import (
	"time"

	"github.com/JoeShih716/farm-dice-server/pkg/wss"
)

// Session 代表一個活躍的連線會話，封裝底層的 WebSocket 連線。
type Session struct {
	ID        string     // Session 唯一 ID (對應 WebSocket Conn ID)
	conn      wss.Client // 底層 WebSocket 連線介面
	CreatedAt int64      // 建立時間 (Unix Timestamp)
}

// NewSession 建立一個新的會話實例
func NewSession(conn wss.Client) *Session {
	return &Session{
		ID:        conn.ID(),
		conn:      conn,
		CreatedAt: time.Now().Unix(),
	}
}

// Send 發送訊息給此會話的客戶端
func (s *Session) Send(msg string) error {
	return s.conn.SendMessage(msg)
}
