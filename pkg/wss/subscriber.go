package wss

import "errors"

var (
	// ErrConnectionClosed 連線已關閉
	ErrConnectionClosed = errors.New("wss: connection closed")
	// ErrSendBufferFull 發送佇列已滿 (客戶端消化過慢)
	ErrSendBufferFull = errors.New("wss: send buffer full")
)

// Client 對業務層暴露的連線介面
//
//go:generate mockgen -destination=../../test/mocks/pkg/wss/mock_client.go -package=mock_wss . Client
type Client interface {
	// ID 連線唯一 ID
	ID() string
	// SendMessage 非阻塞地將文字訊息放入發送佇列
	SendMessage(msg string) error
	// Kick 以指定原因關閉連線
	Kick(reason string) error
	// SetTag 在連線上附加業務資料 (例如 room_id)
	SetTag(key string, value any)
	// GetTag 取得附加的業務資料
	GetTag(key string) (any, bool)
}

// Subscriber 連線事件的處理者
type Subscriber interface {
	OnConnect(conn Client)
	OnDisconnect(conn Client)
	OnMessage(conn Client, msg []byte)
}
