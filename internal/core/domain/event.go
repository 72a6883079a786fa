package domain

import "encoding/json"

// RoomEvent 要廣播給房間內所有連線的事件
type RoomEvent struct {
	RoomID string          `json:"room_id"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewRoomEvent 將 data 序列化後包成 RoomEvent
func NewRoomEvent(roomID, event string, data any) (RoomEvent, error) {
	ev := RoomEvent{RoomID: roomID, Event: event}
	if data == nil {
		return ev, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ev, err
	}
	ev.Data = raw
	return ev, nil
}
