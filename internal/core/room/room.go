package room

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// roomIDLength 房間 ID 長度 (取 uuid 前 8 碼)
const roomIDLength = 8

// Room 房間名單。遊戲引擎只在開局時讀取一次，不會回寫。
type Room struct {
	ID      string          `json:"id"`
	HostID  string          `json:"hostId"`
	Players []domain.Player `json:"players"`
}

// OnlinePlayers 名單中目前在線的玩家
func (r Room) OnlinePlayers() []domain.Player {
	online := make([]domain.Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Online {
			online = append(online, p)
		}
	}
	return online
}

// Registry 管理所有房間的玩家名單 (Thread-Safe)
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry 建立房間註冊表
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create 建立新房間並回傳房間 ID
func (r *Registry) Create(hostID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newRoomID()
	for r.rooms[id] != nil {
		id = newRoomID()
	}
	r.rooms[id] = &Room{
		ID:      id,
		HostID:  hostID,
		Players: []domain.Player{},
	}
	return id
}

// Join 玩家加入房間。
// 新玩家加入名單尾端；已在名單中的玩家 (重新連線) 則標記為在線並更新名稱。
//
// 回傳值:
//
//	[]domain.Player: 加入後的名單副本
//	error: 房間不存在時回傳 domain.ErrRoomNotFound
func (r *Registry) Join(roomID string, player domain.Player) ([]domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	player.Online = true
	found := false
	for i := range rm.Players {
		if rm.Players[i].ID == player.ID {
			rm.Players[i].Online = true
			if player.Name != "" {
				rm.Players[i].Name = player.Name
			}
			found = true
			break
		}
	}
	if !found {
		rm.Players = append(rm.Players, player)
	}
	return append([]domain.Player(nil), rm.Players...), nil
}

// Get 取得房間副本
func (r *Registry) Get(roomID string) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	out := *rm
	out.Players = append([]domain.Player{}, rm.Players...)
	return out, true
}

// SetOffline 將玩家標記為離線
func (r *Registry) SetOffline(roomID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	for i := range rm.Players {
		if rm.Players[i].ID == playerID {
			rm.Players[i].Online = false
		}
	}
	return nil
}

// OnlineCount 房間內在線人數，房間不存在回傳 0
func (r *Registry) OnlineCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	count := 0
	for _, p := range rm.Players {
		if p.Online {
			count++
		}
	}
	return count
}

// Delete 移除房間
func (r *Registry) Delete(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
}

// Count 房間數量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func newRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength]
}
