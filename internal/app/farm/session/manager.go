package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/JoeShih716/farm-dice-server/internal/app/farm/protocol"
	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
)

// Manager 管理本實例上所有的連線會話，以及會話與房間的對應。
type Manager struct {
	sessions sync.Map // sessionID -> *domain.Session
	count    int64

	mu      sync.RWMutex
	members map[string]map[string]struct{} // roomID -> sessionIDs
	roomOf  map[string]string              // sessionID -> roomID
}

var _ ports.RoomDeliverer = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{
		members: make(map[string]map[string]struct{}),
		roomOf:  make(map[string]string),
	}
}

// Add 加入會話，相同 ID 重複加入不會改變計數
func (m *Manager) Add(s *domain.Session) {
	if _, loaded := m.sessions.LoadOrStore(s.ID, s); !loaded {
		atomic.AddInt64(&m.count, 1)
	}
}

// Remove 移除會話並離開所在的房間
func (m *Manager) Remove(sessionID string) {
	if _, loaded := m.sessions.LoadAndDelete(sessionID); loaded {
		atomic.AddInt64(&m.count, -1)
	}
	m.Leave(sessionID)
}

func (m *Manager) Get(sessionID string) (*domain.Session, bool) {
	v, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*domain.Session), true
}

func (m *Manager) Count() int64 {
	return atomic.LoadInt64(&m.count)
}

// Range 遍歷所有會話，f 回傳 false 時停止
func (m *Manager) Range(f func(s *domain.Session) bool) {
	m.sessions.Range(func(_, v any) bool {
		return f(v.(*domain.Session))
	})
}

// Join 將會話綁定到房間，原本所在的房間會先離開
func (m *Manager) Join(sessionID, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveLocked(sessionID)
	set, ok := m.members[roomID]
	if !ok {
		set = make(map[string]struct{})
		m.members[roomID] = set
	}
	set[sessionID] = struct{}{}
	m.roomOf[sessionID] = roomID
}

func (m *Manager) Leave(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(sessionID)
}

func (m *Manager) leaveLocked(sessionID string) {
	roomID, ok := m.roomOf[sessionID]
	if !ok {
		return
	}
	delete(m.roomOf, sessionID)
	set := m.members[roomID]
	delete(set, sessionID)
	if len(set) == 0 {
		delete(m.members, roomID)
	}
}

// RoomOf 回傳會話目前所在的房間
func (m *Manager) RoomOf(sessionID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.roomOf[sessionID]
	return roomID, ok
}

// RoomSessions 回傳房間內的會話 ID
func (m *Manager) RoomSessions(roomID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.members[roomID]))
	for id := range m.members[roomID] {
		ids = append(ids, id)
	}
	return ids
}

// Deliver 將事件寫給本實例上該房間的所有連線
func (m *Manager) Deliver(ev domain.RoomEvent) {
	ids := m.RoomSessions(ev.RoomID)
	if len(ids) == 0 {
		return
	}

	msg, err := protocol.EncodeEvent(ev)
	if err != nil {
		slog.Error("Failed to encode room event", "room", ev.RoomID, "event", ev.Event, "error", err)
		return
	}

	for _, id := range ids {
		s, ok := m.Get(id)
		if !ok {
			continue
		}
		if err := s.Send(msg); err != nil {
			slog.Warn("Deliver failed", "session", id, "room", ev.RoomID, "error", err)
		}
	}
}
