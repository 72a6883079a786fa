package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// roomGame 單一房間的遊戲狀態與其專屬鎖。
// 同一房間的所有操作都在 mu 之下序列化執行，不同房間互不影響。
type roomGame struct {
	mu    sync.Mutex
	state *domain.GameState
}

// Engine 遊戲規則引擎，持有所有房間的 GameState
type Engine struct {
	mu     sync.RWMutex
	games  map[string]*roomGame
	rng    RandSource
	logger *slog.Logger
}

// Option 設定 Engine 的選項
type Option func(*Engine)

// WithRand 注入亂數來源 (預設為以 crypto/rand 播種的 PCG)
func WithRand(src RandSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.rng = src
		}
	}
}

// WithLogger 注入 Logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 建立遊戲引擎
func New(opts ...Option) *Engine {
	e := &Engine{
		games:  make(map[string]*roomGame),
		rng:    newDefaultRand(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = &lockedSource{src: e.rng}
	e.logger = e.logger.With("component", "engine")
	return e
}

// CreateGame 為房間建立一局尚未開始的遊戲，重複呼叫會直接覆蓋
func (e *Engine) CreateGame(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.games[roomID] = &roomGame{state: domain.NewGameState()}
	e.logger.Debug("Game created", "room_id", roomID)
}

// GetGame 取得房間目前的遊戲快照
//
// 回傳值:
//
//	domain.GameState: 深拷貝後的快照
//	bool: 房間不存在時為 false
func (e *Engine) GetGame(roomID string) (domain.GameState, bool) {
	rg, ok := e.lookup(roomID)
	if !ok {
		return domain.GameState{}, false
	}
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return rg.state.Clone(), true
}

// DestroyGame 房間銷毀時一併移除遊戲
func (e *Engine) DestroyGame(roomID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.games[roomID]; ok {
		delete(e.games, roomID)
		e.logger.Debug("Game destroyed", "room_id", roomID)
	}
}

// RoomIDs 目前所有遊戲的房間 ID (已排序)
func (e *Engine) RoomIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.games))
	for id := range e.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count 遊戲數量
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.games)
}

func (e *Engine) lookup(roomID string) (*roomGame, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rg, ok := e.games[roomID]
	return rg, ok
}

// mutate 在房間鎖內執行 fn，成功時回傳修改後的快照。
// fn 回傳錯誤時必須保證狀態未被修改。
func (e *Engine) mutate(roomID string, fn func(state *domain.GameState) error) (domain.GameState, error) {
	rg, ok := e.lookup(roomID)
	if !ok {
		return domain.GameState{}, fmt.Errorf("room %s: %w", roomID, domain.ErrUnknownRoom)
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()

	if err := fn(rg.state); err != nil {
		return rg.state.Clone(), fmt.Errorf("room %s: %w", roomID, err)
	}
	return rg.state.Clone(), nil
}

// asPlayer 在房間鎖內確認 playerID 是目前出手的玩家再執行 fn。
// 遊戲未進行時不檢查，由 fn 回報狀態錯誤。
func asPlayer(playerID string, fn func(state *domain.GameState) error) func(state *domain.GameState) error {
	return func(state *domain.GameState) error {
		if state.Status == domain.StatusRunning && state.CurrentPlayerID() != playerID {
			return fmt.Errorf("%w: current player is %q", domain.ErrNotYourTurn, state.CurrentPlayerID())
		}
		return fn(state)
	}
}

// requireMove 檢查遊戲是否可以進行回合內的動作
func requireMove(state *domain.GameState) error {
	if state.HasWinner() || state.Status == domain.StatusFinished {
		return domain.ErrGameFinished
	}
	if state.Status != domain.StatusRunning {
		return fmt.Errorf("%w: game not running", domain.ErrInvalidState)
	}
	return nil
}

// currentFarm 取得目前玩家的農場指標
func currentFarm(state *domain.GameState) (*domain.Farm, error) {
	idx := state.PlayerIndex(state.CurrentPlayerID())
	if idx < 0 {
		return nil, fmt.Errorf("%w: current player %q not in game", domain.ErrInvalidState, state.CurrentPlayerID())
	}
	return &state.Players[idx].Farm, nil
}
