package domain

// GameStatus 遊戲狀態
type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusFinished
)

func (s GameStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// GameState 一個房間的完整遊戲狀態，JSON 欄位即為廣播給前端的快照格式。
type GameState struct {
	Status             GameStatus   `json:"status"`
	PlayingID          *string      `json:"playingId"`
	WinnerID           *string      `json:"winnerId"`
	MoveNumber         int          `json:"moveNumber"`
	CubesPlayed        bool         `json:"cubesPlayed"`
	RedCubeAnimal      Animal       `json:"redCubeAnimal"`
	BlueCubeAnimal     Animal       `json:"blueCubeAnimal"`
	GuardDog1Purchased int          `json:"guardDog1Purchased"`
	GuardDog2Purchased int          `json:"guardDog2Purchased"`
	PlayingOrder       []string     `json:"playingOrder"`
	Players            []GamePlayer `json:"players"`
}

// NewGameState 建立尚未開始的空遊戲
func NewGameState() *GameState {
	return &GameState{
		Status:       StatusNotStarted,
		PlayingOrder: []string{},
		Players:      []GamePlayer{},
	}
}

// Clone 深拷貝，讓呼叫端拿到的快照不會與引擎內部狀態共用記憶體
func (g *GameState) Clone() GameState {
	out := *g
	if g.PlayingID != nil {
		id := *g.PlayingID
		out.PlayingID = &id
	}
	if g.WinnerID != nil {
		id := *g.WinnerID
		out.WinnerID = &id
	}
	out.PlayingOrder = append([]string(nil), g.PlayingOrder...)
	out.Players = append([]GamePlayer(nil), g.Players...)
	if out.PlayingOrder == nil {
		out.PlayingOrder = []string{}
	}
	if out.Players == nil {
		out.Players = []GamePlayer{}
	}
	return out
}

// CurrentPlayerID 目前輪到的玩家 ID，尚未開局時回傳空字串
func (g *GameState) CurrentPlayerID() string {
	if g.PlayingID == nil {
		return ""
	}
	return *g.PlayingID
}

// HasWinner 是否已產生贏家
func (g *GameState) HasWinner() bool {
	return g.WinnerID != nil && *g.WinnerID != ""
}

// PlayerIndex 依 ID 找出玩家在 Players 中的位置，找不到回傳 -1
func (g *GameState) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}
