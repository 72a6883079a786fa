package domain

// Player 房間名單中的玩家 (由 Room Registry 擁有)
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// GamePlayer 開局時由 Player 複製而來並附上農場，之後只屬於遊戲引擎。
type GamePlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
	Farm   Farm   `json:"farm"`
}

// NewGamePlayer 以空農場建立 GamePlayer
func NewGamePlayer(p Player) GamePlayer {
	return GamePlayer{
		ID:     p.ID,
		Name:   p.Name,
		Online: p.Online,
	}
}
