package engine

import (
	"fmt"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// StartGame 以房間名單開局。
// 只保留在線玩家 (離線者本局永久排除)，洗牌決定出手順序並擲出初始骰面。
func (e *Engine) StartGame(roomID string, players []domain.Player) (domain.GameState, error) {
	return e.mutate(roomID, func(state *domain.GameState) error {
		if state.Status == domain.StatusRunning {
			return fmt.Errorf("%w: game already running", domain.ErrInvalidState)
		}

		online := make([]domain.GamePlayer, 0, len(players))
		for _, p := range players {
			if p.Online {
				online = append(online, domain.NewGamePlayer(p))
			}
		}
		if len(online) == 0 {
			return fmt.Errorf("%w: no online players", domain.ErrInvalidState)
		}

		order := make([]string, len(online))
		for i, p := range online {
			order[i] = p.ID
		}
		shuffle(e.rng, order)

		first := order[0]
		state.Status = domain.StatusRunning
		state.PlayingID = &first
		state.WinnerID = nil
		state.MoveNumber = 1
		state.CubesPlayed = false
		state.GuardDog1Purchased = 0
		state.GuardDog2Purchased = 0
		state.BlueCubeAnimal = blueCube.roll(e.rng)
		state.RedCubeAnimal = redCube.roll(e.rng)
		state.PlayingOrder = order
		state.Players = online

		e.logger.Info("Game started", "room_id", roomID, "players", len(online), "first", first)
		return nil
	})
}

// EndMove 結束目前回合，輪到 PlayingOrder 中的下一位 (循環)
func (e *Engine) EndMove(roomID string) (domain.GameState, error) {
	return e.mutate(roomID, endMove)
}

// EndMoveAs 與 EndMove 相同，但只接受目前出手的玩家
func (e *Engine) EndMoveAs(roomID, playerID string) (domain.GameState, error) {
	return e.mutate(roomID, asPlayer(playerID, endMove))
}

func endMove(state *domain.GameState) error {
	if err := requireMove(state); err != nil {
		return err
	}
	if len(state.PlayingOrder) == 0 {
		return fmt.Errorf("%w: empty playing order", domain.ErrInvalidState)
	}

	next := 0
	current := state.CurrentPlayerID()
	for i, id := range state.PlayingOrder {
		if id == current && i < len(state.PlayingOrder)-1 {
			next = i + 1
			break
		}
	}
	nextID := state.PlayingOrder[next]
	state.PlayingID = &nextID
	state.MoveNumber++
	state.CubesPlayed = false
	return nil
}
