package engine

import (
	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// cubeFaces 12 面骰每一面對應的結果 (index 0 = 點數 1)
type cubeFaces [12]domain.Animal

var (
	// 藍骰: 1-6 兔, 7-9 羊, 10 豬, 11 牛, 12 狼
	blueCube = cubeFaces{
		domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit,
		domain.Sheep, domain.Sheep, domain.Sheep,
		domain.Pig,
		domain.Cow,
		domain.Wolf,
	}

	// 紅骰: 1-6 兔, 7-8 羊, 9-10 豬, 11 牛, 12 狐狸
	redCube = cubeFaces{
		domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit, domain.Rabbit,
		domain.Sheep, domain.Sheep,
		domain.Pig, domain.Pig,
		domain.Cow,
		domain.Fox,
	}
)

// face 點數 (1..12) 對應的結果
func (c *cubeFaces) face(roll int) domain.Animal {
	return c[roll-1]
}

func (c *cubeFaces) roll(rng RandSource) domain.Animal {
	return c.face(rng.IntN(len(c)) + 1)
}

// BlueFace 藍骰點數對應的結果
func BlueFace(roll int) domain.Animal { return blueCube.face(roll) }

// RedFace 紅骰點數對應的結果
func RedFace(roll int) domain.Animal { return redCube.face(roll) }

// breed 繁殖規則
//
//	兩顆骰都命中: n + n/2 + 1
//	只有一顆命中: n + n/2，n 為奇數再 +1
//	都沒命中:     n
func breed(n int, hits int) int {
	switch hits {
	case 2:
		return n + n/2 + 1
	case 1:
		if n%2 == 1 {
			return n + n/2 + 1
		}
		return n + n/2
	default:
		return n
	}
}

// resolveCubes 將骰面結果套用到農場: 先繁殖，再依序處理狐狸與狼。
// 回傳被消耗的護衛犬數量 (level1, level2)。
func resolveCubes(farm *domain.Farm, blue, red domain.Animal) (dog1Used, dog2Used int) {
	for _, a := range domain.Livestock {
		hits := 0
		if blue == a {
			hits++
		}
		if red == a {
			hits++
		}
		farm.SetCount(a, breed(farm.Count(a), hits))
	}

	if red == domain.Fox {
		if farm.HasGuardDogLevel1 {
			farm.HasGuardDogLevel1 = false
			dog1Used = 1
		} else {
			farm.Rabbits = 0
		}
	}

	if blue == domain.Wolf {
		if farm.HasGuardDogLevel2 {
			farm.HasGuardDogLevel2 = false
			dog2Used = 1
		} else {
			// 馬不受狼影響
			farm.Rabbits = 0
			farm.Sheep = 0
			farm.Pigs = 0
			farm.Cows = 0
		}
	}
	return dog1Used, dog2Used
}

// DropCubes 目前玩家擲骰: 擲出藍/紅骰、結算繁殖與掠食者、檢查勝利。
// 亂數抽取與農場更新在同一把房間鎖內完成。
func (e *Engine) DropCubes(roomID string) (domain.GameState, error) {
	return e.mutate(roomID, e.dropCubes(roomID))
}

// DropCubesAs 與 DropCubes 相同，但只接受目前出手的玩家
func (e *Engine) DropCubesAs(roomID, playerID string) (domain.GameState, error) {
	return e.mutate(roomID, asPlayer(playerID, e.dropCubes(roomID)))
}

func (e *Engine) dropCubes(roomID string) func(state *domain.GameState) error {
	return func(state *domain.GameState) error {
		if err := requireMove(state); err != nil {
			return err
		}
		if state.CubesPlayed {
			return domain.ErrCubesAlreadyPlayed
		}
		farm, err := currentFarm(state)
		if err != nil {
			return err
		}

		blue := blueCube.roll(e.rng)
		red := redCube.roll(e.rng)
		state.BlueCubeAnimal = blue
		state.RedCubeAnimal = red

		dog1Used, dog2Used := resolveCubes(farm, blue, red)
		state.GuardDog1Purchased -= dog1Used
		state.GuardDog2Purchased -= dog2Used
		state.CubesPlayed = true

		e.logger.Debug("Cubes dropped",
			"room_id", roomID,
			"player_id", state.CurrentPlayerID(),
			"blue", blue.String(),
			"red", red.String(),
			"points", farm.Points(),
		)

		if HasWon(farm) {
			winner := state.CurrentPlayerID()
			state.WinnerID = &winner
			state.Status = domain.StatusFinished
			e.logger.Info("Game won", "room_id", roomID, "winner_id", winner, "move", state.MoveNumber)
		}
		return nil
	}
}
