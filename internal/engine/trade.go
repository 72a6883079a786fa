package engine

import (
	"fmt"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// purchase 一筆交易: 付出 cost 隻 pay，換得 gain
type purchase struct {
	pay  domain.Animal
	cost int
	gain domain.Animal
}

// purchases 交易表。表外的 key 一律視為無效操作。
var purchases = map[domain.Animal]purchase{
	domain.Sheep:     {pay: domain.Rabbit, cost: 6, gain: domain.Sheep},
	domain.Pig:       {pay: domain.Sheep, cost: 2, gain: domain.Pig},
	domain.Cow:       {pay: domain.Pig, cost: 3, gain: domain.Cow},
	domain.Horse:     {pay: domain.Cow, cost: 2, gain: domain.Horse},
	domain.DogLevel1: {pay: domain.Sheep, cost: 1, gain: domain.DogLevel1},
	domain.DogLevel2: {pay: domain.Cow, cost: 1, gain: domain.DogLevel2},
}

// PriceOf 查詢某項交易的價格
//
// 回傳值:
//
//	domain.Animal: 需付出的牲畜
//	int: 數量
//	bool: key 不在交易表時為 false
func PriceOf(key domain.Animal) (domain.Animal, int, bool) {
	p, ok := purchases[key]
	return p.pay, p.cost, ok
}

// BuyAnimal 目前玩家以牲畜交換更高階的牲畜或護衛犬。
// 庫存不足時回傳 ErrInsufficientResources 且農場不變。
func (e *Engine) BuyAnimal(roomID string, key domain.Animal) (domain.GameState, error) {
	return e.mutate(roomID, e.buyAnimal(roomID, key))
}

// BuyAnimalAs 與 BuyAnimal 相同，但只接受目前出手的玩家
func (e *Engine) BuyAnimalAs(roomID, playerID string, key domain.Animal) (domain.GameState, error) {
	return e.mutate(roomID, asPlayer(playerID, e.buyAnimal(roomID, key)))
}

func (e *Engine) buyAnimal(roomID string, key domain.Animal) func(state *domain.GameState) error {
	return func(state *domain.GameState) error {
		p, ok := purchases[key]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrInvalidActionKey, key)
		}
		if err := requireMove(state); err != nil {
			return err
		}
		farm, err := currentFarm(state)
		if err != nil {
			return err
		}

		if have := farm.Count(p.pay); have < p.cost {
			return fmt.Errorf("%w: %s needs %d %s, have %d", domain.ErrInsufficientResources, key, p.cost, p.pay, have)
		}

		switch p.gain {
		case domain.DogLevel1:
			if farm.HasGuardDogLevel1 {
				return domain.ErrGuardDogActive
			}
			farm.HasGuardDogLevel1 = true
			state.GuardDog1Purchased++
		case domain.DogLevel2:
			if farm.HasGuardDogLevel2 {
				return domain.ErrGuardDogActive
			}
			farm.HasGuardDogLevel2 = true
			state.GuardDog2Purchased++
		default:
			farm.SetCount(p.gain, farm.Count(p.gain)+1)
		}
		farm.SetCount(p.pay, farm.Count(p.pay)-p.cost)

		e.logger.Debug("Animal bought", "room_id", roomID, "player_id", state.CurrentPlayerID(), "key", key.String())
		return nil
	}
}
