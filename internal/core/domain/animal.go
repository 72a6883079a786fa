package domain

import "fmt"

// Animal 代表骰面結果、可交易的牲畜階級或可購買的升級。
// 數值與前端協議保持一致 (buyAnimal 的 animalKey 直接使用此數字)。
type Animal int

const (
	Rabbit    Animal = iota // 兔
	Sheep                   // 羊
	Pig                     // 豬
	Cow                     // 牛
	Horse                   // 馬
	DogLevel1               // 小狗 (擋狐狸)
	DogLevel2               // 大狗 (擋狼)
	Fox                     // 狐狸 (紅骰)
	Wolf                    // 狼 (藍骰)
)

// Livestock 依交易價值由低到高排列的五種牲畜
var Livestock = [...]Animal{Rabbit, Sheep, Pig, Cow, Horse}

var animalNames = map[Animal]string{
	Rabbit:    "rabbit",
	Sheep:     "sheep",
	Pig:       "pig",
	Cow:       "cow",
	Horse:     "horse",
	DogLevel1: "dog_level_1",
	DogLevel2: "dog_level_2",
	Fox:       "fox",
	Wolf:      "wolf",
}

func (a Animal) String() string {
	if name, ok := animalNames[a]; ok {
		return name
	}
	return fmt.Sprintf("animal(%d)", int(a))
}

// IsLivestock 是否為五種牲畜之一
func (a Animal) IsLivestock() bool {
	return a >= Rabbit && a <= Horse
}

// IsPredator 是否為掠食者 (狐狸/狼)
func (a Animal) IsPredator() bool {
	return a == Fox || a == Wolf
}

// Points 牲畜的計分值，非牲畜回傳 0
func (a Animal) Points() int {
	switch a {
	case Rabbit:
		return 1
	case Sheep:
		return 6
	case Pig:
		return 12
	case Cow:
		return 36
	case Horse:
		return 72
	default:
		return 0
	}
}
