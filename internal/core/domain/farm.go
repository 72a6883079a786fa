package domain

// Farm 玩家的農場：五種牲畜數量與兩種護衛犬。
type Farm struct {
	Rabbits           int  `json:"rabbits"`
	Sheep             int  `json:"sheep"`
	Pigs              int  `json:"pigs"`
	Cows              int  `json:"cows"`
	Horses            int  `json:"horses"`
	HasGuardDogLevel1 bool `json:"hasGuardDogLevel1"`
	HasGuardDogLevel2 bool `json:"hasGuardDogLevel2"`
}

// Count 取得指定牲畜的數量，非牲畜回傳 0
func (f *Farm) Count(a Animal) int {
	switch a {
	case Rabbit:
		return f.Rabbits
	case Sheep:
		return f.Sheep
	case Pig:
		return f.Pigs
	case Cow:
		return f.Cows
	case Horse:
		return f.Horses
	default:
		return 0
	}
}

// SetCount 設定指定牲畜的數量，非牲畜忽略
func (f *Farm) SetCount(a Animal, n int) {
	switch a {
	case Rabbit:
		f.Rabbits = n
	case Sheep:
		f.Sheep = n
	case Pig:
		f.Pigs = n
	case Cow:
		f.Cows = n
	case Horse:
		f.Horses = n
	}
}

// Points 農場總分 (兔1 羊6 豬12 牛36 馬72)
func (f *Farm) Points() int {
	total := 0
	for _, a := range Livestock {
		total += f.Count(a) * a.Points()
	}
	return total
}
