package engine

import "github.com/JoeShih716/farm-dice-server/internal/core/domain"

// WinPoints 勝利門檻: 五種牲畜各一隻的分數總和 (1+6+12+36+72 = 127)
var WinPoints = func() int {
	total := 0
	for _, a := range domain.Livestock {
		total += a.Points()
	}
	return total
}()

// Points 農場總分
func Points(farm *domain.Farm) int {
	return farm.Points()
}

// HasWon 農場分數是否達到勝利門檻
func HasWon(farm *domain.Farm) bool {
	return farm.Points() >= WinPoints
}
