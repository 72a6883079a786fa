package handler

import (
	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/room"
)

// GameEngine 遊戲引擎 (由 engine.Engine 實作)
type GameEngine interface {
	CreateGame(roomID string)
	GetGame(roomID string) (domain.GameState, bool)
	DestroyGame(roomID string)
	Count() int
	StartGame(roomID string, players []domain.Player) (domain.GameState, error)
	DropCubesAs(roomID, playerID string) (domain.GameState, error)
	BuyAnimalAs(roomID, playerID string, key domain.Animal) (domain.GameState, error)
	EndMoveAs(roomID, playerID string) (domain.GameState, error)
}

// RoomRegistry 房間名單 (由 room.Registry 實作)
type RoomRegistry interface {
	Create(hostID string) string
	Join(roomID string, player domain.Player) ([]domain.Player, error)
	Get(roomID string) (room.Room, bool)
	SetOffline(roomID, playerID string) error
	OnlineCount(roomID string) int
	Delete(roomID string)
	Count() int
}
