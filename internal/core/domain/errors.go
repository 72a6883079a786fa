package domain

import (
	"errors"
	"fmt"
)

// 遊戲引擎的錯誤分類，錯誤只影響單一房間，不會讓服務中斷。
var (
	ErrUnknownRoom           = errors.New("unknown room")
	ErrInvalidState          = errors.New("invalid game state")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInvalidActionKey      = errors.New("invalid action key")

	// 以下皆為 ErrInvalidState 的細分
	ErrGameFinished       = fmt.Errorf("%w: game already finished", ErrInvalidState)
	ErrCubesAlreadyPlayed = fmt.Errorf("%w: cubes already played this move", ErrInvalidState)
	ErrGuardDogActive     = fmt.Errorf("%w: guard dog already active", ErrInvalidState)

	// 非目前出手的玩家嘗試擲骰/交易/結束回合
	ErrNotYourTurn = errors.New("not your turn")

	// Room Registry
	ErrRoomNotFound = errors.New("room not found")
)
