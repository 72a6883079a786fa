package protocol

import (
	"encoding/json"

	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
)

// FarmProtocol 客戶端與伺服器之間的動作/事件名稱
type FarmProtocol string

// 客戶端送出的動作
const (
	ActionJoinRoom      FarmProtocol = "joinRoom"
	ActionStartGame     FarmProtocol = "startGame"
	ActionPlayCubes     FarmProtocol = "playCubes"
	ActionBuyAnimal     FarmProtocol = "buyAnimal"
	ActionEndMove       FarmProtocol = "endMove"
	ActionPlayerOffline FarmProtocol = "playerOffline"
	ActionGameUpdate    FarmProtocol = "gameUpdate" // 要求重新廣播目前的遊戲狀態
)

// 伺服器廣播給房間的事件
const (
	EventRoomJoined         FarmProtocol = "roomJoined"
	EventGameUpdate         FarmProtocol = "gameUpdate"
	EventPlayCubesAnimation FarmProtocol = "playCubesAnimation"
	EventRoomLeave          FarmProtocol = "roomLeave"
)

// Envelope 客戶端訊息的外層封包
type Envelope struct {
	Action  FarmProtocol    `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response 伺服器送給客戶端的訊息
type Response struct {
	Action FarmProtocol `json:"action"`
	Data   any          `json:"data,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// PlayerInfo 加入房間時帶入的玩家資訊
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type JoinRoomReq struct {
	RoomID string     `json:"roomId"`
	Player PlayerInfo `json:"player"`
}

type RoomJoinedResp struct {
	RoomID  string          `json:"roomId"`
	Players []domain.Player `json:"players"`
}

// StartGameReq RoomID 為空時使用連線目前所在的房間
type StartGameReq struct {
	RoomID string `json:"roomId"`
}

type BuyAnimalReq struct {
	AnimalKey domain.Animal `json:"animalKey"`
}

type PlayerOfflineReq struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RoomLeaveResp struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type PlayCubesAnimationResp struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GameUpdateResp struct {
	Game domain.GameState `json:"game"`
}

// EncodeEvent 將房間事件轉成送往客戶端的 JSON 字串
func EncodeEvent(ev domain.RoomEvent) (string, error) {
	resp := struct {
		Action FarmProtocol    `json:"action"`
		Data   json.RawMessage `json:"data,omitempty"`
	}{
		Action: FarmProtocol(ev.Event),
		Data:   ev.Data,
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
