package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/JoeShih716/farm-dice-server/internal/app/farm/protocol"
	"github.com/JoeShih716/farm-dice-server/internal/app/farm/session"
	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/ports"
	"github.com/JoeShih716/farm-dice-server/pkg/wss"
)

const (
	tagRoomID   = "room_id"
	tagPlayerID = "player_id"

	publishTimeout = 3 * time.Second
)

var errNotInRoom = errors.New("not in a room")

// WebsocketHandler 實作 wss.Subscriber 介面，處理農場遊戲的 WebSocket 事件
type WebsocketHandler struct {
	sessionMgr  *session.Manager
	engine      GameEngine
	rooms       RoomRegistry
	broadcaster ports.Broadcaster
	rollDelay   time.Duration
}

var _ wss.Subscriber = (*WebsocketHandler)(nil)

// NewWebsocketHandler 建立 WebSocket 事件處理器
//
// 參數:
//
//	rollDelay: time.Duration - 擲骰動畫事件與結果廣播之間的等待時間，0 代表立即廣播
func NewWebsocketHandler(mgr *session.Manager, engine GameEngine, rooms RoomRegistry, broadcaster ports.Broadcaster, rollDelay time.Duration) *WebsocketHandler {
	return &WebsocketHandler{
		sessionMgr:  mgr,
		engine:      engine,
		rooms:       rooms,
		broadcaster: broadcaster,
		rollDelay:   rollDelay,
	}
}

// OnConnect 當新連線建立時觸發
func (h *WebsocketHandler) OnConnect(conn wss.Client) {
	h.sessionMgr.Add(domain.NewSession(conn))
	slog.Info("Client connected", "id", conn.ID(), "online", h.sessionMgr.Count())
}

// OnDisconnect 當連線斷開時觸發。
// 綁定的玩家會被標記為離線，房間沒有在線玩家時連同遊戲一起銷毀。
func (h *WebsocketHandler) OnDisconnect(conn wss.Client) {
	roomID, playerID, bound := h.binding(conn)
	h.sessionMgr.Remove(conn.ID())

	if bound {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		h.markOffline(ctx, roomID, playerID)
		h.closeIfEmpty(roomID)
	}

	slog.Info("Client disconnected", "id", conn.ID(), "online", h.sessionMgr.Count())
}

// OnMessage 當收到訊息時觸發
func (h *WebsocketHandler) OnMessage(conn wss.Client, msg []byte) {
	var envelope protocol.Envelope
	if err := json.Unmarshal(msg, &envelope); err != nil {
		slog.Warn("Invalid JSON envelope", "error", err)
		h.sendError(conn, "", "Invalid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	switch envelope.Action {
	case protocol.ActionJoinRoom:
		h.handleJoinRoom(ctx, conn, envelope.Payload)
	case protocol.ActionStartGame:
		h.handleStartGame(ctx, conn, envelope.Payload)
	case protocol.ActionPlayCubes:
		h.handlePlayCubes(ctx, conn)
	case protocol.ActionBuyAnimal:
		h.handleBuyAnimal(ctx, conn, envelope.Payload)
	case protocol.ActionEndMove:
		h.handleEndMove(ctx, conn)
	case protocol.ActionGameUpdate:
		h.handleGameUpdate(ctx, conn)
	case protocol.ActionPlayerOffline:
		h.handlePlayerOffline(ctx, conn, envelope.Payload)
	default:
		slog.Warn("Unknown Action", "action", envelope.Action, "id", conn.ID())
		h.sendError(conn, envelope.Action, "Unknown Action")
	}
}

func (h *WebsocketHandler) handleJoinRoom(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.JoinRoomReq
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" || req.Player.ID == "" {
		h.sendError(conn, protocol.ActionJoinRoom, "Invalid JoinRoom Payload")
		return
	}

	players, err := h.rooms.Join(req.RoomID, domain.Player{ID: req.Player.ID, Name: req.Player.Name})
	if err != nil {
		h.sendError(conn, protocol.ActionJoinRoom, err.Error())
		return
	}
	// 換房時離開原本的房間
	if prevRoom, prevPlayer, ok := h.binding(conn); ok && prevRoom != req.RoomID {
		h.markOffline(ctx, prevRoom, prevPlayer)
		h.closeIfEmpty(prevRoom)
	}
	if _, ok := h.engine.GetGame(req.RoomID); !ok {
		h.engine.CreateGame(req.RoomID)
	}

	conn.SetTag(tagRoomID, req.RoomID)
	conn.SetTag(tagPlayerID, req.Player.ID)
	h.sessionMgr.Join(conn.ID(), req.RoomID)

	slog.Info("Player joined room", "room_id", req.RoomID, "player_id", req.Player.ID, "players", len(players))

	h.publish(ctx, req.RoomID, protocol.EventRoomJoined, protocol.RoomJoinedResp{
		RoomID:  req.RoomID,
		Players: players,
	})

	// 讓中途加入的玩家拿到目前的盤面
	if game, ok := h.engine.GetGame(req.RoomID); ok {
		h.sendResponse(conn, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
	}
}

func (h *WebsocketHandler) handleStartGame(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.StartGameReq
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			h.sendError(conn, protocol.ActionStartGame, "Invalid StartGame Payload")
			return
		}
	}
	if req.RoomID == "" {
		req.RoomID, _, _ = h.binding(conn)
	}

	rm, ok := h.rooms.Get(req.RoomID)
	if !ok {
		h.sendError(conn, protocol.ActionStartGame, domain.ErrRoomNotFound.Error())
		return
	}

	game, err := h.engine.StartGame(rm.ID, rm.Players)
	if err != nil {
		h.sendError(conn, protocol.ActionStartGame, err.Error())
		return
	}
	h.publish(ctx, rm.ID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
}

func (h *WebsocketHandler) handlePlayCubes(ctx context.Context, conn wss.Client) {
	roomID, playerID, ok := h.binding(conn)
	if !ok {
		h.sendError(conn, protocol.ActionPlayCubes, errNotInRoom.Error())
		return
	}

	game, err := h.engine.DropCubesAs(roomID, playerID)
	if err != nil {
		h.sendError(conn, protocol.ActionPlayCubes, err.Error())
		return
	}

	h.publish(ctx, roomID, protocol.EventPlayCubesAnimation, protocol.PlayCubesAnimationResp{
		RoomID:   roomID,
		PlayerID: playerID,
	})

	if h.rollDelay <= 0 {
		h.publish(ctx, roomID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
		return
	}
	// 等待期間盤面可能已被交易或換手，動畫結束時廣播最新狀態
	time.AfterFunc(h.rollDelay, func() {
		latest, ok := h.engine.GetGame(roomID)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		h.publish(ctx, roomID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: latest})
	})
}

func (h *WebsocketHandler) handleBuyAnimal(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.BuyAnimalReq
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, protocol.ActionBuyAnimal, "Invalid BuyAnimal Payload")
		return
	}

	roomID, playerID, ok := h.binding(conn)
	if !ok {
		h.sendError(conn, protocol.ActionBuyAnimal, errNotInRoom.Error())
		return
	}

	game, err := h.engine.BuyAnimalAs(roomID, playerID, req.AnimalKey)
	if err != nil {
		h.sendError(conn, protocol.ActionBuyAnimal, err.Error())
		return
	}
	h.publish(ctx, roomID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
}

func (h *WebsocketHandler) handleEndMove(ctx context.Context, conn wss.Client) {
	roomID, playerID, ok := h.binding(conn)
	if !ok {
		h.sendError(conn, protocol.ActionEndMove, errNotInRoom.Error())
		return
	}

	game, err := h.engine.EndMoveAs(roomID, playerID)
	if err != nil {
		h.sendError(conn, protocol.ActionEndMove, err.Error())
		return
	}
	h.publish(ctx, roomID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
}

func (h *WebsocketHandler) handleGameUpdate(ctx context.Context, conn wss.Client) {
	roomID, _, ok := h.binding(conn)
	if !ok {
		h.sendError(conn, protocol.ActionGameUpdate, errNotInRoom.Error())
		return
	}
	game, ok := h.engine.GetGame(roomID)
	if !ok {
		h.sendError(conn, protocol.ActionGameUpdate, domain.ErrUnknownRoom.Error())
		return
	}
	h.publish(ctx, roomID, protocol.EventGameUpdate, protocol.GameUpdateResp{Game: game})
}

func (h *WebsocketHandler) handlePlayerOffline(ctx context.Context, conn wss.Client, payload []byte) {
	var req protocol.PlayerOfflineReq
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" || req.PlayerID == "" {
		h.sendError(conn, protocol.ActionPlayerOffline, "Invalid PlayerOffline Payload")
		return
	}
	if _, ok := h.rooms.Get(req.RoomID); !ok {
		h.sendError(conn, protocol.ActionPlayerOffline, domain.ErrRoomNotFound.Error())
		return
	}
	h.markOffline(ctx, req.RoomID, req.PlayerID)
}

// markOffline 標記玩家離線並通知房間
func (h *WebsocketHandler) markOffline(ctx context.Context, roomID, playerID string) {
	if err := h.rooms.SetOffline(roomID, playerID); err != nil {
		slog.Debug("SetOffline skipped", "room_id", roomID, "player_id", playerID, "error", err)
		return
	}
	h.publish(ctx, roomID, protocol.EventRoomLeave, protocol.RoomLeaveResp{
		RoomID:   roomID,
		PlayerID: playerID,
	})
}

// closeIfEmpty 房間沒有在線玩家時連同遊戲一起銷毀
func (h *WebsocketHandler) closeIfEmpty(roomID string) {
	if h.rooms.OnlineCount(roomID) > 0 {
		return
	}
	h.rooms.Delete(roomID)
	h.engine.DestroyGame(roomID)
	slog.Info("Room closed", "room_id", roomID)
}

// binding 取得連線綁定的房間與玩家
func (h *WebsocketHandler) binding(conn wss.Client) (roomID, playerID string, ok bool) {
	r, ok := conn.GetTag(tagRoomID)
	if !ok {
		return "", "", false
	}
	p, ok := conn.GetTag(tagPlayerID)
	if !ok {
		return "", "", false
	}
	roomID, _ = r.(string)
	playerID, _ = p.(string)
	return roomID, playerID, roomID != "" && playerID != ""
}

func (h *WebsocketHandler) publish(ctx context.Context, roomID string, event protocol.FarmProtocol, data any) {
	ev, err := domain.NewRoomEvent(roomID, string(event), data)
	if err != nil {
		slog.Error("Failed to build room event", "room_id", roomID, "event", event, "error", err)
		return
	}
	if err := h.broadcaster.Publish(ctx, ev); err != nil {
		slog.Warn("Publish room event failed", "room_id", roomID, "event", event, "error", err)
	}
}

func (h *WebsocketHandler) sendError(conn wss.Client, action protocol.FarmProtocol, msg string) {
	resp := protocol.Response{
		Action: action,
		Error:  msg,
	}
	bytes, _ := json.Marshal(resp)
	_ = conn.SendMessage(string(bytes))
}

func (h *WebsocketHandler) sendResponse(conn wss.Client, action protocol.FarmProtocol, data any) {
	resp := protocol.Response{
		Action: action,
		Data:   data,
	}
	bytes, _ := json.Marshal(resp)
	_ = conn.SendMessage(string(bytes))
}
