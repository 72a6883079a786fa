package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JoeShih716/farm-dice-server/internal/app/farm/protocol"
	"github.com/JoeShih716/farm-dice-server/internal/app/farm/session"
	"github.com/JoeShih716/farm-dice-server/internal/core/domain"
	"github.com/JoeShih716/farm-dice-server/internal/core/room"
	"github.com/JoeShih716/farm-dice-server/internal/engine"
	mock_ports "github.com/JoeShih716/farm-dice-server/test/mocks/ports"
	mock_wss "github.com/JoeShih716/farm-dice-server/test/mocks/pkg/wss"
)

// testConn 以 MockClient 為底，記錄 tags 與送出的訊息
type testConn struct {
	*mock_wss.MockClient
	mu   sync.Mutex
	tags map[string]any
	sent []protocol.Response
}

type sentMessage struct {
	Action protocol.FarmProtocol `json:"action"`
	Data   json.RawMessage       `json:"data"`
	Error  string                `json:"error"`
}

func newTestConn(ctrl *gomock.Controller, id string) *testConn {
	c := &testConn{MockClient: mock_wss.NewMockClient(ctrl), tags: map[string]any{}}
	c.EXPECT().ID().Return(id).AnyTimes()
	c.EXPECT().SetTag(gomock.Any(), gomock.Any()).Do(func(k string, v any) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.tags[k] = v
	}).AnyTimes()
	c.EXPECT().GetTag(gomock.Any()).DoAndReturn(func(k string) (any, bool) {
		c.mu.Lock()
		defer c.mu.Unlock()
		v, ok := c.tags[k]
		return v, ok
	}).AnyTimes()
	c.EXPECT().SendMessage(gomock.Any()).DoAndReturn(func(msg string) error {
		var m sentMessage
		if err := json.Unmarshal([]byte(msg), &m); err != nil {
			return err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.sent = append(c.sent, protocol.Response{Action: m.Action, Data: m.Data, Error: m.Error})
		return nil
	}).AnyTimes()
	return c
}

func (c *testConn) lastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Error != "" {
			return c.sent[i].Error
		}
	}
	return ""
}

type testEnv struct {
	handler *WebsocketHandler
	engine  *engine.Engine
	rooms   *room.Registry
	mgr     *session.Manager

	mu     sync.Mutex
	events []domain.RoomEvent
}

func setupDependencies(t *testing.T) (*gomock.Controller, *testEnv) {
	return setupDependenciesWithDelay(t, 0)
}

func setupDependenciesWithDelay(t *testing.T, rollDelay time.Duration) (*gomock.Controller, *testEnv) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	env := &testEnv{
		engine: engine.New(
			engine.WithRand(engine.NewSeededRand(7, 11)),
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
		rooms: room.NewRegistry(),
		mgr:   session.NewManager(),
	}

	mockBroadcaster := mock_ports.NewMockBroadcaster(ctrl)
	mockBroadcaster.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev domain.RoomEvent) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.events = append(env.events, ev)
			return nil
		}).AnyTimes()

	env.handler = NewWebsocketHandler(env.mgr, env.engine, env.rooms, mockBroadcaster, rollDelay)
	return ctrl, env
}

func (e *testEnv) eventNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.events))
	for i, ev := range e.events {
		names[i] = ev.Event
	}
	return names
}

func (e *testEnv) lastGame(t *testing.T) domain.GameState {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Event == string(protocol.EventGameUpdate) {
			var resp protocol.GameUpdateResp
			require.NoError(t, json.Unmarshal(e.events[i].Data, &resp))
			return resp.Game
		}
	}
	t.Fatal("no gameUpdate event published")
	return domain.GameState{}
}

func (e *testEnv) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = nil
}

func (e *testEnv) newRoom() string {
	id := e.rooms.Create("host")
	e.engine.CreateGame(id)
	return id
}

func send(t *testing.T, h *WebsocketHandler, conn *testConn, action protocol.FarmProtocol, payload any) {
	t.Helper()
	env := protocol.Envelope{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		env.Payload = raw
	}
	msg, err := json.Marshal(env)
	require.NoError(t, err)
	h.OnMessage(conn, msg)
}

func join(t *testing.T, env *testEnv, conn *testConn, roomID, playerID string) {
	t.Helper()
	send(t, env.handler, conn, protocol.ActionJoinRoom, protocol.JoinRoomReq{
		RoomID: roomID,
		Player: protocol.PlayerInfo{ID: playerID, Name: "name-" + playerID},
	})
}

// startedRoom 兩位玩家加入並開局，回傳依出手順序排列的連線
func startedRoom(t *testing.T, ctrl *gomock.Controller, env *testEnv) (string, map[string]*testConn) {
	t.Helper()
	roomID := env.newRoom()
	conns := map[string]*testConn{
		"A": newTestConn(ctrl, "conn-a"),
		"B": newTestConn(ctrl, "conn-b"),
	}
	for id, c := range conns {
		env.handler.OnConnect(c)
		join(t, env, c, roomID, id)
	}
	send(t, env.handler, conns["A"], protocol.ActionStartGame, protocol.StartGameReq{RoomID: roomID})
	game := env.lastGame(t)
	require.Equal(t, domain.StatusRunning, game.Status)
	env.reset()
	return roomID, conns
}

func TestWebsocketHandler_OnConnect(t *testing.T) {
	ctrl, env := setupDependencies(t)
	conn := newTestConn(ctrl, "sess-1")

	env.handler.OnConnect(conn)

	assert.Equal(t, int64(1), env.mgr.Count())
	sess, ok := env.mgr.Get("sess-1")
	assert.True(t, ok)
	assert.NotNil(t, sess)
}

func TestWebsocketHandler_JoinRoom(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID := env.newRoom()
	conn := newTestConn(ctrl, "sess-1")
	env.handler.OnConnect(conn)

	join(t, env, conn, roomID, "p1")

	assert.Equal(t, []string{"roomJoined"}, env.eventNames())
	roomOf, ok := env.mgr.RoomOf("sess-1")
	require.True(t, ok)
	assert.Equal(t, roomID, roomOf)

	rm, ok := env.rooms.Get(roomID)
	require.True(t, ok)
	require.Len(t, rm.Players, 1)
	assert.True(t, rm.Players[0].Online)
	assert.Equal(t, "name-p1", rm.Players[0].Name)

	// 加入者會單獨收到目前的盤面
	require.Len(t, conn.sent, 1)
	assert.Equal(t, protocol.EventGameUpdate, conn.sent[0].Action)
}

func TestWebsocketHandler_JoinRoom_Errors(t *testing.T) {
	ctrl, env := setupDependencies(t)
	conn := newTestConn(ctrl, "sess-1")
	env.handler.OnConnect(conn)

	join(t, env, conn, "missing", "p1")
	assert.Equal(t, domain.ErrRoomNotFound.Error(), conn.lastError())

	send(t, env.handler, conn, protocol.ActionJoinRoom, map[string]string{"roomId": "x"})
	assert.Equal(t, "Invalid JoinRoom Payload", conn.lastError())

	assert.Empty(t, env.eventNames())
}

func TestWebsocketHandler_InvalidMessages(t *testing.T) {
	ctrl, env := setupDependencies(t)
	conn := newTestConn(ctrl, "sess-1")

	env.handler.OnMessage(conn, []byte("{not json"))
	assert.Equal(t, "Invalid JSON", conn.lastError())

	send(t, env.handler, conn, "fly", nil)
	assert.Equal(t, "Unknown Action", conn.lastError())

	send(t, env.handler, conn, protocol.ActionPlayCubes, nil)
	assert.Equal(t, errNotInRoom.Error(), conn.lastError())
}

func TestWebsocketHandler_StartGame(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, _ := startedRoom(t, ctrl, env)

	game, ok := env.engine.GetGame(roomID)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"A", "B"}, game.PlayingOrder)
	assert.Equal(t, 1, game.MoveNumber)
}

func TestWebsocketHandler_StartGame_UsesBoundRoom(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID := env.newRoom()
	conn := newTestConn(ctrl, "sess-1")
	join(t, env, conn, roomID, "solo")
	env.reset()

	send(t, env.handler, conn, protocol.ActionStartGame, nil)

	game := env.lastGame(t)
	assert.Equal(t, "solo", game.CurrentPlayerID())
}

func TestWebsocketHandler_StartGame_AlreadyRunning(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)

	send(t, env.handler, conns["B"], protocol.ActionStartGame, protocol.StartGameReq{RoomID: roomID})

	assert.Contains(t, conns["B"].lastError(), domain.ErrInvalidState.Error())
	assert.Empty(t, env.eventNames())
}

func TestWebsocketHandler_PlayCubes(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)
	current := conns[game.CurrentPlayerID()]

	send(t, env.handler, current, protocol.ActionPlayCubes, nil)

	assert.Equal(t, []string{"playCubesAnimation", "gameUpdate"}, env.eventNames())
	assert.True(t, env.lastGame(t).CubesPlayed)

	// 同一回合不能再擲
	env.reset()
	send(t, env.handler, current, protocol.ActionPlayCubes, nil)
	assert.Contains(t, current.lastError(), "cubes already played")
	assert.Empty(t, env.eventNames())
}

func TestWebsocketHandler_NotYourTurn(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)

	var waiting *testConn
	for id, c := range conns {
		if id != game.CurrentPlayerID() {
			waiting = c
		}
	}

	for _, action := range []protocol.FarmProtocol{protocol.ActionPlayCubes, protocol.ActionEndMove} {
		send(t, env.handler, waiting, action, nil)
		assert.Contains(t, waiting.lastError(), domain.ErrNotYourTurn.Error())
	}
	send(t, env.handler, waiting, protocol.ActionBuyAnimal, protocol.BuyAnimalReq{AnimalKey: domain.Sheep})
	assert.Contains(t, waiting.lastError(), domain.ErrNotYourTurn.Error())

	assert.Empty(t, env.eventNames())
	after, _ := env.engine.GetGame(roomID)
	assert.Equal(t, game, after)
}

func TestWebsocketHandler_EndMove(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)
	first := game.CurrentPlayerID()

	send(t, env.handler, conns[first], protocol.ActionEndMove, nil)

	updated := env.lastGame(t)
	assert.Equal(t, 2, updated.MoveNumber)
	assert.NotEqual(t, first, updated.CurrentPlayerID())
	assert.False(t, updated.CubesPlayed)
}

func TestWebsocketHandler_BuyAnimal(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)
	current := conns[game.CurrentPlayerID()]

	// 開局沒有兔子，買羊失敗且盤面不變
	send(t, env.handler, current, protocol.ActionBuyAnimal, protocol.BuyAnimalReq{AnimalKey: domain.Sheep})
	assert.Contains(t, current.lastError(), domain.ErrInsufficientResources.Error())
	assert.Empty(t, env.eventNames())

	send(t, env.handler, current, protocol.ActionBuyAnimal, protocol.BuyAnimalReq{AnimalKey: domain.Wolf})
	assert.Contains(t, current.lastError(), domain.ErrInvalidActionKey.Error())

	send(t, env.handler, current, protocol.ActionBuyAnimal, []byte("oops"))
	assert.Equal(t, "Invalid BuyAnimal Payload", current.lastError())
}

func TestWebsocketHandler_GameUpdateRequest(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)

	send(t, env.handler, conns["A"], protocol.ActionGameUpdate, nil)

	want, _ := env.engine.GetGame(roomID)
	assert.Equal(t, want, env.lastGame(t))
}

func TestWebsocketHandler_PlayerOffline(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)

	send(t, env.handler, conns["A"], protocol.ActionPlayerOffline, protocol.PlayerOfflineReq{RoomID: roomID, PlayerID: "B"})

	assert.Equal(t, []string{"roomLeave"}, env.eventNames())
	assert.Equal(t, 1, env.rooms.OnlineCount(roomID))

	send(t, env.handler, conns["A"], protocol.ActionPlayerOffline, protocol.PlayerOfflineReq{RoomID: "missing", PlayerID: "B"})
	assert.Equal(t, domain.ErrRoomNotFound.Error(), conns["A"].lastError())
}

func TestWebsocketHandler_OnDisconnect(t *testing.T) {
	ctrl, env := setupDependencies(t)
	roomID, conns := startedRoom(t, ctrl, env)

	env.handler.OnDisconnect(conns["A"])
	assert.Equal(t, []string{"roomLeave"}, env.eventNames())
	_, ok := env.rooms.Get(roomID)
	assert.True(t, ok, "room stays while someone is online")

	env.handler.OnDisconnect(conns["B"])
	_, ok = env.rooms.Get(roomID)
	assert.False(t, ok)
	_, ok = env.engine.GetGame(roomID)
	assert.False(t, ok)
	assert.Equal(t, int64(0), env.mgr.Count())
}

func TestWebsocketHandler_OnDisconnect_Unbound(t *testing.T) {
	ctrl, env := setupDependencies(t)
	conn := newTestConn(ctrl, "sess-1")
	env.handler.OnConnect(conn)

	env.handler.OnDisconnect(conn)

	assert.Equal(t, int64(0), env.mgr.Count())
	assert.Empty(t, env.eventNames())
}

func TestWebsocketHandler_PlayCubes_DelayedUpdateIsLatest(t *testing.T) {
	ctrl, env := setupDependenciesWithDelay(t, 200*time.Millisecond)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)
	first := game.CurrentPlayerID()

	send(t, env.handler, conns[first], protocol.ActionPlayCubes, nil)
	assert.Equal(t, []string{"playCubesAnimation"}, env.eventNames())

	// 動畫等待期間結束回合
	send(t, env.handler, conns[first], protocol.ActionEndMove, nil)
	assert.Equal(t, []string{"playCubesAnimation", "gameUpdate"}, env.eventNames())

	require.Eventually(t, func() bool {
		return len(env.eventNames()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	last := env.lastGame(t)
	assert.Equal(t, 2, last.MoveNumber)
	assert.False(t, last.CubesPlayed)
	assert.NotEqual(t, first, last.CurrentPlayerID())
}

func TestWebsocketHandler_PlayCubes_DelayedUpdateSkipsClosedRoom(t *testing.T) {
	ctrl, env := setupDependenciesWithDelay(t, 30*time.Millisecond)
	roomID, conns := startedRoom(t, ctrl, env)
	game, _ := env.engine.GetGame(roomID)

	send(t, env.handler, conns[game.CurrentPlayerID()], protocol.ActionPlayCubes, nil)
	env.handler.OnDisconnect(conns["A"])
	env.handler.OnDisconnect(conns["B"])

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"playCubesAnimation", "roomLeave", "roomLeave"}, env.eventNames())
}

func TestWebsocketHandler_JoinRoom_SwitchClosesEmptyRoom(t *testing.T) {
	ctrl, env := setupDependencies(t)
	oldRoom := env.newRoom()
	newRoom := env.newRoom()
	conn := newTestConn(ctrl, "sess-1")
	env.handler.OnConnect(conn)
	join(t, env, conn, oldRoom, "p1")
	env.reset()

	join(t, env, conn, newRoom, "p1")

	assert.Equal(t, []string{"roomLeave", "roomJoined"}, env.eventNames())
	_, ok := env.rooms.Get(oldRoom)
	assert.False(t, ok)
	_, ok = env.engine.GetGame(oldRoom)
	assert.False(t, ok)
	roomOf, _ := env.mgr.RoomOf("sess-1")
	assert.Equal(t, newRoom, roomOf)
}

func TestWebsocketHandler_JoinRoom_SwitchKeepsOccupiedRoom(t *testing.T) {
	ctrl, env := setupDependencies(t)
	oldRoom := env.newRoom()
	newRoom := env.newRoom()
	mover := newTestConn(ctrl, "sess-1")
	stayer := newTestConn(ctrl, "sess-2")
	join(t, env, mover, oldRoom, "p1")
	join(t, env, stayer, oldRoom, "p2")

	join(t, env, mover, newRoom, "p1")

	rm, ok := env.rooms.Get(oldRoom)
	require.True(t, ok)
	assert.Len(t, rm.OnlinePlayers(), 1)
	_, ok = env.engine.GetGame(oldRoom)
	assert.True(t, ok)
}
