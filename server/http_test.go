package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wireEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, mutate func(*Config)) (*httptest.Server, *RoomManager) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WebDir = ""
	if mutate != nil {
		mutate(&cfg)
	}
	log := zap.NewNop().Sugar()
	ctx, cancel := context.WithCancel(context.Background())
	m := NewRoomManager(ctx, cfg, SystemTickers{}, log)
	srv := httptest.NewServer(NewAPI(m, cfg, log).Router())
	t.Cleanup(func() {
		srv.Close()
		m.DisposeAll()
		cancel()
	})
	return srv, m
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// readUntil 跳过其他消息，直到读到指定类型
func readUntil(t *testing.T, ws *websocket.Conn, typ string) wireEnvelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env wireEnvelope
		require.NoError(t, ws.ReadJSON(&env))
		if env.Type == typ {
			return env
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	t.Parallel()
	srv, m := newTestServer(t, nil)

	host := dial(t, srv, "host=1")
	var assigned HostAssigned
	require.NoError(t, json.Unmarshal(readUntil(t, host, OutHostAssigned).Data, &assigned))
	require.Len(t, m.Rooms(), 1)
	assert.Equal(t, m.Rooms()[0], assigned.RoomCode)

	pad := dial(t, srv, "room="+strings.ToLower(assigned.RoomCode)+"&name=alice")
	var me AssignedPlayer
	require.NoError(t, json.Unmarshal(readUntil(t, pad, OutAssignedPlayer).Data, &me))
	assert.Equal(t, AssignedPlayer{PlayerNumber: 1, Color: "#FF4444", ColorName: "Red"}, me)

	var joined PlayerJoined
	require.NoError(t, json.Unmarshal(readUntil(t, host, OutPlayerJoined).Data, &joined))
	assert.Equal(t, "alice", joined.Name)

	require.NoError(t, host.WriteJSON(ClientMessage{Type: MsgStartGame}))
	var changed PhaseChanged
	require.NoError(t, json.Unmarshal(readUntil(t, pad, OutPhaseChanged).Data, &changed))
	assert.Equal(t, "mode-select", string(changed.Phase))

	// 手柄发出的控制消息被忽略，主屏只会收到准星
	require.NoError(t, pad.WriteJSON(ClientMessage{Type: MsgSelectMode, Mode: "expert"}))
	require.NoError(t, pad.WriteJSON(ClientMessage{Type: MsgAim, X: 0.3, Y: -0.2}))
	var aim PlayerAim
	require.NoError(t, json.Unmarshal(readUntil(t, host, OutPlayerAim).Data, &aim))
	assert.Equal(t, PlayerAim{PlayerNumber: 1, X: 0.3, Y: -0.2}, aim)

	room, err := m.Get(assigned.RoomCode)
	require.NoError(t, err)
	s, err := room.Summary()
	require.NoError(t, err)
	assert.Equal(t, "mode-select", string(s.Phase))
	assert.Equal(t, 2, s.Online)

	require.NoError(t, pad.Close())
	assert.Eventually(t, func() bool { return room.Online() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketMsgpack(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, nil)
	host := dial(t, srv, "host=true&codec=msgpack")

	require.NoError(t, host.SetReadDeadline(time.Now().Add(2*time.Second)))
	frame, payload, err := host.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, frame)

	var env struct {
		Type string       `json:"type"`
		Data HostAssigned `json:"data"`
	}
	require.NoError(t, msgpackCodec{}.Decode(payload, &env))
	assert.Equal(t, OutHostAssigned, env.Type)
	assert.Len(t, env.Data.RoomCode, 4)
}

func TestWebSocketRejects(t *testing.T) {
	t.Parallel()
	srv, m := newTestServer(t, nil)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?"

	_, resp, err := websocket.DefaultDialer.Dial(base+"room=ZZZZ", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"host=1&codec=xml", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, m.Rooms())
}

func TestWebSocketRoomFull(t *testing.T) {
	t.Parallel()
	srv, m := newTestServer(t, nil)
	code := m.CreateRoom().Code
	for i := 0; i < 4; i++ {
		pad := dial(t, srv, "room="+code)
		readUntil(t, pad, OutAssignedPlayer)
	}

	late := dial(t, srv, "room="+code)
	var msg ErrorMessage
	require.NoError(t, json.Unmarshal(readUntil(t, late, OutError).Data, &msg))
	assert.Equal(t, "Room is full", msg.Message)

	_, _, err := late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestShootRateLimit(t *testing.T) {
	t.Parallel()
	srv, m := newTestServer(t, func(c *Config) {
		c.ShootRate = 1
		c.ShootBurst = 2
	})
	room := m.CreateRoom()
	pad := dial(t, srv, "room="+room.Code)
	readUntil(t, pad, OutAssignedPlayer)

	for i := 0; i < 10; i++ {
		require.NoError(t, pad.WriteJSON(ClientMessage{Type: MsgShoot, X: 0.5, Y: 0.5}))
	}
	assert.Eventually(t, func() bool {
		return room.Metrics().Snapshot()["rate_limited"].(int64) >= 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, func(c *Config) { c.PublicURL = "https://party.example/" })

	resp, err := http.Post(srv.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	code := created["roomCode"]
	assert.Equal(t, "https://party.example/controller.html?room="+code, created["joinUrl"])

	info, err := http.Get(srv.URL + "/rooms/" + strings.ToLower(code))
	require.NoError(t, err)
	defer info.Body.Close()
	require.Equal(t, http.StatusOK, info.StatusCode)
	var summary RoomSummary
	require.NoError(t, json.NewDecoder(info.Body).Decode(&summary))
	assert.Equal(t, code, summary.RoomCode)
	assert.Equal(t, "lobby", string(summary.Phase))

	qr, err := http.Get(srv.URL + "/rooms/" + code + "/qr")
	require.NoError(t, err)
	defer qr.Body.Close()
	require.Equal(t, http.StatusOK, qr.StatusCode)
	assert.Equal(t, "image/png", qr.Header.Get("Content-Type"))
	var png bytes.Buffer
	_, err = png.ReadFrom(qr.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	for _, path := range []string{"/rooms/ZZZZ", "/rooms/ZZZZ/qr", "/metrics?room=ZZZZ", "/admin/config?room=ZZZZ"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
	}

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestAdminConfigAndMetrics(t *testing.T) {
	t.Parallel()
	srv, m := newTestServer(t, nil)
	code := m.CreateRoom().Code
	endpoint := srv.URL + "/admin/config?room=" + code

	get := func() roomTuning {
		t.Helper()
		res, err := http.Get(endpoint)
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		var out roomTuning
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
		return out
	}
	post := func(body string) int {
		t.Helper()
		res, err := http.Post(endpoint, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		res.Body.Close()
		return res.StatusCode
	}

	cur := get()
	assert.Equal(t, 100, *cur.TickMs)
	assert.Equal(t, 3000, *cur.ResultsDelayMs)
	assert.Equal(t, 10, *cur.SnapshotEvery)

	assert.Equal(t, http.StatusOK, post(`{"tickMs":50,"snapshotEvery":20}`))
	cur = get()
	assert.Equal(t, 50, *cur.TickMs)
	assert.Equal(t, 3000, *cur.ResultsDelayMs)
	assert.Equal(t, 20, *cur.SnapshotEvery)

	assert.Equal(t, http.StatusBadRequest, post(`{"tickMs":0}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"resultsDelayMs":-1}`))
	assert.Equal(t, http.StatusBadRequest, post(`not json`))
	assert.Equal(t, 50, *get().TickMs)

	res, err := http.Get(srv.URL + "/metrics?room=" + code)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body struct {
		Room    string         `json:"room"`
		Online  int            `json:"online"`
		Metrics map[string]any `json:"metrics"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, code, body.Room)
	assert.Zero(t, body.Online)
	assert.Contains(t, body.Metrics, "tick_count")
}

func TestJoinURL(t *testing.T) {
	t.Parallel()
	a := &API{}
	req := httptest.NewRequest(http.MethodGet, "http://192.168.1.20:8080/rooms", nil)
	assert.Equal(t, "http://192.168.1.20:8080/controller.html?room=ABCD", a.joinURL(req, "ABCD"))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://192.168.1.20:8080/controller.html?room=ABCD", a.joinURL(req, "ABCD"))

	a.cfg.PublicURL = "https://party.example/"
	assert.Equal(t, "https://party.example/controller.html?room=ABCD", a.joinURL(req, "ABCD"))
}
