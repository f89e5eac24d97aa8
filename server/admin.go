package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"pointblank/game"
)

// roomTuning 管理接口可读写的房间参数
type roomTuning struct {
	TickMs         *int `json:"tickMs,omitempty"`
	ResultsDelayMs *int `json:"resultsDelayMs,omitempty"`
	SnapshotEvery  *int `json:"snapshotEvery,omitempty"`
}

// Settings 在房间协程中读取当前参数
func (r *Room) Settings() (RoomSettings, error) {
	var s RoomSettings
	err := r.Do(func() { s = r.settings })
	return s, err
}

// UpdateSettings 在房间协程中修改参数，下一次 Tick 生效
func (r *Room) UpdateSettings(fn func(*RoomSettings)) error {
	return r.Do(func() { fn(&r.settings) })
}

// RoomSummary 房间概要（GET /rooms/:code）
type RoomSummary struct {
	RoomCode        string        `json:"roomCode"`
	Phase           game.Phase    `json:"phase"`
	Mode            game.Mode     `json:"mode"`
	HostPresent     bool          `json:"hostPresent"`
	Online          int           `json:"online"`
	Players         []game.Player `json:"players"`
	StagesCompleted []string      `json:"stagesCompleted"`
}

// Summary 在房间协程中生成概要
func (r *Room) Summary() (RoomSummary, error) {
	var s RoomSummary
	err := r.Do(func() {
		s = RoomSummary{
			RoomCode:        r.Code,
			Phase:           r.phase.Current(),
			Mode:            r.mode,
			HostPresent:     r.hostID != "",
			Online:          len(r.members),
			Players:         []game.Player{},
			StagesCompleted: append([]string{}, r.completed...),
		}
		for _, p := range r.registry.List() {
			s.Players = append(s.Players, *p)
		}
	})
	return s, err
}

// roomFromQuery ?room=CODE，不存在时写 404
func (a *API) roomFromQuery(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	room, err := a.rooms.Get(strings.ToUpper(r.URL.Query().Get("room")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return room, true
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新）
// GET /admin/config?room=ABCD  返回当前配置
// POST /admin/config?room=ABCD 以 JSON 载荷更新部分字段
func (a *API) HandleAdminConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	room, ok := a.roomFromQuery(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s, err := room.Settings()
		if err != nil {
			http.Error(w, err.Error(), http.StatusGone)
			return
		}
		tick, delay := int(s.TickInterval/time.Millisecond), int(s.ResultsDelay/time.Millisecond)
		writeJSON(w, http.StatusOK, roomTuning{TickMs: &tick, ResultsDelayMs: &delay, SnapshotEvery: &s.SnapshotEvery})
	case http.MethodPost:
		var body roomTuning
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TickMs != nil && *body.TickMs <= 0 ||
			body.ResultsDelayMs != nil && *body.ResultsDelayMs < 0 ||
			body.SnapshotEvery != nil && *body.SnapshotEvery < 0 {
			http.Error(w, "out of range", http.StatusBadRequest)
			return
		}
		err := room.UpdateSettings(func(s *RoomSettings) {
			// Tick 周期只影响下一次启动的 Ticker
			if body.TickMs != nil {
				s.TickInterval = time.Duration(*body.TickMs) * time.Millisecond
			}
			if body.ResultsDelayMs != nil {
				s.ResultsDelay = time.Duration(*body.ResultsDelayMs) * time.Millisecond
			}
			if body.SnapshotEvery != nil {
				s.SnapshotEvery = *body.SnapshotEvery
			}
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusGone)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		a.log.Infow("config updated", "room", room.Code, "body", body)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=ABCD
func (a *API) HandleMetrics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	room, ok := a.roomFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room.Code,
		"online":  room.Online(),
		"metrics": room.Metrics().Snapshot(),
	})
}
