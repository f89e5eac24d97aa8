package server

import (
	"pointblank/game"
)

// 出站消息类型
const (
	OutHostAssigned   = "host-assigned"
	OutAssignedPlayer = "assigned-player"
	OutPlayerJoined   = "player-joined"
	OutPlayerLeft     = "player-left"
	OutPlayerAim      = "player-aim"
	OutAllReady       = "all-ready"
	OutPhaseChanged   = "phase-changed"
	OutTargetSpawned  = "target-spawned"
	OutTargetHit      = "target-hit"
	OutTargetRemoved  = "target-removed"
	OutScoreUpdate    = "score-update"
	OutLivesUpdate    = "lives-update"
	OutStageCue       = "stage-cue"
	OutStageComplete  = "stage-complete"
	OutGameOver       = "game-over"
	OutShootFeedback  = "shoot-feedback"
	OutState          = "state"
	OutError          = "error"
)

// ReasonHit 目标被命中后移除
const ReasonHit = "hit"

// Envelope 所有出站消息的外层结构
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func envelope(typ string, data any) Envelope {
	return Envelope{Type: typ, Data: data}
}

type HostAssigned struct {
	RoomCode string `json:"roomCode"`
}

type AssignedPlayer struct {
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Color        string            `json:"color"`
	ColorName    string            `json:"colorName"`
}

type PlayerJoined struct {
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Name         string            `json:"name"`
	Color        string            `json:"color"`
}

type PlayerLeft struct {
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
}

// PlayerAim 只发给主屏，用于绘制准星
type PlayerAim struct {
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	X            float64           `json:"x"`
	Y            float64           `json:"y"`
}

// PhaseChanged 各阶段携带的附加数据不同，未用到的字段省略
type PhaseChanged struct {
	Phase           game.Phase       `json:"phase"`
	Mode            game.Mode        `json:"mode,omitempty"`
	Config          *game.ModeConfig `json:"config,omitempty"`
	AvailableStages []string         `json:"availableStages,omitempty"`
	MiniGame        *game.StageDef   `json:"miniGame,omitempty"`
	Quota           int              `json:"quota,omitempty"`
	Timer           float64          `json:"timer,omitempty"`
	Passed          *bool            `json:"passed,omitempty"`
}

// TargetView 对客户端可见的目标字段（不含 Secret）
type TargetView struct {
	ID                string            `json:"id"`
	Type              string            `json:"type"`
	Label             string            `json:"label,omitempty"`
	X                 float64           `json:"x"`
	Y                 float64           `json:"y"`
	Width             float64           `json:"width"`
	Height            float64           `json:"height"`
	VX                float64           `json:"vx,omitempty"`
	VY                float64           `json:"vy,omitempty"`
	State             string            `json:"state"`
	OwnerPlayerNumber game.PlayerNumber `json:"ownerPlayerNumber"`
	Color             string            `json:"color"`
	Points            int               `json:"points"`
}

func viewOf(t *game.Target) TargetView {
	return TargetView{
		ID:                t.ID,
		Type:              t.Type,
		Label:             t.Label,
		X:                 t.X,
		Y:                 t.Y,
		Width:             t.Width,
		Height:            t.Height,
		VX:                t.VX,
		VY:                t.VY,
		State:             t.State.String(),
		OwnerPlayerNumber: t.Owner,
		Color:             game.ColorOf(t.Owner).Hex,
		Points:            t.Points,
	}
}

type TargetHit struct {
	TargetID     string            `json:"targetId"`
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Points       int               `json:"points"`
	Correct      bool              `json:"correct"`
}

type TargetRemoved struct {
	TargetID string `json:"targetId"`
	Reason   string `json:"reason"`
}

type ScoreUpdate struct {
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Score        int               `json:"score"`
	Delta        int               `json:"delta"`
}

type LivesUpdate struct {
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Lives        int               `json:"lives"`
	Delta        int               `json:"delta"`
	Reason       string            `json:"reason,omitempty"`
}

type StageComplete struct {
	MiniGameID    string         `json:"miniGameId"`
	Passed        bool           `json:"passed"`
	QuotaMet      int            `json:"quotaMet"`
	QuotaRequired int            `json:"quotaRequired"`
	PlayerScores  map[string]int `json:"playerScores"`
}

type Ranking struct {
	PlayerID     string            `json:"playerId"`
	PlayerNumber game.PlayerNumber `json:"playerNumber"`
	Name         string            `json:"name"`
	Rank         int               `json:"rank"`
	Score        int               `json:"score"`
}

type GameOver struct {
	FinalScores map[string]int `json:"finalScores"`
	Rankings    []Ranking      `json:"rankings"`
}

// ShootFeedback 只发给射手，驱动震动与音效
type ShootFeedback struct {
	Hit     bool `json:"hit"`
	Points  int  `json:"points,omitempty"`
	Penalty bool `json:"penalty,omitempty"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// StateSnapshot 完整状态，客户端据此与事件流对账
type StateSnapshot struct {
	RoomCode        string        `json:"roomCode"`
	Phase           game.Phase    `json:"phase"`
	Mode            game.Mode     `json:"mode,omitempty"`
	Timer           float64       `json:"timer"`
	Quota           int           `json:"quota"`
	QuotaMet        int           `json:"quotaMet"`
	CurrentMiniGame string        `json:"currentMiniGame,omitempty"`
	AvailableStages []string      `json:"availableStages"`
	StagesCompleted []string      `json:"stagesCompleted"`
	HostPresent     bool          `json:"hostPresent"`
	Players         []game.Player `json:"players"`
	Targets         []TargetView  `json:"targets"`
}
