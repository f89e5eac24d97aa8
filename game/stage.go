package game

import (
	"math/rand"
	"slices"
	"time"
)

// EventKind 关卡产生的对外事件类型
type EventKind int

const (
	EventSpawned EventKind = iota
	EventRemoved
	EventCue
)

// 目标移除原因
const (
	ReasonExpired   = "expired"
	ReasonMissed    = "missed"
	ReasonMatched   = "matched"
	ReasonRoundOver = "round-over"
	ReasonOwnerLeft = "owner-left"
)

// Cue 关卡提示（题目、单词、待记忆的序列、翻牌等）
type Cue struct {
	Kind     string   `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Items    []string `json:"items,omitempty"`
	TargetID string   `json:"targetId,omitempty"`
}

// Event 由房间协程在每次操作后取出并广播
type Event struct {
	Kind   EventKind
	Target *Target
	Reason string
	Cue    *Cue
}

// Shot 一次射击（归一化屏幕坐标）
type Shot struct {
	Shooter PlayerNumber
	X, Y    float64
}

// Outcome 小游戏对一次命中的裁决
type Outcome struct {
	Correct bool // 命中是否正确
	Scored  bool // 是否计入配额（只在 Correct 时生效）
	Points  int  // 射手得分变化
	Lives   int  // 射手生命变化（奖励关）
	Consume bool // 命中后失活并移除目标
	Ignored bool // 擦边或当前不可交互，视为未命中
}

// Resolution 命中判定结果；Target 为 nil 表示未命中任何目标
type Resolution struct {
	Target *Target
	Outcome
}

// Hit 是否算作一次有效命中
func (r Resolution) Hit() bool {
	return r.Target != nil && !r.Ignored
}

// Stage 单个关卡的权威世界：目标集合、配额、时钟与小游戏规则
type Stage struct {
	Def       StageDef
	Quota     int
	QuotaMet  int
	Remaining time.Duration
	Elapsed   time.Duration
	Targets   *TargetSet

	game    MiniGame
	players []PlayerNumber
	rng     *rand.Rand
	now     func() time.Time
	events  []Event
}

// NewStage 创建关卡；未知关卡 id 退回 color-target-blitz 的规则
func NewStage(def StageDef, quota int, duration time.Duration, players []PlayerNumber, rng *rand.Rand) *Stage {
	mg, ok := NewMiniGame(def.ID)
	if !ok {
		mg, _ = NewMiniGame(DefaultStageID)
	}
	return NewStageWith(def, quota, duration, players, rng, mg)
}

// NewStageWith 指定小游戏实现
func NewStageWith(def StageDef, quota int, duration time.Duration, players []PlayerNumber, rng *rand.Rand, mg MiniGame) *Stage {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Stage{
		Def:       def,
		Quota:     quota,
		Remaining: duration,
		Targets:   NewTargetSet(),
		game:      mg,
		players:   append([]PlayerNumber(nil), players...),
		rng:       rng,
		now:       time.Now,
	}
}

// Begin 初始布局
func (s *Stage) Begin() {
	s.game.Begin(s)
}

// Tick 推进时钟；返回 true 表示时间耗尽（此时不再推进小游戏）
func (s *Stage) Tick(dt time.Duration) bool {
	s.Remaining -= dt
	s.Elapsed += dt
	if s.Remaining <= 0 {
		s.Remaining = 0
		return true
	}
	s.move(dt)
	s.game.Advance(s, dt)
	return false
}

// Timer 剩余秒数
func (s *Stage) Timer() float64 {
	return s.Remaining.Seconds()
}

// Passed 是否达成配额
func (s *Stage) Passed() bool {
	return s.QuotaMet >= s.Quota
}

// Shoot 命中判定：先到先得，每次射击最多裁决一个目标
func (s *Stage) Shoot(shot Shot) Resolution {
	shot.X = clamp(shot.X, 0, 1)
	shot.Y = clamp(shot.Y, 0, 1)

	t := s.Targets.At(shot.X, shot.Y)
	if t == nil {
		if mr, ok := s.game.(MissResolver); ok {
			mr.ResolveMiss(s, shot)
		}
		return Resolution{}
	}

	out := s.game.ResolveHit(s, t, shot)
	if out.Ignored {
		return Resolution{Target: t, Outcome: Outcome{Ignored: true}}
	}
	if !out.Correct {
		out.Scored = false
	}
	if out.Consume {
		s.Targets.Remove(t)
	}
	if out.Scored {
		s.QuotaMet++
	}
	return Resolution{Target: t, Outcome: out}
}

// SetPlayers 更新在线玩家编号（加入/离开时由房间调用）。
// 已离开玩家名下的目标随之移除，空出的名额由小游戏按在线玩家重新补齐。
func (s *Stage) SetPlayers(nums []PlayerNumber) {
	s.players = append(s.players[:0], nums...)
	for _, t := range s.Targets.All() {
		if t.Owner != 0 && !slices.Contains(s.players, t.Owner) {
			s.Retire(t, ReasonOwnerLeft)
		}
	}
}

// Players 在线玩家编号
func (s *Stage) Players() []PlayerNumber {
	return s.players
}

// Rand 关卡随机源
func (s *Stage) Rand() *rand.Rand {
	return s.rng
}

// Spawn 分配 id 并加入目标集合
func (s *Stage) Spawn(t *Target) *Target {
	if t.ID == "" {
		t.ID = NewTargetID(t.Type, s.now())
	}
	t.Born = s.Elapsed
	s.Targets.Add(t)
	s.events = append(s.events, Event{Kind: EventSpawned, Target: t})
	return t
}

// Retire 非命中原因移除目标（过期、回合结束、配对完成等）
func (s *Stage) Retire(t *Target, reason string) {
	if s.Targets.Remove(t) {
		s.events = append(s.events, Event{Kind: EventRemoved, Target: t, Reason: reason})
	}
}

// RetireAll 移除指定类型的全部目标
func (s *Stage) RetireAll(reason string, types ...string) {
	for _, t := range s.Targets.All() {
		if len(types) == 0 || slices.Contains(types, t.Type) {
			s.Retire(t, reason)
		}
	}
}

// Announce 发出提示
func (s *Stage) Announce(c Cue) {
	s.events = append(s.events, Event{Kind: EventCue, Cue: &c})
}

// Drain 取出并清空待广播事件
func (s *Stage) Drain() []Event {
	out := s.events
	s.events = nil
	return out
}

// move 按速度推进移动靶：水平越界反弹，竖直掉出屏幕即过期
func (s *Stage) move(dt time.Duration) {
	sec := dt.Seconds()
	for _, t := range s.Targets.All() {
		if t.VX == 0 && t.VY == 0 {
			continue
		}
		t.X += t.VX * sec
		t.Y += t.VY * sec
		hw := t.Width / 2
		if t.X-hw < 0 && t.VX < 0 || t.X+hw > 1 && t.VX > 0 {
			t.VX = -t.VX
		}
		if t.Y-t.Height/2 > 1 || t.Y+t.Height/2 < 0 {
			s.Retire(t, ReasonExpired)
		}
	}
}
