package server

import (
	"slices"
	"sort"
	"time"

	"pointblank/game"
)

// handleControl 主机的阶段推进消息；当前阶段不匹配时视为竞态直接忽略
func (r *Room) handleControl(msg ClientMessage) {
	cur := r.phase.Current()
	switch msg.Type {
	case MsgStartGame:
		if cur != game.PhaseLobby {
			break
		}
		r.advance(game.PhaseModeSelect)
		r.broadcast(envelope(OutPhaseChanged, PhaseChanged{Phase: game.PhaseModeSelect, Timer: game.ModeSelectSeconds}))
		return
	case MsgSelectMode:
		if cur != game.PhaseModeSelect {
			break
		}
		r.selectMode(game.Mode(msg.Mode))
		return
	case MsgSelectStage:
		if cur != game.PhaseStageSelect {
			break
		}
		r.startStage(msg.StageID)
		return
	}
	r.log.Debugw("control ignored", "type", msg.Type, "phase", cur)
}

// advance 所有阶段迁移都经过状态机；调用方已检查过当前阶段
func (r *Room) advance(to game.Phase) {
	if err := r.phase.Advance(to); err != nil {
		r.log.Errorw("phase transition", "err", err)
	}
}

func (r *Room) selectMode(mode game.Mode) {
	cfg, ok := game.LookupMode(mode)
	if !ok {
		r.log.Warnw("unknown mode, falling back", "mode", mode, "fallback", game.DefaultMode)
		mode = game.DefaultMode
	}
	r.mode, r.modeCfg = mode, cfg
	r.available = game.AvailableStages(r.completed)
	r.advance(game.PhaseStageSelect)
	r.broadcast(r.stageSelectEnvelope())
}

func (r *Room) stageSelectEnvelope() Envelope {
	cfg := r.modeCfg
	return envelope(OutPhaseChanged, PhaseChanged{
		Phase:           game.PhaseStageSelect,
		Mode:            r.mode,
		Config:          &cfg,
		AvailableStages: append([]string{}, r.available...),
	})
}

// startStage 初始化配额与计时、清空目标、启动 Tick
func (r *Room) startStage(id string) {
	def, ok := game.LookupStage(id)
	if !ok || !slices.Contains(r.available, id) {
		fallback := game.DefaultStageID
		if len(r.available) > 0 {
			fallback = r.available[0]
		}
		r.log.Warnw("stage not offered, falling back", "stage", id, "fallback", fallback)
		def, _ = game.LookupStage(fallback)
	}

	quota, seconds := game.Scale(def, r.modeCfg)
	r.advance(game.PhasePlaying)
	r.stage = game.NewStage(def, quota, time.Duration(seconds)*time.Second, r.registry.Numbers(), r.rng)
	r.tickSeq = 0
	r.metrics.IncStagesPlayed()

	r.broadcast(envelope(OutPhaseChanged, PhaseChanged{
		Phase:    game.PhasePlaying,
		MiniGame: &def,
		Quota:    quota,
		Timer:    float64(seconds),
	}))
	r.stage.Begin()
	r.flushStage()
	r.startTicker()
	r.log.Infow("stage started", "stage", def.ID, "quota", quota, "seconds", seconds)
}

// handleShoot 命中判定只在 playing 阶段进行
func (r *Room) handleShoot(m *member, msg ClientMessage) {
	if m.player == nil {
		return
	}
	if r.phase.Current() != game.PhasePlaying || r.stage == nil {
		r.log.Debugw("shot outside playing ignored", "conn", m.id, "phase", r.phase.Current())
		return
	}
	p := m.player
	res := r.stage.Shoot(game.Shot{Shooter: p.Number, X: msg.X, Y: msg.Y})
	if !res.Hit() {
		r.metrics.AddShot(false, false)
		r.flushStage()
		m.conn.Send(envelope(OutShootFeedback, ShootFeedback{Hit: false}))
		return
	}

	r.broadcast(envelope(OutTargetHit, TargetHit{
		TargetID:     res.Target.ID,
		PlayerID:     p.ID,
		PlayerNumber: p.Number,
		Points:       res.Points,
		Correct:      res.Correct,
	}))
	if res.Consume {
		r.broadcast(envelope(OutTargetRemoved, TargetRemoved{TargetID: res.Target.ID, Reason: ReasonHit}))
	}
	if res.Points != 0 {
		r.registry.AddScore(p, res.Points)
		r.broadcast(envelope(OutScoreUpdate, ScoreUpdate{PlayerID: p.ID, PlayerNumber: p.Number, Score: p.Score, Delta: res.Points}))
	}
	if res.Lives != 0 {
		if d := r.registry.AddLives(p, res.Lives); d != 0 {
			r.broadcast(envelope(OutLivesUpdate, LivesUpdate{PlayerID: p.ID, PlayerNumber: p.Number, Lives: p.Lives, Delta: d, Reason: "bonus"}))
		}
	}
	r.flushStage()

	r.metrics.AddShot(res.Correct, !res.Correct)
	fb := ShootFeedback{Hit: res.Correct, Points: res.Points}
	if !res.Correct {
		fb.Penalty = res.Points < 0
	}
	m.conn.Send(envelope(OutShootFeedback, fb))
}

// flushStage 广播关卡内部产生的事件（生成、过期、提示）
func (r *Room) flushStage() {
	if r.stage == nil {
		return
	}
	for _, ev := range r.stage.Drain() {
		switch ev.Kind {
		case game.EventSpawned:
			r.broadcast(envelope(OutTargetSpawned, viewOf(ev.Target)))
		case game.EventRemoved:
			r.broadcast(envelope(OutTargetRemoved, TargetRemoved{TargetID: ev.Target.ID, Reason: ev.Reason}))
		case game.EventCue:
			r.broadcast(envelope(OutStageCue, *ev.Cue))
		}
	}
}

// tickStage 推进关卡时钟，时间耗尽进入结算
func (r *Room) tickStage() {
	r.tickSeq++
	expired := r.stage.Tick(r.tickDt)
	r.flushStage()
	if expired {
		r.endStage()
		return
	}
	if r.settings.SnapshotEvery > 0 && r.tickSeq%r.settings.SnapshotEvery == 0 {
		r.broadcast(r.snapshot())
	}
}

// endStage playing → results：未达标时所有在线玩家扣一条命
func (r *Room) endStage() {
	passed := r.stage.Passed()
	r.advance(game.PhaseResults)
	r.stopTicker()
	r.stage.Targets.Clear()
	r.broadcast(envelope(OutPhaseChanged, PhaseChanged{Phase: game.PhaseResults, Passed: &passed, Timer: r.settings.ResultsDelay.Seconds()}))

	if !passed {
		for _, p := range r.registry.List() {
			if d := r.registry.AddLives(p, -1); d != 0 {
				r.broadcast(envelope(OutLivesUpdate, LivesUpdate{PlayerID: p.ID, PlayerNumber: p.Number, Lives: p.Lives, Delta: d, Reason: "quota-missed"}))
			}
		}
	}
	r.completed = append(r.completed, r.stage.Def.ID)

	scores := r.scores()
	r.broadcast(envelope(OutStageComplete, StageComplete{
		MiniGameID:    r.stage.Def.ID,
		Passed:        passed,
		QuotaMet:      r.stage.QuotaMet,
		QuotaRequired: r.stage.Quota,
		PlayerScores:  scores,
	}))
	r.log.Infow("stage complete", "stage", r.stage.Def.ID, "passed", passed, "quotaMet", r.stage.QuotaMet, "quota", r.stage.Quota)

	if r.registry.AllOut() || len(r.completed) >= r.modeCfg.Stages {
		r.gameOver(scores)
		return
	}
	if r.settings.ResultsDelay <= 0 {
		r.nextGroup()
		return
	}
	r.resultsIn = r.settings.ResultsDelay
	r.startTicker()
}

// tickResults 结算界面倒计时（独立于关卡 Ticker），结束后回到选关
func (r *Room) tickResults() {
	r.resultsIn -= r.tickDt
	if r.resultsIn <= 0 {
		r.nextGroup()
	}
}

func (r *Room) nextGroup() {
	r.stopTicker()
	r.resultsIn = 0
	r.stage = nil
	r.registry.ResetReady()
	r.available = game.AvailableStages(r.completed)
	r.advance(game.PhaseStageSelect)
	r.broadcast(r.stageSelectEnvelope())
}

// gameOver 终态：停止 Tick，之后的控制与射击消息都不会再改变状态
func (r *Room) gameOver(scores map[string]int) {
	r.stopTicker()
	r.resultsIn = 0
	r.advance(game.PhaseGameOver)
	r.broadcast(envelope(OutPhaseChanged, PhaseChanged{Phase: game.PhaseGameOver}))
	r.broadcast(envelope(OutGameOver, GameOver{FinalScores: scores, Rankings: r.rankings()}))
	r.log.Infow("game over", "stages", len(r.completed))
}

func (r *Room) scores() map[string]int {
	out := make(map[string]int, r.registry.Len())
	for _, p := range r.registry.List() {
		out[p.ID] = p.Score
	}
	return out
}

// rankings 按分数降序，同分同名次（1,1,3）
func (r *Room) rankings() []Ranking {
	players := r.registry.List()
	sort.SliceStable(players, func(i, j int) bool { return players[i].Score > players[j].Score })
	out := make([]Ranking, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && p.Score == players[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = Ranking{PlayerID: p.ID, PlayerNumber: p.Number, Name: p.Name, Rank: rank, Score: p.Score}
	}
	return out
}
