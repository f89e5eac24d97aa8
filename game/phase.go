package game

import (
	"errors"
	"fmt"
)

// Phase 房间顶层状态
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseModeSelect  Phase = "mode-select"
	PhaseStageSelect Phase = "stage-select"
	PhasePlaying     Phase = "playing"
	PhaseResults     Phase = "results"
	PhaseGameOver    Phase = "game-over"
)

// ErrIllegalTransition 状态机拒绝的迁移
var ErrIllegalTransition = errors.New("illegal phase transition")

var phaseEdges = map[Phase][]Phase{
	PhaseLobby:       {PhaseModeSelect},
	PhaseModeSelect:  {PhaseStageSelect},
	PhaseStageSelect: {PhasePlaying},
	PhasePlaying:     {PhaseResults},
	PhaseResults:     {PhaseStageSelect, PhaseGameOver},
	PhaseGameOver:    nil,
}

// PhaseMachine 房间阶段状态机，零值处于 lobby
type PhaseMachine struct {
	cur Phase
}

// Current 当前阶段
func (m *PhaseMachine) Current() Phase {
	if m.cur == "" {
		return PhaseLobby
	}
	return m.cur
}

// Can 是否允许迁移到 to
func (m *PhaseMachine) Can(to Phase) bool {
	for _, p := range phaseEdges[m.Current()] {
		if p == to {
			return true
		}
	}
	return false
}

// Advance 执行迁移
func (m *PhaseMachine) Advance(to Phase) error {
	if !m.Can(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.Current(), to)
	}
	m.cur = to
	return nil
}

// Terminal game-over 之后不再接受任何迁移
func (m *PhaseMachine) Terminal() bool {
	return m.Current() == PhaseGameOver
}
