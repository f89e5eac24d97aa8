package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseMachine(t *testing.T) {
	t.Parallel()

	t.Run("Zero Value Is Lobby", func(t *testing.T) {
		t.Parallel()
		var m PhaseMachine
		assert.Equal(t, PhaseLobby, m.Current())
		assert.False(t, m.Terminal())
	})

	t.Run("Full Run", func(t *testing.T) {
		t.Parallel()
		var m PhaseMachine
		for _, p := range []Phase{PhaseModeSelect, PhaseStageSelect, PhasePlaying, PhaseResults, PhaseStageSelect, PhasePlaying, PhaseResults, PhaseGameOver} {
			require.NoError(t, m.Advance(p))
			require.Equal(t, p, m.Current())
		}
		assert.True(t, m.Terminal())
	})

	t.Run("Illegal Edges", func(t *testing.T) {
		t.Parallel()
		var m PhaseMachine
		err := m.Advance(PhasePlaying)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, PhaseLobby, m.Current())

		assert.ErrorIs(t, m.Advance(PhaseGameOver), ErrIllegalTransition, "game-over only via results")
		assert.ErrorIs(t, m.Advance(PhaseLobby), ErrIllegalTransition)
	})

	t.Run("Game Over Is Terminal", func(t *testing.T) {
		t.Parallel()
		m := PhaseMachine{cur: PhaseGameOver}
		for _, p := range []Phase{PhaseLobby, PhaseModeSelect, PhaseStageSelect, PhasePlaying, PhaseResults, PhaseGameOver} {
			assert.False(t, m.Can(p))
			assert.ErrorIs(t, m.Advance(p), ErrIllegalTransition)
		}
		assert.Equal(t, PhaseGameOver, m.Current())
	})
}
