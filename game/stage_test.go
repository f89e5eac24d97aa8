package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blitzStage(players ...PlayerNumber) *Stage {
	def, _ := LookupStage("color-target-blitz")
	return NewStageWith(def, 5, 10*time.Second, players, rand.New(rand.NewSource(1)), &colorBlitz{maxTargets: 8})
}

func colorTarget(s *Stage, owner PlayerNumber, x, y float64) *Target {
	t := &Target{Type: "color-target", X: x, Y: y, Owner: owner, Points: PointsTargetHit}
	t.PixelSize(60, 60)
	return s.Spawn(t)
}

func TestShoot(t *testing.T) {
	t.Parallel()

	t.Run("Correct Hit Scores Once", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1, 2)
		target := colorTarget(s, 2, 0.5, 0.5)

		res := s.Shoot(Shot{Shooter: 2, X: 0.5, Y: 0.5})
		require.True(t, res.Hit())
		assert.Same(t, target, res.Target)
		assert.True(t, res.Correct)
		assert.Equal(t, PointsTargetHit, res.Points)
		assert.Equal(t, 1, s.QuotaMet)
		assert.False(t, target.Active)
		assert.Zero(t, s.Targets.Len())

		again := s.Shoot(Shot{Shooter: 2, X: 0.5, Y: 0.5})
		assert.False(t, again.Hit())
		assert.Nil(t, again.Target)
		assert.Equal(t, 1, s.QuotaMet)
	})

	t.Run("Wrong Target Penalty", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1, 2)
		target := colorTarget(s, 2, 0.3, 0.3)

		res := s.Shoot(Shot{Shooter: 1, X: 0.3, Y: 0.3})
		require.True(t, res.Hit())
		assert.False(t, res.Correct)
		assert.False(t, res.Scored)
		assert.Equal(t, PointsWrongTarget, res.Points)
		assert.Zero(t, s.QuotaMet)
		assert.False(t, target.Active)
		_, ok := s.Targets.Get(target.ID)
		assert.False(t, ok)
	})

	t.Run("First Match Wins", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1, 2)
		first := colorTarget(s, 1, 0.5, 0.5)
		second := colorTarget(s, 2, 0.5, 0.5)

		res := s.Shoot(Shot{Shooter: 2, X: 0.5, Y: 0.5})
		assert.Same(t, first, res.Target)
		assert.False(t, res.Correct)
		assert.True(t, second.Active, "only one target resolved per shot")
		assert.Equal(t, 1, s.Targets.Len())
	})

	t.Run("Miss", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1)
		colorTarget(s, 1, 0.5, 0.5)
		res := s.Shoot(Shot{Shooter: 1, X: 0.1, Y: 0.9})
		assert.False(t, res.Hit())
		assert.Equal(t, 1, s.Targets.Len())
	})

	t.Run("Hidden And Retreating Are Not Hittable", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1)
		hidden := colorTarget(s, 1, 0.5, 0.5)
		hidden.State = StateHidden
		retreating := colorTarget(s, 1, 0.5, 0.5)
		retreating.State = StateRetreating

		assert.False(t, s.Shoot(Shot{Shooter: 1, X: 0.5, Y: 0.5}).Hit())

		hidden.State = StateRising
		assert.Same(t, hidden, s.Shoot(Shot{Shooter: 1, X: 0.5, Y: 0.5}).Target)
	})

	t.Run("Coordinates Are Clamped", func(t *testing.T) {
		t.Parallel()
		s := blitzStage(1)
		edge := colorTarget(s, 1, 0.99, 0.5)
		res := s.Shoot(Shot{Shooter: 1, X: 7, Y: 0.5})
		assert.Same(t, edge, res.Target)
	})
}

func TestStageTick(t *testing.T) {
	t.Parallel()
	s := blitzStage(1, 2)
	for i := 1; i < 100; i++ {
		require.False(t, s.Tick(100*time.Millisecond), "tick %d", i)
	}
	assert.True(t, s.Tick(100*time.Millisecond))
	assert.Zero(t, s.Timer())
}

func TestColorBlitzPopulation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		players []PlayerNumber
		want    int
	}{
		{"nobody connected", nil, 0},
		{"minimum four", []PlayerNumber{1}, 4},
		{"two per player", []PlayerNumber{1, 3}, 4},
		{"capped", []PlayerNumber{1, 2, 3, 4}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := blitzStage(tt.players...)
			s.Begin()
			for i := 0; i < 50; i++ {
				s.Tick(100 * time.Millisecond)
				require.Equal(t, tt.want, s.Targets.Len())
			}
			for _, target := range s.Targets.All() {
				assert.Contains(t, tt.players, target.Owner)
			}
		})
	}
}

func TestBlitzRefillsAfterHit(t *testing.T) {
	t.Parallel()
	s := blitzStage(1, 2)
	s.Begin()
	s.Drain()

	target := s.Targets.All()[0]
	res := s.Shoot(Shot{Shooter: target.Owner, X: target.X, Y: target.Y})
	require.True(t, res.Hit())
	assert.Equal(t, 3, s.Targets.Len())

	s.Tick(100 * time.Millisecond)
	assert.Equal(t, 4, s.Targets.Len())
	events := s.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventSpawned, events[0].Kind)
	assert.NotEqual(t, target.ID, events[0].Target.ID)
}

func TestTargetIDsAreUnique(t *testing.T) {
	t.Parallel()
	s := blitzStage(1)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		target := colorTarget(s, 1, 0.5, 0.5)
		require.False(t, seen[target.ID])
		seen[target.ID] = true
	}
}

func TestFallingTargetExpires(t *testing.T) {
	t.Parallel()
	s := blitzStage()
	leaf := &Target{Type: "leaf", X: 0.5, Y: 0.95, VY: 0.5}
	leaf.PixelSize(60, 60)
	s.Spawn(leaf)
	s.Drain()

	s.Tick(200 * time.Millisecond)
	events := s.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventRemoved, events[0].Kind)
	assert.Equal(t, ReasonExpired, events[0].Reason)
	assert.False(t, leaf.Active)
}

func TestBlitzBombs(t *testing.T) {
	t.Parallel()
	def, _ := LookupStage("color-target-blitz")
	g := &colorBlitz{maxTargets: 8, bombChance: 1, maxBombs: 2, bombLife: Lifecycle{Expose: time.Second}}
	s := NewStageWith(def, 5, 10*time.Second, []PlayerNumber{1}, rand.New(rand.NewSource(1)), g)
	s.Begin()

	assert.Equal(t, 4, s.Targets.CountType("color-target"), "bombs do not take color slots")
	require.Equal(t, 2, s.Targets.CountType("bomb"))

	var bomb *Target
	for _, target := range s.Targets.All() {
		if target.Type == "bomb" {
			assert.Zero(t, target.Owner)
			if bomb == nil {
				bomb = target
			}
		}
	}
	res := s.Shoot(Shot{Shooter: 1, X: bomb.X, Y: bomb.Y})
	require.Same(t, bomb, res.Target)
	assert.False(t, res.Correct)
	assert.Equal(t, PointsBombHit, res.Points)
	assert.False(t, bomb.Active)
	assert.Zero(t, s.QuotaMet)

	for i := 0; i < 10; i++ {
		s.Tick(100 * time.Millisecond)
	}
	assert.Zero(t, s.Targets.CountType("bomb"), "unshot bombs expire")
	assert.Equal(t, 4, s.Targets.CountType("color-target"))
}

func TestSetPlayersRetiresDepartedOwners(t *testing.T) {
	t.Parallel()
	s := blitzStage(1, 2, 3, 4)
	s.Begin()
	require.Equal(t, 8, s.Targets.Len())
	s.Drain()

	neutral := &Target{Type: "bomb", X: 0.5, Y: 0.1}
	neutral.PixelSize(60, 60)
	s.Spawn(neutral)
	s.Drain()

	s.SetPlayers([]PlayerNumber{1})
	for _, ev := range s.Drain() {
		require.Equal(t, EventRemoved, ev.Kind)
		assert.Equal(t, ReasonOwnerLeft, ev.Reason)
		assert.NotEqual(t, PlayerNumber(1), ev.Target.Owner)
	}
	assert.True(t, neutral.Active, "neutral targets stay")
	for _, target := range s.Targets.All() {
		assert.Contains(t, []PlayerNumber{0, 1}, target.Owner)
	}

	s.Tick(100 * time.Millisecond)
	assert.GreaterOrEqual(t, s.Targets.CountType("color-target"), 4, "refilled for the remaining player")
	for _, target := range s.Targets.All() {
		assert.Contains(t, []PlayerNumber{0, 1}, target.Owner)
	}
}
