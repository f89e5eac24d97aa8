package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Parallel()
	require.Len(t, Stages, 19)

	perCategory := map[Category]int{}
	seen := map[string]bool{}
	for _, s := range Stages {
		assert.False(t, seen[s.ID], "duplicate stage %s", s.ID)
		seen[s.ID] = true
		perCategory[s.Category]++

		assert.Positive(t, s.BaseQuota, s.ID)
		assert.Positive(t, s.BaseTime, s.ID)
		_, ok := NewMiniGame(s.ID)
		assert.True(t, ok, "no rules for %s", s.ID)
	}
	assert.Equal(t, map[Category]int{
		CategorySpeed:        5,
		CategoryAccuracy:     3,
		CategorySimulation:   2,
		CategoryIntelligence: 3,
		CategoryMemory:       2,
		CategoryVisual:       1,
		CategorySpecial:      3,
	}, perCategory)
}

func TestScale(t *testing.T) {
	t.Parallel()
	blitz, ok := LookupStage("color-target-blitz")
	require.True(t, ok)
	single, _ := LookupStage("single-bullet")

	tests := []struct {
		name           string
		def            StageDef
		mode           Mode
		quota, seconds int
	}{
		{"beginner is identity", blitz, ModeBeginner, 20, 15},
		{"training rounds time up", blitz, ModeTraining, 10, 23},
		{"training rounds quota up", single, ModeTraining, 3, 45},
		{"expert", blitz, ModeExpert, 30, 12},
		{"very hard", single, ModeVeryHard, 10, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := LookupMode(tt.mode)
			require.True(t, ok)
			q, s := Scale(tt.def, cfg)
			assert.Equal(t, tt.quota, q)
			assert.Equal(t, tt.seconds, s)
		})
	}
}

func TestLookupFallbacks(t *testing.T) {
	t.Parallel()
	cfg, ok := LookupMode("nightmare")
	assert.False(t, ok)
	assert.Equal(t, Modes[ModeBeginner], cfg)

	_, ok = LookupStage("no-such-stage")
	assert.False(t, ok)
}

func TestAvailableStages(t *testing.T) {
	t.Parallel()
	ids := func(from, to int) []string {
		var out []string
		for _, s := range Stages[from:to] {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, ids(0, 4), AvailableStages(nil))
	assert.Equal(t, []string{Stages[0].ID, Stages[2].ID, Stages[3].ID}, AvailableStages([]string{Stages[1].ID}))
	assert.Equal(t, ids(4, 8), AvailableStages(ids(0, 4)))

	// 从第二组选了两关：仍停留在第二组
	done := append(ids(0, 4), Stages[5].ID, Stages[6].ID)
	assert.Equal(t, []string{Stages[4].ID, Stages[7].ID}, AvailableStages(done), "group is chosen by completed count")

	// 当前组已全部完成时，顺延到目录中未完成的关卡
	assert.Equal(t, ids(0, 4), AvailableStages(ids(4, 8)))
	done = append(ids(4, 8), Stages[0].ID)
	assert.Equal(t, append(ids(1, 4), Stages[8].ID), AvailableStages(done))
}
