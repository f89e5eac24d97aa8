package game

import "time"

// 宝箱内容
const (
	chestPoints  = "points"
	chestBonus   = "bonus"
	chestLife    = "life"
	chestNothing = "nothing"
)

const chestBonusPoints = 1000

var chestWeights = []struct {
	kind   string
	weight float64
}{
	{chestPoints, 0.5},
	{chestBonus, 0.2},
	{chestLife, 0.15},
	{chestNothing, 0.15},
}

// treasureChest 奖励关：宝箱内容在生成时决定，命中后揭晓
type treasureChest struct {
	cadence Cadence
	life    Lifecycle
}

func newTreasureChest() MiniGame {
	return &treasureChest{
		cadence: Cadence{Interval: 600 * time.Millisecond, Floor: 600 * time.Millisecond, MaxActive: 6},
		life:    Lifecycle{Rise: 200 * time.Millisecond, Expose: 4 * time.Second, Retreat: 300 * time.Millisecond},
	}
}

func (g *treasureChest) Begin(s *Stage) {
	g.spawn(s)
}

func (g *treasureChest) Advance(s *Stage, dt time.Duration) {
	for _, t := range s.Targets.All() {
		g.life.Step(s, t)
	}
	if g.cadence.Due(dt, s.Targets.Len()) {
		g.spawn(s)
	}
}

func (g *treasureChest) spawn(s *Stage) {
	x, y := s.Place(Bounds{MinX: 0.1, MaxX: 0.9, MinY: 0.3, MaxY: 0.8}, 140)
	t := &Target{Type: "chest", X: x, Y: y, Secret: g.roll(s)}
	switch t.Secret {
	case chestPoints:
		t.Points = 200 + s.Rand().Intn(300)
	case chestBonus:
		t.Points = chestBonusPoints
	}
	t.PixelSize(100, 80)
	g.life.Enter(s, t)
	s.Spawn(t)
}

func (g *treasureChest) roll(s *Stage) string {
	v := s.Rand().Float64()
	for _, c := range chestWeights {
		if v < c.weight {
			return c.kind
		}
		v -= c.weight
	}
	return chestNothing
}

func (g *treasureChest) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	s.Announce(Cue{Kind: "chest-open", Text: t.Secret, TargetID: t.ID})
	switch t.Secret {
	case chestLife:
		return Outcome{Correct: true, Scored: true, Lives: 1, Consume: true}
	case chestNothing:
		return Outcome{Correct: true, Consume: true}
	default:
		return Outcome{Correct: true, Scored: true, Points: t.Points, Consume: true}
	}
}
