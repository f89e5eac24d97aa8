package game

import "time"

// colorBlitz 抢自己颜色的靶子。彩色靶数量随人数变化（至少 4，上限 8），
// 每个目标的归属从在线玩家中均匀抽取；另有少量无归属的炸弹，打中扣分。
type colorBlitz struct {
	maxTargets int
	bombChance float64
	maxBombs   int
	bombLife   Lifecycle
}

func newColorBlitz() MiniGame {
	return &colorBlitz{
		maxTargets: 8,
		bombChance: 0.15,
		maxBombs:   2,
		bombLife:   Lifecycle{Expose: 4 * time.Second},
	}
}

func (g *colorBlitz) want(s *Stage) int {
	return min(max(4, 2*len(s.Players())), g.maxTargets)
}

func (g *colorBlitz) Begin(s *Stage) {
	g.fill(s)
}

func (g *colorBlitz) Advance(s *Stage, _ time.Duration) {
	for _, t := range s.Targets.All() {
		if t.Type == "bomb" {
			g.bombLife.Step(s, t)
		}
	}
	g.fill(s)
}

func (g *colorBlitz) fill(s *Stage) {
	players := s.Players()
	if len(players) == 0 {
		return
	}
	for s.Targets.CountType("color-target") < g.want(s) {
		owner := players[s.Rand().Intn(len(players))]
		x, y := s.Place(PlayField, 100)
		t := &Target{Type: "color-target", X: x, Y: y, Owner: owner, Points: PointsTargetHit}
		t.PixelSize(60, 60)
		s.Spawn(t)
		if g.bombChance > 0 && s.Targets.CountType("bomb") < g.maxBombs && s.Rand().Float64() < g.bombChance {
			g.spawnBomb(s)
		}
	}
}

func (g *colorBlitz) spawnBomb(s *Stage) {
	x, y := s.Place(PlayField, 100)
	t := &Target{Type: "bomb", X: x, Y: y, Points: PointsBombHit}
	t.PixelSize(60, 60)
	g.bombLife.Enter(s, t)
	s.Spawn(t)
}

func (g *colorBlitz) ResolveHit(_ *Stage, t *Target, shot Shot) Outcome {
	if t.Type == "bomb" {
		return Outcome{Points: PointsBombHit, Consume: true}
	}
	if t.Owner == shot.Shooter {
		return Outcome{Correct: true, Scored: true, Points: t.Points, Consume: true}
	}
	return Outcome{Points: PointsWrongTarget, Consume: true}
}
