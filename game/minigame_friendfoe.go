package game

import "time"

// friendFoe 纸板靶训练：打坏人得分，误伤平民扣分
type friendFoe struct {
	cadence    Cadence
	life       Lifecycle
	enemyRatio float64
	ratioFloor float64
	ratioStep  float64
	enemyType  string
	friendType string
}

func newCardboardCop() MiniGame {
	return &friendFoe{
		cadence:    Cadence{Interval: time.Second, Floor: 600 * time.Millisecond, Step: 25 * time.Millisecond, MaxActive: 6},
		life:       Lifecycle{Rise: 300 * time.Millisecond, Expose: 3 * time.Second, Jitter: 2 * time.Second, Retreat: 300 * time.Millisecond},
		enemyRatio: 0.6,
		ratioFloor: 0.6,
		enemyType:  "robber",
		friendType: "civilian",
	}
}

// 西部版本更快，强盗比例随时间下降
func newWildWest() MiniGame {
	return &friendFoe{
		cadence:    Cadence{Interval: 900 * time.Millisecond, Floor: 500 * time.Millisecond, Step: 30 * time.Millisecond, MaxActive: 7},
		life:       Lifecycle{Rise: 300 * time.Millisecond, Expose: 2500 * time.Millisecond, Jitter: 1500 * time.Millisecond, Retreat: 300 * time.Millisecond},
		enemyRatio: 0.55,
		ratioFloor: 0.4,
		ratioStep:  0.01,
		enemyType:  "bandit",
		friendType: "townsperson",
	}
}

func (g *friendFoe) Begin(s *Stage) {
	g.spawn(s)
}

func (g *friendFoe) Advance(s *Stage, dt time.Duration) {
	for _, t := range s.Targets.All() {
		g.life.Step(s, t)
	}
	if g.cadence.Due(dt, s.Targets.Len()) {
		g.spawn(s)
		g.enemyRatio = max(g.ratioFloor, g.enemyRatio-g.ratioStep)
	}
}

func (g *friendFoe) spawn(s *Stage) {
	x, y := s.Place(Bounds{MinX: 0.05, MaxX: 0.95, MinY: 0.25, MaxY: 0.7}, 100)
	t := &Target{X: x, Y: y}
	if s.Rand().Float64() < g.enemyRatio {
		t.Type, t.Points = g.enemyType, 100
	} else {
		t.Type, t.Points = g.friendType, PointsCivilianHit
	}
	t.PixelSize(60, 120)
	g.life.Enter(s, t)
	s.Spawn(t)
}

func (g *friendFoe) ResolveHit(_ *Stage, t *Target, _ Shot) Outcome {
	if t.Type == g.enemyType {
		return Outcome{Correct: true, Scored: true, Points: t.Points, Consume: true}
	}
	return Outcome{Points: PointsCivilianHit, Consume: true}
}
