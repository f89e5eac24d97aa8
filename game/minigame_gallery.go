package game

import "time"

// sizeOption 同一关卡里不同大小/分值的目标
type sizeOption struct {
	Type   string
	W, H   float64 // 像素
	Points int
	Weight float64
}

type galleryConfig struct {
	cadence     Cadence
	life        Lifecycle
	sizes       []sizeOption
	bounds      Bounds
	minDist     float64
	fallMin     float64 // 下落速度（归一化/秒），0 表示不动
	fallMax     float64
	risingBonus int // 升起阶段命中的额外奖励
}

// gallery 射击场类关卡：任何玩家命中都算正确，目标到时自动退场
type gallery struct {
	cfg galleryConfig
}

func newCuckooClock() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence: Cadence{Interval: 1200 * time.Millisecond, Floor: 800 * time.Millisecond, Step: 20 * time.Millisecond, MaxActive: 4},
		life:    Lifecycle{Rise: 300 * time.Millisecond, Expose: 1500 * time.Millisecond, Retreat: 300 * time.Millisecond},
		sizes:   []sizeOption{{Type: "cuckoo", W: 80, H: 80, Points: 10, Weight: 1}},
		bounds:  Bounds{MinX: 0.15, MaxX: 0.85, MinY: 0.3, MaxY: 0.7},
		minDist: 150,
	}}
}

func newLeafShooting() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence: Cadence{Interval: 400 * time.Millisecond, Floor: 400 * time.Millisecond, MaxActive: 12},
		sizes:   []sizeOption{{Type: "leaf", W: 60, H: 60, Points: 10, Weight: 1}},
		bounds:  Bounds{MinX: 0.05, MaxX: 0.95, MinY: 0.02, MaxY: 0.1},
		minDist: 60,
		fallMin: 0.12,
		fallMax: 0.25,
	}}
}

func newSkeletonCoffins() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence: Cadence{Interval: 1100 * time.Millisecond, Floor: 700 * time.Millisecond, Step: 30 * time.Millisecond, MaxActive: 6},
		life:    Lifecycle{Rise: 500 * time.Millisecond, Expose: 2 * time.Second, Retreat: 500 * time.Millisecond},
		sizes:   []sizeOption{{Type: "skeleton", W: 70, H: 140, Points: 10, Weight: 1}},
		bounds:  Bounds{MinX: 0.1, MaxX: 0.9, MinY: 0.45, MaxY: 0.7},
		minDist: 120,
	}}
}

func newPopupAnimals() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence: Cadence{Interval: 800 * time.Millisecond, Floor: 500 * time.Millisecond, Step: 25 * time.Millisecond, MaxActive: 6},
		life:    Lifecycle{Rise: 200 * time.Millisecond, Expose: 1200 * time.Millisecond, Retreat: 200 * time.Millisecond},
		sizes:   []sizeOption{{Type: "critter", W: 80, H: 80, Points: 10, Weight: 1}},
		bounds:  PlayField,
		minDist: 120,
	}}
}

func newMeteorStrike() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence: Cadence{Interval: 800 * time.Millisecond, Floor: 400 * time.Millisecond, Step: 10 * time.Millisecond, MaxActive: 10},
		sizes: []sizeOption{
			{Type: "meteor-large", W: 120, H: 120, Points: 30, Weight: 0.3},
			{Type: "meteor-medium", W: 90, H: 90, Points: 20, Weight: 0.4},
			{Type: "meteor-small", W: 60, H: 60, Points: 10, Weight: 0.3},
		},
		bounds:  Bounds{MinX: 0.05, MaxX: 0.95, MinY: 0.0, MaxY: 0.05},
		minDist: 100,
		fallMin: 0.08,
		fallMax: 0.18,
	}}
}

func newFireworksFinale() MiniGame {
	return &gallery{cfg: galleryConfig{
		cadence:     Cadence{Interval: 400 * time.Millisecond, Floor: 400 * time.Millisecond, MaxActive: 10},
		life:        Lifecycle{Rise: time.Second, Expose: 1500 * time.Millisecond, Retreat: 300 * time.Millisecond},
		sizes:       []sizeOption{{Type: "firework", W: 60, H: 60, Points: 50, Weight: 1}},
		bounds:      Bounds{MinX: 0.1, MaxX: 0.9, MinY: 0.15, MaxY: 0.6},
		minDist:     80,
		risingBonus: 50,
	}}
}

func (g *gallery) Begin(s *Stage) {
	g.spawn(s)
}

func (g *gallery) Advance(s *Stage, dt time.Duration) {
	for _, t := range s.Targets.All() {
		g.cfg.life.Step(s, t)
	}
	if g.cfg.cadence.Due(dt, s.Targets.Len()) {
		g.spawn(s)
	}
}

func (g *gallery) spawn(s *Stage) {
	opt := pickSize(s, g.cfg.sizes)
	x, y := s.Place(g.cfg.bounds, g.cfg.minDist)
	t := &Target{Type: opt.Type, X: x, Y: y, Points: opt.Points}
	t.PixelSize(opt.W, opt.H)
	if g.cfg.fallMax > 0 {
		t.VY = g.cfg.fallMin + s.Rand().Float64()*(g.cfg.fallMax-g.cfg.fallMin)
	}
	g.cfg.life.Enter(s, t)
	s.Spawn(t)
}

func (g *gallery) ResolveHit(_ *Stage, t *Target, _ Shot) Outcome {
	pts := t.Points
	if t.State == StateRising {
		pts += g.cfg.risingBonus
	}
	return Outcome{Correct: true, Scored: true, Points: pts, Consume: true}
}

func pickSize(s *Stage, opts []sizeOption) sizeOption {
	total := 0.0
	for _, o := range opts {
		total += o.Weight
	}
	roll := s.Rand().Float64() * total
	for _, o := range opts {
		if roll < o.Weight {
			return o
		}
		roll -= o.Weight
	}
	return opts[len(opts)-1]
}
