package game

import (
	"math"
	"time"
)

// 靶环：距离占半径的比例 → 分数
var ringTable = []struct {
	frac   float64
	points int
}{
	{0.2, PointsBullseyeCenter},
	{0.36, 80},
	{0.52, 60},
	{0.68, 40},
	{0.84, 30},
	{1.0, 20},
}

// ringPoints 按命中点到圆心的距离计分，包围盒角落（圆外）为 0
func ringPoints(t *Target, x, y float64) int {
	r := t.Width * ReferenceWidth / 2
	if r <= 0 {
		return 0
	}
	frac := pixelDistance(t.X, t.Y, x, y) / r
	for _, ring := range ringTable {
		if frac <= ring.frac {
			return ring.points
		}
	}
	return 0
}

// bullseye 靶心挑战，约 30% 的靶子会左右移动
type bullseye struct {
	cadence Cadence
}

func newBullseye() MiniGame {
	return &bullseye{cadence: Cadence{Interval: 1500 * time.Millisecond, Floor: time.Second, Step: 30 * time.Millisecond, MaxActive: 4}}
}

func (g *bullseye) Begin(s *Stage) {
	g.spawn(s)
}

func (g *bullseye) Advance(s *Stage, dt time.Duration) {
	if g.cadence.Due(dt, s.Targets.Len()) {
		g.spawn(s)
	}
}

func (g *bullseye) spawn(s *Stage) {
	x, y := s.Place(Bounds{MinX: 0.1, MaxX: 0.9, MinY: 0.15, MaxY: 0.85}, 120)
	t := &Target{Type: "bullseye", X: x, Y: y, Points: PointsBullseyeCenter}
	t.PixelSize(100, 100)
	if s.Rand().Float64() > 0.7 {
		t.VX = randomVelocity(s, 0.03, 0.08)
	}
	s.Spawn(t)
}

func (g *bullseye) ResolveHit(_ *Stage, t *Target, shot Shot) Outcome {
	pts := ringPoints(t, shot.X, shot.Y)
	if pts == 0 {
		return Outcome{Ignored: true}
	}
	return Outcome{Correct: true, Scored: true, Points: pts, Consume: true}
}

// singleBullet 同屏只有一个靶，每个靶只能开一枪；打空或打到靶环外都算失败
type singleBullet struct {
	current  *Target
	nextAt   time.Duration
	pause    time.Duration
	attempts int
}

func newSingleBullet() MiniGame {
	return &singleBullet{pause: 500 * time.Millisecond}
}

func (g *singleBullet) Begin(s *Stage) {
	g.spawn(s)
}

func (g *singleBullet) Advance(s *Stage, _ time.Duration) {
	if g.current == nil && s.Elapsed >= g.nextAt {
		g.spawn(s)
	}
}

func (g *singleBullet) spawn(s *Stage) {
	x, y := s.Place(Bounds{MinX: 0.2, MaxX: 0.8, MinY: 0.25, MaxY: 0.75}, 0)
	t := &Target{Type: "single-bullet", X: x, Y: y, Points: PointsBullseyeCenter}
	t.PixelSize(100, 100)
	g.current = s.Spawn(t)
	g.attempts++
}

func (g *singleBullet) roundOver(s *Stage) {
	g.current = nil
	g.nextAt = s.Elapsed + g.pause
}

func (g *singleBullet) ResolveHit(s *Stage, t *Target, shot Shot) Outcome {
	pts := ringPoints(t, shot.X, shot.Y)
	g.roundOver(s)
	if pts == 0 {
		s.Announce(Cue{Kind: "round-failed", TargetID: t.ID})
		return Outcome{Consume: true}
	}
	return Outcome{Correct: true, Scored: true, Points: pts, Consume: true}
}

func (g *singleBullet) ResolveMiss(s *Stage, _ Shot) {
	if g.current == nil {
		return
	}
	t := g.current
	g.roundOver(s)
	s.Retire(t, ReasonMissed)
	s.Announce(Cue{Kind: "round-failed", TargetID: t.ID})
}

// targetRange 移动靶：尺寸越小越难，越早打中速度奖励越高
type targetRange struct {
	cadence Cadence
	life    Lifecycle
}

func newTargetRange() MiniGame {
	return &targetRange{
		cadence: Cadence{Interval: 1200 * time.Millisecond, Floor: 600 * time.Millisecond, Step: 30 * time.Millisecond, MaxActive: 8},
		life:    Lifecycle{Expose: 6 * time.Second, Retreat: 300 * time.Millisecond},
	}
}

func (g *targetRange) Begin(s *Stage) {
	g.spawn(s)
}

func (g *targetRange) Advance(s *Stage, dt time.Duration) {
	for _, t := range s.Targets.All() {
		g.life.Step(s, t)
	}
	if g.cadence.Due(dt, s.Targets.Len()) {
		g.spawn(s)
	}
}

func (g *targetRange) spawn(s *Stage) {
	scale := 0.6 + s.Rand().Float64()*0.6
	x, y := s.Place(Bounds{MinX: 0.15, MaxX: 0.85, MinY: 0.2, MaxY: 0.75}, 100)
	t := &Target{Type: "range-target", X: x, Y: y, Points: int(math.Round(50 / scale))}
	t.PixelSize(100*scale, 100*scale)
	t.VX = randomVelocity(s, 0.05, 0.15)
	g.life.Enter(s, t)
	s.Spawn(t)
}

func (g *targetRange) ResolveHit(s *Stage, t *Target, shot Shot) Outcome {
	pts := ringPoints(t, shot.X, shot.Y)
	if pts == 0 {
		return Outcome{Ignored: true}
	}
	alive := (s.Elapsed - t.Born).Seconds()
	bonus := max(0, int(math.Floor(3-alive))) * SpeedBonusPerSecond
	return Outcome{Correct: true, Scored: true, Points: pts + bonus, Consume: true}
}

// randomVelocity 随机方向的水平速度
func randomVelocity(s *Stage, lo, hi float64) float64 {
	v := lo + s.Rand().Float64()*(hi-lo)
	if s.Rand().Intn(2) == 0 {
		v = -v
	}
	return v
}
