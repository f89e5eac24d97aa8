package game

import (
	"math"
	"time"
)

// Bounds 归一化的出生区域
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// PlayField 默认出生区域：避开顶部 HUD 与底部计分栏
var PlayField = Bounds{MinX: 0.1, MaxX: 0.9, MinY: 0.2, MaxY: 0.8}

const placeAttempts = 20

// Place 在区域内找一个与现有目标保持 minDist 像素距离的位置，
// 多次尝试失败后随便给一个位置。
func (s *Stage) Place(b Bounds, minDist float64) (x, y float64) {
	for i := 0; i < placeAttempts; i++ {
		x, y = s.randomIn(b)
		if s.clearOf(x, y, minDist) {
			return x, y
		}
	}
	return s.randomIn(b)
}

func (s *Stage) randomIn(b Bounds) (float64, float64) {
	return b.MinX + s.rng.Float64()*(b.MaxX-b.MinX), b.MinY + s.rng.Float64()*(b.MaxY-b.MinY)
}

func (s *Stage) clearOf(x, y, minDist float64) bool {
	for _, t := range s.Targets.All() {
		if pixelDistance(t.X, t.Y, x, y) < minDist {
			return false
		}
	}
	return true
}

// pixelDistance 归一化坐标换算到参考分辨率后的距离
func pixelDistance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot((x1-x2)*ReferenceWidth, (y1-y2)*ReferenceHeight)
}

// Cadence 生成节奏：间隔逐步缩短到下限，同时限制最大同屏数量
type Cadence struct {
	Interval  time.Duration
	Floor     time.Duration
	Step      time.Duration
	MaxActive int

	acc time.Duration
}

// Due 累计时间，到点且未满员时返回 true 并缩短下一次间隔
func (c *Cadence) Due(dt time.Duration, active int) bool {
	c.acc += dt
	if c.acc < c.Interval || active >= c.MaxActive {
		return false
	}
	c.acc = 0
	if c.Step > 0 {
		c.Interval = max(c.Floor, c.Interval-c.Step)
	}
	return true
}

// Lifecycle 弹出类目标的 隐藏→升起→暴露→退场 时间表。
// Expose 为 0 表示目标一直停留直到被击中。
type Lifecycle struct {
	Rise    time.Duration
	Expose  time.Duration
	Jitter  time.Duration
	Retreat time.Duration
}

// Enter 目标出生时设置初始状态与截止时间
func (l Lifecycle) Enter(s *Stage, t *Target) {
	if l.Rise > 0 {
		t.State = StateRising
		t.Deadline = s.Elapsed + l.Rise
		return
	}
	t.State = StateExposed
	t.Deadline = s.Elapsed + l.exposure(s)
}

// Step 到期则推进一次状态，退场结束后移除
func (l Lifecycle) Step(s *Stage, t *Target) {
	if l.Expose == 0 && t.State == StateExposed {
		return
	}
	if s.Elapsed < t.Deadline {
		return
	}
	switch t.State {
	case StateRising:
		t.State = StateExposed
		t.Deadline = s.Elapsed + l.exposure(s)
	case StateExposed:
		if l.Retreat == 0 {
			s.Retire(t, ReasonExpired)
			return
		}
		t.State = StateRetreating
		t.Deadline = s.Elapsed + l.Retreat
	case StateRetreating:
		s.Retire(t, ReasonExpired)
	}
}

func (l Lifecycle) exposure(s *Stage) time.Duration {
	if l.Jitter <= 0 {
		return l.Expose
	}
	return l.Expose + time.Duration(s.rng.Int63n(int64(l.Jitter)))
}

// grid 把 n 个格子排成 cols 列，返回每格中心（像素区域内）
func grid(n, cols int, left, top, width, height float64) [][2]float64 {
	rows := (n + cols - 1) / cols
	cw := width / float64(cols)
	ch := height / float64(rows)
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		col, row := i%cols, i/cols
		out[i] = [2]float64{
			(left + cw/2 + float64(col)*cw) / ReferenceWidth,
			(top + ch/2 + float64(row)*ch) / ReferenceHeight,
		}
	}
	return out
}
