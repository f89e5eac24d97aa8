package game

import (
	"fmt"
	"strconv"
	"time"
)

const (
	mathOptions      = 4
	mathWrongPenalty = -50
	mathRoundsPerLvl = 3
)

// mathProblems 出一道算术题，射击正确答案；难度每 3 题上升一级
type mathProblems struct {
	answered int
}

func newMathProblems() MiniGame {
	return &mathProblems{}
}

func (g *mathProblems) difficulty() int {
	return 1 + g.answered/mathRoundsPerLvl
}

func (g *mathProblems) Begin(s *Stage) {
	g.deal(s)
}

func (g *mathProblems) Advance(*Stage, time.Duration) {}

// question 生成题目，减法保证结果非负，除法保证整除
func (g *mathProblems) question(s *Stage) (string, int) {
	r := s.Rand()
	top := 5 + 5*g.difficulty()
	switch op := r.Intn(min(1+g.difficulty(), 4)); op {
	case 0:
		a, b := 1+r.Intn(top), 1+r.Intn(top)
		return fmt.Sprintf("%d + %d", a, b), a + b
	case 1:
		a, b := 1+r.Intn(top), 1+r.Intn(top)
		if b > a {
			a, b = b, a
		}
		return fmt.Sprintf("%d - %d", a, b), a - b
	case 2:
		a, b := 2+r.Intn(8), 2+r.Intn(8)
		return fmt.Sprintf("%d × %d", a, b), a * b
	default:
		b, q := 2+r.Intn(8), 2+r.Intn(8)
		return fmt.Sprintf("%d ÷ %d", b*q, b), q
	}
}

func (g *mathProblems) deal(s *Stage) {
	text, answer := g.question(s)

	seen := map[int]bool{answer: true}
	options := []int{answer}
	for len(options) < mathOptions {
		d := s.Rand().Intn(10) - 5
		if d == 0 {
			continue
		}
		v := answer + d
		if v < 0 || seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, v)
	}
	s.Rand().Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	points := PointsTargetHit + 10*g.difficulty()
	cells := grid(mathOptions, mathOptions, 260, 560, 1400, 260)
	for i, c := range cells {
		t := &Target{Type: "answer", Label: strconv.Itoa(options[i]), X: c[0], Y: c[1], Points: points}
		if options[i] == answer {
			t.Secret = "correct"
		}
		t.PixelSize(200, 160)
		s.Spawn(t)
	}
	s.Announce(Cue{Kind: "question", Text: text})
}

func (g *mathProblems) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	if t.Secret != "correct" {
		return Outcome{Points: mathWrongPenalty, Consume: true}
	}
	g.answered++
	s.Retire(t, ReasonMatched)
	s.RetireAll(ReasonRoundOver, "answer")
	g.deal(s)
	return Outcome{Correct: true, Scored: true, Points: t.Points}
}

var shapeKinds = []string{"circle", "square", "triangle", "star", "diamond", "hexagon", "heart", "cross"}

var shapeColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

const shapeOptions = 6

// shapeMatching 展示一个目标图形，6 个选项中恰好一个形状和颜色都相同
type shapeMatching struct{}

func newShapeMatching() MiniGame {
	return &shapeMatching{}
}

func (g *shapeMatching) Begin(s *Stage) {
	g.deal(s)
}

func (g *shapeMatching) Advance(*Stage, time.Duration) {}

func (g *shapeMatching) deal(s *Stage) {
	r := s.Rand()
	label := func() string {
		return shapeColors[r.Intn(len(shapeColors))] + " " + shapeKinds[r.Intn(len(shapeKinds))]
	}
	want := label()

	options := []string{want}
	seen := map[string]bool{want: true}
	for len(options) < shapeOptions {
		l := label()
		if seen[l] {
			continue
		}
		seen[l] = true
		options = append(options, l)
	}
	r.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	cells := grid(shapeOptions, 3, 360, 420, 1200, 560)
	for i, c := range cells {
		t := &Target{Type: "shape", Label: options[i], X: c[0], Y: c[1], Points: 25}
		if options[i] == want {
			t.Secret = "match"
		}
		t.PixelSize(160, 160)
		s.Spawn(t)
	}
	s.Announce(Cue{Kind: "shape", Text: want})
}

func (g *shapeMatching) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	if t.Secret != "match" {
		return Outcome{Points: PointsWrongTarget, Consume: true}
	}
	s.Retire(t, ReasonMatched)
	s.RetireAll(ReasonRoundOver, "shape")
	g.deal(s)
	return Outcome{Correct: true, Scored: true, Points: t.Points}
}
