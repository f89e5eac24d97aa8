package game

import (
	"strconv"
	"strings"
	"time"
)

// numberSequence 按 1..16 的顺序射击数字方块，打错不计分，方块保留
type numberSequence struct {
	size int
	next int
}

const numberScore = 10

func newNumberSequence() MiniGame {
	return &numberSequence{size: 16}
}

func (g *numberSequence) Begin(s *Stage) {
	g.deal(s)
}

func (g *numberSequence) Advance(*Stage, time.Duration) {}

// deal 打乱数字铺满 4 列网格
func (g *numberSequence) deal(s *Stage) {
	g.next = 1
	cells := grid(g.size, 4, 360, 220, 1200, 720)
	order := s.Rand().Perm(g.size)
	for i, c := range cells {
		n := order[i] + 1
		t := &Target{Type: "number", Label: strconv.Itoa(n), Secret: strconv.Itoa(n), X: c[0], Y: c[1], Points: numberScore}
		t.PixelSize(120, 120)
		s.Spawn(t)
	}
	s.Announce(Cue{Kind: "next-number", Text: "1"})
}

func (g *numberSequence) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	if t.Secret != strconv.Itoa(g.next) {
		return Outcome{}
	}
	g.next++
	out := Outcome{Correct: true, Scored: true, Points: t.Points, Consume: true}
	if g.next > g.size {
		// 整盘完成后重新铺一盘；当前目标由 Stage 移除
		s.Retire(t, ReasonMatched)
		g.deal(s)
		out.Consume = false
		return out
	}
	s.Announce(Cue{Kind: "next-number", Text: strconv.Itoa(g.next)})
	return out
}

// 拼写关卡的单词分级，轮次越往后越长
var spellingTiers = [][]string{
	{"CAT", "DOG", "SUN", "HAT", "BOX", "CUP", "PIG", "RED"},
	{"FISH", "BIRD", "TREE", "STAR", "MOON", "GAME", "JUMP", "FROG"},
	{"APPLE", "HOUSE", "TIGER", "LIGHT", "WATER", "SHOOT", "PIZZA", "ROBOT"},
}

const (
	spellingTiles       = 10
	spellingLetterScore = 20
)

// keyboardSpelling 按顺序射击字母拼出单词，拼完一个单词才计入配额
type keyboardSpelling struct {
	word  string
	pos   int
	round int
}

func newKeyboardSpelling() MiniGame {
	return &keyboardSpelling{}
}

func (g *keyboardSpelling) Begin(s *Stage) {
	g.deal(s)
}

func (g *keyboardSpelling) Advance(*Stage, time.Duration) {}

func (g *keyboardSpelling) deal(s *Stage) {
	tier := spellingTiers[min(g.round, len(spellingTiers)-1)]
	g.word = tier[s.Rand().Intn(len(tier))]
	g.pos = 0

	letters := strings.Split(g.word, "")
	for len(letters) < spellingTiles {
		letters = append(letters, string(rune('A'+s.Rand().Intn(26))))
	}
	s.Rand().Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })

	cells := grid(len(letters), 5, 260, 380, 1400, 440)
	for i, c := range cells {
		t := &Target{Type: "letter", Label: letters[i], X: c[0], Y: c[1], Points: spellingLetterScore}
		t.PixelSize(110, 110)
		s.Spawn(t)
	}
	s.Announce(Cue{Kind: "word", Text: g.word})
}

func (g *keyboardSpelling) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	if t.Label != string(g.word[g.pos]) {
		return Outcome{Points: PointsWrongTarget}
	}
	g.pos++
	if g.pos < len(g.word) {
		s.Announce(Cue{Kind: "spelled", Text: g.word[:g.pos]})
		return Outcome{Correct: true, Points: t.Points, Consume: true}
	}
	g.round++
	s.Retire(t, ReasonMatched)
	s.RetireAll(ReasonRoundOver, "letter")
	s.Announce(Cue{Kind: "word-complete", Text: g.word})
	g.deal(s)
	return Outcome{Correct: true, Scored: true, Points: t.Points}
}

const (
	recallPads       = 4
	recallShowBase   = time.Second
	recallShowPerPad = 600 * time.Millisecond
	recallStepScore  = 10
	recallWrongScore = -50
)

// sequenceRecall 先展示一串亮灯顺序（此时不可射击），再按顺序复现
type sequenceRecall struct {
	round    int
	sequence []int
	pos      int
	pads     []*Target
}

func newSequenceRecall() MiniGame {
	return &sequenceRecall{}
}

func (g *sequenceRecall) Begin(s *Stage) {
	cells := grid(recallPads, 2, 560, 240, 800, 640)
	for i, c := range cells {
		t := &Target{Type: "pad", Label: strconv.Itoa(i + 1), Secret: strconv.Itoa(i), X: c[0], Y: c[1], Points: recallStepScore}
		t.PixelSize(280, 240)
		g.pads = append(g.pads, s.Spawn(t))
	}
	g.show(s, true)
}

// show 展示序列；fresh=false 表示打错后重放同一序列
func (g *sequenceRecall) show(s *Stage, fresh bool) {
	if fresh {
		n := 3 + g.round/2
		g.sequence = g.sequence[:0]
		for i := 0; i < n; i++ {
			g.sequence = append(g.sequence, s.Rand().Intn(recallPads))
		}
	}
	g.pos = 0

	items := make([]string, len(g.sequence))
	for i, p := range g.sequence {
		items[i] = strconv.Itoa(p + 1)
	}
	deadline := s.Elapsed + recallShowBase + time.Duration(len(g.sequence))*recallShowPerPad
	for _, pad := range g.pads {
		pad.State = StateHidden
		pad.Deadline = deadline
	}
	s.Announce(Cue{Kind: "sequence", Items: items})
}

func (g *sequenceRecall) Advance(s *Stage, _ time.Duration) {
	for _, pad := range g.pads {
		if pad.State == StateHidden && s.Elapsed >= pad.Deadline {
			pad.State = StateExposed
		}
	}
}

func (g *sequenceRecall) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	if t.Secret != strconv.Itoa(g.sequence[g.pos]) {
		s.Announce(Cue{Kind: "sequence-wrong"})
		g.show(s, false)
		return Outcome{Points: recallWrongScore}
	}
	g.pos++
	if g.pos < len(g.sequence) {
		return Outcome{Correct: true, Points: t.Points}
	}
	g.round++
	s.Announce(Cue{Kind: "sequence-complete"})
	g.show(s, true)
	return Outcome{Correct: true, Scored: true, Points: t.Points}
}
