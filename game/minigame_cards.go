package game

import (
	"strconv"
	"time"
)

const (
	cardPairs    = 6
	cardFlipBack = time.Second
	cardPairBase = 50
)

var cardFaces = []string{"apple", "star", "moon", "heart", "bell", "anchor", "crown", "key"}

// cardMatching 翻牌配对。翻开的牌不可再射击；两张不同则 1 秒后盖回
type cardMatching struct {
	first, second *Target
	flipAt        time.Duration
}

func newCardMatching() MiniGame {
	return &cardMatching{}
}

func (g *cardMatching) Begin(s *Stage) {
	g.deal(s)
}

func (g *cardMatching) deal(s *Stage) {
	faces := s.Rand().Perm(len(cardFaces))[:cardPairs]
	deck := make([]int, 0, 2*cardPairs)
	for _, f := range faces {
		deck = append(deck, f, f)
	}
	s.Rand().Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	cells := grid(len(deck), 4, 360, 200, 1200, 780)
	for i, c := range cells {
		t := &Target{Type: "card", Label: strconv.Itoa(i + 1), Secret: cardFaces[deck[i]], X: c[0], Y: c[1], Points: cardPairBase}
		t.PixelSize(180, 220)
		s.Spawn(t)
	}
}

func (g *cardMatching) Advance(s *Stage, _ time.Duration) {
	if g.second == nil || s.Elapsed < g.flipAt {
		return
	}
	for _, c := range []*Target{g.first, g.second} {
		c.State = StateExposed
		s.Announce(Cue{Kind: "conceal", TargetID: c.ID})
	}
	g.first, g.second = nil, nil
}

func (g *cardMatching) ResolveHit(s *Stage, t *Target, _ Shot) Outcome {
	// 等待盖回期间不接受第三张
	if g.second != nil {
		return Outcome{Ignored: true}
	}
	t.State = StateHidden
	s.Announce(Cue{Kind: "reveal", Text: t.Secret, TargetID: t.ID})

	if g.first == nil {
		g.first = t
		return Outcome{Correct: true}
	}
	if g.first.Secret != t.Secret {
		g.second = t
		g.flipAt = s.Elapsed + cardFlipBack
		return Outcome{Correct: true}
	}

	first := g.first
	g.first = nil
	s.Retire(first, ReasonMatched)
	s.Retire(t, ReasonMatched)
	if s.Targets.CountType("card") == 0 {
		g.deal(s)
	}
	return Outcome{Correct: true, Scored: true, Points: t.Points}
}
