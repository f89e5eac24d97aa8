package game

import "time"

// DefaultStageID 未知关卡的回退
const DefaultStageID = "color-target-blitz"

// MiniGame 每个关卡的规则实现。房间只通过这三个入口驱动它，
// 具体的生成节奏、正确性判断与计分都封装在实现内部。
type MiniGame interface {
	// Begin 关卡开始时的初始布局
	Begin(s *Stage)
	// Advance 每个 Tick 调用：生成、生命周期、回合切换
	Advance(s *Stage, dt time.Duration)
	// ResolveHit 裁决一次命中，t 是命中判定找到的第一个目标
	ResolveHit(s *Stage, t *Target, shot Shot) Outcome
}

// MissResolver 需要感知空枪的小游戏实现它（例如一发定胜负）
type MissResolver interface {
	ResolveMiss(s *Stage, shot Shot)
}

var miniGames = map[string]func() MiniGame{
	"color-target-blitz": newColorBlitz,
	"cuckoo-clock":       newCuckooClock,
	"leaf-shooting":      newLeafShooting,
	"skeleton-coffins":   newSkeletonCoffins,
	"popup-animals":      newPopupAnimals,
	"bullseye-targets":   newBullseye,
	"single-bullet":      newSingleBullet,
	"target-range":       newTargetRange,
	"cardboard-cop":      newCardboardCop,
	"wild-west":          newWildWest,
	"number-sequence":    newNumberSequence,
	"math-problems":      newMathProblems,
	"keyboard-spelling":  newKeyboardSpelling,
	"card-matching":      newCardMatching,
	"sequence-recall":    newSequenceRecall,
	"shape-matching":     newShapeMatching,
	"meteor-strike":      newMeteorStrike,
	"treasure-chest":     newTreasureChest,
	"fireworks-finale":   newFireworksFinale,
}

// NewMiniGame 按关卡 id 创建规则实例
func NewMiniGame(id string) (MiniGame, bool) {
	ctor, ok := miniGames[id]
	if !ok {
		return nil, false
	}
	return ctor(), true
}
