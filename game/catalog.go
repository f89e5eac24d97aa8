package game

import "math"

// Category 小游戏类别
type Category string

const (
	CategorySpeed        Category = "speed"
	CategoryAccuracy     Category = "accuracy"
	CategorySimulation   Category = "simulation"
	CategoryIntelligence Category = "intelligence"
	CategoryMemory       Category = "memory"
	CategoryVisual       Category = "visual"
	CategorySpecial      Category = "special"
)

// StageDef 关卡静态配置，运行期不可变
type StageDef struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	BaseQuota    int      `json:"baseQuota"`
	BaseTime     int      `json:"baseTime"` // 秒
	Instructions string   `json:"instructions"`
}

// Mode 难度
type Mode string

const (
	ModeTraining Mode = "training"
	ModeBeginner Mode = "beginner"
	ModeExpert   Mode = "expert"
	ModeVeryHard Mode = "veryhard"
)

// DefaultMode 非法难度的回退值
const DefaultMode = ModeBeginner

// ModeConfig 难度参数
type ModeConfig struct {
	Name            string  `json:"name"`
	Stages          int     `json:"stages"`
	QuotaMultiplier float64 `json:"quotaMultiplier"`
	TimeMultiplier  float64 `json:"timeMultiplier"`
}

const (
	// InitialLives 新玩家初始生命
	InitialLives = 3
	// MaxLives 生命上限（只有奖励关能加命）
	MaxLives = 5
	// StagesPerGroup 每次可选关卡数
	StagesPerGroup = 4
	// ModeSelectSeconds 选难度阶段的展示倒计时
	ModeSelectSeconds = 20
)

// 计分表
const (
	PointsTargetHit      = 50
	PointsBullseyeCenter = 100
	PointsWrongTarget    = -25
	PointsBombHit        = -100
	PointsCivilianHit    = -100
	SpeedBonusPerSecond  = 10
)

// Modes 难度表
var Modes = map[Mode]ModeConfig{
	ModeTraining: {Name: "Training", Stages: 4, QuotaMultiplier: 0.5, TimeMultiplier: 1.5},
	ModeBeginner: {Name: "Beginner", Stages: 16, QuotaMultiplier: 1.0, TimeMultiplier: 1.0},
	ModeExpert:   {Name: "Expert", Stages: 16, QuotaMultiplier: 1.5, TimeMultiplier: 0.8},
	ModeVeryHard: {Name: "Very Hard", Stages: 16, QuotaMultiplier: 2.0, TimeMultiplier: 0.6},
}

// Stages 关卡目录，顺序即分组顺序
var Stages = []StageDef{
	// speed
	{ID: "color-target-blitz", Name: "Color Target Blitz", Category: CategorySpeed, BaseQuota: 20, BaseTime: 15, Instructions: "Shoot targets of YOUR color!"},
	{ID: "cuckoo-clock", Name: "Cuckoo Clock", Category: CategorySpeed, BaseQuota: 15, BaseTime: 12, Instructions: "Shoot the cuckoo birds!"},
	{ID: "leaf-shooting", Name: "Leaf Shooting", Category: CategorySpeed, BaseQuota: 25, BaseTime: 15, Instructions: "Shoot the falling leaves!"},
	{ID: "skeleton-coffins", Name: "Graveyard Shift", Category: CategorySpeed, BaseQuota: 12, BaseTime: 15, Instructions: "Shoot the rising skeletons!"},
	{ID: "popup-animals", Name: "Whack-a-Critter", Category: CategorySpeed, BaseQuota: 15, BaseTime: 12, Instructions: "Shoot the fuzzy critters!"},
	// accuracy
	{ID: "bullseye-targets", Name: "Bullseye Targets", Category: CategoryAccuracy, BaseQuota: 8, BaseTime: 20, Instructions: "Hit the bullseye for max points!"},
	{ID: "single-bullet", Name: "Single Bullet", Category: CategoryAccuracy, BaseQuota: 5, BaseTime: 30, Instructions: "ONE shot per target. Don't miss!"},
	{ID: "target-range", Name: "Target Range", Category: CategoryAccuracy, BaseQuota: 15, BaseTime: 20, Instructions: "Hit the moving targets!"},
	// simulation
	{ID: "cardboard-cop", Name: "Cardboard Cop", Category: CategorySimulation, BaseQuota: 10, BaseTime: 15, Instructions: "Shoot ROBBERS! Avoid civilians!"},
	{ID: "wild-west", Name: "Wild West", Category: CategorySimulation, BaseQuota: 12, BaseTime: 15, Instructions: "Shoot BANDITS! Spare townspeople!"},
	// intelligence
	{ID: "number-sequence", Name: "Number Sequence", Category: CategoryIntelligence, BaseQuota: 16, BaseTime: 25, Instructions: "Shoot 1-16 in order!"},
	{ID: "math-problems", Name: "Math Attack", Category: CategoryIntelligence, BaseQuota: 5, BaseTime: 25, Instructions: "Shoot the correct answer!"},
	{ID: "keyboard-spelling", Name: "Spell It Out", Category: CategoryIntelligence, BaseQuota: 3, BaseTime: 30, Instructions: "Shoot letters to spell words!"},
	// memory
	{ID: "card-matching", Name: "Card Matching", Category: CategoryMemory, BaseQuota: 6, BaseTime: 30, Instructions: "Match the pairs!"},
	{ID: "sequence-recall", Name: "Sequence Recall", Category: CategoryMemory, BaseQuota: 3, BaseTime: 40, Instructions: "Watch and repeat the sequence!"},
	// visual
	{ID: "shape-matching", Name: "Shape Match", Category: CategoryVisual, BaseQuota: 8, BaseTime: 20, Instructions: "Shoot the matching shape!"},
	// special
	{ID: "meteor-strike", Name: "Meteor Strike", Category: CategorySpecial, BaseQuota: 15, BaseTime: 20, Instructions: "Save Earth from meteors!"},
	{ID: "treasure-chest", Name: "Treasure Hunt", Category: CategorySpecial, BaseQuota: 10, BaseTime: 15, Instructions: "Shoot chests for rewards!"},
	{ID: "fireworks-finale", Name: "Fireworks Finale", Category: CategorySpecial, BaseQuota: 20, BaseTime: 20, Instructions: "Shoot fireworks for bonus points!"},
}

// LookupMode 查询难度；ok=false 时返回默认难度，调用方负责记录日志
func LookupMode(m Mode) (ModeConfig, bool) {
	if cfg, ok := Modes[m]; ok {
		return cfg, true
	}
	return Modes[DefaultMode], false
}

// LookupStage 按 id 查询关卡
func LookupStage(id string) (StageDef, bool) {
	for _, s := range Stages {
		if s.ID == id {
			return s, true
		}
	}
	return StageDef{}, false
}

// Scale 结合难度得出实际配额与时长（秒）
func Scale(def StageDef, mode ModeConfig) (quota int, seconds int) {
	quota = int(math.Ceil(float64(def.BaseQuota) * mode.QuotaMultiplier))
	seconds = int(math.Ceil(float64(def.BaseTime) * mode.TimeMultiplier))
	return quota, seconds
}

// AvailableStages 计算当前可选的关卡组（目录顺序，每组 4 个，跳过已完成）。
// 当前组全部完成时顺延到后续未完成的关卡，避免卡死在空列表。
func AvailableStages(completed []string) []string {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	groupStart := len(completed) / StagesPerGroup * StagesPerGroup
	out := make([]string, 0, StagesPerGroup)
	for i := groupStart; i < groupStart+StagesPerGroup && i < len(Stages); i++ {
		if !done[Stages[i].ID] {
			out = append(out, Stages[i].ID)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, s := range Stages {
		if len(out) == StagesPerGroup {
			break
		}
		if !done[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}
