package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// 参考分辨率：坐标统一归一化到 [0,1]，像素尺寸按此换算
const (
	ReferenceWidth  = 1920.0
	ReferenceHeight = 1080.0
)

// EntityState 目标生命周期，由关卡 Tick 推进（不使用回调定时器）
type EntityState int

const (
	StateExposed EntityState = iota // 零值：静态目标一直处于可射击状态
	StateHidden
	StateRising
	StateRetreating
)

func (s EntityState) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateRising:
		return "rising"
	case StateRetreating:
		return "retreating"
	default:
		return "exposed"
	}
}

// Target 可射击实体
type Target struct {
	ID     string
	Type   string
	Label  string // 客户端可见文字（数字、字母、答案）
	Secret string // 仅服务端使用（配对 id、宝箱类型等），不广播

	X, Y          float64 // 中心点，归一化
	Width, Height float64 // 归一化尺寸
	VX, VY        float64 // 每秒位移（归一化），移动靶使用

	Active bool
	Owner  PlayerNumber
	Points int

	State    EntityState
	Deadline time.Duration // 关卡内已用时间，到期后推进 State
	Born     time.Duration
}

// PixelSize 以参考分辨率像素设置尺寸
func (t *Target) PixelSize(w, h float64) {
	t.Width = w / ReferenceWidth
	t.Height = h / ReferenceHeight
}

// Contains 以中心点为准的轴对齐包围盒
func (t *Target) Contains(x, y float64) bool {
	hw, hh := t.Width/2, t.Height/2
	return x >= t.X-hw && x <= t.X+hw && y >= t.Y-hh && y <= t.Y+hh
}

// Hittable 已失活、隐藏或退场中的目标不能被命中
func (t *Target) Hittable() bool {
	return t.Active && (t.State == StateExposed || t.State == StateRising)
}

// NewTargetID 时间戳 + 随机后缀，全局唯一
func NewTargetID(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", kind, now.UnixMilli(), uuid.NewString())
}

// TargetSet 当前关卡的活动目标，保持插入顺序（命中判定先到先得）
type TargetSet struct {
	list []*Target
	byID map[string]*Target
}

func NewTargetSet() *TargetSet {
	return &TargetSet{byID: make(map[string]*Target)}
}

// Add 加入目标并标记为活动
func (s *TargetSet) Add(t *Target) {
	if _, dup := s.byID[t.ID]; dup {
		return
	}
	t.Active = true
	s.list = append(s.list, t)
	s.byID[t.ID] = t
}

// Get 按 id 查找活动目标
func (s *TargetSet) Get(id string) (*Target, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// At 返回第一个包含该点的可命中目标
func (s *TargetSet) At(x, y float64) *Target {
	for _, t := range s.list {
		if t.Hittable() && t.Contains(x, y) {
			return t
		}
	}
	return nil
}

// Remove 失活并移出集合；失活后的目标永远不会再被匹配
func (s *TargetSet) Remove(t *Target) bool {
	t.Active = false
	if _, ok := s.byID[t.ID]; !ok {
		return false
	}
	delete(s.byID, t.ID)
	for i, cur := range s.list {
		if cur == t {
			s.list = append(s.list[:i], s.list[i+1:]...)
			break
		}
	}
	return true
}

// Clear 清空（换关时）
func (s *TargetSet) Clear() {
	for _, t := range s.list {
		t.Active = false
	}
	s.list = nil
	s.byID = make(map[string]*Target)
}

// Len 活动目标数
func (s *TargetSet) Len() int {
	return len(s.list)
}

// CountType 指定类型的活动目标数
func (s *TargetSet) CountType(types ...string) int {
	n := 0
	for _, t := range s.list {
		for _, typ := range types {
			if t.Type == typ {
				n++
				break
			}
		}
	}
	return n
}

// All 活动目标副本，调用方可在遍历中删除
func (s *TargetSet) All() []*Target {
	out := make([]*Target, len(s.list))
	copy(out, s.list)
	return out
}
