package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 关卡 Tick 次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
	MessagesAccepted  int64 // 进入房间协程的消息数
	ChanFullDiscarded int64 // 因收件箱满被丢弃的消息数
	RateLimited       int64 // 因射击限流被丢弃的 shoot
	Shots             int64 // 被裁决的射击
	Hits              int64 // 正确命中
	Penalties         int64 // 打错目标
	Misses            int64 // 空枪
	StagesPlayed      int64
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.MessagesAccepted, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncRateLimited()       { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncStagesPlayed()      { atomic.AddInt64(&m.StagesPlayed, 1) }

// AddShot 按裁决结果归类一次射击
func (m *RoomMetrics) AddShot(hit, penalty bool) {
	atomic.AddInt64(&m.Shots, 1)
	switch {
	case hit:
		atomic.AddInt64(&m.Hits, 1)
	case penalty:
		atomic.AddInt64(&m.Penalties, 1)
	default:
		atomic.AddInt64(&m.Misses, 1)
	}
}

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"avg_tick_ms":         avgMs,
		"messages_accepted":   atomic.LoadInt64(&m.MessagesAccepted),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"shots":               atomic.LoadInt64(&m.Shots),
		"hits":                atomic.LoadInt64(&m.Hits),
		"penalties":           atomic.LoadInt64(&m.Penalties),
		"misses":              atomic.LoadInt64(&m.Misses),
		"stages_played":       atomic.LoadInt64(&m.StagesPlayed),
	}
}
