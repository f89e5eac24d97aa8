package server

import (
	"time"

	"pointblank/game"
)

// DefaultTickInterval 关卡 Tick 周期（10 Hz）
const DefaultTickInterval = 100 * time.Millisecond

// Ticker 周期信号；Stop 之后不再产生 Tick
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory 房间通过它创建 Tick 源，测试中替换为可手动驱动的实现
type TickerFactory interface {
	NewTicker(d time.Duration) Ticker
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// SystemTickers 基于 time.Ticker 的默认实现
type SystemTickers struct{}

func (SystemTickers) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// startTicker 进入 playing 或结算倒计时时启动；已有 Tick 源则复用。
// 周期在创建时固定，之后每次 Tick 都按这个周期推进时钟。
func (r *Room) startTicker() {
	if r.ticker != nil {
		return
	}
	r.tickDt = r.settings.TickInterval
	r.ticker = r.tickers.NewTicker(r.tickDt)
}

// stopTicker 离开计时阶段或房间销毁时调用，可重复调用
func (r *Room) stopTicker() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	r.ticker = nil
}

// tickC 没有 Tick 源时返回 nil 通道，select 永远不会选中
func (r *Room) tickC() <-chan time.Time {
	if r.ticker == nil {
		return nil
	}
	return r.ticker.C()
}

// onTick 核心循环：推进关卡时钟 → 小游戏生成 → 广播
func (r *Room) onTick() {
	start := time.Now()
	switch r.phase.Current() {
	case game.PhasePlaying:
		r.tickStage()
	case game.PhaseResults:
		r.tickResults()
	default:
		r.stopTicker()
		return
	}
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}
