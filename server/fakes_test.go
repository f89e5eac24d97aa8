package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConn 记录房间发给它的消息
type fakeConn struct {
	mu     sync.Mutex
	msgs   []Envelope
	closed bool
}

func (f *fakeConn) Send(env Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, env)
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) all(typ string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, m := range f.msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) last(t *testing.T, typ string) Envelope {
	t.Helper()
	got := f.all(typ)
	require.NotEmpty(t, got, "no %s message", typ)
	return got[len(got)-1]
}

func (f *fakeConn) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.Type
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

// fakeTicker 手动驱动的 Tick 源，Stop 通过 mock 记录
type fakeTicker struct {
	mock.Mock
	ch chan time.Time
	d  time.Duration
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.Called() }

type fakeTickers struct {
	mu   sync.Mutex
	made []*fakeTicker
}

func (f *fakeTickers) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1), d: d}
	t.On("Stop").Return()
	f.made = append(f.made, t)
	return t
}

func (f *fakeTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.made)
}

func (f *fakeTickers) latest() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.made) == 0 {
		return nil
	}
	return f.made[len(f.made)-1]
}

func testSettings() RoomSettings {
	return RoomSettings{TickInterval: 100 * time.Millisecond, SnapshotEvery: 10}
}

func newTestRoom(settings RoomSettings) (*Room, *fakeTickers) {
	tk := &fakeTickers{}
	return NewRoom("TEST", settings, tk, zap.NewNop().Sugar()), tk
}
