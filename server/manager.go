package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"pointblank/game"
)

// ErrRoomNotFound 房间码不存在或已回收
var ErrRoomNotFound = errors.New("room not found")

type managedRoom struct {
	room   *Room
	cancel context.CancelFunc
}

// RoomManager 管理多个房间的生命周期；由 main 显式创建并注入
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*managedRoom

	ctx         context.Context
	settings    RoomSettings
	idleTimeout time.Duration
	tickers     TickerFactory
	log         *zap.SugaredLogger
}

// NewRoomManager ctx 取消时所有房间随之退出
func NewRoomManager(ctx context.Context, cfg Config, tickers TickerFactory, log *zap.SugaredLogger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*managedRoom),
		ctx:   ctx,
		settings: RoomSettings{
			TickInterval:  cfg.TickInterval,
			ResultsDelay:  cfg.ResultsDelay,
			SnapshotEvery: cfg.SnapshotEvery,
		},
		idleTimeout: cfg.IdleTimeout,
		tickers:     tickers,
		log:         log,
	}
}

// CreateRoom 生成不与现存房间冲突的房间码，并启动房间协程
func (m *RoomManager) CreateRoom() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := game.NewRoomCode()
	for m.rooms[code] != nil {
		code = game.NewRoomCode()
	}
	r := NewRoom(code, m.settings, m.tickers, m.log)
	ctx, cancel := context.WithCancel(m.ctx)
	m.rooms[code] = &managedRoom{room: r, cancel: cancel}
	go r.Run(ctx)
	m.log.Infow("room created", "room", code, "rooms", len(m.rooms))
	return r
}

// Get 按房间码查找
func (m *RoomManager) Get(code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mr, ok := m.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return mr.room, nil
}

// Dispose 取消房间并等待其协程退出（Tick 已停止、连接已关闭）
func (m *RoomManager) Dispose(code string) error {
	m.mu.Lock()
	mr, ok := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}
	mr.cancel()
	<-mr.room.Done()
	return nil
}

// DisposeAll 关闭全部房间（进程退出时）
func (m *RoomManager) DisposeAll() {
	for _, code := range m.Rooms() {
		_ = m.Dispose(code)
	}
}

// Rooms 当前房间码（排序）
func (m *RoomManager) Rooms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.rooms))
	for code := range m.rooms {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// ReapIdle 回收无连接超过 idleTimeout 的房间，返回被回收的房间码
func (m *RoomManager) ReapIdle(now time.Time) []string {
	if m.idleTimeout <= 0 {
		return nil
	}
	m.mu.RLock()
	var idle []string
	for code, mr := range m.rooms {
		if mr.room.IdleFor(now) >= m.idleTimeout {
			idle = append(idle, code)
		}
	}
	m.mu.RUnlock()

	for _, code := range idle {
		if m.Dispose(code) == nil {
			m.log.Infow("idle room reaped", "room", code)
		}
	}
	return idle
}

// RunJanitor 周期回收空闲房间，ctx 取消后返回
func (m *RoomManager) RunJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			m.ReapIdle(now)
		}
	}
}
