package game

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrRoomFull 四个槽位已全部占用
var ErrRoomFull = errors.New("Room is full")

// Player 房间内的玩家（手机控制器）
type Player struct {
	ID        string       `json:"id"`
	Number    PlayerNumber `json:"playerNumber"`
	Name      string       `json:"name"`
	AimX      float64      `json:"aimX"`
	AimY      float64      `json:"aimY"`
	Score     int          `json:"score"`
	Lives     int          `json:"lives"`
	Connected bool         `json:"connected"`
	Ready     bool         `json:"ready"`
}

// Registry 玩家槽位分配表。非并发安全，只在房间协程内使用。
type Registry struct {
	byConn map[string]*Player
	used   [MaxPlayers + 1]bool
}

func NewRegistry() *Registry {
	return &Registry{byConn: make(map[string]*Player)}
}

// Assign 分配最小的空闲编号
func (r *Registry) Assign(connID, name string) (*Player, error) {
	if p, ok := r.byConn[connID]; ok {
		return p, nil
	}
	var n PlayerNumber
	for i := PlayerNumber(1); i <= MaxPlayers; i++ {
		if !r.used[i] {
			n = i
			break
		}
	}
	if n == 0 {
		return nil, ErrRoomFull
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", n)
	}
	p := &Player{
		ID:        connID,
		Number:    n,
		Name:      name,
		Lives:     InitialLives,
		Connected: true,
	}
	r.used[n] = true
	r.byConn[connID] = p
	return p, nil
}

// Release 移除玩家并归还编号；未知 id 无操作
func (r *Registry) Release(connID string) (*Player, bool) {
	p, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(r.byConn, connID)
	r.used[p.Number] = false
	p.Connected = false
	return p, true
}

// Get 按连接 id 查找
func (r *Registry) Get(connID string) (*Player, bool) {
	p, ok := r.byConn[connID]
	return p, ok
}

// ByNumber 按编号查找
func (r *Registry) ByNumber(n PlayerNumber) (*Player, bool) {
	for _, p := range r.byConn {
		if p.Number == n {
			return p, true
		}
	}
	return nil, false
}

// SetAim 记录准星位置，裁剪到 [-1,1]
func (r *Registry) SetAim(connID string, x, y float64) bool {
	p, ok := r.byConn[connID]
	if !ok {
		return false
	}
	p.AimX = clamp(x, -1, 1)
	p.AimY = clamp(y, -1, 1)
	return true
}

// SetReady 标记准备；allReady 表示当前所有玩家都已准备
func (r *Registry) SetReady(connID string) (allReady bool, ok bool) {
	p, ok := r.byConn[connID]
	if !ok {
		return false, false
	}
	p.Ready = true
	for _, other := range r.byConn {
		if !other.Ready {
			return false, true
		}
	}
	return true, true
}

// ResetReady 新一轮选关前清除准备状态
func (r *Registry) ResetReady() {
	for _, p := range r.byConn {
		p.Ready = false
	}
}

// AddScore 分数无下限
func (r *Registry) AddScore(p *Player, delta int) {
	p.Score += delta
}

// AddLives 生命夹在 [0, MaxLives]，返回实际变化量
func (r *Registry) AddLives(p *Player, delta int) int {
	before := p.Lives
	p.Lives = min(max(p.Lives+delta, 0), MaxLives)
	return p.Lives - before
}

// Len 在线玩家数
func (r *Registry) Len() int {
	return len(r.byConn)
}

// List 按编号排序的玩家列表
func (r *Registry) List() []*Player {
	out := make([]*Player, 0, len(r.byConn))
	for _, p := range r.byConn {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Numbers 在线玩家编号（升序）
func (r *Registry) Numbers() []PlayerNumber {
	list := r.List()
	out := make([]PlayerNumber, len(list))
	for i, p := range list {
		out[i] = p.Number
	}
	return out
}

// AllOut 至少有一名玩家且所有人生命为 0
func (r *Registry) AllOut() bool {
	if len(r.byConn) == 0 {
		return false
	}
	for _, p := range r.byConn {
		if p.Lives > 0 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo + (hi-lo)/2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
