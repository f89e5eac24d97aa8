package server

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pointblank/game"
)

// ErrRoomClosed 房间协程已退出
var ErrRoomClosed = errors.New("room closed")

// RoomSettings 可在运行期通过管理接口调整的参数
type RoomSettings struct {
	TickInterval  time.Duration
	ResultsDelay  time.Duration
	SnapshotEvery int
}

// Room 房间：权威状态只在 Run 协程中读写（单写者），外部通过通道投递
type Room struct {
	Code string

	log      *zap.SugaredLogger
	metrics  *RoomMetrics
	tickers  TickerFactory
	settings RoomSettings

	joinChan  chan joinRequest
	leaveChan chan string
	inputChan chan inbound
	ctrlChan  chan func()
	done      chan struct{}

	// 以下字段只在房间协程内访问
	members   map[string]*member
	hostID    string
	registry  *game.Registry
	phase     game.PhaseMachine
	mode      game.Mode
	modeCfg   game.ModeConfig
	available []string
	completed []string
	stage     *game.Stage
	ticker    Ticker
	tickDt    time.Duration // 当前 Ticker 的周期，运行中修改配置不影响它
	tickSeq   int
	resultsIn time.Duration
	rng       *rand.Rand

	online    atomic.Int32
	idleSince atomic.Int64 // unix nano，有连接时为 0
}

// NewRoom 创建房间，初始化数据结构；调用方负责启动 Run
func NewRoom(code string, settings RoomSettings, tickers TickerFactory, log *zap.SugaredLogger) *Room {
	if settings.TickInterval <= 0 {
		settings.TickInterval = DefaultTickInterval
	}
	if tickers == nil {
		tickers = SystemTickers{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Room{
		Code:      code,
		log:       log.With("room", code),
		metrics:   &RoomMetrics{},
		tickers:   tickers,
		settings:  settings,
		joinChan:  make(chan joinRequest),
		leaveChan: make(chan string, 64),
		inputChan: make(chan inbound, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		ctrlChan:  make(chan func()),
		done:      make(chan struct{}),
		members:   make(map[string]*member),
		registry:  game.NewRegistry(),
		modeCfg:   game.Modes[game.DefaultMode],
		mode:      game.DefaultMode,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.idleSince.Store(time.Now().UnixNano())
	return r
}

// Run 房间协程：串行处理加入、离开、输入、管理操作与 Tick，ctx 取消后清理退出
func (r *Room) Run(ctx context.Context) {
	defer r.shutdown()
	r.log.Info("room started")
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-r.joinChan:
			req.reply <- r.handleJoin(req.id, req.conn, req.opts)
		case id := <-r.leaveChan:
			r.handleLeave(id)
		case in := <-r.inputChan:
			r.handleMessage(in.from, in.msg)
		case fn := <-r.ctrlChan:
			fn()
		case <-r.tickC():
			r.onTick()
		}
	}
}

// shutdown 停止 Tick、关闭全部连接
func (r *Room) shutdown() {
	r.stopTicker()
	for id, m := range r.members {
		m.conn.Close()
		delete(r.members, id)
	}
	r.online.Store(0)
	close(r.done)
	r.log.Info("room disposed")
}

// Done 房间协程退出后关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Join 同步等待房间协程处理加入请求
func (r *Room) Join(id string, conn Sender, opts JoinOptions) error {
	req := joinRequest{id: id, conn: conn, opts: opts, reply: make(chan error, 1)}
	select {
	case r.joinChan <- req:
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case err := <-req.reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Leave 请求在房间协程中移除连接，房间已关闭时直接返回
func (r *Room) Leave(id string) {
	select {
	case r.leaveChan <- id:
	case <-r.done:
	}
}

// Deliver 入站消息（不阻塞）：收件箱满时丢弃，保证读协程不被 Tick 拖慢
func (r *Room) Deliver(from string, msg ClientMessage) bool {
	select {
	case r.inputChan <- inbound{from: from, msg: msg}:
		return true
	default:
		r.metrics.IncChanFullDiscarded()
		return false
	}
}

// Do 在房间协程中执行 fn 并等待完成（管理接口使用）
func (r *Room) Do(fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case r.ctrlChan <- wrapped:
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

// Metrics 指标（原子读写，可在任意协程访问）
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

// Online 当前连接数
func (r *Room) Online() int {
	return int(r.online.Load())
}

// IdleFor 无连接持续时间；有连接时为 0
func (r *Room) IdleFor(now time.Time) time.Duration {
	since := r.idleSince.Load()
	if since == 0 {
		return 0
	}
	return now.Sub(time.Unix(0, since))
}

func (r *Room) trackOnline() {
	n := len(r.members)
	r.online.Store(int32(n))
	if n == 0 {
		r.idleSince.CompareAndSwap(0, time.Now().UnixNano())
	} else {
		r.idleSince.Store(0)
	}
}

// handleJoin 主屏占用 host 位（先到先得），手机控制器分配玩家槽位
func (r *Room) handleJoin(id string, conn Sender, opts JoinOptions) error {
	if opts.Host {
		m := &member{id: id, conn: conn}
		r.members[id] = m
		r.trackOnline()
		if !r.claimHost(m) {
			r.log.Infow("display joined as spectator", "conn", id)
		}
		conn.Send(r.snapshot())
		return nil
	}

	p, err := r.registry.Assign(id, opts.Name)
	if err != nil {
		r.log.Warnw("join rejected", "conn", id, "err", err)
		conn.Send(envelope(OutError, ErrorMessage{Message: err.Error()}))
		conn.Close()
		return err
	}
	r.members[id] = &member{id: id, conn: conn, player: p}
	r.trackOnline()
	r.syncStagePlayers()

	color := game.ColorOf(p.Number)
	conn.Send(envelope(OutAssignedPlayer, AssignedPlayer{PlayerNumber: p.Number, Color: color.Hex, ColorName: color.Name}))
	r.broadcast(envelope(OutPlayerJoined, PlayerJoined{PlayerID: p.ID, PlayerNumber: p.Number, Name: p.Name, Color: color.Hex}))
	conn.Send(r.snapshot())
	r.log.Infow("player joined", "conn", id, "player", p.Number, "name", p.Name)
	return nil
}

// claimHost host 位空闲时占用；手机控制器不能成为 host
func (r *Room) claimHost(m *member) bool {
	if m.player != nil || r.hostID != "" {
		return false
	}
	r.hostID = m.id
	m.host = true
	m.conn.Send(envelope(OutHostAssigned, HostAssigned{RoomCode: r.Code}))
	r.log.Infow("host assigned", "conn", m.id)
	return true
}

// handleLeave 释放槽位，关卡不暂停
func (r *Room) handleLeave(id string) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	delete(r.members, id)
	m.conn.Close()
	r.trackOnline()

	if m.player != nil {
		r.registry.Release(id)
		r.syncStagePlayers()
		r.broadcast(envelope(OutPlayerLeft, PlayerLeft{PlayerID: id, PlayerNumber: m.player.Number}))
		r.log.Infow("player left", "conn", id, "player", m.player.Number)
	}
	if r.hostID == id {
		r.hostID = ""
		r.log.Infow("host left", "conn", id)
	}
}

// syncStagePlayers 刷新关卡的在线玩家，并广播因玩家离开而移除的目标
func (r *Room) syncStagePlayers() {
	if r.stage != nil {
		r.stage.SetPlayers(r.registry.Numbers())
		r.flushStage()
	}
}

// handleMessage 按类型分发；非主机的控制消息静默丢弃
func (r *Room) handleMessage(from string, msg ClientMessage) {
	m, ok := r.members[from]
	if !ok {
		return
	}
	r.metrics.IncAccepted()

	if msg.isControl() {
		if from != r.hostID {
			r.log.Debugw("control from non-host dropped", "conn", from, "type", msg.Type)
			return
		}
		r.handleControl(msg)
		return
	}

	switch msg.Type {
	case MsgAim:
		if m.player == nil || !r.registry.SetAim(from, msg.X, msg.Y) {
			return
		}
		if host, ok := r.members[r.hostID]; ok {
			host.conn.Send(envelope(OutPlayerAim, PlayerAim{PlayerNumber: m.player.Number, X: m.player.AimX, Y: m.player.AimY}))
		}
	case MsgShoot:
		r.handleShoot(m, msg)
	case MsgReady:
		if m.player == nil {
			return
		}
		if all, _ := r.registry.SetReady(from); all {
			r.broadcast(envelope(OutAllReady, struct{}{}))
		}
	case MsgJoinAsHost:
		r.claimHost(m)
	default:
		r.log.Debugw("unknown message", "conn", from, "type", msg.Type)
	}
}

// broadcast 发给房间内所有连接（发送端不阻塞，队列满则丢弃）
func (r *Room) broadcast(env Envelope) {
	for _, m := range r.members {
		m.conn.Send(env)
	}
}

// snapshot 完整状态快照
func (r *Room) snapshot() Envelope {
	s := StateSnapshot{
		RoomCode:        r.Code,
		Phase:           r.phase.Current(),
		AvailableStages: append([]string{}, r.available...),
		StagesCompleted: append([]string{}, r.completed...),
		HostPresent:     r.hostID != "",
		Players:         []game.Player{},
		Targets:         []TargetView{},
	}
	if s.Phase != game.PhaseLobby {
		s.Mode = r.mode
	}
	if s.Phase == game.PhaseModeSelect {
		s.Timer = game.ModeSelectSeconds
	}
	for _, p := range r.registry.List() {
		s.Players = append(s.Players, *p)
	}
	if r.stage != nil {
		s.CurrentMiniGame = r.stage.Def.ID
		s.Quota = r.stage.Quota
		s.QuotaMet = r.stage.QuotaMet
		s.Timer = r.stage.Timer()
		for _, t := range r.stage.Targets.All() {
			s.Targets = append(s.Targets, viewOf(t))
		}
	}
	if s.Phase == game.PhaseResults {
		s.Timer = r.resultsIn.Seconds()
	}
	return envelope(OutState, s)
}
