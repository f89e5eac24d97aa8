package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxFrameSize = 4 << 10 // 4KiB，手柄消息都很小
	sendQueueLen = 64
)

// ClientConn WebSocket 连接：读协程解码后投递给房间，写协程从队列写出
type ClientConn struct {
	ws      *websocket.Conn
	codec   Codec
	limiter *rate.Limiter // nil 表示不限流（主屏）
	log     *zap.SugaredLogger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, codec Codec, limiter *rate.Limiter, log *zap.SugaredLogger) *ClientConn {
	return &ClientConn{
		ws:      ws,
		codec:   codec,
		limiter: limiter,
		log:     log,
		send:    make(chan []byte, sendQueueLen),
	}
}

// Send 编码后入队；在房间协程中调用
func (c *ClientConn) Send(env Envelope) {
	b, err := c.codec.Encode(env)
	if err != nil {
		c.log.Errorw("encode outbound", "type", env.Type, "err", err)
		return
	}
	c.Enqueue(b)
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性丢弃，客户端靠周期快照对账
	}
}

// Close 关闭发送队列；写协程写完剩余消息后关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息并投递给房间；shoot 在进入房间前限流
func (c *ClientConn) readPump(room *Room, id string) {
	// 读泵退出时，通知房间在房间协程中移除该连接
	defer room.Leave(id)
	defer c.Close()
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugw("read", "conn", id, "err", err)
			}
			return
		}
		var msg ClientMessage
		if err := c.codec.Decode(payload, &msg); err != nil {
			c.log.Debugw("undecodable frame", "conn", id, "err", err)
			continue
		}
		if msg.Type == MsgShoot && c.limiter != nil && !c.limiter.Allow() {
			room.Metrics().IncRateLimited()
			continue
		}
		room.Deliver(id, msg)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 局域网派对游戏：主屏与手机来自不同来源，全部放行
		return true
	},
}

// HandleWS WebSocket 接入：?room=ABCD&host=1&name=alice&codec=msgpack
// 主屏不带 room 时新建房间
func (a *API) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	code := strings.ToUpper(q.Get("room"))
	host := isTruthy(q.Get("host"))

	codec, err := CodecByName(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var room *Room
	if code == "" && host {
		room = a.rooms.CreateRoom()
	} else if room, err = a.rooms.Get(code); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warnw("upgrade", "err", err)
		return
	}

	var limiter *rate.Limiter
	if !host {
		limiter = rate.NewLimiter(rate.Limit(a.cfg.ShootRate), a.cfg.ShootBurst)
	}
	id := uuid.NewString()
	client := NewClientConn(ws, codec, limiter, a.log.With("room", room.Code))
	go client.writePump()

	if err := room.Join(id, client, JoinOptions{Host: host, Name: q.Get("name")}); err != nil {
		if errors.Is(err, ErrRoomClosed) {
			client.Close()
		}
		return
	}
	go client.readPump(room, id)
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
