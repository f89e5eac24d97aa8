package server

import "pointblank/game"

// Sender 房间向某个连接推送消息的出口。
// Send 在房间协程内调用，不得阻塞；Close 可重复调用。
type Sender interface {
	Send(env Envelope)
	Close()
}

// JoinOptions 加入房间的参数
type JoinOptions struct {
	Host bool
	Name string
}

// member 房间内的一个连接：主屏（host / 旁观）或手机控制器
type member struct {
	id     string
	conn   Sender
	host   bool
	player *game.Player // 主屏为 nil
}

type joinRequest struct {
	id    string
	conn  Sender
	opts  JoinOptions
	reply chan error
}
