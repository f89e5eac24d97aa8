package server

// 入站消息类型
const (
	MsgAim         = "aim"
	MsgShoot       = "shoot"
	MsgReady       = "ready"
	MsgStartGame   = "start-game"
	MsgSelectMode  = "select-mode"
	MsgSelectStage = "select-stage"
	MsgJoinAsHost  = "join-as-host"
)

// ClientMessage 客户端（手机控制器或主屏）发来的消息，字段按类型取用
// 示例：{"type":"shoot","x":0.42,"y":0.61,"timestamp":1712345678901}
type ClientMessage struct {
	Type      string  `json:"type"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	StageID   string  `json:"stageId,omitempty"`
}

// isControl 只有主机能发送的阶段推进消息
func (m ClientMessage) isControl() bool {
	switch m.Type {
	case MsgStartGame, MsgSelectMode, MsgSelectStage:
		return true
	}
	return false
}

// inbound 读协程投递给房间协程的信封
type inbound struct {
	from string
	msg  ClientMessage
}
