package game

// PlayerNumber 玩家槽位编号（1..4），0 表示无归属
type PlayerNumber int

// MaxPlayers 单房间最多同时在线的手机控制器数量
const MaxPlayers = 4

// Color 玩家颜色
type Color struct {
	Name string
	Hex  string
}

var playerColors = map[PlayerNumber]Color{
	1: {Name: "Red", Hex: "#FF4444"},
	2: {Name: "Blue", Hex: "#4444FF"},
	3: {Name: "Green", Hex: "#44FF44"},
	4: {Name: "Yellow", Hex: "#FFFF44"},
}

// neutralColor 无归属目标（炸弹、平民等）使用的颜色
var neutralColor = Color{Name: "White", Hex: "#FFFFFF"}

// ColorOf 颜色是玩家编号的纯函数
func ColorOf(n PlayerNumber) Color {
	if c, ok := playerColors[n]; ok {
		return c
	}
	return neutralColor
}

// Valid 编号是否落在 1..MaxPlayers
func (n PlayerNumber) Valid() bool {
	return n >= 1 && n <= MaxPlayers
}
