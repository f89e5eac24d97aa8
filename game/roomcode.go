package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"strings"
)

const (
	// RoomCodeLength 房间码长度
	RoomCodeLength = 4

	// RoomCodeChars 房间码字符集（去掉易混淆的 O 0 I 1）
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NewRoomCode 生成随机房间码，不保证唯一，由上层做冲突检查
func NewRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// crypto 源不可用时退回 math/rand
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// ValidRoomCode 校验外部传入的房间码格式
func ValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(RoomCodeChars, code[i]) < 0 {
			return false
		}
	}
	return true
}
