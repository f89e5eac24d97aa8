package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	t.Parallel()
	for i := 0; i < 10000; i++ {
		code := NewRoomCode()
		require.Len(t, code, RoomCodeLength)
		for _, c := range code {
			require.True(t, strings.ContainsRune(RoomCodeChars, c), "unexpected %q in %s", c, code)
		}
		require.True(t, ValidRoomCode(code))
	}
}

func TestRoomCodeAlphabetSkipsAmbiguous(t *testing.T) {
	t.Parallel()
	for _, c := range "O0I1" {
		assert.NotContains(t, RoomCodeChars, string(c))
	}
}

func TestValidRoomCode(t *testing.T) {
	t.Parallel()
	assert.True(t, ValidRoomCode("AB23"))
	assert.False(t, ValidRoomCode("ab23"))
	assert.False(t, ValidRoomCode("ABO1"))
	assert.False(t, ValidRoomCode("ABC"))
	assert.False(t, ValidRoomCode("ABCDE"))
	assert.False(t, ValidRoomCode(""))
}
