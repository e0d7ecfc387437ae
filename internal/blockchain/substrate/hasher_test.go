package substrate

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwox128(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"System", "26aa394eea5630e07c48ae0c9558cef7"},
		{"Account", "b99d880ec681799c0cf30e8886371da9"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, hex.EncodeToString(Twox128([]byte(tt.input))))
		})
	}
}

func TestStoragePrefix(t *testing.T) {
	prefix := StoragePrefix("System", "Account")
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9", hex.EncodeToString(prefix))
}

func TestConcatHashersKeepRawKey(t *testing.T) {
	raw := EncodeU32(15)

	twox := Twox64Concat(raw)
	assert.Len(t, twox, 8+len(raw))
	assert.Equal(t, raw, twox[8:])

	blake := Blake2_128Concat(raw)
	assert.Len(t, blake, 16+len(raw))
	assert.Equal(t, raw, blake[16:])

	assert.NotEqual(t, Blake2_128Concat(EncodeU32(5))[:16], blake[:16])
}

func TestStorageKey(t *testing.T) {
	key := StorageKey([]byte{1, 2}, []byte{3}, []byte{4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, key)
}
