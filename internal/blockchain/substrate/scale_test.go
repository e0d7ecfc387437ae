package substrate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderFields(t *testing.T) {
	var id AccountID
	for i := range id {
		id[i] = byte(i)
	}
	amount := uint256.MustFromDecimal("340282366920938463463374607431768211455") // u128::MAX

	var buf []byte
	buf = append(buf, id[:]...)
	buf = append(buf, EncodeU32(7200)...)
	buf = append(buf, EncodeU128(amount)...)
	buf = append(buf, 0x01, 0x05) // Some(5u8)
	buf = append(buf, 0x00)       // None
	buf = append(buf, 0x01)       // true

	d := NewDecoder(buf)
	assert.Equal(t, id, d.AccountID())
	assert.Equal(t, uint32(7200), d.U32())
	assert.Equal(t, amount, d.U128())
	require.True(t, d.Option())
	assert.Equal(t, uint8(5), d.U8())
	assert.False(t, d.Option())
	assert.True(t, d.Bool())
	assert.Zero(t, d.Remaining())
	assert.NoError(t, d.Err())
}

func TestDecoderShortInputIsSticky(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})

	assert.Equal(t, uint32(0), d.U32())
	assert.ErrorIs(t, d.Err(), ErrShortInput)

	// the first error wins and later reads stay zero
	assert.Equal(t, uint8(0), d.U8())
	assert.True(t, d.U128().IsZero())
	assert.ErrorIs(t, d.Err(), ErrShortInput)
}

func TestDecoderRejectsInvalidFlags(t *testing.T) {
	d := NewDecoder([]byte{2})
	d.Option()
	assert.Error(t, d.Err())

	d = NewDecoder([]byte{7})
	d.Bool()
	assert.Error(t, d.Err())
}

func TestEncodeU128LittleEndian(t *testing.T) {
	b := EncodeU128(uint256.NewInt(1337))
	require.Len(t, b, 16)
	assert.Equal(t, byte(0x39), b[0])
	assert.Equal(t, byte(0x05), b[1])
	for _, v := range b[2:] {
		assert.Zero(t, v)
	}
}
