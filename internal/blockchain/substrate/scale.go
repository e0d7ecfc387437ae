// internal/blockchain/substrate/scale.go
package substrate

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// AccountIDLen is the size of an AccountId32
const AccountIDLen = 32

// AccountID is a raw 32-byte account public key
type AccountID [AccountIDLen]byte

// Decoder reads fixed-width SCALE fields from a byte slice. The first failure is sticky:
// later reads return zero values and Err reports what went wrong.
type Decoder struct {
	buf []byte
	off int
	err error
}

// NewDecoder creates a decoder over buf
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

func (d *Decoder) read(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.off+n > len(d.buf) {
		d.err = errors.Wrapf(ErrShortInput, "need %d bytes at offset %d, have %d", n, d.off, len(d.buf)-d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

// Skip advances past n bytes
func (d *Decoder) Skip(n int) {
	d.read(n)
}

// U8 reads one byte
func (d *Decoder) U8() uint8 {
	b := d.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads a one-byte boolean
func (d *Decoder) Bool() bool {
	v := d.U8()
	if d.err == nil && v > 1 {
		d.err = errors.Errorf("invalid bool byte 0x%02x at offset %d", v, d.off-1)
	}
	return v == 1
}

// U32 reads a little-endian u32
func (d *Decoder) U32() uint32 {
	b := d.read(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U128 reads a little-endian u128
func (d *Decoder) U128() *uint256.Int {
	b := d.read(16)
	if b == nil {
		return new(uint256.Int)
	}
	be := make([]byte, 16)
	for i := range b {
		be[15-i] = b[i]
	}
	return new(uint256.Int).SetBytes(be)
}

// AccountID reads a 32-byte account id
func (d *Decoder) AccountID() AccountID {
	var id AccountID
	copy(id[:], d.read(AccountIDLen))
	return id
}

// Option reads the presence byte of an Option<T>; the caller decodes T when it returns true
func (d *Decoder) Option() bool {
	v := d.U8()
	if d.err == nil && v > 1 {
		d.err = errors.Errorf("invalid option byte 0x%02x at offset %d", v, d.off-1)
	}
	return v == 1
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Err returns the first decoding error
func (d *Decoder) Err() error {
	return d.err
}

// EncodeU32 returns v as 4 little-endian bytes
func EncodeU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// EncodeU128 returns the low 128 bits of v as 16 little-endian bytes
func EncodeU128(v *uint256.Int) []byte {
	be := v.Bytes32()
	b := make([]byte, 16)
	for i := 0; i < 16; i++ {
		b[i] = be[31-i]
	}
	return b
}
