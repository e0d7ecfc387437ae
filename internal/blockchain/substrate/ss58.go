// internal/blockchain/substrate/ss58.go
package substrate

import (
	"bytes"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

var ss58Pre = []byte("SS58PRE")

const ss58ChecksumLen = 2

// EncodeAddress renders an account id as an SS58 string for the given network prefix.
func EncodeAddress(id AccountID, prefix uint16) string {
	payload := append(ss58PrefixBytes(prefix), id[:]...)
	sum := ss58Checksum(payload)
	return base58.Encode(append(payload, sum[:ss58ChecksumLen]...))
}

// String renders the account id with the generic substrate prefix
func (id AccountID) String() string {
	return EncodeAddress(id, 42)
}

// DecodeAddress parses an SS58 string and returns the account id and its network prefix.
func DecodeAddress(addr string) (AccountID, uint16, error) {
	var id AccountID

	raw, err := base58.Decode(addr)
	if err != nil {
		return id, 0, errors.Wrapf(ErrInvalidAddress, "%q: %v", addr, err)
	}
	if len(raw) == 0 {
		return id, 0, errors.Wrapf(ErrInvalidAddress, "%q: empty", addr)
	}

	var prefix uint16
	prefixLen := 1
	switch {
	case raw[0] < 64:
		prefix = uint16(raw[0])
	case raw[0] < 128 && len(raw) > 1:
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0b0011_1111
		prefix = uint16(lower) | uint16(upper)<<8
		prefixLen = 2
	default:
		return id, 0, errors.Wrapf(ErrInvalidAddress, "%q: unsupported prefix byte 0x%02x", addr, raw[0])
	}

	if len(raw) != prefixLen+AccountIDLen+ss58ChecksumLen {
		return id, 0, errors.Wrapf(ErrInvalidAddress, "%q: unexpected length %d", addr, len(raw))
	}

	payload := raw[:prefixLen+AccountIDLen]
	sum := ss58Checksum(payload)
	if !bytes.Equal(sum[:ss58ChecksumLen], raw[prefixLen+AccountIDLen:]) {
		return id, 0, errors.Wrapf(ErrInvalidAddress, "%q: checksum mismatch", addr)
	}

	copy(id[:], payload[prefixLen:])
	return id, prefix, nil
}

func ss58PrefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000
	second := byte(prefix>>8) | byte(prefix&0b0000_0000_0000_0011)<<6
	return []byte{first, second}
}

func ss58Checksum(payload []byte) [64]byte {
	data := make([]byte, 0, len(ss58Pre)+len(payload))
	data = append(data, ss58Pre...)
	data = append(data, payload...)
	return blake2b.Sum512(data)
}
