// internal/blockchain/substrate/hasher.go
package substrate

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Twox128 is the 128-bit xxHash used for pallet and storage item names.
func Twox128(data []byte) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], xxhash64(data, 0))
	binary.LittleEndian.PutUint64(out[8:], xxhash64(data, 1))
	return out
}

// Twox64Concat hashes data with a 64-bit xxHash and appends the raw data.
func Twox64Concat(data []byte) []byte {
	out := make([]byte, 8, 8+len(data))
	binary.LittleEndian.PutUint64(out, xxhash64(data, 0))
	return append(out, data...)
}

// Blake2_128Concat hashes data with a 128-bit blake2b and appends the raw data.
func Blake2_128Concat(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// only fails for sizes outside 1..64 or oversized keys
		panic(err)
	}
	h.Write(data)
	return append(h.Sum(nil), data...)
}

// StoragePrefix returns twox128(pallet) ++ twox128(item), the common prefix of every
// key in a storage map.
func StoragePrefix(pallet, item string) []byte {
	prefix := make([]byte, 0, 32)
	prefix = append(prefix, Twox128([]byte(pallet))...)
	return append(prefix, Twox128([]byte(item))...)
}

// StorageKey concatenates a storage prefix with already hashed key parts.
func StorageKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

func xxhash64(data []byte, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(data)
	return d.Sum64()
}
