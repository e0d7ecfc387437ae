// internal/blockchain/substrate/snapshot.go
package substrate

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KeyValue is one storage entry
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Snapshot reads storage at a single block hash. Every query made through the same
// snapshot observes the same state.
type Snapshot struct {
	client *Client
	hash   common.Hash
}

// Hash returns the block hash the snapshot is pinned to
func (s *Snapshot) Hash() common.Hash {
	return s.hash
}

// Get returns the raw value stored under key, or nil when the key is absent.
func (s *Snapshot) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value *hexutil.Bytes
	if err := s.client.call(ctx, &value, "state_getStorage", hexutil.Bytes(key), s.hash); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return *value, nil
}

// Keys returns every storage key starting with prefix, fetched page by page.
func (s *Snapshot) Keys(ctx context.Context, prefix []byte) ([][]byte, error) {
	var (
		keys  [][]byte
		start *hexutil.Bytes
	)

	for {
		var page []hexutil.Bytes
		err := s.client.call(ctx, &page, "state_getKeysPaged",
			hexutil.Bytes(prefix), s.client.pageSize, start, s.hash)
		if err != nil {
			return nil, err
		}
		for _, k := range page {
			keys = append(keys, k)
		}
		if len(page) < s.client.pageSize {
			break
		}
		last := page[len(page)-1]
		start = &last
	}

	s.client.logger.Debug("Storage keys fetched",
		zap.String("prefix", hexutil.Encode(prefix)),
		zap.Int("count", len(keys)))
	return keys, nil
}

type changeSet struct {
	Block   common.Hash         `json:"block"`
	Changes [][2]*hexutil.Bytes `json:"changes"`
}

// Entries returns every key/value pair under prefix. Keys with no value are skipped.
func (s *Snapshot) Entries(ctx context.Context, prefix []byte) ([]KeyValue, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	entries := make([]KeyValue, 0, len(keys))
	for from := 0; from < len(keys); from += s.client.pageSize {
		to := from + s.client.pageSize
		if to > len(keys) {
			to = len(keys)
		}

		batch := make([]hexutil.Bytes, 0, to-from)
		for _, k := range keys[from:to] {
			batch = append(batch, k)
		}

		var sets []changeSet
		if err := s.client.call(ctx, &sets, "state_queryStorageAt", batch, s.hash); err != nil {
			return nil, err
		}

		values := make(map[string][]byte, len(batch))
		for _, set := range sets {
			for _, change := range set.Changes {
				if change[0] == nil {
					return nil, errors.Wrap(ErrInvalidResponse, "state_queryStorageAt change without key")
				}
				if change[1] == nil {
					continue
				}
				values[string(*change[0])] = *change[1]
			}
		}

		for _, k := range keys[from:to] {
			if v, ok := values[string(k)]; ok {
				entries = append(entries, KeyValue{Key: k, Value: v})
			}
		}
	}

	return entries, nil
}
