// Package hydradxtest builds in-memory HydraDX storage for tests.
package hydradxtest

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

// State is an in-memory StateReader holding SCALE-encoded entries
type State struct {
	mu      sync.Mutex
	storage map[string][]byte

	// Extended writes DCA schedules with the retry/threshold/slippage options
	Extended bool

	Gets    int
	Scans   int
	FailOn  []byte
	FailErr error
}

// NewState creates an empty state
func NewState() *State {
	return &State{storage: make(map[string][]byte), Extended: true}
}

// Account builds a deterministic account id from a seed byte
func Account(seed byte) substrate.AccountID {
	var id substrate.AccountID
	for i := range id {
		id[i] = seed
	}
	return id
}

// Get implements hydradx.StateReader
func (s *State) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets++
	if s.FailOn != nil && bytes.HasPrefix(key, s.FailOn) {
		return nil, s.FailErr
	}
	v, ok := s.storage[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Entries implements hydradx.StateReader
func (s *State) Entries(_ context.Context, prefix []byte) ([]substrate.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scans++
	if s.FailOn != nil && bytes.HasPrefix(prefix, s.FailOn) {
		return nil, s.FailErr
	}

	var keys []string
	for k := range s.storage {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]substrate.KeyValue, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, substrate.KeyValue{Key: []byte(k), Value: s.storage[k]})
	}
	return entries, nil
}

func (s *State) put(key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[string(key)] = value
}

// AddTokenAccount stores a Tokens.Accounts entry
func (s *State) AddTokenAccount(account substrate.AccountID, assetID uint32, free, reserved uint64) {
	key := substrate.StorageKey(substrate.StoragePrefix("Tokens", "Accounts"),
		substrate.Blake2_128Concat(account[:]),
		substrate.Twox64Concat(substrate.EncodeU32(assetID)))

	var value []byte
	value = append(value, substrate.EncodeU128(uint256.NewInt(free))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(reserved))...)
	value = append(value, substrate.EncodeU128(new(uint256.Int))...)
	s.put(key, value)
}

// AddSellSchedule stores a DCA sell schedule
func (s *State) AddSellSchedule(id uint32, owner substrate.AccountID, total uint64, assetIn, assetOut uint32) {
	s.addSchedule(id, owner, total, 0, assetIn, assetOut)
}

// AddBuySchedule stores a DCA buy schedule
func (s *State) AddBuySchedule(id uint32, owner substrate.AccountID, total uint64, assetIn, assetOut uint32) {
	s.addSchedule(id, owner, total, 1, assetIn, assetOut)
}

func (s *State) addSchedule(id uint32, owner substrate.AccountID, total uint64, variant byte, assetIn, assetOut uint32) {
	key := substrate.StorageKey(substrate.StoragePrefix("DCA", "Schedules"),
		substrate.Blake2_128Concat(substrate.EncodeU32(id)))

	var value []byte
	value = append(value, owner[:]...)
	value = append(value, substrate.EncodeU32(300)...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(total))...)
	if s.Extended {
		value = append(value, 0x01, 0x03) // max_retries: Some(3)
		value = append(value, 0x00)       // stability_threshold: None
		value = append(value, 0x01)       // slippage: Some(5%)
		value = append(value, substrate.EncodeU32(50_000)...)
	}
	value = append(value, variant)
	value = append(value, substrate.EncodeU32(assetIn)...)
	value = append(value, substrate.EncodeU32(assetOut)...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(total/10))...)
	value = append(value, substrate.EncodeU128(new(uint256.Int))...)
	value = append(value, 0x00) // empty route
	s.put(key, value)
}

// AddOmnipoolAsset stores an Omnipool.Assets entry
func (s *State) AddOmnipoolAsset(assetID uint32, hubReserve, shares uint64) {
	key := substrate.StorageKey(substrate.StoragePrefix("Omnipool", "Assets"),
		substrate.Blake2_128Concat(substrate.EncodeU32(assetID)))

	var value []byte
	value = append(value, substrate.EncodeU128(uint256.NewInt(hubReserve))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(shares))...)
	value = append(value, substrate.EncodeU128(new(uint256.Int))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(1_000_000_000_000_000_000))...)
	value = append(value, 0x0f) // tradable: all
	s.put(key, value)
}

// AddPosition stores an Omnipool.Positions entry
func (s *State) AddPosition(id uint64, assetID uint32, amount, shares, priceNum, priceDen uint64) {
	key := substrate.StorageKey(substrate.StoragePrefix("Omnipool", "Positions"),
		substrate.Blake2_128Concat(substrate.EncodeU128(uint256.NewInt(id))))

	var value []byte
	value = append(value, substrate.EncodeU32(assetID)...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(amount))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(shares))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(priceNum))...)
	value = append(value, substrate.EncodeU128(uint256.NewInt(priceDen))...)
	s.put(key, value)
}

// AddItem stores a Uniques.Asset entry
func (s *State) AddItem(collectionID, itemID uint64, owner substrate.AccountID) {
	key := substrate.StorageKey(substrate.StoragePrefix("Uniques", "Asset"),
		substrate.Blake2_128Concat(substrate.EncodeU128(uint256.NewInt(collectionID))),
		substrate.Blake2_128Concat(substrate.EncodeU128(uint256.NewInt(itemID))))

	var value []byte
	value = append(value, owner[:]...)
	value = append(value, 0x00) // approved: None
	value = append(value, 0x00) // is_frozen
	value = append(value, substrate.EncodeU128(new(uint256.Int))...)
	s.put(key, value)
}
