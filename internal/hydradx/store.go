// internal/hydradx/store.go
package hydradx

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

// ErrAssetNotInPool is returned when Omnipool.Assets has no entry for an asset
var ErrAssetNotInPool = errors.New("asset is not in the omnipool")

// StateReader is a storage view pinned at one block
type StateReader interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Entries(ctx context.Context, prefix []byte) ([]substrate.KeyValue, error)
}

// Store decodes HydraDX pallet storage read through a StateReader
type Store struct {
	state  StateReader
	layout ScheduleLayout
}

// NewStore creates a store over state
func NewStore(state StateReader, layout ScheduleLayout) *Store {
	return &Store{state: state, layout: layout}
}

// TokenAccounts returns every (account, asset) balance entry
func (s *Store) TokenAccounts(ctx context.Context) ([]TokenAccount, error) {
	entries, err := s.state.Entries(ctx, tokensAccountsPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "query Tokens.Accounts entries")
	}

	accounts := make([]TokenAccount, 0, len(entries))
	for _, kv := range entries {
		acc, err := decodeTokenAccount(kv)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// TokenAccount returns the balance of account in assetID. A missing entry is a zero balance.
func (s *Store) TokenAccount(ctx context.Context, account substrate.AccountID, assetID uint32) (TokenAccount, error) {
	acc := TokenAccount{
		Account:  account,
		AssetID:  assetID,
		Free:     new(uint256.Int),
		Reserved: new(uint256.Int),
		Frozen:   new(uint256.Int),
	}

	value, err := s.state.Get(ctx, tokenAccountKey(account, assetID))
	if err != nil {
		return acc, errors.Wrapf(err, "query Tokens.Accounts(%s, %d)", account, assetID)
	}
	if value == nil {
		return acc, nil
	}
	if err := decodeAccountData(value, &acc); err != nil {
		return acc, err
	}
	return acc, nil
}

// Schedules returns every DCA schedule
func (s *Store) Schedules(ctx context.Context) ([]Schedule, error) {
	entries, err := s.state.Entries(ctx, dcaSchedulesPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "query DCA.Schedules entries")
	}

	schedules := make([]Schedule, 0, len(entries))
	for _, kv := range entries {
		schedule, err := decodeSchedule(kv, s.layout)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

// OmnipoolAsset returns the pool state of assetID
func (s *Store) OmnipoolAsset(ctx context.Context, assetID uint32) (AssetState, error) {
	value, err := s.state.Get(ctx, omnipoolAssetKey(assetID))
	if err != nil {
		return AssetState{}, errors.Wrapf(err, "query Omnipool.Assets(%d)", assetID)
	}
	if value == nil {
		return AssetState{}, errors.Wrapf(ErrAssetNotInPool, "asset %d", assetID)
	}
	return decodeAssetState(assetID, value)
}

// Positions returns every omnipool liquidity position
func (s *Store) Positions(ctx context.Context) ([]Position, error) {
	entries, err := s.state.Entries(ctx, omnipoolPositionsPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "query Omnipool.Positions entries")
	}

	positions := make([]Position, 0, len(entries))
	for _, kv := range entries {
		p, err := decodePosition(kv)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// CollectionOwners maps every item of a uniques collection to its owner
func (s *Store) CollectionOwners(ctx context.Context, collectionID uint64) (Owners, error) {
	entries, err := s.state.Entries(ctx, collectionItemsPrefix(uint256.NewInt(collectionID)))
	if err != nil {
		return nil, errors.Wrapf(err, "query Uniques.Asset(%d) entries", collectionID)
	}

	owners := make(Owners, len(entries))
	for _, kv := range entries {
		item, owner, err := decodeItemOwner(kv)
		if err != nil {
			return nil, err
		}
		owners[item] = owner
	}
	return owners, nil
}
