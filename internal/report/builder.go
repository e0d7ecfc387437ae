package report

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
	"github.com/rovshanmuradov/hydra-snapshot/internal/config"
	"github.com/rovshanmuradov/hydra-snapshot/internal/hydradx"
	"github.com/rovshanmuradov/hydra-snapshot/internal/omnipool"
)

// Source is the pinned chain state the reports are built from
type Source interface {
	TokenAccounts(ctx context.Context) ([]hydradx.TokenAccount, error)
	TokenAccount(ctx context.Context, account substrate.AccountID, assetID uint32) (hydradx.TokenAccount, error)
	Schedules(ctx context.Context) ([]hydradx.Schedule, error)
	OmnipoolAsset(ctx context.Context, assetID uint32) (hydradx.AssetState, error)
	Positions(ctx context.Context) ([]hydradx.Position, error)
	CollectionOwners(ctx context.Context, collectionID uint64) (hydradx.Owners, error)
}

// AssetRows holds the rows of one per-asset report
type AssetRows[T any] struct {
	Asset config.Asset
	Rows  []T
}

// Builder builds report rows from a Source
type Builder struct {
	cfg    *config.Config
	source Source
	logger *zap.Logger
}

// NewBuilder creates a report builder
func NewBuilder(cfg *config.Config, source Source, logger *zap.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		source: source,
		logger: logger.Named("report"),
	}
}

func (b *Builder) address(id substrate.AccountID) string {
	return substrate.EncodeAddress(id, b.cfg.SS58Prefix)
}

// Schedules returns one row per DCA schedule selling the yield asset. An owner with
// several schedules gets several rows.
func (b *Builder) Schedules(ctx context.Context) ([]ScheduleRow, error) {
	schedules, err := b.source.Schedules(ctx)
	if err != nil {
		return nil, err
	}

	yield := b.cfg.YieldAsset()
	owners := make(map[substrate.AccountID]struct{})
	rows := make([]ScheduleRow, 0)
	for _, s := range schedules {
		if !s.Sells(yield.ID) {
			continue
		}
		owners[s.Owner] = struct{}{}
		rows = append(rows, ScheduleRow{
			Owner:  b.address(s.Owner),
			Amount: Amount(s.TotalAmount, b.cfg.Decimals),
		})
	}

	b.logger.Info("DCA schedules collected",
		zap.Int("unique_accounts", len(owners)),
		zap.Int("schedules", len(rows)),
		zap.Int("total_schedules", len(schedules)),
		zap.String("asset", yield.Symbol))
	return rows, nil
}

// Holders returns the holder rows of every configured asset, from a single
// Tokens.Accounts pull
func (b *Builder) Holders(ctx context.Context) ([]AssetRows[HolderRow], error) {
	accounts, err := b.source.TokenAccounts(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Token entries fetched", zap.Int("entries", len(accounts)))

	assets := b.cfg.Assets()
	result := make([]AssetRows[HolderRow], 0, len(assets))
	for _, asset := range assets {
		rows := make([]HolderRow, 0)
		for _, acc := range accounts {
			if acc.AssetID != asset.ID {
				continue
			}
			rows = append(rows, HolderRow{
				Address:         b.address(acc.Account),
				FreeBalance:     Amount(acc.Free, b.cfg.Decimals),
				ReservedBalance: Amount(acc.Reserved, b.cfg.Decimals),
				TotalBalance:    Amount(acc.Total(), b.cfg.Decimals),
			})
		}
		b.logger.Info("Holders collected",
			zap.String("asset", asset.Symbol),
			zap.Int("holders", len(rows)))
		result = append(result, AssetRows[HolderRow]{Asset: asset, Rows: rows})
	}
	return result, nil
}

// Positions returns the omnipool position rows of every configured asset. Positions and
// their owners are fetched once and shared by all assets.
func (b *Builder) Positions(ctx context.Context) ([]AssetRows[PositionRow], error) {
	positions, err := b.source.Positions(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Omnipool positions fetched", zap.Int("positions", len(positions)))

	owners, err := b.source.CollectionOwners(ctx, b.cfg.OmnipoolCollectionID)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("Position owners fetched",
		zap.Uint64("collection", b.cfg.OmnipoolCollectionID),
		zap.Int("items", len(owners)))

	assets := b.cfg.Assets()
	result := make([]AssetRows[PositionRow], 0, len(assets))
	for _, asset := range assets {
		rows, err := b.assetPositions(ctx, asset, positions, owners)
		if err != nil {
			return nil, errors.Wrapf(err, "%s positions", asset.Symbol)
		}
		result = append(result, AssetRows[PositionRow]{Asset: asset, Rows: rows})
	}
	return result, nil
}

func (b *Builder) assetPositions(ctx context.Context, asset config.Asset, positions []hydradx.Position, owners hydradx.Owners) ([]PositionRow, error) {
	rows := make([]PositionRow, 0)

	var matching []hydradx.Position
	for _, p := range positions {
		if p.AssetID == asset.ID {
			matching = append(matching, p)
		}
	}

	// The pool reserve is the free balance of the omnipool account itself
	reserve, err := b.source.TokenAccount(ctx, b.cfg.OmnipoolAccount(), asset.ID)
	if err != nil {
		return nil, err
	}
	b.logger.Info("Omnipool balance locked",
		zap.String("asset", asset.Symbol),
		zap.String("locked", Amount(reserve.Free, b.cfg.Decimals)),
		zap.Int("positions", len(matching)))

	if len(matching) == 0 {
		return rows, nil
	}

	state, err := b.source.OmnipoolAsset(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	for _, p := range matching {
		row, err := b.positionRow(p, state, reserve.Free, owners)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *Builder) positionRow(p hydradx.Position, state hydradx.AssetState, reserve *uint256.Int, owners hydradx.Owners) (PositionRow, error) {
	price, err := omnipool.PriceToFixed(p.PriceNum, p.PriceDen)
	if err != nil {
		return PositionRow{}, errors.Wrapf(err, "position %s price", p.ID.Dec())
	}

	out, err := omnipool.CalculateLiquidityOut(omnipool.LiquidityOutParams{
		AssetReserve:    reserve,
		AssetHubReserve: state.HubReserve,
		AssetShares:     state.Shares,
		PositionAmount:  p.Amount,
		PositionShares:  p.Shares,
		PositionPrice:   price,
		SharesToRemove:  p.Shares,
		WithdrawalFee:   new(uint256.Int),
	})
	if err != nil {
		return PositionRow{}, errors.Wrapf(err, "position %s liquidity out", p.ID.Dec())
	}

	row := PositionRow{
		ID:               p.ID.Dec(),
		OriginalAmount:   p.Amount.Dec(),
		Shares:           p.Shares.Dec(),
		OriginalPrice:    [2]string{p.PriceNum.Dec(), p.PriceDen.Dec()},
		UnderlyingAmount: Amount(out, b.cfg.Decimals),
	}
	if owner, ok := owners.Lookup(p.ID); ok {
		row.Owner = b.address(owner)
	} else {
		b.logger.Debug("Position has no owner entry", zap.String("id", row.ID))
	}
	return row, nil
}
