package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
	"github.com/rovshanmuradov/hydra-snapshot/internal/config"
	"github.com/rovshanmuradov/hydra-snapshot/internal/hydradx"
	"github.com/rovshanmuradov/hydra-snapshot/internal/hydradx/hydradxtest"
	"github.com/rovshanmuradov/hydra-snapshot/internal/report"
)

var (
	alice = hydradxtest.Account(0xaa)
	bob   = hydradxtest.Account(0xbb)
)

func newBuilder(t *testing.T, state *hydradxtest.State) (*report.Builder, *config.Config) {
	t.Helper()
	cfg := config.Default()
	store := hydradx.NewStore(state, hydradx.ScheduleLayoutExtended)
	return report.NewBuilder(cfg, store, zap.NewNop()), cfg
}

func addr(id substrate.AccountID) string {
	return substrate.EncodeAddress(id, config.DefaultSS58Prefix)
}

func TestBuilderSchedules(t *testing.T) {
	state := hydradxtest.NewState()
	state.AddSellSchedule(1, alice, 123456789000, 15, 5)
	state.AddSellSchedule(2, alice, 10_000_000_000, 15, 0)
	state.AddSellSchedule(3, bob, 5, 5, 15) // sells DOT
	state.AddBuySchedule(4, bob, 7, 15, 5)  // buy order spending vDOT
	state.AddSellSchedule(5, bob, 20_000_000_000, 15, 5)

	b, _ := newBuilder(t, state)
	rows, err := b.Schedules(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []report.ScheduleRow{
		{Owner: addr(alice), Amount: "12.3456789"},
		{Owner: addr(alice), Amount: "1"},
		{Owner: addr(bob), Amount: "2"},
	}, rows)
}

func TestBuilderHolders(t *testing.T) {
	state := hydradxtest.NewState()
	state.AddTokenAccount(alice, 5, 123456789000, 0)
	state.AddTokenAccount(bob, 5, 10_000_000_000, 5_000_000_000)
	state.AddTokenAccount(bob, 15, 0, 0)
	state.AddTokenAccount(alice, 0, 1, 1)

	b, _ := newBuilder(t, state)
	reports, err := b.Holders(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, state.Scans, "one Tokens.Accounts pull for both assets")

	dot := reports[0]
	assert.Equal(t, "DOT", dot.Asset.Symbol)
	assert.ElementsMatch(t, []report.HolderRow{
		{Address: addr(alice), FreeBalance: "12.3456789", ReservedBalance: "0", TotalBalance: "12.3456789"},
		{Address: addr(bob), FreeBalance: "1", ReservedBalance: "0.5", TotalBalance: "1.5"},
	}, dot.Rows)

	vdot := reports[1]
	assert.Equal(t, "vDOT", vdot.Asset.Symbol)
	assert.Equal(t, []report.HolderRow{
		{Address: addr(bob), FreeBalance: "0", ReservedBalance: "0", TotalBalance: "0"},
	}, vdot.Rows)
}

func TestBuilderTotalIsFreePlusReserved(t *testing.T) {
	state := hydradxtest.NewState()
	state.AddTokenAccount(alice, 5, 7_777_777_777, 3_333_333_333)
	state.AddTokenAccount(bob, 15, 1, 9_999_999_999)

	b, cfg := newBuilder(t, state)
	reports, err := b.Holders(context.Background())
	require.NoError(t, err)

	for _, r := range reports {
		for _, row := range r.Rows {
			free, err := report.MinorUnits(row.FreeBalance, cfg.Decimals)
			require.NoError(t, err)
			reserved, err := report.MinorUnits(row.ReservedBalance, cfg.Decimals)
			require.NoError(t, err)
			total, err := report.MinorUnits(row.TotalBalance, cfg.Decimals)
			require.NoError(t, err)
			assert.Equal(t, total.Dec(), free.Add(free, reserved).Dec())
		}
	}
}

func TestBuilderPositions(t *testing.T) {
	state := hydradxtest.NewState()
	cfg := config.Default()

	state.AddTokenAccount(cfg.OmnipoolAccount(), 5, 1_000_000, 0)
	state.AddOmnipoolAsset(5, 2_000_000, 1_000_000)
	state.AddTokenAccount(cfg.OmnipoolAccount(), 15, 4_000_000, 0)
	state.AddOmnipoolAsset(15, 4_000_000, 4_000_000)

	state.AddPosition(1, 5, 100_000, 100_000, 2, 1)
	state.AddPosition(2, 5, 50_000, 50_000, 2, 1)
	state.AddPosition(3, 15, 400_000, 400_000, 1, 1)
	state.AddPosition(4, 0, 1, 1, 1, 1)

	state.AddItem(cfg.OmnipoolCollectionID, 1, alice)
	state.AddItem(cfg.OmnipoolCollectionID, 3, bob)
	state.AddItem(cfg.OmnipoolCollectionID+1, 2, bob) // other collection

	b, _ := newBuilder(t, state)
	reports, err := b.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	dot := reports[0]
	require.Len(t, dot.Rows, 2)
	byID := map[string]report.PositionRow{}
	for _, row := range dot.Rows {
		byID[row.ID] = row
	}
	assert.Equal(t, report.PositionRow{
		ID:               "1",
		Owner:            addr(alice),
		OriginalAmount:   "100000",
		Shares:           "100000",
		OriginalPrice:    [2]string{"2", "1"},
		UnderlyingAmount: "0.00001",
	}, byID["1"])
	assert.Empty(t, byID["2"].Owner, "position without a registry entry keeps an unknown owner")
	assert.Equal(t, "0.000005", byID["2"].UnderlyingAmount)

	vdot := reports[1]
	require.Len(t, vdot.Rows, 1)
	assert.Equal(t, "3", vdot.Rows[0].ID)
	assert.Equal(t, addr(bob), vdot.Rows[0].Owner)
	assert.Equal(t, "0.00004", vdot.Rows[0].UnderlyingAmount)
}

func TestBuilderEmptyState(t *testing.T) {
	b, _ := newBuilder(t, hydradxtest.NewState())
	ctx := context.Background()

	schedules, err := b.Schedules(ctx)
	require.NoError(t, err)
	assert.NotNil(t, schedules)
	assert.Empty(t, schedules)

	holders, err := b.Holders(ctx)
	require.NoError(t, err)
	for _, r := range holders {
		assert.NotNil(t, r.Rows)
		assert.Empty(t, r.Rows)
	}

	positions, err := b.Positions(ctx)
	require.NoError(t, err)
	for _, r := range positions {
		assert.NotNil(t, r.Rows)
		assert.Empty(t, r.Rows)
	}
}

func TestBuilderPositionsMissingPoolAsset(t *testing.T) {
	state := hydradxtest.NewState()
	state.AddPosition(1, 5, 100, 100, 1, 1)

	b, _ := newBuilder(t, state)
	_, err := b.Positions(context.Background())
	assert.ErrorIs(t, err, hydradx.ErrAssetNotInPool)
}

func TestBuilderPropagatesStateErrors(t *testing.T) {
	state := hydradxtest.NewState()
	state.FailOn = substrate.StoragePrefix("Tokens", "Accounts")
	state.FailErr = errors.New("connection reset")

	b, _ := newBuilder(t, state)
	_, err := b.Holders(context.Background())
	assert.ErrorIs(t, err, state.FailErr)
}
