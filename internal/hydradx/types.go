// internal/hydradx/types.go
package hydradx

import (
	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

// TokenAccount is one Tokens.Accounts entry: the balance of an account in one asset
type TokenAccount struct {
	Account  substrate.AccountID
	AssetID  uint32
	Free     *uint256.Int
	Reserved *uint256.Int
	Frozen   *uint256.Int
}

// Total returns free + reserved
func (a TokenAccount) Total() *uint256.Int {
	return new(uint256.Int).Add(a.Free, a.Reserved)
}

// OrderKind is the variant of a DCA order
type OrderKind uint8

const (
	OrderSell OrderKind = iota
	OrderBuy
)

func (k OrderKind) String() string {
	switch k {
	case OrderSell:
		return "sell"
	case OrderBuy:
		return "buy"
	default:
		return "unknown"
	}
}

// Order is the trade a DCA schedule repeats
type Order struct {
	Kind     OrderKind
	AssetIn  uint32
	AssetOut uint32
}

// Schedule is a DCA.Schedules entry
type Schedule struct {
	ID          uint32
	Owner       substrate.AccountID
	Period      uint32
	TotalAmount *uint256.Int
	Order       Order
}

// Sells reports whether the schedule is a sell order spending assetID
func (s Schedule) Sells(assetID uint32) bool {
	return s.Order.Kind == OrderSell && s.Order.AssetIn == assetID
}

// AssetState is the Omnipool.Assets entry of one asset
type AssetState struct {
	AssetID        uint32
	HubReserve     *uint256.Int
	Shares         *uint256.Int
	ProtocolShares *uint256.Int
	Cap            *uint256.Int
}

// Position is an Omnipool liquidity position
type Position struct {
	ID       *uint256.Int
	AssetID  uint32
	Amount   *uint256.Int
	Shares   *uint256.Int
	PriceNum *uint256.Int
	PriceDen *uint256.Int
}

// Owners maps a position (uniques item) id in decimal form to its owner
type Owners map[string]substrate.AccountID

// Lookup returns the owner of the position with the given id
func (o Owners) Lookup(id *uint256.Int) (substrate.AccountID, bool) {
	owner, ok := o[id.Dec()]
	return owner, ok
}
