// internal/hydradx/decode.go
package hydradx

import (
	"github.com/pkg/errors"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

// ScheduleLayout selects the encoding of DCA.Schedules values
type ScheduleLayout int

const (
	// ScheduleLayoutBasic is owner, period, total_amount, order
	ScheduleLayoutBasic ScheduleLayout = iota
	// ScheduleLayoutExtended adds max_retries, stability_threshold and slippage before the order
	ScheduleLayoutExtended
)

func keySuffix(key []byte, prefix int) (*substrate.Decoder, error) {
	if len(key) < prefix {
		return nil, errors.Errorf("storage key too short: %d bytes", len(key))
	}
	return substrate.NewDecoder(key[prefix:]), nil
}

func decodeTokenAccount(kv substrate.KeyValue) (TokenAccount, error) {
	var acc TokenAccount

	k, err := keySuffix(kv.Key, prefixLen)
	if err != nil {
		return acc, err
	}
	k.Skip(blake2Len)
	acc.Account = k.AccountID()
	k.Skip(twox64Len)
	acc.AssetID = k.U32()
	if err := k.Err(); err != nil {
		return acc, errors.Wrap(err, "decode Tokens.Accounts key")
	}

	if err := decodeAccountData(kv.Value, &acc); err != nil {
		return acc, err
	}
	return acc, nil
}

func decodeAccountData(value []byte, acc *TokenAccount) error {
	v := substrate.NewDecoder(value)
	acc.Free = v.U128()
	acc.Reserved = v.U128()
	acc.Frozen = v.U128()
	return errors.Wrap(v.Err(), "decode Tokens.Accounts value")
}

func decodeSchedule(kv substrate.KeyValue, layout ScheduleLayout) (Schedule, error) {
	var s Schedule

	k, err := keySuffix(kv.Key, prefixLen)
	if err != nil {
		return s, err
	}
	k.Skip(blake2Len)
	s.ID = k.U32()
	if err := k.Err(); err != nil {
		return s, errors.Wrap(err, "decode DCA.Schedules key")
	}

	v := substrate.NewDecoder(kv.Value)
	s.Owner = v.AccountID()
	s.Period = v.U32()
	s.TotalAmount = v.U128()
	if layout == ScheduleLayoutExtended {
		if v.Option() { // max_retries: u8
			v.Skip(1)
		}
		if v.Option() { // stability_threshold: Permill
			v.Skip(4)
		}
		if v.Option() { // slippage: Permill
			v.Skip(4)
		}
	}
	s.Order.Kind = OrderKind(v.U8())
	s.Order.AssetIn = v.U32()
	s.Order.AssetOut = v.U32()
	if err := v.Err(); err != nil {
		return s, errors.Wrapf(err, "decode DCA.Schedules value of schedule %d", s.ID)
	}
	if s.Order.Kind > OrderBuy {
		return s, errors.Errorf("schedule %d: unknown order variant %d", s.ID, s.Order.Kind)
	}
	return s, nil
}

func decodeAssetState(assetID uint32, value []byte) (AssetState, error) {
	v := substrate.NewDecoder(value)
	state := AssetState{
		AssetID:        assetID,
		HubReserve:     v.U128(),
		Shares:         v.U128(),
		ProtocolShares: v.U128(),
		Cap:            v.U128(),
	}
	return state, errors.Wrapf(v.Err(), "decode Omnipool.Assets value of asset %d", assetID)
}

func decodePosition(kv substrate.KeyValue) (Position, error) {
	var p Position

	k, err := keySuffix(kv.Key, prefixLen)
	if err != nil {
		return p, err
	}
	k.Skip(blake2Len)
	p.ID = k.U128()
	if err := k.Err(); err != nil {
		return p, errors.Wrap(err, "decode Omnipool.Positions key")
	}

	v := substrate.NewDecoder(kv.Value)
	p.AssetID = v.U32()
	p.Amount = v.U128()
	p.Shares = v.U128()
	p.PriceNum = v.U128()
	p.PriceDen = v.U128()
	return p, errors.Wrapf(v.Err(), "decode Omnipool.Positions value of position %s", p.ID.Dec())
}

func decodeItemOwner(kv substrate.KeyValue) (string, substrate.AccountID, error) {
	k, err := keySuffix(kv.Key, prefixLen)
	if err != nil {
		return "", substrate.AccountID{}, err
	}
	k.Skip(blake2Len + collectionLen + blake2Len)
	item := k.U128()
	if err := k.Err(); err != nil {
		return "", substrate.AccountID{}, errors.Wrap(err, "decode Uniques.Asset key")
	}

	v := substrate.NewDecoder(kv.Value)
	owner := v.AccountID()
	if err := v.Err(); err != nil {
		return "", owner, errors.Wrapf(err, "decode Uniques.Asset value of item %s", item.Dec())
	}
	return item.Dec(), owner, nil
}
