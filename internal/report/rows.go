package report

import (
	"encoding/json"
	"fmt"
)

// ScheduleRow is one DCA schedule selling the yield asset. It marshals to a
// single-key object {owner: amount}.
type ScheduleRow struct {
	Owner  string
	Amount string
}

// MarshalJSON implements json.Marshaler
func (r ScheduleRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{r.Owner: r.Amount})
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ScheduleRow) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("schedule row must have exactly one key, got %d", len(m))
	}
	for owner, amount := range m {
		r.Owner, r.Amount = owner, amount
	}
	return nil
}

// CSVHeaders returns the CSV column names
func (ScheduleRow) CSVHeaders() []string {
	return []string{"owner", "amount"}
}

// ToCSV converts the row to a CSV record
func (r ScheduleRow) ToCSV() []string {
	return []string{r.Owner, r.Amount}
}

// HolderRow is the balance of one account in one asset
type HolderRow struct {
	Address         string `json:"address"`
	FreeBalance     string `json:"freeBalance"`
	ReservedBalance string `json:"reservedBalance"`
	TotalBalance    string `json:"totalBalance"`
}

// CSVHeaders returns the CSV column names
func (HolderRow) CSVHeaders() []string {
	return []string{"address", "freeBalance", "reservedBalance", "totalBalance"}
}

// ToCSV converts the row to a CSV record
func (r HolderRow) ToCSV() []string {
	return []string{r.Address, r.FreeBalance, r.ReservedBalance, r.TotalBalance}
}

// PositionRow is one omnipool liquidity position valued at the snapshot block.
// OriginalAmount, Shares and OriginalPrice are raw chain values; UnderlyingAmount is scaled.
// Owner is empty when the position has no registry entry.
type PositionRow struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner,omitempty"`
	OriginalAmount   string    `json:"originalAmount"`
	Shares           string    `json:"shares"`
	OriginalPrice    [2]string `json:"originalPrice"`
	UnderlyingAmount string    `json:"underlyingAmount"`
}

// CSVHeaders returns the CSV column names
func (PositionRow) CSVHeaders() []string {
	return []string{"id", "owner", "originalAmount", "shares", "originalPriceNum", "originalPriceDen", "underlyingAmount"}
}

// ToCSV converts the row to a CSV record
func (r PositionRow) ToCSV() []string {
	return []string{r.ID, r.Owner, r.OriginalAmount, r.Shares, r.OriginalPrice[0], r.OriginalPrice[1], r.UnderlyingAmount}
}
