package model

import "github.com/shopspring/decimal"

// Bill is a staged expense that has not been committed to the ledger yet.
type Bill struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by" validate:"required"`
	SplitAmong  []string        `json:"split_among" validate:"min=1,dive,required"`
}

// Clone returns a copy that shares no slices with b.
func (b Bill) Clone() Bill {
	b.SplitAmong = append([]string(nil), b.SplitAmong...)
	return b
}
