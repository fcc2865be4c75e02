package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a settled bill. Share is the per-person cost fixed when the
// expense was recorded (Amount / len(SplitAmong) at that time); later
// participant removals never change it.
type Expense struct {
	ID          string          `json:"id" validate:"required"`
	PaidBy      string          `json:"paid_by" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Share       decimal.Decimal `json:"share"`
	Description string          `json:"description" validate:"required"`
	SplitAmong  []string        `json:"split_among" validate:"dive,required"`
	CreatedAt   time.Time       `json:"created_at" validate:"required"`
}

// Clone returns a copy that shares no slices with e.
func (e Expense) Clone() Expense {
	e.SplitAmong = append([]string(nil), e.SplitAmong...)
	return e
}

// Involves reports whether name paid for or shares in the expense.
func (e Expense) Involves(name string) bool {
	return e.PaidBy == name || slices.Contains(e.SplitAmong, name)
}
