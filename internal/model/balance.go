package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances is the pairwise net balance matrix, keyed creditor -> debtor.
// A positive Balances[X][Y] means Y owes X that amount. Entries that net to
// zero are not stored, so a missing entry reads as zero.
type Balances map[string]map[string]decimal.Decimal

// AddRow makes sure name has a (possibly empty) row.
func (b Balances) AddRow(name string) {
	if _, ok := b[name]; !ok {
		b[name] = make(map[string]decimal.Decimal)
	}
}

// DropParticipant removes name both as a row and as an entry in every row.
func (b Balances) DropParticipant(name string) {
	delete(b, name)
	for _, row := range b {
		delete(row, name)
	}
}

// Shift moves amt of debt from debtor to creditor and mirrors it on the
// opposite entry. Both rows must exist.
func (b Balances) Shift(creditor, debtor string, amt decimal.Decimal) {
	b.set(creditor, debtor, b[creditor][debtor].Add(amt))
	b.set(debtor, creditor, b[debtor][creditor].Sub(amt))
}

func (b Balances) set(row, col string, v decimal.Decimal) {
	if v.IsZero() {
		delete(b[row], col)
		return
	}
	b[row][col] = v
}

// Owes returns how much debtor owes creditor (negative when creditor owes debtor).
func (b Balances) Owes(debtor, creditor string) decimal.Decimal {
	return b[creditor][debtor]
}

// Clone returns a deep copy.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for row, cols := range b {
		c := make(map[string]decimal.Decimal, len(cols))
		for k, v := range cols {
			c[k] = v
		}
		out[row] = c
	}
	return out
}

// Equal compares two matrices by value. Missing entries count as zero, but
// both matrices must have the same rows.
func (b Balances) Equal(other Balances) bool {
	if len(b) != len(other) {
		return false
	}
	for row := range b {
		if _, ok := other[row]; !ok {
			return false
		}
	}
	return b.covers(other) && other.covers(b)
}

func (b Balances) covers(other Balances) bool {
	for row, cols := range b {
		for col, v := range cols {
			if !v.Equal(other[row][col]) {
				return false
			}
		}
	}
	return true
}

// Total sums every entry of the matrix. It is zero for a consistent matrix.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, cols := range b {
		for _, v := range cols {
			total = total.Add(v)
		}
	}
	return total
}

// CheckAntisymmetric returns an error for the first pair where
// b[x][y] != -b[y][x], or for any self entry.
func (b Balances) CheckAntisymmetric() error {
	for row, cols := range b {
		for col, v := range cols {
			if row == col {
				return fmt.Errorf("self balance for %s", row)
			}
			if !v.Neg().Equal(b[col][row]) {
				return fmt.Errorf("balance %s/%s is %s but %s/%s is %s",
					row, col, v, col, row, b[col][row])
			}
		}
	}
	return nil
}
