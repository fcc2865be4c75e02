package group

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/model"
)

var hundred = decimal.NewFromInt(100)

// checkEntry validates the fields shared by bills and expenses and returns
// them canonicalized. The caller must hold the lock.
func (g *Group) checkEntry(description string, amount decimal.Decimal, paidBy string, splitAmong []string) (model.Bill, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return model.Bill{}, invalid("description", "must not be empty")
	}
	if !amount.IsPositive() {
		return model.Bill{}, invalid("amount", "must be positive, got %s", amount)
	}
	if !amount.Mul(hundred).Equal(amount.Mul(hundred).Floor()) {
		return model.Bill{}, invalid("amount", "%s has more than 2 decimal places", amount)
	}
	payer := model.CanonicalName(paidBy)
	if !g.members[payer] {
		return model.Bill{}, invalid("paid_by", "unknown participant %q", paidBy)
	}
	split := model.CanonicalNames(splitAmong)
	if len(split) == 0 {
		return model.Bill{}, invalid("split_among", "must name at least one participant")
	}
	for _, p := range split {
		if !g.members[p] {
			return model.Bill{}, invalid("split_among", "unknown participant %q", p)
		}
	}
	return model.Bill{
		Description: desc,
		Amount:      amount,
		PaidBy:      payer,
		SplitAmong:  split,
	}, nil
}

// StageBill validates a bill and appends it to the pending queue. Staged
// bills never affect balances.
func (g *Group) StageBill(description string, amount decimal.Decimal, paidBy string, splitAmong []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	bill, err := g.checkEntry(description, amount, paidBy, splitAmong)
	if err != nil {
		return err
	}
	g.bills = append(g.bills, bill)
	return nil
}

// PendingBills returns the staged bills in insertion order.
func (g *Group) PendingBills() []model.Bill {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]model.Bill, len(g.bills))
	for i, b := range g.bills {
		out[i] = b.Clone()
	}
	return out
}

// DiscardBill drops the staged bill at the 1-based position n.
func (g *Group) DiscardBill(n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n < 1 || n > len(g.bills) {
		return NotFoundError{Kind: "bill", Key: strconv.Itoa(n)}
	}
	g.bills = append(g.bills[:n-1], g.bills[n:]...)
	return nil
}

// ClearPending drops every staged bill and returns how many were dropped.
func (g *Group) ClearPending() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.bills)
	g.bills = nil
	return n
}

// CommitAll records every staged bill as an expense, in insertion order, and
// empties the queue. Either every bill is recorded or, on error, the ledger
// and queue are left exactly as they were.
func (g *Group) CommitAll() ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.bills))
	if len(g.bills) == 0 {
		return ids, nil
	}

	balances := g.balances.Clone()
	settled := len(g.expenses)
	seq := g.seq

	for i, b := range g.bills {
		bill, err := g.checkEntry(b.Description, b.Amount, b.PaidBy, b.SplitAmong)
		if err != nil {
			for _, e := range g.expenses[settled:] {
				delete(g.byID, e.ID)
			}
			g.expenses = g.expenses[:settled]
			g.balances = balances
			g.seq = seq
			return nil, fmt.Errorf("committing bill %d: %w", i+1, err)
		}
		ids = append(ids, g.record(bill).ID)
	}
	g.bills = nil
	return ids, nil
}
