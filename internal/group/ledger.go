package group

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/id"
	"github.com/cleared-dev/grassjelly/internal/model"
)

// RecordExpense settles an expense directly, bypassing the pending queue.
// Every split member other than the payer ends up owing the payer
// amount/len(splitAmong). Returns the new expense ID.
func (g *Group) RecordExpense(paidBy string, amount decimal.Decimal, description string, splitAmong []string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bill, err := g.checkEntry(description, amount, paidBy, splitAmong)
	if err != nil {
		return "", err
	}
	return g.record(bill).ID, nil
}

// record converts a validated bill into an expense. The caller must hold the
// lock.
func (g *Group) record(b model.Bill) model.Expense {
	e := model.Expense{
		ID:          id.FormatExpenseID(g.seq.Next()),
		PaidBy:      b.PaidBy,
		Amount:      b.Amount,
		Share:       b.Amount.Div(decimal.NewFromInt(int64(len(b.SplitAmong)))),
		Description: b.Description,
		SplitAmong:  slices.Clone(b.SplitAmong),
		CreatedAt:   g.now().Round(0),
	}
	applyExpense(g.balances, g.members, e, e.Share)
	g.byID[e.ID] = len(g.expenses)
	g.expenses = append(g.expenses, e)
	return e
}

// applyExpense shifts share from every registered non-payer split member to
// the payer. Pairs involving a participant that is no longer registered are
// skipped; their rows were dropped on removal.
func applyExpense(b model.Balances, members map[string]bool, e model.Expense, share decimal.Decimal) {
	if !members[e.PaidBy] {
		return
	}
	for _, p := range e.SplitAmong {
		if p == e.PaidBy || !members[p] {
			continue
		}
		b.Shift(e.PaidBy, p, share)
	}
}

// CancelExpense reverses the balance effect of a settled expense, using the
// share stored on it, and removes it from the history. Cancelling an unknown
// or already cancelled ID returns a NotFoundError.
func (g *Group) CancelExpense(expenseID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx, ok := g.byID[expenseID]
	if !ok {
		return NotFoundError{Kind: "expense", Key: expenseID}
	}
	e := g.expenses[idx]
	applyExpense(g.balances, g.members, e, e.Share.Neg())

	g.expenses = slices.Delete(g.expenses, idx, idx+1)
	delete(g.byID, expenseID)
	for i := idx; i < len(g.expenses); i++ {
		g.byID[g.expenses[i].ID] = i
	}
	return nil
}

// Expense returns the settled expense with the given ID.
func (g *Group) Expense(expenseID string) (model.Expense, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.byID[expenseID]
	if !ok {
		return model.Expense{}, NotFoundError{Kind: "expense", Key: expenseID}
	}
	return g.expenses[idx].Clone(), nil
}

// History returns the settled expenses in the order they were recorded.
func (g *Group) History() []model.Expense {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]model.Expense, len(g.expenses))
	for i, e := range g.expenses {
		out[i] = e.Clone()
	}
	return out
}

// NetBalances returns a copy of the balance matrix.
func (g *Group) NetBalances() model.Balances {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.balances.Clone()
}

// Owes returns how much debtor owes creditor; negative if creditor owes debtor.
func (g *Group) Owes(debtor, creditor string) decimal.Decimal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.balances.Owes(model.CanonicalName(debtor), model.CanonicalName(creditor))
}

// Verify recomputes the balance matrix from the settled history and checks
// it against the maintained one.
func (g *Group) Verify() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return verify(g.participants, g.members, g.expenses, g.balances)
}

func verify(participants []string, members map[string]bool, expenses []model.Expense, balances model.Balances) error {
	if err := balances.CheckAntisymmetric(); err != nil {
		return fmt.Errorf("balances: %w", err)
	}
	rebuilt := model.Balances{}
	for _, p := range participants {
		rebuilt.AddRow(p)
	}
	for _, e := range expenses {
		applyExpense(rebuilt, members, e, e.Share)
	}
	if !rebuilt.Equal(balances) {
		return errors.New("balances do not match the expense history")
	}
	return nil
}
