package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/activity"
	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/model"
)

// AddParticipant registers a participant. Adding an existing name succeeds
// and reports added=false.
func (s *Service) AddParticipant(ctx context.Context, groupName, name string) (canon string, added bool, err error) {
	err = s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		c, err := g.AddParticipant(name)
		canon = c
		if errors.Is(err, group.ErrDuplicate) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		added = true
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionParticipantAdd, c)}, nil
	})
	return canon, added, err
}

// RemoveParticipant unregisters a participant under the group's policy.
func (s *Service) RemoveParticipant(ctx context.Context, groupName, name string) error {
	return s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		if err := g.RemoveParticipant(name); err != nil {
			return nil, err
		}
		canon := model.CanonicalName(name)
		s.log.Info("participant removed", "group", groupName, "participant", canon)
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionParticipantRemove, canon)}, nil
	})
}

// StageBills validates and queues bills. Either every bill is staged or
// none is.
func (s *Service) StageBills(ctx context.Context, groupName string, bills ...model.Bill) error {
	return s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		entries := make([]activity.Entry, 0, len(bills))
		for i, b := range bills {
			if err := g.StageBill(b.Description, b.Amount, b.PaidBy, b.SplitAmong); err != nil {
				if len(bills) > 1 {
					return nil, fmt.Errorf("bill %d: %w", i+1, err)
				}
				return nil, err
			}
			entries = append(entries, activity.NewEntry(groupName, activity.ActionBillStage, billDetails(b)))
		}
		return entries, nil
	})
}

// DiscardBill drops the n-th pending bill (1-based).
func (s *Service) DiscardBill(ctx context.Context, groupName string, n int) error {
	return s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		if err := g.DiscardBill(n); err != nil {
			return nil, err
		}
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionBillDiscard, fmt.Sprintf("bill %d", n))}, nil
	})
}

// CommitBills settles every pending bill as one unit.
func (s *Service) CommitBills(ctx context.Context, groupName string) ([]string, error) {
	var ids []string
	err := s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		var err error
		ids, err = g.CommitAll()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		s.log.Info("bills committed", "group", groupName, "count", len(ids))
		details := fmt.Sprintf("%d bills", len(ids))
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionBillCommit, details, ids...)}, nil
	})
	return ids, err
}

// RecordExpense settles one expense immediately.
func (s *Service) RecordExpense(ctx context.Context, groupName string, b model.Bill) (string, error) {
	var expenseID string
	err := s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		var err error
		expenseID, err = g.RecordExpense(b.PaidBy, b.Amount, b.Description, b.SplitAmong)
		if err != nil {
			return nil, err
		}
		s.log.Info("expense recorded", "group", groupName, "expense_id", expenseID)
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionExpenseRecord, billDetails(b), expenseID)}, nil
	})
	return expenseID, err
}

// CancelExpense reverses a settled expense.
func (s *Service) CancelExpense(ctx context.Context, groupName, expenseID string) error {
	return s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		e, err := g.Expense(expenseID)
		if err != nil {
			return nil, err
		}
		if err := g.CancelExpense(expenseID); err != nil {
			return nil, err
		}
		s.log.Info("expense cancelled", "group", groupName, "expense_id", expenseID)
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionExpenseCancel, e.Description, expenseID)}, nil
	})
}

func billDetails(b model.Bill) string {
	return fmt.Sprintf("%s %s paid by %s split %s",
		b.Description, b.Amount.StringFixed(2), model.CanonicalName(b.PaidBy), strings.Join(model.CanonicalNames(b.SplitAmong), ";"))
}

// ParseAmount parses a user supplied amount such as "12.50" or "$12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, group.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return d, nil
}

// ClearBills empties the pending queue and returns how many bills were
// dropped.
func (s *Service) ClearBills(ctx context.Context, groupName string) (int, error) {
	var n int
	err := s.Update(ctx, groupName, func(g *group.Group) ([]activity.Entry, error) {
		n = g.ClearPending()
		if n == 0 {
			return nil, nil
		}
		return []activity.Entry{activity.NewEntry(groupName, activity.ActionBillDiscard, fmt.Sprintf("cleared %d bills", n))}, nil
	})
	return n, err
}
