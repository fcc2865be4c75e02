package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/group"
)

// legacyDateLayout matches the naive ISO timestamps of the old data file.
const legacyDateLayout = "2006-01-02T15:04:05.999999"

type legacyFile struct {
	Calculators       map[string]legacyCalculator `json:"calculators"`
	CurrentCalculator *string                     `json:"current_calculator"`
}

type legacyCalculator struct {
	Name     string          `json:"name"`
	Friends  []string        `json:"friends"`
	Expenses []legacyExpense `json:"expenses"`
	Bills    []legacyBill    `json:"bills"`
	// Balances are ignored: they are recomputed from the expenses.
	Balances map[string]map[string]float64 `json:"balances"`
}

type legacyExpense struct {
	ID          string   `json:"id"`
	PaidBy      string   `json:"paidBy"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description"`
	SplitAmong  []string `json:"splitAmong"`
	Date        string   `json:"date"`
}

type legacyBill struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	PaidBy      string   `json:"paidBy"`
	SplitAmong  []string `json:"splitAmong"`
}

// LegacyResult is the outcome of a legacy import.
type LegacyResult struct {
	Groups  []*group.Group
	Current string
	// Skipped describes expenses and bills that could not be carried over.
	Skipped []string
}

// ReadLegacy converts the old single-file data store (every calculator in one
// JSON document) into groups. Expenses are replayed in file order so
// balances are recomputed exactly and every expense gets a fresh unique ID;
// the old IDs could collide after cancellations.
func ReadLegacy(r io.Reader, loc *time.Location, opts ...group.Option) (LegacyResult, error) {
	var file legacyFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return LegacyResult{}, fmt.Errorf("reading legacy data: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	var res LegacyResult
	if file.CurrentCalculator != nil {
		res.Current = *file.CurrentCalculator
	}

	names := make([]string, 0, len(file.Calculators))
	for name := range file.Calculators {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g, skipped, err := convertCalculator(name, file.Calculators[name], loc, opts)
		if err != nil {
			return LegacyResult{}, fmt.Errorf("calculator %q: %w", name, err)
		}
		res.Groups = append(res.Groups, g)
		res.Skipped = append(res.Skipped, skipped...)
	}
	return res, nil
}

func convertCalculator(name string, calc legacyCalculator, loc *time.Location, opts []group.Option) (*group.Group, []string, error) {
	var at time.Time
	clock := func() time.Time { return at }
	g := group.New(name, append(opts, group.WithClock(clock))...)

	for _, f := range calc.Friends {
		if _, err := g.AddParticipant(f); err != nil && !errors.Is(err, group.ErrDuplicate) {
			return nil, nil, fmt.Errorf("friend %q: %w", f, err)
		}
	}

	var skipped []string
	for _, e := range calc.Expenses {
		ts, err := time.ParseInLocation(legacyDateLayout, e.Date, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("expense %s: parsing date %q: %w", e.ID, e.Date, err)
		}
		at = ts
		amount := decimal.NewFromFloat(e.Amount).Round(2)
		if _, err := g.RecordExpense(e.PaidBy, amount, e.Description, e.SplitAmong); err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: expense %s (%s): %v", name, e.ID, e.Description, err))
		}
	}

	for i, b := range calc.Bills {
		amount := decimal.NewFromFloat(b.Amount).Round(2)
		if err := g.StageBill(b.Description, amount, b.PaidBy, b.SplitAmong); err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: bill %d (%s): %v", name, i+1, b.Description, err))
		}
	}
	return g, skipped, nil
}
