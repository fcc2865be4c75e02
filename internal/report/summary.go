// Package report projects a group's ledger into a read-only summary and
// renders it for people: Markdown for terminals and documents, CSV for
// spreadsheets.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/grassjelly/internal/model"
)

// DateFormat is the display format for expense timestamps: 14/03/2025 1830H.
const DateFormat = "02/01/2006 1504H"

// View is the read side of a group the projection needs.
type View interface {
	Name() string
	Participants() []string
	NetBalances() model.Balances
	History() []model.Expense
}

// Debt is one creditor relationship: Ower owes OwedTo Amount.
type Debt struct {
	Ower    string          `json:"ower"`
	OwedTo  string          `json:"owed_to"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

// Row is one line of the expense history table.
type Row struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	PaidBy      string   `json:"paid_by"`
	Amount      string   `json:"amount"`
	Description string   `json:"description"`
	SplitAmong  []string `json:"split_among"`
}

// Split returns the split list as shown in tables.
func (r Row) Split() string {
	return strings.Join(r.SplitAmong, ", ")
}

// Summary is the projection consumed by renderers.
type Summary struct {
	Group       string    `json:"group"`
	GeneratedAt time.Time `json:"generated_at"`
	Currency    string    `json:"currency"`
	Owed        []Debt    `json:"owed"`
	History     []Row     `json:"history"`
}

// Options controls display formatting. A nil Formatter renders USD.
type Options struct {
	Formatter *Formatter
	Location  *time.Location
	Now       time.Time
}

// Build projects v into a Summary. Owed lists every pair whose balance,
// rounded to the currency's minor unit, is positive, ordered by creditor and
// then debtor registration order; only one direction of a pair can qualify.
func Build(v View, opts Options) Summary {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	money := opts.Formatter
	if money == nil {
		money, _ = NewFormatter("USD")
	}

	people := v.Participants()
	balances := v.NetBalances()
	s := Summary{
		Group:       v.Name(),
		GeneratedAt: now,
		Currency:    money.Code(),
		Owed:        []Debt{},
		History:     []Row{},
	}
	for _, creditor := range people {
		for _, debtor := range people {
			amt := balances[creditor][debtor]
			if !money.Round(amt).IsPositive() {
				continue
			}
			s.Owed = append(s.Owed, Debt{
				Ower:    debtor,
				OwedTo:  creditor,
				Amount:  amt,
				Display: money.Format(amt),
			})
		}
	}
	for _, e := range v.History() {
		s.History = append(s.History, Row{
			ID:          e.ID,
			Date:        e.CreatedAt.In(loc).Format(DateFormat),
			PaidBy:      e.PaidBy,
			Amount:      money.Format(e.Amount),
			Description: e.Description,
			SplitAmong:  e.SplitAmong,
		})
	}
	return s
}

// Creditors returns the distinct OwedTo names in the order they appear.
func (s Summary) Creditors() []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range s.Owed {
		if !seen[d.OwedTo] {
			seen[d.OwedTo] = true
			out = append(out, d.OwedTo)
		}
	}
	return out
}
