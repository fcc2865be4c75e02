package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/grassjelly/internal/group"
)

var testNow = time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usd(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("usd")
	require.NoError(t, err)
	return f
}

func scenario(t *testing.T) *group.Group {
	t.Helper()
	at := time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)
	g := group.New("Lisbon trip", group.WithClock(func() time.Time {
		at = at.Add(time.Hour)
		return at
	}))
	for _, n := range []string{"Alice", "Bob", "Carol"} {
		_, err := g.AddParticipant(n)
		require.NoError(t, err)
	}
	_, err := g.RecordExpense("Alice", dec("30"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	_, err = g.RecordExpense("Bob", dec("21"), "Museum | tickets", []string{"Bob", "Carol"})
	require.NoError(t, err)
	return g
}

func TestFormatter(t *testing.T) {
	f := usd(t)
	assert.Equal(t, "$10.50", f.Format(dec("10.5")))
	assert.Equal(t, "$3.33", f.Format(dec("3.3333333333333333")))
	assert.Equal(t, "$1,234.57", f.Format(dec("1234.567")))
	assert.True(t, f.Round(dec("0.004")).IsZero())
	assert.Equal(t, "0.01", f.Round(dec("0.005")).StringFixed(2))
	assert.Equal(t, "-$2.50", f.Format(dec("-2.499")))

	_, err := NewFormatter("XXQ")
	assert.Error(t, err)
}

func TestFormatter_BeyondInt64(t *testing.T) {
	f := usd(t)
	assert.Equal(t, "$92,233,720,368,547,758.07", f.Format(dec("92233720368547758.07")))
	assert.Equal(t, "$92,233,720,368,547,758.08", f.Format(dec("92233720368547758.08")))
	assert.Equal(t, "$200,000,000,000,000,000.00", f.Format(dec("200000000000000000")))
	assert.Equal(t, "-$100,000,000,000,000,000.00", f.Format(dec("-100000000000000000")))

	jpy, err := NewFormatter("JPY")
	require.NoError(t, err)
	assert.Equal(t, "¥100,000,000,000,000,000,000", jpy.Format(dec("100000000000000000000")))
}

func TestBuild_LargeBalances(t *testing.T) {
	g := group.New("Big spend")
	for _, n := range []string{"Alice", "Bob"} {
		_, err := g.AddParticipant(n)
		require.NoError(t, err)
	}
	_, err := g.RecordExpense("Alice", dec("200000000000000000"), "Island", []string{"Alice", "Bob"})
	require.NoError(t, err)

	s := Build(g, Options{Formatter: usd(t), Location: time.UTC, Now: testNow})
	require.Len(t, s.Owed, 1)
	assert.Equal(t, "Bob", s.Owed[0].Ower)
	assert.Equal(t, "Alice", s.Owed[0].OwedTo)
	assert.Equal(t, "$100,000,000,000,000,000.00", s.Owed[0].Display)
	require.Len(t, s.History, 1)
	assert.Equal(t, "$200,000,000,000,000,000.00", s.History[0].Amount)
}

func TestBuild_DefaultsToUSD(t *testing.T) {
	s := Build(scenario(t), Options{Location: time.UTC, Now: testNow})
	assert.Equal(t, "USD", s.Currency)
	require.NotEmpty(t, s.Owed)
	assert.Equal(t, "$10.00", s.Owed[0].Display)
}

func TestBuild_OwedList(t *testing.T) {
	s := Build(scenario(t), Options{Formatter: usd(t), Location: time.UTC, Now: testNow})

	require.Len(t, s.Owed, 3)
	assert.Equal(t, Debt{Ower: "Bob", OwedTo: "Alice", Amount: s.Owed[0].Amount, Display: "$10.00"}, s.Owed[0])
	assert.Equal(t, "Carol", s.Owed[1].Ower)
	assert.Equal(t, "Alice", s.Owed[1].OwedTo)
	assert.Equal(t, "Carol", s.Owed[2].Ower)
	assert.Equal(t, "Bob", s.Owed[2].OwedTo)
	assert.Equal(t, "$10.50", s.Owed[2].Display)
	assert.Equal(t, []string{"Alice", "Bob"}, s.Creditors())
	assert.Equal(t, "USD", s.Currency)
}

func TestBuild_SuppressesSettledPairs(t *testing.T) {
	g := scenario(t)
	for _, e := range g.History() {
		require.NoError(t, g.CancelExpense(e.ID))
	}
	s := Build(g, Options{Formatter: usd(t), Location: time.UTC, Now: testNow})
	assert.Empty(t, s.Owed)
	assert.Empty(t, s.History)
}

func TestBuild_HistoryRows(t *testing.T) {
	s := Build(scenario(t), Options{Formatter: usd(t), Location: time.UTC, Now: testNow})

	require.Len(t, s.History, 2)
	assert.Equal(t, Row{
		ID:          "E-0001",
		Date:        "14/03/2025 1005H",
		PaidBy:      "Alice",
		Amount:      "$30.00",
		Description: "Dinner",
		SplitAmong:  []string{"Alice", "Bob", "Carol"},
	}, s.History[0])
	assert.Equal(t, "Bob, Carol", s.History[1].Split())
}

func TestWriteMarkdown(t *testing.T) {
	s := Build(scenario(t), Options{Formatter: usd(t), Location: time.UTC, Now: testNow})

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "# LISBON TRIP\n")
	assert.Contains(t, out, "Generated on: 14/03/2025 1830H")
	assert.Contains(t, out, "### Alice\n\n- Bob owes Alice $10.00\n- Carol owes Alice $10.00\n")
	assert.Contains(t, out, "- Carol owes Bob $10.50\n")
	assert.Contains(t, out, "| E-0002 | 14/03/2025 1105H | Bob | $21.00 | Museum \\| tickets | Bob, Carol |")
}

func TestWriteMarkdown_Empty(t *testing.T) {
	g := group.New("Empty")
	s := Build(g, Options{Formatter: usd(t), Now: testNow})

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, s))
	assert.Contains(t, buf.String(), "Everyone is settled up.")
	assert.Contains(t, buf.String(), "No expenses yet.")
}

func TestWriteCSV(t *testing.T) {
	s := Build(scenario(t), Options{Formatter: usd(t), Location: time.UTC, Now: testNow})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, HistoryHeader, records[0])
	assert.Equal(t, []string{"E-0001", "14/03/2025 1005H", "Alice", "$30.00", "Dinner", "Alice, Bob, Carol"}, records[1])
}
