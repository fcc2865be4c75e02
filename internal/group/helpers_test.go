package group

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/grassjelly/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixedClock returns a clock that advances one minute per call.
func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestGroup(t *testing.T, names ...string) *Group {
	t.Helper()
	g := New("Lisbon Trip", WithClock(fixedClock()))
	for _, n := range names {
		_, err := g.AddParticipant(n)
		require.NoError(t, err)
	}
	return g
}

func requireConsistent(t *testing.T, g *Group) {
	t.Helper()
	b := g.NetBalances()
	require.NoError(t, b.CheckAntisymmetric())
	require.True(t, b.Total().IsZero(), "balances must sum to zero, got %s", b.Total())
	require.NoError(t, g.Verify())
}

func owes(t *testing.T, g *Group, debtor, creditor, want string) {
	t.Helper()
	got := g.Owes(debtor, creditor)
	require.True(t, got.Equal(dec(want)), "%s owes %s: want %s, got %s", debtor, creditor, want, got)
}

func emptyBalances(names ...string) model.Balances {
	b := model.Balances{}
	for _, n := range names {
		b.AddRow(n)
	}
	return b
}
