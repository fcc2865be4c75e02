package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBalances(names ...string) Balances {
	b := Balances{}
	for _, n := range names {
		b.AddRow(n)
	}
	return b
}

func TestBalancesShift(t *testing.T) {
	b := newBalances("Alice", "Bob")
	b.Shift("Alice", "Bob", decimal.RequireFromString("10"))

	assert.True(t, b.Owes("Bob", "Alice").Equal(decimal.RequireFromString("10")))
	assert.True(t, b.Owes("Alice", "Bob").Equal(decimal.RequireFromString("-10")))
	require.NoError(t, b.CheckAntisymmetric())
	assert.True(t, b.Total().IsZero())
}

func TestBalancesShift_PrunesZeroEntries(t *testing.T) {
	b := newBalances("Alice", "Bob")
	b.Shift("Alice", "Bob", decimal.RequireFromString("3.3333333333333333"))
	b.Shift("Alice", "Bob", decimal.RequireFromString("-3.3333333333333333"))

	assert.Empty(t, b["Alice"])
	assert.Empty(t, b["Bob"])
}

func TestBalancesEqual(t *testing.T) {
	a := newBalances("Alice", "Bob")
	a.Shift("Alice", "Bob", decimal.RequireFromString("10"))

	b := newBalances("Alice", "Bob")
	b.Shift("Alice", "Bob", decimal.RequireFromString("10.00"))
	assert.True(t, a.Equal(b), "value equality ignores exponent")

	c := newBalances("Alice", "Bob", "Carol")
	c.Shift("Alice", "Bob", decimal.RequireFromString("10"))
	assert.False(t, a.Equal(c), "rows must match")

	d := a.Clone()
	d.Shift("Bob", "Alice", decimal.RequireFromString("1"))
	assert.False(t, a.Equal(d))
	assert.True(t, a.Owes("Bob", "Alice").Equal(decimal.RequireFromString("10")), "clone must not alias")
}

func TestBalancesDropParticipant(t *testing.T) {
	b := newBalances("Alice", "Bob", "Carol")
	b.Shift("Alice", "Bob", decimal.RequireFromString("5"))
	b.Shift("Carol", "Bob", decimal.RequireFromString("7"))

	b.DropParticipant("Bob")
	assert.NotContains(t, b, "Bob")
	assert.Empty(t, b["Alice"])
	assert.Empty(t, b["Carol"])
	assert.True(t, b.Total().IsZero())
}

func TestCheckAntisymmetric_Detects(t *testing.T) {
	b := newBalances("Alice", "Bob")
	b["Alice"]["Bob"] = decimal.RequireFromString("4")
	b["Bob"]["Alice"] = decimal.RequireFromString("-3")
	assert.Error(t, b.CheckAntisymmetric())

	self := newBalances("Alice")
	self["Alice"]["Alice"] = decimal.RequireFromString("1")
	assert.Error(t, self.CheckAntisymmetric())
}
