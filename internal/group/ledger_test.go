package group

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_AliceBobCarol(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol")

	dinner, err := g.RecordExpense("Alice", dec("30"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	owes(t, g, "Bob", "Alice", "10")
	owes(t, g, "Carol", "Alice", "10")
	owes(t, g, "Alice", "Bob", "-10")
	owes(t, g, "Alice", "Carol", "-10")
	owes(t, g, "Bob", "Carol", "0")
	requireConsistent(t, g)

	require.NoError(t, g.CancelExpense(dinner))
	assert.True(t, g.NetBalances().Equal(emptyBalances("Alice", "Bob", "Carol")))
	assert.Empty(t, g.History())

	_, err = g.RecordExpense("Bob", dec("21"), "Museum", []string{"Bob", "Carol"})
	require.NoError(t, err)
	owes(t, g, "Carol", "Bob", "10.50")
	requireConsistent(t, g)
}

func TestRecordExpense_EqualSplit(t *testing.T) {
	tests := []struct {
		amount string
		split  []string
		share  string
	}{
		{"30", []string{"Alice", "Bob", "Carol"}, "10"},
		{"10", []string{"Alice", "Bob", "Carol"}, "3.3333333333333333"},
		{"45.50", []string{"Bob", "Carol"}, "22.75"},
		{"7", []string{"Bob"}, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			g := newTestGroup(t, "Alice", "Bob", "Carol")
			expID, err := g.RecordExpense("alice", dec(tt.amount), "Test", tt.split)
			require.NoError(t, err)

			e, err := g.Expense(expID)
			require.NoError(t, err)
			assert.True(t, e.Share.Equal(dec(tt.share)), "share: want %s, got %s", tt.share, e.Share)
			for _, p := range tt.split {
				if p == "Alice" {
					continue
				}
				owes(t, g, p, "Alice", tt.share)
			}
			assert.NotContains(t, g.NetBalances()["Alice"], "Alice")
			requireConsistent(t, g)
		})
	}
}

func TestRecordExpense_Validation(t *testing.T) {
	tests := []struct {
		name   string
		payer  string
		amount string
		desc   string
		split  []string
		field  string
	}{
		{"zero amount", "Alice", "0", "Lunch", []string{"Bob"}, "amount"},
		{"negative amount", "Alice", "-5", "Lunch", []string{"Bob"}, "amount"},
		{"sub-cent amount", "Alice", "10.005", "Lunch", []string{"Bob"}, "amount"},
		{"blank description", "Alice", "5", "  ", []string{"Bob"}, "description"},
		{"unknown payer", "Zed", "5", "Lunch", []string{"Bob"}, "paid_by"},
		{"empty split", "Alice", "5", "Lunch", nil, "split_among"},
		{"blank split", "Alice", "5", "Lunch", []string{" "}, "split_among"},
		{"unknown split member", "Alice", "5", "Lunch", []string{"Bob", "Zed"}, "split_among"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGroup(t, "Alice", "Bob")
			_, err := g.RecordExpense(tt.payer, dec(tt.amount), tt.desc, tt.split)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Empty(t, g.History())
			assert.True(t, g.NetBalances().Equal(emptyBalances("Alice", "Bob")))
		})
	}
}

func TestRecordExpense_CollapsesDuplicateSplitNames(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	expID, err := g.RecordExpense("Alice", dec("20"), "Lunch", []string{"bob", "Bob", "alice"})
	require.NoError(t, err)

	e, err := g.Expense(expID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice"}, e.SplitAmong)
	owes(t, g, "Bob", "Alice", "10")
}

func TestCancelExpense_InvertsRecording(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol", "Dave")
	_, err := g.RecordExpense("Alice", dec("100"), "Hotel", []string{"Alice", "Bob", "Carol", "Dave"})
	require.NoError(t, err)
	_, err = g.RecordExpense("Bob", dec("10"), "Snacks", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)

	before := g.NetBalances()
	history := g.History()

	expID, err := g.RecordExpense("Carol", dec("33.33"), "Fuel", []string{"Alice", "Bob", "Dave"})
	require.NoError(t, err)
	require.NoError(t, g.CancelExpense(expID))

	assert.True(t, before.Equal(g.NetBalances()), "balances must be restored exactly")
	assert.Equal(t, history, g.History())
	requireConsistent(t, g)
}

func TestCancelExpense_NotFound(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	expID, err := g.RecordExpense("Alice", dec("10"), "Lunch", []string{"Bob"})
	require.NoError(t, err)
	require.NoError(t, g.CancelExpense(expID))

	err = g.CancelExpense(expID)
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "expense", nf.Kind)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, g.NetBalances().Equal(emptyBalances("Alice", "Bob")), "second cancel must not re-apply")

	_, err = g.Expense(expID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseIDs_NeverReused(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	var ids []string
	for i := 0; i < 3; i++ {
		expID, err := g.RecordExpense("Alice", dec("10"), fmt.Sprintf("Item %d", i), []string{"Bob"})
		require.NoError(t, err)
		ids = append(ids, expID)
	}
	require.NoError(t, g.CancelExpense(ids[1]))

	next, err := g.RecordExpense("Bob", dec("4"), "Item 3", []string{"Alice"})
	require.NoError(t, err)
	assert.Equal(t, "E-0004", next)
	assert.NotContains(t, ids, next)

	// Remaining lookups still resolve after the index shift.
	e, err := g.Expense(ids[2])
	require.NoError(t, err)
	assert.Equal(t, "Item 2", e.Description)
	require.NoError(t, g.CancelExpense(ids[2]))
	requireConsistent(t, g)
}

func TestHistory_ChronologicalAndDetached(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	_, err := g.RecordExpense("Alice", dec("10"), "First", []string{"Bob"})
	require.NoError(t, err)
	_, err = g.RecordExpense("Bob", dec("20"), "Second", []string{"Alice"})
	require.NoError(t, err)

	h := g.History()
	require.Len(t, h, 2)
	assert.Equal(t, "First", h[0].Description)
	assert.True(t, h[0].CreatedAt.Before(h[1].CreatedAt))

	h[0].SplitAmong[0] = "Mallory"
	assert.Equal(t, []string{"Bob"}, g.History()[0].SplitAmong)

	b := g.NetBalances()
	b["Alice"]["Bob"] = dec("999")
	owes(t, g, "Alice", "Bob", "10")
}

func TestNetBalances_ZeroSumOverManyOperations(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol")
	names := []string{"Alice", "Bob", "Carol"}
	var ids []string
	for i := 0; i < 30; i++ {
		payer := names[i%3]
		split := names[:1+i%3]
		expID, err := g.RecordExpense(payer, dec(fmt.Sprintf("%d.%02d", 1+i, i)), "Round", split)
		require.NoError(t, err)
		ids = append(ids, expID)
		if i%4 == 3 {
			require.NoError(t, g.CancelExpense(ids[i/2]))
		}
		requireConsistent(t, g)
	}
}

func TestConcurrentReadersSeeConsistentPairs(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			expID, err := g.RecordExpense("Alice", dec("9"), "Loop", []string{"Alice", "Bob", "Carol"})
			if err != nil {
				t.Error(err)
				return
			}
			if i%2 == 0 {
				if err := g.CancelExpense(expID); err != nil {
					t.Error(err)
					return
				}
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := g.NetBalances().CheckAntisymmetric(); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
	owes(t, g, "Bob", "Alice", "300")
}
