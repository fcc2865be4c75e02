package group

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T) *Group {
	t.Helper()
	g := newTestGroup(t, "Alice", "Bob", "Carol")
	_, err := g.RecordExpense("Alice", dec("10"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	second, err := g.RecordExpense("Bob", dec("21"), "Museum", []string{"Bob", "Carol"})
	require.NoError(t, err)
	_, err = g.RecordExpense("Carol", dec("12.40"), "Taxi", []string{"Alice", "Carol"})
	require.NoError(t, err)
	require.NoError(t, g.CancelExpense(second))
	require.NoError(t, g.StageBill("Breakfast", dec("18"), "Alice", []string{"Bob", "Carol"}))
	return g
}

func TestSnapshot_RoundTripIsByteIdentical(t *testing.T) {
	g := populated(t)
	data, err := Marshal(g)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	again, err := Marshal(restored)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	assert.Equal(t, g.Participants(), restored.Participants())
	assert.True(t, g.NetBalances().Equal(restored.NetBalances()))
	assert.Len(t, restored.PendingBills(), 1)
}

func TestSnapshot_RestoredSequenceContinues(t *testing.T) {
	g := populated(t)
	restored, err := Restore(g.Snapshot())
	require.NoError(t, err)

	expID, err := restored.RecordExpense("Alice", dec("1"), "Gum", []string{"Bob"})
	require.NoError(t, err)
	assert.Equal(t, "E-0004", expID)
}

func TestSnapshot_EmptyGroup(t *testing.T) {
	data, err := Marshal(New("Empty"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"participants": []`)

	g, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "Empty", g.Name())
}

func TestDecodeSnapshot_RejectsUnknownFields(t *testing.T) {
	data, err := Marshal(populated(t))
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"version": 1,`, `"version": 1, "friends": [],`, 1)

	_, err = Unmarshal([]byte(tampered))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "friends")
}

func TestDecodeSnapshot_RejectsMissingVersion(t *testing.T) {
	_, err := Unmarshal([]byte(`{"name": "Trip", "next_seq": 1, "participants": [], "bills": [], "expenses": [], "balances": {}}`))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestRestore_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"missing name", func(s *Snapshot) { s.Name = "" }},
		{"non-canonical participant", func(s *Snapshot) { s.Participants[0] = "alice" }},
		{"duplicate participant", func(s *Snapshot) { s.Participants[1] = "Alice" }},
		{"reused sequence", func(s *Snapshot) { s.NextSeq = 2 }},
		{"tampered balance", func(s *Snapshot) { s.Balances["Alice"]["Bob"] = dec("100") }},
		{"extra balance row", func(s *Snapshot) { s.Balances.AddRow("Mallory") }},
		{"unknown bill payer", func(s *Snapshot) { s.Bills[0].PaidBy = "Mallory" }},
		{"non-positive share", func(s *Snapshot) { s.Expenses[0].Share = dec("0") }},
		{"out of order ids", func(s *Snapshot) {
			s.Expenses[0], s.Expenses[1] = s.Expenses[1], s.Expenses[0]
		}},
		{"unknown split member", func(s *Snapshot) { s.Expenses[1].SplitAmong = []string{"Mallory"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := populated(t).Snapshot()
			tt.mutate(&s)
			_, err := Restore(s)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
