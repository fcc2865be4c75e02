package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddParticipant_Idempotent(t *testing.T) {
	g := New("Trip")

	name, err := g.AddParticipant("bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	name, err = g.AddParticipant("Bob")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "Bob", name)

	assert.Equal(t, []string{"Bob"}, g.Participants())
	assert.Len(t, g.NetBalances(), 1)
}

func TestAddParticipant_RejectsBlank(t *testing.T) {
	g := New("Trip")
	_, err := g.AddParticipant("   ")
	require.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, g.Participants())
}

func TestAddParticipant_KeepsRegistrationOrder(t *testing.T) {
	g := newTestGroup(t, "carol", "alice", "bob")
	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, g.Participants())
	assert.True(t, g.HasParticipant("ALICE"))
}

func TestRemoveParticipant_Unknown(t *testing.T) {
	g := newTestGroup(t, "Alice")
	err := g.RemoveParticipant("Zed")

	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "participant", nf.Kind)
	assert.Equal(t, "Zed", nf.Key)
}

func TestRemoveParticipant_PrunesPendingSplits(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol")
	require.NoError(t, g.StageBill("Taxi", dec("12"), "Alice", []string{"Alice", "Bob", "Carol"}))

	require.NoError(t, g.RemoveParticipant("carol"))

	assert.Equal(t, []string{"Alice", "Bob"}, g.Participants())
	bills := g.PendingBills()
	require.Len(t, bills, 1)
	assert.Equal(t, []string{"Alice", "Bob"}, bills[0].SplitAmong)
	assert.NotContains(t, g.NetBalances(), "Carol")
}

func TestRemoveParticipant_StrictRejectsSettledReference(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob", "Carol")
	_, err := g.RecordExpense("Alice", dec("30"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	before := g.Snapshot()

	err = g.RemoveParticipant("Bob")
	require.ErrorIs(t, err, ErrInvalid)
	require.ErrorIs(t, err, ErrParticipantInUse)
	assert.Equal(t, before, g.Snapshot(), "rejected removal must not change state")
}

func TestRemoveParticipant_StrictRejectsPendingPayer(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	require.NoError(t, g.StageBill("Taxi", dec("12"), "Bob", []string{"Alice"}))

	require.ErrorIs(t, g.RemoveParticipant("Bob"), ErrParticipantInUse)
}

func TestRemoveParticipant_StrictRejectsEmptyingSplit(t *testing.T) {
	g := newTestGroup(t, "Alice", "Bob")
	require.NoError(t, g.StageBill("Gift", dec("20"), "Alice", []string{"Bob"}))

	require.ErrorIs(t, g.RemoveParticipant("Bob"), ErrParticipantInUse)
}

func TestRemoveParticipant_LenientFreezesShares(t *testing.T) {
	g := New("Trip", WithClock(fixedClock()), WithRemovalPolicy(RemovalLenient))
	for _, n := range []string{"Alice", "Bob", "Carol"} {
		_, err := g.AddParticipant(n)
		require.NoError(t, err)
	}
	expID, err := g.RecordExpense("Alice", dec("30"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	require.NoError(t, g.StageBill("Gift", dec("20"), "Alice", []string{"Carol"}))
	require.NoError(t, g.StageBill("Taxi", dec("9"), "Carol", []string{"Alice", "Bob"}))

	require.NoError(t, g.RemoveParticipant("Carol"))

	owes(t, g, "Bob", "Alice", "10")
	e, err := g.Expense(expID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, e.SplitAmong)
	assert.True(t, e.Share.Equal(dec("10")), "share stays frozen at amount/3")
	assert.Empty(t, g.PendingBills(), "bills paid by or split only with Carol are dropped")
	requireConsistent(t, g)

	require.NoError(t, g.CancelExpense(expID))
	assert.True(t, g.NetBalances().Equal(emptyBalances("Alice", "Bob")))
	requireConsistent(t, g)
}

func TestRemoveParticipant_LenientPayerRemoved(t *testing.T) {
	g := New("Trip", WithRemovalPolicy(RemovalLenient))
	for _, n := range []string{"Alice", "Bob", "Carol"} {
		_, err := g.AddParticipant(n)
		require.NoError(t, err)
	}
	expID, err := g.RecordExpense("Alice", dec("30"), "Dinner", []string{"Alice", "Bob", "Carol"})
	require.NoError(t, err)
	_, err = g.RecordExpense("Bob", dec("8"), "Coffee", []string{"Bob", "Carol"})
	require.NoError(t, err)

	require.NoError(t, g.RemoveParticipant("Alice"))
	owes(t, g, "Carol", "Bob", "4")
	requireConsistent(t, g)

	_, err = g.AddParticipant("alice")
	assert.ErrorIs(t, err, ErrInvalid, "a removed payer cannot return while its expenses stand")

	require.NoError(t, g.CancelExpense(expID), "cancelling after the payer left must still work")
	owes(t, g, "Carol", "Bob", "4")
	requireConsistent(t, g)

	_, err = g.AddParticipant("Alice")
	require.NoError(t, err)
	requireConsistent(t, g)
}

func TestParseRemovalPolicy(t *testing.T) {
	p, err := ParseRemovalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RemovalStrict, p)

	p, err = ParseRemovalPolicy("lenient")
	require.NoError(t, err)
	assert.Equal(t, RemovalLenient, p)

	_, err = ParseRemovalPolicy("retroactive")
	assert.Error(t, err)
}
