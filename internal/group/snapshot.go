package group

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/cleared-dev/grassjelly/internal/id"
	"github.com/cleared-dev/grassjelly/internal/model"
)

// SnapshotVersion is the schema version written by Snapshot.
const SnapshotVersion = 1

var validate = validator.New()

// Snapshot is the serializable state of a group. Keys are canonical
// participant names.
type Snapshot struct {
	Version      int             `json:"version" validate:"eq=1"`
	Name         string          `json:"name" validate:"required"`
	NextSeq      int             `json:"next_seq" validate:"gte=1"`
	Participants []string        `json:"participants" validate:"dive,required"`
	Bills        []model.Bill    `json:"bills" validate:"dive"`
	Expenses     []model.Expense `json:"expenses" validate:"dive"`
	Balances     model.Balances  `json:"balances"`
}

// Snapshot captures the current state of the group.
func (g *Group) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Version:      SnapshotVersion,
		Name:         g.name,
		NextSeq:      g.seq.Peek(),
		Participants: slices.Clone(g.participants),
		Bills:        make([]model.Bill, len(g.bills)),
		Expenses:     make([]model.Expense, len(g.expenses)),
		Balances:     g.balances.Clone(),
	}
	if s.Participants == nil {
		s.Participants = []string{}
	}
	for i, b := range g.bills {
		s.Bills[i] = b.Clone()
	}
	for i, e := range g.expenses {
		s.Expenses[i] = e.Clone()
	}
	return s
}

// Restore rebuilds a group from a snapshot after checking it field by field
// and verifying that its balances match its expense history.
func Restore(s Snapshot, opts ...Option) (*Group, error) {
	if err := validate.Struct(s); err != nil {
		return nil, ValidationError{Field: "snapshot", Reason: err.Error(), Err: err}
	}

	g := New(s.Name, opts...)
	for _, p := range s.Participants {
		if model.CanonicalName(p) != p {
			return nil, invalid("participants", "%q is not a canonical name", p)
		}
		if g.members[p] {
			return nil, invalid("participants", "duplicate participant %q", p)
		}
		g.participants = append(g.participants, p)
		g.members[p] = true
	}

	for i, b := range s.Bills {
		bill, err := g.checkEntry(b.Description, b.Amount, b.PaidBy, b.SplitAmong)
		if err != nil {
			return nil, fmt.Errorf("bill %d: %w", i+1, err)
		}
		g.bills = append(g.bills, bill)
	}

	lastSeq := 0
	for _, e := range s.Expenses {
		seq, err := id.ParseExpenseID(e.ID)
		if err != nil {
			return nil, ValidationError{Field: "expenses", Reason: err.Error(), Err: err}
		}
		if seq <= lastSeq {
			return nil, invalid("expenses", "expense %s is out of order", e.ID)
		}
		lastSeq = seq
		if !e.Amount.IsPositive() || !e.Share.IsPositive() {
			return nil, invalid("expenses", "expense %s must have positive amount and share", e.ID)
		}
		for _, p := range e.SplitAmong {
			if !g.members[p] {
				return nil, invalid("expenses", "expense %s splits with unknown participant %q", e.ID, p)
			}
		}
		g.byID[e.ID] = len(g.expenses)
		g.expenses = append(g.expenses, e.Clone())
	}
	if s.NextSeq <= lastSeq {
		return nil, invalid("next_seq", "%d would reuse expense sequence %d", s.NextSeq, lastSeq)
	}
	g.seq = id.NewSequence(s.NextSeq)

	if len(s.Balances) != len(s.Participants) {
		return nil, invalid("balances", "expected %d rows, got %d", len(s.Participants), len(s.Balances))
	}
	for row := range s.Balances {
		if !g.members[row] {
			return nil, invalid("balances", "row for unknown participant %q", row)
		}
	}
	g.balances = s.Balances.Clone()
	for _, p := range g.participants {
		g.balances.AddRow(p)
	}
	if err := verify(g.participants, g.members, g.expenses, g.balances); err != nil {
		return nil, ValidationError{Field: "balances", Reason: err.Error(), Err: err}
	}
	return g, nil
}

// EncodeSnapshot serializes a snapshot as indented JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a snapshot, rejecting unknown fields. Semantic checks
// happen in Restore.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, ValidationError{Field: "snapshot", Reason: err.Error(), Err: err}
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, invalid("version", "unsupported snapshot version %d", s.Version)
	}
	return s, nil
}

// Unmarshal decodes and restores a group in one step.
func Unmarshal(data []byte, opts ...Option) (*Group, error) {
	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return Restore(s, opts...)
}

// Marshal encodes the group's current snapshot.
func Marshal(g *Group) ([]byte, error) {
	return EncodeSnapshot(g.Snapshot())
}
