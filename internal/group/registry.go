package group

import (
	"slices"
	"strconv"

	"github.com/cleared-dev/grassjelly/internal/model"
)

// AddParticipant registers name in canonical form and returns that form.
// Registering an existing name changes nothing and returns a DuplicateError
// alongside the canonical name; callers may treat it as success.
func (g *Group) AddParticipant(name string) (string, error) {
	canon := model.CanonicalName(name)
	if canon == "" {
		return "", invalid("name", "must not be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.members[canon] {
		return canon, DuplicateError{Kind: "participant", Key: canon}
	}
	// A payer removed under the lenient policy keeps its settled expenses;
	// a new row would make their cancellation shift the wrong balances.
	for _, e := range g.expenses {
		if e.PaidBy == canon {
			return "", invalid("name", "%s still pays settled expense %s", canon, e.ID)
		}
	}
	g.participants = append(g.participants, canon)
	g.members[canon] = true
	g.balances.AddRow(canon)
	return canon, nil
}

// RemoveParticipant unregisters name, dropping its balance row and column
// and pruning it from pending bill splits. Under RemovalStrict the call fails
// with ErrParticipantInUse if any settled expense references the participant,
// if it pays a pending bill, or if a pending bill would be left with nobody to
// split among. Under RemovalLenient it is also pruned from settled expense
// splits, and pending bills it paid for or that it alone split are dropped.
func (g *Group) RemoveParticipant(name string) error {
	canon := model.CanonicalName(name)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.members[canon] {
		return NotFoundError{Kind: "participant", Key: canon}
	}

	if g.policy != RemovalLenient {
		if err := g.checkRemovable(canon); err != nil {
			return err
		}
	}

	g.participants = slices.DeleteFunc(g.participants, func(p string) bool { return p == canon })
	delete(g.members, canon)
	g.balances.DropParticipant(canon)

	bills := g.bills[:0]
	for _, b := range g.bills {
		b.SplitAmong = without(b.SplitAmong, canon)
		if b.PaidBy == canon || len(b.SplitAmong) == 0 {
			continue
		}
		bills = append(bills, b)
	}
	g.bills = bills

	for i := range g.expenses {
		g.expenses[i].SplitAmong = without(g.expenses[i].SplitAmong, canon)
	}
	return nil
}

func (g *Group) checkRemovable(canon string) error {
	for _, e := range g.expenses {
		if e.Involves(canon) {
			return ValidationError{
				Field:  "participant",
				Reason: canon + " is referenced by expense " + e.ID,
				Err:    ErrParticipantInUse,
			}
		}
	}
	for i, b := range g.bills {
		if b.PaidBy == canon {
			return ValidationError{
				Field:  "participant",
				Reason: canon + " pays pending bill " + b.Description,
				Err:    ErrParticipantInUse,
			}
		}
		if len(b.SplitAmong) == 1 && b.SplitAmong[0] == canon {
			return ValidationError{
				Field:  "participant",
				Reason: canon + " is the only one sharing pending bill " + strconv.Itoa(i+1),
				Err:    ErrParticipantInUse,
			}
		}
	}
	return nil
}

// Participants returns the registered names in registration order.
func (g *Group) Participants() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.participants)
}

// HasParticipant reports whether the canonical form of name is registered.
func (g *Group) HasParticipant(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.members[model.CanonicalName(name)]
}

func without(names []string, name string) []string {
	return slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == name })
}
