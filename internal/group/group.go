// Package group holds the expense ledger of a single named group: the
// participant registry, the pending bill queue and the settled expense
// history with its derived balance matrix.
//
// A Group is safe for concurrent use. Every mutation holds the write lock for
// its whole duration, so readers never see one side of a balance pair updated
// without the other.
package group

import (
	"fmt"
	"sync"
	"time"

	"github.com/cleared-dev/grassjelly/internal/id"
	"github.com/cleared-dev/grassjelly/internal/model"
)

// RemovalPolicy decides what happens when a participant still referenced by
// the ledger is removed.
type RemovalPolicy string

const (
	// RemovalStrict rejects removal of a participant referenced by a settled
	// expense or needed by a pending bill.
	RemovalStrict RemovalPolicy = "strict"
	// RemovalLenient always removes, pruning the name from every split.
	// Shares of settled expenses stay frozen.
	RemovalLenient RemovalPolicy = "lenient"
)

// ParseRemovalPolicy validates a policy name; "" means strict.
func ParseRemovalPolicy(s string) (RemovalPolicy, error) {
	switch RemovalPolicy(s) {
	case "", RemovalStrict:
		return RemovalStrict, nil
	case RemovalLenient:
		return RemovalLenient, nil
	default:
		return "", fmt.Errorf("unknown removal policy %q", s)
	}
}

// Option configures a Group.
type Option func(*Group)

// WithClock overrides time.Now for expense timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Group) { g.now = now }
}

// WithRemovalPolicy sets the participant removal policy.
func WithRemovalPolicy(p RemovalPolicy) Option {
	return func(g *Group) { g.policy = p }
}

// Group is the ledger of one named group.
type Group struct {
	mu     sync.RWMutex
	name   string
	now    func() time.Time
	policy RemovalPolicy

	participants []string
	members      map[string]bool
	bills        []model.Bill
	expenses     []model.Expense
	byID         map[string]int
	balances     model.Balances
	seq          id.Sequence
}

// New creates an empty group.
func New(name string, opts ...Option) *Group {
	g := &Group{
		name:     name,
		now:      time.Now,
		policy:   RemovalStrict,
		members:  make(map[string]bool),
		byID:     make(map[string]int),
		balances: model.Balances{},
		seq:      id.NewSequence(1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Policy returns the participant removal policy in effect.
func (g *Group) Policy() RemovalPolicy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.policy
}
