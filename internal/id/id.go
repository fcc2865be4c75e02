package id

import (
	"fmt"
	"strconv"
	"strings"
)

// expensePrefix marks ledger expense IDs.
const expensePrefix = "E-"

// FormatExpenseID returns an expense ID like "E-0007".
func FormatExpenseID(seq int) string {
	return fmt.Sprintf("%s%04d", expensePrefix, seq)
}

// ParseExpenseID parses "E-0007" into its sequence number.
func ParseExpenseID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, expensePrefix)
	if !ok || rest == "" {
		return 0, fmt.Errorf("invalid expense ID format: %q", id)
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in expense ID %q: %w", id, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("invalid sequence in expense ID %q: must be positive", id)
	}
	return seq, nil
}

// Sequence hands out strictly increasing expense sequence numbers. The zero
// value starts at 1. It is not safe for concurrent use; the owning group
// serializes access.
type Sequence struct {
	next int
}

// NewSequence resumes a sequence whose next value is next.
func NewSequence(next int) Sequence {
	if next < 1 {
		next = 1
	}
	return Sequence{next: next}
}

// Next returns the next sequence number and advances.
func (s *Sequence) Next() int {
	if s.next < 1 {
		s.next = 1
	}
	n := s.next
	s.next++
	return n
}

// Peek returns the value Next would return without advancing.
func (s Sequence) Peek() int {
	if s.next < 1 {
		return 1
	}
	return s.next
}
