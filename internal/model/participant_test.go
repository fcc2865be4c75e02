package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"bob", "Bob"},
		{"Bob", "Bob"},
		{"BOB", "Bob"},
		{"  mary   ann ", "Mary Ann"},
		{"jean\tluc", "Jean Luc"},
		{"mary-ann", "Mary-ann"},
		{"jean-luc picard", "Jean-luc Picard"},
		{"o'brien", "O'brien"},
		{"2pac", "2pac"},
		{"mCdONALD", "Mcdonald"},
		{"élodie", "Élodie"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalName(tt.input), "CanonicalName(%q)", tt.input)
	}
}

func TestCanonicalNames_DropsBlanksAndDuplicates(t *testing.T) {
	got := CanonicalNames([]string{"carol", " ", "alice", "CAROL", "Alice"})
	assert.Equal(t, []string{"Carol", "Alice"}, got)
}

func TestExpenseInvolves(t *testing.T) {
	e := Expense{PaidBy: "Alice", SplitAmong: []string{"Bob", "Carol"}}
	assert.True(t, e.Involves("Alice"))
	assert.True(t, e.Involves("Carol"))
	assert.False(t, e.Involves("Dave"))
}
