package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"collapses horizontal space", "Hello \t  world", "Hello world"},
		{"drops noise lines", "Roadmap\nid: 1234\nType: page\ncreated_at: 2024-01-01\nShip Q3", "Roadmap\nShip Q3"},
		{"dedupes case-insensitively", "Launch plan\nlaunch PLAN\nBudget", "Launch plan\nBudget"},
		{"drops short lines", "ok\n--\nReal content", "Real content"},
		{"collapses blank runs", "First line\n\n\n\n\nSecond line", "First line\nSecond line"},
		{"normalizes carriage returns", "Alpha line\r\nBeta line\rGamma line", "Alpha line\nBeta line\nGamma line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestClean_DedupUsesFirst200Chars(t *testing.T) {
	prefix := strings.Repeat("x", 200)
	got := Clean(prefix + "A\n" + prefix + "B")
	assert.Equal(t, prefix+"A", got)
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"  Team   update\n\n\n\nteam update\nid: 99\nShipping  v2 Friday \n ab \nShipping v2 friday",
		"# README\n\nInstall with make\n\n\nupdated_at: now\nRun tests",
		"single",
		strings.Repeat("line one\nline two\n", 50),
		"Roadmap\n\u00a0id: 1234\nShip Q3",
		"Roadmap\n\vtype: page\nShip Q3",
		"Roadmap\n\u2003created_at\u00a0: 2024-01-01\nShip Q3",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once))
	}
}

func TestClean_NoiseLinesWithUnicodeSpace(t *testing.T) {
	in := "Roadmap\n\u00a0id: 1234\n\vtype: page\n\u3000UPDATED_AT : today\nShip Q3"
	assert.Equal(t, "Roadmap\nShip Q3", Clean(in))
}

func TestClean_KeepsLinesMentioningKeysMidSentence(t *testing.T) {
	assert.Equal(t, "The type: of customer matters\nour id: badge policy", Clean("The type: of customer matters\nour id: badge policy"))
}

func TestCleanForStorage(t *testing.T) {
	_, ok := CleanForStorage("  ab  ")
	assert.False(t, ok)

	_, ok = CleanForStorage("id: 1\ntype: x")
	assert.False(t, ok)

	got, ok := CleanForStorage("Welcome to the team")
	assert.True(t, ok)
	assert.Equal(t, "Welcome to the team", got)
}
