package subconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFilterList(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{"nil means no filter", nil, nil},
		{"false means no filter", false, nil},
		{"empty string means no filter", "", nil},
		{"zero means no filter", float64(0), nil},
		{"string slice lowercased", []string{"AutoModerator", "spez"}, []string{"automoderator", "spez"}},
		{"any slice lowercased", []any{"AutoModerator", "spez"}, []string{"automoderator", "spez"}},
		{"non-string elements become empty", []any{"Mod", float64(3), true}, []string{"mod", "", ""}},
		{"scalar wrapped into single element", "AutoModerator", []string{"automoderator"}},
		{"non-string scalar wraps to empty", float64(42), []string{""}},
		{"true wraps to empty", true, []string{""}},
		{"empty slice stays a filter", []any{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeFilterList(tt.input))
		})
	}
}

// The round-trip property: whatever shape storage held, the result is
// always either nil or a slice of lowercase strings.
func TestNormalizeFilterList_AlwaysLowercase(t *testing.T) {
	inputs := []any{
		[]any{"UPPER", "Mixed", "lower", float64(1)},
		"SCALAR",
		[]string{"A", "B"},
	}

	for _, input := range inputs {
		for _, s := range NormalizeFilterList(input) {
			assert.Equal(t, s, lowerString(s))
		}
	}
}
