package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildSummary verifies the templated sentence for every clause
// combination.
func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name       string
		strengths  []TagCount
		weaknesses []TagCount
		n          int
		want       string
	}{
		{
			name:       "both clauses",
			strengths:  []TagCount{{Tag: "sound", Count: 3}, {Tag: "driver_fun", Count: 2}},
			weaknesses: []TagCount{{Tag: "reliability", Count: 2}},
			n:          2,
			want:       "Praised for sound and driver_fun; watch for reliability",
		},
		{
			name:      "strengths only",
			strengths: []TagCount{{Tag: "value", Count: 1}},
			n:         2,
			want:      "Praised for value",
		},
		{
			name:       "weaknesses only",
			weaknesses: []TagCount{{Tag: "interior", Count: 4}, {Tag: "value", Count: 1}},
			n:          2,
			want:       "watch for interior and value",
		},
		{
			name: "both empty yields no summary",
			n:    2,
			want: "",
		},
		{
			name:       "caps each clause at n tags",
			strengths:  []TagCount{{Tag: "a", Count: 3}, {Tag: "b", Count: 2}, {Tag: "c", Count: 1}},
			weaknesses: []TagCount{{Tag: "x", Count: 3}, {Tag: "y", Count: 2}, {Tag: "z", Count: 1}},
			n:          2,
			want:       "Praised for a and b; watch for x and y",
		},
		{
			name:      "single tag budget",
			strengths: []TagCount{{Tag: "a", Count: 3}, {Tag: "b", Count: 2}},
			n:         1,
			want:      "Praised for a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSummary(tt.strengths, tt.weaknesses, tt.n))
		})
	}
}

// TestBuildSummary_NeverFabricates checks that every word of the summary
// other than the fixed template text comes from the input tags.
func TestBuildSummary_NeverFabricates(t *testing.T) {
	strengths := []TagCount{{Tag: "alpha", Count: 2}, {Tag: "beta", Count: 1}}
	weaknesses := []TagCount{{Tag: "gamma", Count: 1}}

	summary := BuildSummary(strengths, weaknesses, 2)

	template := map[string]bool{"Praised": true, "for": true, "watch": true, "and": true}
	for _, word := range strings.FieldsFunc(summary, func(r rune) bool { return r == ' ' || r == ';' }) {
		if template[word] {
			continue
		}
		assert.Contains(t, []string{"alpha", "beta", "gamma"}, word,
			"summary contains a word absent from the input tags")
	}
}
