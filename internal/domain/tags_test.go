package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRankTags verifies frequency ranking, deterministic first-seen
// tie-breaking, and the string-handling toggles.
func TestRankTags(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]string
		cfg   TagConfig
		want  []TagCount
	}{
		{
			name: "counts across records and ranks by frequency",
			lists: [][]string{
				{"sound", "chassis"},
				{"sound"},
				{"sound", "value"},
			},
			cfg: TagConfig{CaseSensitive: true},
			want: []TagCount{
				{Tag: "sound", Count: 3},
				{Tag: "chassis", Count: 1},
				{Tag: "value", Count: 1},
			},
		},
		{
			name: "ties break by first-seen order",
			lists: [][]string{
				{"value", "chassis"},
				{"chassis", "value"},
			},
			cfg: TagConfig{CaseSensitive: true},
			want: []TagCount{
				{Tag: "value", Count: 2},
				{Tag: "chassis", Count: 2},
			},
		},
		{
			name: "case-sensitive keeps near-duplicates apart",
			lists: [][]string{
				{"Sound"},
				{"sound"},
			},
			cfg: TagConfig{CaseSensitive: true},
			want: []TagCount{
				{Tag: "Sound", Count: 1},
				{Tag: "sound", Count: 1},
			},
		},
		{
			name: "case folding merges spellings under the first-seen form",
			lists: [][]string{
				{"Sound"},
				{"sound", "SOUND"},
			},
			cfg: TagConfig{CaseSensitive: false},
			want: []TagCount{
				{Tag: "Sound", Count: 3},
			},
		},
		{
			name: "near-duplicate strings never merge",
			lists: [][]string{
				{"chassis"},
				{"chassis balance"},
			},
			cfg: TagConfig{CaseSensitive: true},
			want: []TagCount{
				{Tag: "chassis", Count: 1},
				{Tag: "chassis balance", Count: 1},
			},
		},
		{
			name: "whitespace trimming merges padded tags",
			lists: [][]string{
				{" sound "},
				{"sound"},
			},
			cfg: TagConfig{CaseSensitive: true, TrimWhitespace: true},
			want: []TagCount{
				{Tag: "sound", Count: 2},
			},
		},
		{
			name: "empty strings and empty lists are ignored",
			lists: [][]string{
				nil,
				{""},
				{"sound"},
			},
			cfg:  TagConfig{CaseSensitive: true},
			want: []TagCount{{Tag: "sound", Count: 1}},
		},
		{
			name:  "no input yields no tags",
			lists: nil,
			cfg:   TagConfig{CaseSensitive: true},
			want:  []TagCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankTags(tt.lists, tt.cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestRankTags_Deterministic runs the same input repeatedly and expects
// identical output every time.
func TestRankTags_Deterministic(t *testing.T) {
	lists := [][]string{
		{"a", "b", "c"},
		{"c", "b", "a"},
		{"d", "a"},
	}

	first := RankTags(lists, TagConfig{CaseSensitive: true})
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, RankTags(lists, TagConfig{CaseSensitive: true}))
	}
}

// TestTopTags verifies call-site truncation.
func TestTopTags(t *testing.T) {
	ranked := []TagCount{{Tag: "a", Count: 3}, {Tag: "b", Count: 2}, {Tag: "c", Count: 1}}

	assert.Len(t, TopTags(ranked, 2), 2)
	assert.Equal(t, ranked, TopTags(ranked, 5))
	assert.Empty(t, TopTags(ranked, 0))
	assert.Empty(t, TopTags(ranked, -1))
}
