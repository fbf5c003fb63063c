package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherFind(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		text     string
		expected []string
	}{
		{
			name:     "Word boundary rejects inner hit",
			keywords: []string{"GC"},
			text:     "magic gun",
			expected: nil,
		},
		{
			name:     "Word boundary accepts whole word",
			keywords: []string{"GC"},
			text:     "US GC status",
			expected: []string{"GC"},
		},
		{
			name:     "Case insensitive keeps original casing",
			keywords: []string{"python"},
			text:     "Python and PYTHON",
			expected: []string{"Python", "PYTHON"},
		},
		{
			name:     "Special characters are literal",
			keywords: []string{"C++", "node.js"},
			text:     "We use nodeXjs and node.js",
			expected: []string{"node.js"},
		},
		{
			name:     "Empty keyword set",
			keywords: nil,
			text:     "anything at all",
			expected: nil,
		},
		{
			name:     "Blank keywords ignored",
			keywords: []string{"  ", ""},
			text:     "anything at all",
			expected: nil,
		},
		{
			name:     "Earlier listed keyword wins at same start",
			keywords: []string{"Secret", "Secret Clearance"},
			text:     "Active Secret Clearance required",
			expected: []string{"Secret"},
		},
		{
			name:     "Longer keyword listed first wins",
			keywords: []string{"Secret Clearance", "Secret"},
			text:     "Active Secret Clearance required",
			expected: []string{"Secret Clearance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.keywords, DefaultSensitiveTerms)
			spans := m.Find(tt.text)

			var got []string
			for _, s := range spans {
				assert.Equal(t, tt.text[s.Start:s.End], s.Text)
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatcherSpansDoNotOverlap(t *testing.T) {
	m := NewMatcher([]string{"go", "go developer", "developer"}, nil)
	spans := m.Find("go developer, go developer")

	require.NotEmpty(t, spans)
	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i-1].End, spans[i].Start)
	}
}

func TestMatcherTier(t *testing.T) {
	m := NewMatcher([]string{"Secret", "Clearance", "Python"}, DefaultSensitiveTerms)

	spans := m.Find("Python engineer with Secret Clearance")
	require.Len(t, spans, 3)

	assert.Equal(t, "Python", spans[0].Text)
	assert.Equal(t, TierGeneric, spans[0].Tier)
	assert.Equal(t, TierSensitive, spans[1].Tier)
	assert.Equal(t, TierSensitive, spans[2].Tier)
}

func TestMatcherTierIndependentOfKeyword(t *testing.T) {
	//the matched text decides the tier, not the keyword list
	m := NewMatcher([]string{"us citizen"}, DefaultSensitiveTerms)
	spans := m.Find("Must be a US Citizen")

	require.Len(t, spans, 1)
	assert.Equal(t, TierSensitive, spans[0].Tier)
	assert.Equal(t, "sensitive", spans[0].Tier.String())
}

func TestMatcherEmpty(t *testing.T) {
	assert.True(t, NewMatcher(nil, DefaultSensitiveTerms).Empty())
	assert.False(t, NewMatcher([]string{"go"}, nil).Empty())
	assert.Equal(t, []string{"go"}, NewMatcher([]string{" go "}, nil).Keywords())
}

func TestTitleMatches(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		keywords []string
		expected bool
	}{
		{"Substring match", "Senior Python Engineer", []string{"python"}, true},
		{"Not word bounded", "Pythonista wanted", []string{"python"}, true},
		{"No match", "Senior Java Engineer", []string{"python"}, false},
		{"Empty keywords", "Senior Python Engineer", nil, false},
		{"Blank keyword never matches", "Senior Python Engineer", []string{" "}, false},
		{"Trimmed keyword", "Golang Developer", []string{"  golang "}, true},
		{"Unicode folding", "ÉCOLE Coordinator", []string{"école"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleMatches(tt.title, tt.keywords))
		})
	}
}
