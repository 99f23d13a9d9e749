package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		path     []string
		want     bool
	}{
		{name: "should match everything without patterns", path: []string{"a"}, want: true},
		{name: "should match exact path", patterns: []string{"g/a"}, path: []string{"g", "a"}, want: true},
		{name: "should not cross groups with single star", patterns: []string{"*/a"}, path: []string{"g", "h", "a"}, want: false},
		{name: "should cross groups with double star", patterns: []string{"**/a"}, path: []string{"g", "h", "a"}, want: true},
		{name: "should match any of several patterns", patterns: []string{"x", "g/*"}, path: []string{"g", "b"}, want: true},
		{name: "should ignore malformed pattern", patterns: []string{"[", "nope"}, path: []string{"["}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MatchPath(tt.patterns, tt.path))
		})
	}
}

func TestValidatePatterns(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePatterns(nil))
	assert.NoError(t, ValidatePatterns([]string{"g/**", "{a,b}"}))
	assert.Error(t, ValidatePatterns([]string{"ok", "[bad"}))
}
