package lifecycle

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathSeparator joins group and test names for pattern matching.
const PathSeparator = "/"

// MatchPath reports whether the slash-joined path matches any pattern.
// An empty pattern list matches everything. Invalid patterns never match.
func MatchPath(patterns []string, path []string) bool {
	if len(patterns) == 0 {
		return true
	}

	joined := strings.Join(path, PathSeparator)
	for _, pattern := range patterns {
		if match, err := doublestar.Match(pattern, joined); err == nil && match {
			return true
		}
	}
	return false
}

// ValidatePatterns returns an error for the first malformed pattern.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
		}
	}
	return nil
}
