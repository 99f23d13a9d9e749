package lifecycle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// NamingFlat selects JoinNamer.
	NamingFlat = "flat"
	// NamingHierarchical selects HierarchicalNamer.
	NamingHierarchical = "hierarchical"

	// DefaultSeparator joins scope names for JoinNamer.
	DefaultSeparator = " > "

	indentWidth = 4
	// eraseSlack covers the decoration a terminal backend prints around the
	// test name on the same line.
	eraseSlack = 10
)

// Frame describes one open group when a leaf test is named.
type Frame struct {
	// Name is the group name.
	Name string
	// Depth is the nesting level of the group, 0 for a top-level group.
	Depth int
	// First is true for the first leaf test named under this group.
	First bool
}

// Namer derives the flat display name of a leaf test from its open groups.
type Namer interface {
	Name(frames []Frame, leaf string) string
}

// JoinNamer concatenates the group names and the leaf name.
type JoinNamer struct {
	Separator string
}

// Name implements Namer.
func (n JoinNamer) Name(frames []Frame, leaf string) string {
	sep := n.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	parts := make([]string, 0, len(frames)+1)
	for _, f := range frames {
		parts = append(parts, f.Name)
	}
	parts = append(parts, leaf)
	return strings.Join(parts, sep)
}

// HierarchicalNamer renders nested output on a terminal backend that prints
// one flat line per test. Each group contributes an indented header line to
// its first test only, the leaf is indented below it, and the result starts
// with enough backspaces to erase the backend's own line.
type HierarchicalNamer struct{}

// Name implements Namer.
func (HierarchicalNamer) Name(frames []Frame, leaf string) string {
	lines := make([]string, 0, len(frames)+1)
	for _, f := range frames {
		if f.First {
			lines = append(lines, indent(f.Depth)+f.Name)
		}
	}
	lines = append(lines, indent(len(frames))+leaf)

	erase := strings.Repeat("\b", utf8.RuneCountInString(lines[0])+eraseSlack)
	return erase + strings.Join(lines, "\n")
}

func indent(depth int) string {
	return strings.Repeat(" ", indentWidth*depth)
}

// NamerFor returns the Namer for a naming style. An empty style selects
// NamingFlat.
func NamerFor(style, separator string) (Namer, error) {
	switch style {
	case "", NamingFlat:
		return JoinNamer{Separator: separator}, nil
	case NamingHierarchical:
		return HierarchicalNamer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNaming, style)
	}
}
