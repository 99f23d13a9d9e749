package domain

// Location represents a position in source code.
// Tests registered at runtime carry a zero Location.
type Location struct {
	File      string `json:"file,omitempty"`
	StartLine int    `json:"startLine,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	StartCol  int    `json:"startCol,omitempty"`
	EndCol    int    `json:"endCol,omitempty"`
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l == Location{}
}
