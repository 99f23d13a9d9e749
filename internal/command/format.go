// Package command holds helpers shared by the scopekit subcommands.
package command

import "strings"

// FormatDescription returns the first line of description for short help and
// the whole text otherwise.
func FormatDescription(short bool, description ...string) string {
	if len(description) == 0 {
		return ""
	}
	if short {
		return description[0]
	}
	return strings.Join(description, "\n")
}

// FormatExamples renders example blocks, one command per block, indented
// the way cobra prints the Example section.
func FormatExamples(examples ...[]string) string {
	var blocks []string
	for _, example := range examples {
		lines := make([]string, 0, len(example))
		for _, line := range example {
			lines = append(lines, "  "+line)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
