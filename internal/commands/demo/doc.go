package demo

var description = []string{
	`Run the built-in demonstration suite.`,
	``,
	`The suite declares hooks on the root scope and on three nested groups,`,
	`with one ignored test in most scopes. Each hook and test body prints a quoted`,
	`message next to the runner's per-test line.`,
	``,
	`Settings are read from scopekit.yaml in the --config directory when given.`,
	`Flags override the file.`,
}

var examples = [][]string{
	{
		`# Run sequentially with nested names`,
		`scopekit demo --naming hierarchical`,
	},
	{
		`# Run a single group on four workers`,
		`scopekit demo --workers 4 --pattern "group 2/**"`,
	},
}
