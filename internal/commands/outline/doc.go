package outline

var description = []string{
	`Print the groups and tests that test files register, without running them.`,
	``,
	`Every *_test.go file under the directory (default ".") is parsed.`,
	`vendor, testdata and .git directories are skipped.`,
}

var examples = [][]string{
	{
		`# Outline the current module`,
		`scopekit outline`,
	},
	{
		`# Outline one package as JSON`,
		`scopekit outline ./pkg/users --json`,
	},
}
