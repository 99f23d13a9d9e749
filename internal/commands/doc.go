package commands

var description = []string{
	`Scoped setup and teardown for Go tests.`,
	``,
	`The scopekit CLI outlines the groups and tests that test files register,`,
	`and runs a demonstration suite that prints the order in which hooks fire.`,
}
