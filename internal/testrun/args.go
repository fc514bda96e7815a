// Package testrun materializes the test-run policy: the effective
// argument list handed to the test runner, and the ordered warning
// filters applied during the run.
//
// The package does not run tests itself. It prepares exactly what the
// external runner consumes, arguments and filter rules, and implements
// the filter matching contract so it can be validated and queried
// without invoking the runner.
package testrun

// EffectiveArgs materializes the runner's argument list by prepending
// the policy's default arguments to the user-supplied arguments.
//
// Duplicates are intentionally not deduplicated: the runner's own
// last-occurrence-wins convention means user arguments placed after the
// defaults override them naturally.
func EffectiveArgs(defaults, user []string) []string {
	args := make([]string, 0, len(defaults)+len(user))
	args = append(args, defaults...)
	args = append(args, user...)
	return args
}
