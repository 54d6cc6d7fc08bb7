// Package errors provides coded, actionable errors for the canopy CLI.
//
// Each code maps to a short message, a longer explanation and a category.
// Library packages return plain wrapped errors; the CLI and the config
// loader attach a code and a hint so a failed command tells the operator
// what to change.
//
// # Error Categories
//
//   - config: the configuration file is missing, unreadable or invalid
//   - runtime: the application or its server failed while running
//   - journal: the mutation journal could not be opened or uploaded
//   - cli: a command was invoked with bad arguments
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail("canopy.yaml: line 3: mapping values are not allowed here").
//	    WithSuggestion("Check that canopy.yaml is valid YAML")
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR E101: Cannot parse configuration
//	//
//	//   canopy.yaml: line 3: mapping values are not allowed here
//	//
//	//   Hint: Check that canopy.yaml is valid YAML
package errors
