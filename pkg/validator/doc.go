// Package validator provides composable validation rules for the
// credential operations. Rules are evaluated with Apply, which collects
// every failure into a ValidationErrors value so callers can report all
// problems at once.
package validator
