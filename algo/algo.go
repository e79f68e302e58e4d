// Package algo holds what the individual algorithm packages share:
// the precondition error type reported when an algorithm is configured
// with parameters outside its domain.
//
// The algorithms themselves live in the subpackages policyeval,
// qlearning, and gradientmc.
package algo

import "fmt"

// InvalidParameterError reports a precondition violation on an
// algorithm parameter. It is always returned before any environment
// or other resource is created.
type InvalidParameterError struct {
	// Param is the name of the offending parameter
	Param string

	// Constraint describes the violated precondition
	Constraint string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %v: %v", e.Param, e.Constraint)
}

// NewInvalidParameter constructs an InvalidParameterError for the
// named parameter with a description of the violated precondition
func NewInvalidParameter(param, format string, args ...interface{}) error {
	return &InvalidParameterError{
		Param:      param,
		Constraint: fmt.Sprintf(format, args...),
	}
}
