// Package matutils implements utility functions for working with
// mat.Matrix structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0

	for i := 0; i < values.Len(); i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// VecMax returns the maximum value in a vector
func VecMax(values mat.Vector) float64 {
	max := values.AtVec(0)
	for i := 1; i < values.Len(); i++ {
		if v := values.AtVec(i); v > max {
			max = v
		}
	}
	return max
}
