// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

// Matrix is a dense row-major two-dimensional array.
type Matrix [][]float64

// Ones returns an n x n matrix filled with 1.
func Ones(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		row := make([]float64, n)
		for j := range row {
			row[j] = 1
		}
		m[i] = row
	}
	return m
}

// Sum adds all elements.
func (m Matrix) Sum() float64 {
	var s float64
	for _, row := range m {
		for _, v := range row {
			s += v
		}
	}
	return s
}

// Shape returns rows and columns of the first row.
func (m Matrix) Shape() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}
