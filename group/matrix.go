package group

import (
	"go.dedis.ch/returncodes"
)

// Matrix is an immutable, non-empty, rectangular table of compatible
// elements.
type Matrix[E Element[E]] struct {
	rows    [][]E
	columns int
}

// NewMatrix checks that rows is rectangular and that all elements are
// compatible, and returns a copy of it as a matrix.
func NewMatrix[E Element[E]](rows [][]E) (Matrix[E], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Matrix[E]{}, returncodes.Validationf("matrix must not be empty")
	}
	columns := len(rows[0])
	first := rows[0][0]
	copied := make([][]E, len(rows))
	for i, row := range rows {
		if len(row) != columns {
			return Matrix[E]{}, returncodes.Validationf("matrix rows must all have %d columns, row %d has %d",
				columns, i, len(row))
		}
		for _, e := range row {
			if !first.IsCompatible(e) {
				return Matrix[E]{}, returncodes.Validationf("all elements of a matrix must belong to the same group")
			}
		}
		copied[i] = append([]E(nil), row...)
	}
	return Matrix[E]{rows: copied, columns: columns}, nil
}

// MatrixFromColumns builds a matrix whose j-th column is columns[j].
func MatrixFromColumns[E Element[E]](columns []Vector[E]) (Matrix[E], error) {
	if len(columns) == 0 || columns[0].IsEmpty() {
		return Matrix[E]{}, returncodes.Validationf("matrix must not be empty")
	}
	rows := make([][]E, columns[0].Size())
	for i := range rows {
		rows[i] = make([]E, len(columns))
		for j, column := range columns {
			if column.Size() != len(rows) {
				return Matrix[E]{}, returncodes.Validationf("matrix columns must all have %d rows, column %d has %d",
					len(rows), j, column.Size())
			}
			rows[i][j] = column.Get(i)
		}
	}
	return NewMatrix(rows)
}

// NumRows returns the number of rows.
func (m Matrix[E]) NumRows() int {
	return len(m.rows)
}

// NumColumns returns the number of columns.
func (m Matrix[E]) NumColumns() int {
	return m.columns
}

// IsEmpty returns true for the zero value.
func (m Matrix[E]) IsEmpty() bool {
	return len(m.rows) == 0
}

// Get returns the element at row i, column j.
func (m Matrix[E]) Get(i, j int) E {
	return m.rows[i][j]
}

// Row returns the i-th row.
func (m Matrix[E]) Row(i int) Vector[E] {
	return Vector[E]{elements: append([]E(nil), m.rows[i]...)}
}

// Column returns the j-th column.
func (m Matrix[E]) Column(j int) Vector[E] {
	elements := make([]E, len(m.rows))
	for i, row := range m.rows {
		elements[i] = row[j]
	}
	return Vector[E]{elements: elements}
}

// CheckDimensions returns a validation error naming the matrix if it does
// not have the expected number of rows and columns.
func CheckDimensions[E Element[E]](name string, m Matrix[E], rows, columns int) error {
	if m.NumRows() != rows || m.NumColumns() != columns {
		return returncodes.Validationf("%s must be a %dx%d matrix, got %dx%d",
			name, rows, columns, m.NumRows(), m.NumColumns())
	}
	return nil
}
