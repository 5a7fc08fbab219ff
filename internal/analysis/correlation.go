package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlation computes the Pearson correlation of every pair of return columns.
// Each pair only uses rows where both columns are observed. Every off-diagonal
// value is computed once and stored in a symmetric matrix, so corr(i,j) and
// corr(j,i) are the same float.
func Correlation(returns *Table) *CorrelationMatrix {
	n := len(returns.Symbols)
	if n == 0 {
		return &CorrelationMatrix{}
	}
	columns := make([][]float64, n)
	for j := range columns {
		columns[j] = returns.Column(j)
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			x, y := pairwiseComplete(columns[i], columns[j])
			c := math.NaN()
			if len(x) > 1 {
				c = stat.Correlation(x, y, nil)
			}
			sym.SetSym(i, j, c)
		}
	}
	return &CorrelationMatrix{Symbols: returns.Symbols, Values: sym}
}

// pairwiseComplete keeps the positions where both a and b are observed.
func pairwiseComplete(a, b []float64) ([]float64, []float64) {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
