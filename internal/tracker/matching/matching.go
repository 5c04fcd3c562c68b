// Package matching holds the cost matrices and the thresholded linear
// assignment shared by the bundled trackers.
package matching

import (
	"math"
	"sort"

	hungarian "github.com/arthurkushman/go-hungarian"

	"trackd/pkg/types"
)

// IoUDistance returns 1 - IoU for every (a, b) pair.
func IoUDistance(a, b []types.Box) [][]float64 {
	cost := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			row[j] = 1 - a[i].IoU(b[j])
		}
		cost[i] = row
	}
	return cost
}

// FuseScore weights IoU similarity by detection confidence.
func FuseScore(cost [][]float64, scores []float64) [][]float64 {
	out := make([][]float64, len(cost))
	for i, row := range cost {
		fused := make([]float64, len(row))
		for j, c := range row {
			fused[j] = 1 - (1-c)*scores[j]
		}
		out[i] = fused
	}
	return out
}

// EmbeddingDistance returns the cosine distance, clipped at 0, between
// track and detection features. Missing features yield distance 1.
func EmbeddingDistance(a, b [][]float64) [][]float64 {
	cost := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			row[j] = math.Max(0, 1-cosine(a[i], b[j]))
		}
		cost[i] = row
	}
	return cost
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// LinearAssignment matches rows to columns minimising total cost, accepting
// only pairs whose cost is below thresh. Matches are returned in row order.
func LinearAssignment(cost [][]float64, rows, cols int, thresh float64) (matches [][2]int, unmatchedRows, unmatchedCols []int) {
	if rows == 0 || cols == 0 {
		for i := 0; i < rows; i++ {
			unmatchedRows = append(unmatchedRows, i)
		}
		for j := 0; j < cols; j++ {
			unmatchedCols = append(unmatchedCols, j)
		}
		return nil, unmatchedRows, unmatchedCols
	}

	// Leaving a row and a column unmatched costs thresh, so maximising
	// thresh - cost over the square padded matrix is the same problem.
	n := rows
	if cols > n {
		n = cols
	}
	profit := make([][]float64, n)
	for i := range profit {
		profit[i] = make([]float64, n)
		if i >= rows {
			continue
		}
		for j := 0; j < cols; j++ {
			if p := thresh - cost[i][j]; p > 0 {
				profit[i][j] = p
			}
		}
	}

	rowMatched := make([]bool, rows)
	colMatched := make([]bool, cols)
	for r, assigned := range hungarian.SolveMax(profit) {
		for c := range assigned {
			if r < rows && c < cols && profit[r][c] > 0 {
				matches = append(matches, [2]int{r, c})
				rowMatched[r] = true
				colMatched[c] = true
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i][0] < matches[j][0] })
	for i, ok := range rowMatched {
		if !ok {
			unmatchedRows = append(unmatchedRows, i)
		}
	}
	for j, ok := range colMatched {
		if !ok {
			unmatchedCols = append(unmatchedCols, j)
		}
	}
	return matches, unmatchedRows, unmatchedCols
}
