package search

import "strings"

// Similarity returns the LCS similarity of a and b as a percentage in [0,100].
//
// Both strings are lower-cased and compared rune by rune. The result is
// 2*lcs/(len(a)+len(b))*100, so it is symmetric, 0 when either string is empty
// and 100 when the strings are equal after case folding.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	lcs := lcsLength(ra, rb)
	return float64(2*lcs) / float64(len(ra)+len(rb)) * 100
}

// lcsLength fills an (m+1)x(n+1) table where cell [i][j] holds the LCS length
// of a[:i] and b[:j].
func lcsLength(a, b []rune) int {
	m, n := len(a), len(b)
	width := n + 1
	table := make([]int, (m+1)*width)

	for i := 1; i <= m; i++ {
		row := i * width
		prev := row - width
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				table[row+j] = table[prev+j-1] + 1
			} else {
				table[row+j] = max(table[row+j-1], table[prev+j])
			}
		}
	}

	return table[m*width+n]
}
