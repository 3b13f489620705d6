package textmatch

// Distance computes the restricted Damerau-Levenshtein edit distance between
// two strings. Insertions, deletions, substitutions, and transpositions of two
// adjacent characters each cost 1. The implementation is the standard dynamic
// programming table with the one-step transposition rule added, so it runs in
// O(len(a) * len(b)) time.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	rows := len(ra) + 1
	cols := len(rb) + 1

	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 0; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			d := min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)

			// Adjacent transposition: "ab" <-> "ba" costs 1 instead of 2.
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := matrix[i-2][j-2] + 1; t < d {
					d = t
				}
			}

			matrix[i][j] = d
		}
	}

	return matrix[rows-1][cols-1]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
