package token

// EditDistance returns the Damerau-Levenshtein distance between a and b in the
// optimal string alignment form: the fewest single-rune insertions,
// deletions, substitutions, and adjacent transpositions that turn a into b,
// with no substring edited more than once. Comparison is case-sensitive and
// done on runes.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)

	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	// three rolling rows are all that a transposition ever looks back at
	prev2 := make([]int, m+1)
	prev := make([]int, m+1)
	cur := make([]int, m+1)

	for j := 0; j <= m; j++ {
		prev[j] = j
	}

	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			best := prev[j] + 1
			if ins := cur[j-1] + 1; ins < best {
				best = ins
			}
			if sub := prev[j-1] + cost; sub < best {
				best = sub
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if tr := prev2[j-2] + 1; tr < best {
					best = tr
				}
			}

			cur[j] = best
		}
		prev2, prev, cur = prev, cur, prev2
	}

	return prev[m]
}
