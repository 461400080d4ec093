package resolve

// Distance computes the Levenshtein edit distance between two strings.
func Distance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Single row plus a prev value.
	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}
