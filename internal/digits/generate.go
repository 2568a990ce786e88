package digits

// UniverseSize is the number of valid combinations for level:
// level * (level-1) * (level-2) * (level-3).
func UniverseSize(level int) int {
	if level < Length {
		return 0
	}
	return level * (level - 1) * (level - 2) * (level - 3)
}

// Generate enumerates every combination of Length distinct digits from
// [0, level-1] in lexicographic order. The caller validates level.
func Generate(level int) []Combination {
	out := make([]Combination, 0, UniverseSize(level))
	for i := 0; i < level; i++ {
		for j := 0; j < level; j++ {
			if j == i {
				continue
			}
			for k := 0; k < level; k++ {
				if k == i || k == j {
					continue
				}
				for l := 0; l < level; l++ {
					if l == i || l == j || l == k {
						continue
					}
					out = append(out, Combination{i, j, k, l})
				}
			}
		}
	}
	return out
}
