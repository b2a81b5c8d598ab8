package scheduling

// PoolConfiguration is the result of partitioning a team count into pools.
type PoolConfiguration struct {
	PoolSizes    []int `json:"pool_sizes"`
	TotalMatches int   `json:"total_matches"`
}

// OptimizePools partitions n teams into pools, favoring pools of four.
// The remainder never strands a lone team: a leftover of one is absorbed
// into a pool of five. Negative input yields an empty configuration.
func OptimizePools(teamCount int) PoolConfiguration {
	if teamCount <= 0 {
		return PoolConfiguration{PoolSizes: []int{}}
	}

	var sizes []int
	switch {
	case teamCount <= 4:
		sizes = []int{teamCount}
	default:
		fours := teamCount / 4
		switch teamCount % 4 {
		case 0:
			sizes = repeatSize(4, fours)
		case 1:
			sizes = append(repeatSize(4, fours-1), 5)
		case 2:
			sizes = append(repeatSize(4, fours), 2)
		case 3:
			sizes = append(repeatSize(4, fours), 3)
		}
	}

	total := 0
	for _, size := range sizes {
		total += size * (size - 1) / 2
	}

	return PoolConfiguration{PoolSizes: sizes, TotalMatches: total}
}

func repeatSize(size, count int) []int {
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = size
	}
	return sizes
}
