package timeline

// Clamp bounds index to [0, n-1]. With no beats it returns 0.
func Clamp(index, n int) int {
	if n <= 0 || index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

// View narrows the navigable beats. Zero values select everything.
type View struct {
	Phase      string
	Player     string
	PublicOnly bool
}

// Indexes returns the beat indices visible under v, in timeline order.
func Indexes(beats []Beat, phases PhaseIndex, v View) []int {
	var candidates []int
	if v.Phase != "" {
		candidates = phases.Beats(v.Phase)
	} else {
		candidates = make([]int, len(beats))
		for i := range beats {
			candidates[i] = i
		}
	}

	out := candidates[:0]
	for _, i := range candidates {
		if i < 0 || i >= len(beats) {
			continue
		}
		b := beats[i]
		if v.PublicOnly && !b.IsPublic {
			continue
		}
		if v.Player != "" && b.Speaker != v.Player && b.Target != v.Player {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Step moves dir positions through indexes starting from current and
// returns the beat index landed on. It stops at either end. When current
// is not in the list the walk starts just before its first entry.
func Step(indexes []int, current, dir int) int {
	if len(indexes) == 0 {
		return current
	}
	pos := -1
	for i, idx := range indexes {
		if idx == current {
			pos = i
			break
		}
	}
	return indexes[Clamp(pos+dir, len(indexes))]
}
