package pattern

// pivot is a swing point confirmed once order bars on both sides are known.
type pivot struct {
	index int
	price float64
	high  bool
}

// isPivot reports whether values[p] is an extreme of values[p-order..p+order]. With
// strict set every neighbour must be strictly smaller (or larger); otherwise ties
// with the extreme are accepted.
func isPivot(values []float64, p, order int, high, strict bool) bool {
	if p-order < 0 || p+order >= len(values) {
		return false
	}
	v := values[p]
	for j := p - order; j <= p+order; j++ {
		if j == p {
			continue
		}
		switch {
		case high && strict && values[j] >= v,
			high && !strict && values[j] > v,
			!high && strict && values[j] <= v,
			!high && !strict && values[j] < v:
			return false
		}
	}
	return true
}
