package layout

// resolveFlexibleLengths runs the flexible length resolution loop over one
// line's items. available is the inner main size with gaps already removed.
// On return every item is frozen and target holds its used content-box main
// size. It returns the number of distribution rounds, which is never more
// than len(items): each round freezes at least one item or ends the loop.
func resolveFlexibleLengths(items []*flexItem, available float64) int {
	var hypothetical float64
	for _, it := range items {
		hypothetical += it.hypothetical + it.outerExtra()
	}
	growing := hypothetical < available

	for _, it := range items {
		it.target = it.hypothetical
		it.violation = 0
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		it.frozen = factor == 0 ||
			(growing && it.base > it.hypothetical) ||
			(!growing && it.base < it.hypothetical)
	}
	initialFree := freeSpace(items, available)

	rounds := 0
	for rounds < len(items)+1 {
		unfrozen := 0
		var factors float64
		for _, it := range items {
			if it.frozen {
				continue
			}
			unfrozen++
			if growing {
				factors += it.grow
			} else {
				factors += it.shrink
			}
		}
		if unfrozen == 0 {
			break
		}
		rounds++

		remaining := freeSpace(items, available)
		if factors < 1 {
			if scaled := initialFree * factors; abs(scaled) < abs(remaining) {
				remaining = scaled
			}
		}
		distribute(items, remaining, growing)

		var total float64
		for _, it := range items {
			if it.frozen {
				continue
			}
			clamped := it.clampMain(it.target)
			it.violation = clamped - it.target
			it.target = clamped
			total += it.violation
		}
		for _, it := range items {
			if it.frozen {
				continue
			}
			switch {
			case total == 0:
				it.frozen = true
			case total > 0 && it.violation > 0:
				it.frozen = true
			case total < 0 && it.violation < 0:
				it.frozen = true
			}
		}
	}
	return rounds
}

// freeSpace is the space left after frozen items at their target and
// unfrozen items at their base size.
func freeSpace(items []*flexItem, available float64) float64 {
	free := available
	for _, it := range items {
		free -= it.outerExtra()
		if it.frozen {
			free -= it.target
		} else {
			free -= it.base
		}
	}
	return free
}

// distribute sets the unclamped target of every unfrozen item. A zero factor
// sum distributes nothing.
func distribute(items []*flexItem, remaining float64, growing bool) {
	var sum float64
	for _, it := range items {
		if it.frozen {
			continue
		}
		if growing {
			sum += it.grow
		} else {
			sum += it.shrink * it.base
		}
	}
	for _, it := range items {
		if it.frozen {
			continue
		}
		it.target = it.base
		if remaining == 0 || sum == 0 {
			continue
		}
		if growing {
			it.target = it.base + remaining*it.grow/sum
		} else {
			it.target = it.base + remaining*(it.shrink*it.base)/sum
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
