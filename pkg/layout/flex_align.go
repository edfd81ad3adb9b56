package layout

import "github.com/BigBadE/valor-sub000/pkg/css"

// justifyParams returns the leading offset and the extra spacing between
// items for justify-content. free may be negative, in which case the
// distributed modes fall back: space-between to flex-start, space-around and
// space-evenly to center.
func justifyParams(jc css.JustifyContent, free float64, count int) (offset, between float64) {
	switch jc {
	case css.JustifyFlexEnd:
		offset = free
	case css.JustifyCenter:
		offset = free / 2
	case css.JustifySpaceBetween:
		if count > 1 && free > 0 {
			between = free / float64(count-1)
		}
	case css.JustifySpaceAround:
		if count <= 1 || free < 0 {
			offset = free / 2
		} else {
			between = free / float64(count)
			offset = between / 2
		}
	case css.JustifySpaceEvenly:
		if count < 1 || free < 0 {
			offset = free / 2
		} else {
			between = free / float64(count+1)
			offset = between
		}
	}
	return snapRound(offset), snapFloor(between)
}

// distributeMain resolves main-axis auto margins and justify-content and
// sets each item's logical main offset from the line start.
func distributeMain(line *flexLine, jc css.JustifyContent, mainSize, gap float64) {
	items := line.items
	used := 0.0
	autoMargins := 0
	for _, it := range items {
		used += it.outerMain()
		if it.autoStart {
			autoMargins++
		}
		if it.autoEnd {
			autoMargins++
		}
	}
	if len(items) > 1 {
		used += gap * float64(len(items)-1)
	}
	free := mainSize - used

	if autoMargins > 0 {
		if free > 0 {
			share := snapFloor(free / float64(autoMargins))
			for _, it := range items {
				if it.autoStart {
					it.marginStart += share
				}
				if it.autoEnd {
					it.marginEnd += share
				}
			}
		}
		// Auto margins absorb positive space; negative space overflows the
		// end edge.
		free = 0
	}

	offset, between := justifyParams(jc, free, len(items))
	pos := offset
	for _, it := range items {
		it.mainPos = pos + it.marginStart
		pos = it.mainPos + it.usedMain() + it.marginEnd + gap + between
	}
}

// alignCross sets each item's cross offset inside the line.
func alignCross(line *flexLine) {
	for _, it := range line.items {
		free := line.crossSize - it.crossSize - it.crossMarginStart - it.crossMarginEnd
		var offset float64
		switch {
		case it.autoCrossStart || it.autoCrossEnd:
			if free > 0 {
				switch {
				case it.autoCrossStart && it.autoCrossEnd:
					offset = free / 2
				case it.autoCrossStart:
					offset = free
				}
			}
		case it.align == css.AlignFlexEnd:
			offset = free
		case it.align == css.AlignCenter:
			offset = free / 2
		}
		it.crossPos = snapRound(offset) + it.crossMarginStart
	}
}

// itemAlign resolves align-self: auto against the container's align-items.
func itemAlign(container, item css.ComputedStyle) css.AlignItems {
	align := item.AlignSelf
	if align == css.AlignAuto {
		align = container.AlignItems
	}
	if align == css.AlignBaseline || align == css.AlignAuto {
		// No baselines without line boxes; baseline behaves as flex-start.
		align = css.AlignFlexStart
	}
	return align
}
