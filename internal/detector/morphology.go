package detector

// morphologyClean applies a binary open (erode then dilate) followed by a
// close (dilate then erode) over mask (w x h) using a square structuring
// element of the given radius, removing isolated noise pixels and
// patching small holes before connected-component labeling (EXPANSION C
// "morphological pre-clean of the probability map"). radius <= 0 disables
// the pass.
func morphologyClean(mask []bool, w, h, radius int) []bool {
	if radius <= 0 {
		return mask
	}
	opened := dilateMask(erodeMask(mask, w, h, radius), w, h, radius)
	closed := erodeMask(dilateMask(opened, w, h, radius), w, h, radius)
	return closed
}

// erodeMask sets a pixel true only if every pixel within radius (square
// neighborhood, clamped at the border) is also true.
func erodeMask(mask []bool, w, h, radius int) []bool {
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			out[y*w+x] = allSetInWindow(mask, w, h, x, y, radius)
		}
	}
	return out
}

// dilateMask sets a pixel true if any pixel within radius is true.
func dilateMask(mask []bool, w, h, radius int) []bool {
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			out[y*w+x] = anySetInWindow(mask, w, h, x, y, radius)
		}
	}
	return out
}

func allSetInWindow(mask []bool, w, h, cx, cy, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		ny := cy + dy
		if ny < 0 || ny >= h {
			return false // out-of-bounds neighbors count as background
		}
		for dx := -radius; dx <= radius; dx++ {
			nx := cx + dx
			if nx < 0 || nx >= w {
				return false
			}
			if !mask[ny*w+nx] {
				return false
			}
		}
	}
	return true
}

func anySetInWindow(mask []bool, w, h, cx, cy, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		ny := cy + dy
		if ny < 0 || ny >= h {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			nx := cx + dx
			if nx < 0 || nx >= w {
				continue
			}
			if mask[ny*w+nx] {
				return true
			}
		}
	}
	return false
}
