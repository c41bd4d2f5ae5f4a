package services

// Improve a visiting order with 2-opt.
//
// The first and last positions stay fixed. Each pass tries every reversal of
// order[i..j] with 1 <= i < j <= n-2 and adopts it when the path gets strictly
// shorter. Passes repeat until one makes no improvement, so the result is a
// 2-opt local optimum. Orders shorter than 4 are returned unchanged.
func RefineTwoOpt(order []int, m DistanceMatrix) []int {
	best := append([]int(nil), order...)
	n := len(best)
	if n < 4 {
		return best
	}

	bestDist := m.PathDistance(best)
	for {
		improved := false
		for i := 1; i < n-2; i++ {
			for j := i + 1; j < n-1; j++ {
				candidate := twoOptSwap(best, i, j)
				d := m.PathDistance(candidate)
				// tolerance keeps float noise from cycling between equal tours
				if d+1e-9 < bestDist {
					best = candidate
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			return best
		}
	}
}

func twoOptSwap(ord []int, i, j int) []int {
	out := make([]int, len(ord))
	copy(out, ord[:i])
	pos := i
	for k := j; k >= i; k-- {
		out[pos] = ord[k]
		pos++
	}
	copy(out[pos:], ord[j+1:])
	return out
}
