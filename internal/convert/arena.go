package convert

import "github.com/san-kum/asciimate/internal/anim"

// Arena owns the buffers a Converter reuses across frames: a front/back
// pair of grids and a per-row accumulator with four lanes (r, g, b, count)
// per column. Buffers are sized once per distinct geometry.
type Arena struct {
	cols, rows int
	bufs       [2]anim.Grid
	front      int
	acc        []uint64
	xs         []int
	allocs     int
}

func NewArena() *Arena {
	return &Arena{}
}

// Reset sizes the arena for the geometry, reallocating only when it changed.
func (a *Arena) Reset(cols, rows int) {
	if a.cols == cols && a.rows == rows && a.bufs[0].IsSet() {
		return
	}
	cells := cols * rows
	a.cols, a.rows = cols, rows
	a.bufs[0] = anim.NewGrid(cells, true)
	a.bufs[1] = anim.NewGrid(cells, true)
	a.acc = make([]uint64, cols*4)
	a.xs = make([]int, cols+1)
	a.front = 0
	a.allocs++
}

// Swap makes the back buffer current and returns it for writing. The
// previous front stays untouched until the following Swap.
func (a *Arena) Swap() anim.Grid {
	a.front ^= 1
	return a.bufs[a.front]
}

// clearRow zeroes the accumulator before a new row of cells.
func (a *Arena) clearRow() {
	for i := range a.acc {
		a.acc[i] = 0
	}
}

// Allocs reports how many times the buffers were (re)allocated.
func (a *Arena) Allocs() int { return a.allocs }
