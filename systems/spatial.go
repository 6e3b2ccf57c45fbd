// Package systems implements the per-frame force modules and the agent updater.
package systems

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor holds a nearby agent with precomputed spatial data.
// This avoids recomputing the delta and distance in every force module.
type Neighbor struct {
	Index  int    // index into Frame.Agents
	D      r2.Vec // delta from query origin, toroidal when the grid wraps
	DistSq float64
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid.
type SpatialGrid struct {
	cellSize     float64
	cellW, cellH float64 // actual cell extent
	cols         int
	rows         int
	width        float64
	height       float64
	wrap         bool
	cells        [][]int // flat grid of agent indices
	pos          []r2.Vec
}

// NewSpatialGrid creates a spatial grid covering the canvas. With wrap set,
// queries see across the edges.
func NewSpatialGrid(width, height, cellSize float64, wrap bool) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 10
	}
	var cols, rows int
	cellW, cellH := cellSize, cellSize
	if wrap {
		// A wrapping grid tiles the canvas exactly so column -1 is the last
		// real column. Rounding down keeps every cell at least cellSize wide,
		// so a ±1 cell scan covers any radius up to cellSize across the seam.
		cols = max(int(math.Floor(width/cellSize)), 1)
		rows = max(int(math.Floor(height/cellSize)), 1)
		cellW, cellH = width/float64(cols), height/float64(rows)
	} else {
		cols, rows = int(width/cellSize)+1, int(height/cellSize)+1
	}
	cols, rows = max(cols, 1), max(rows, 1)
	if cellW <= 0 || cellH <= 0 {
		cellW, cellH = cellSize, cellSize
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cellW:    cellW,
		cellH:    cellH,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		wrap:     wrap,
		cells:    cells,
	}
}

// Matches reports whether the grid was built for the given geometry.
func (g *SpatialGrid) Matches(width, height, cellSize float64, wrap bool) bool {
	return g.width == width && g.height == height && g.cellSize == cellSize && g.wrap == wrap
}

// Clear removes all agents from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.pos = g.pos[:0]
}

// Insert adds the agent with the given frame index at p.
func (g *SpatialGrid) Insert(index int, p r2.Vec) {
	for len(g.pos) <= index {
		g.pos = append(g.pos, r2.Vec{})
	}
	g.pos[index] = p
	idx := g.cellIndex(p)
	g.cells[idx] = append(g.cells[idx], index)
}

// MaxQueryResults caps the number of neighbors returned by QueryRadiusInto.
// This prevents density spikes from causing unbounded work in the summing
// forces. When the cap bites, the nearest MaxQueryResults are kept.
const MaxQueryResults = 128

// QueryRadiusInto finds agents within radius of p and appends to dst. At most
// MaxQueryResults are appended, nearest first when more were in range.
// Returns the updated slice. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r2.Vec, radius float64, exclude int) []Neighbor {
	start := len(dst)
	g.scan(p, radius, exclude, func(n Neighbor) {
		dst = append(dst, n)
	})
	if found := dst[start:]; len(found) > MaxQueryResults {
		slices.SortFunc(found, func(a, b Neighbor) int {
			return cmp.Compare(a.DistSq, b.DistSq)
		})
		dst = dst[:start+MaxQueryResults]
	}
	return dst
}

// Nearest returns the closest agent within radius of p that accept admits.
// Unlike QueryRadiusInto it is never capped.
func (g *SpatialGrid) Nearest(p r2.Vec, radius float64, exclude int, accept func(Neighbor) bool) (Neighbor, bool) {
	var best Neighbor
	found := false
	g.scan(p, radius, exclude, func(n Neighbor) {
		if (!found || n.DistSq < best.DistSq) && (accept == nil || accept(n)) {
			best, found = n, true
		}
	})
	return best, found
}

// scan calls fn for every agent within radius of p except exclude.
func (g *SpatialGrid) scan(p r2.Vec, radius float64, exclude int, fn func(Neighbor)) {
	colRadius := int(radius/g.cellW) + 1
	rowRadius := int(radius/g.cellH) + 1
	center := g.cellIndex(p)
	centerCol, centerRow := center%g.cols, center/g.cols
	radiusSq := radius * radius

	// Without wrap, clamp the scanned window to the grid.
	colLo, colHi := centerCol-colRadius, centerCol+colRadius
	rowLo, rowHi := centerRow-rowRadius, centerRow+rowRadius
	if g.wrap {
		// Scanning more than the whole grid would visit cells twice.
		if 2*colRadius+1 >= g.cols {
			colLo, colHi = 0, g.cols-1
		}
		if 2*rowRadius+1 >= g.rows {
			rowLo, rowHi = 0, g.rows-1
		}
	} else {
		colLo, colHi = max(colLo, 0), min(colHi, g.cols-1)
		rowLo, rowHi = max(rowLo, 0), min(rowHi, g.rows-1)
	}

	for c := colLo; c <= colHi; c++ {
		for r := rowLo; r <= rowHi; r++ {
			col := (c%g.cols + g.cols) % g.cols
			row := (r%g.rows + g.rows) % g.rows
			for _, i := range g.cells[row*g.cols+col] {
				if i == exclude {
					continue
				}
				d := g.delta(p, g.pos[i])
				if distSq := r2.Norm2(d); distSq <= radiusSq {
					fn(Neighbor{Index: i, D: d, DistSq: distSq})
				}
			}
		}
	}
}

func (g *SpatialGrid) delta(from, to r2.Vec) r2.Vec {
	if g.wrap {
		return ToroidalDelta(from, to, g.width, g.height)
	}
	return r2.Sub(to, from)
}

// cellIndex returns the flat index for a canvas position.
func (g *SpatialGrid) cellIndex(p r2.Vec) int {
	col := int(math.Floor(p.X / g.cellW))
	row := int(math.Floor(p.Y / g.cellH))

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

// ToroidalDelta returns the shortest delta from a to b on a wrapping canvas.
func ToroidalDelta(a, b r2.Vec, w, h float64) r2.Vec {
	d := r2.Sub(b, a)

	if d.X > w/2 {
		d.X -= w
	} else if d.X < -w/2 {
		d.X += w
	}
	if d.Y > h/2 {
		d.Y -= h
	} else if d.Y < -h/2 {
		d.Y += h
	}

	return d
}
