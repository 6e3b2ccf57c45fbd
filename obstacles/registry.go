// Package obstacles owns the closed regions agents avoid and cannot spawn in.
package obstacles

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/config"
)

// Kind distinguishes how an obstacle was built.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindFreehand
)

func (k Kind) String() string {
	if k == KindRectangle {
		return "rectangle"
	}
	return "freehand"
}

// Obstacle is a closed region. Ring is always closed (first point == last point).
type Obstacle struct {
	ID         int
	Kind       Kind
	Ring       orb.Ring
	IsObstacle bool // fill tag; decorative shapes are skipped by queries

	// Rectangle geometry, kept in step with Ring by the edit operations.
	// Zero for freehand shapes.
	Center   r2.Vec
	Size     r2.Vec
	Rotation float64 // radians

	bound orb.Bound
}

// Options holds freehand construction parameters.
type Options struct {
	MinPoints         int
	CloseDistance     float64
	SmoothIterations  int
	SimplifyTolerance float64
}

// OptionsFromConfig converts the YAML section into registry options.
func OptionsFromConfig(c config.ObstacleConfig) Options {
	opts := Options{
		MinPoints:         c.MinPoints,
		CloseDistance:     c.CloseDistance,
		SmoothIterations:  c.SmoothIterations,
		SimplifyTolerance: c.SimplifyTolerance,
	}
	if opts.MinPoints < 3 {
		opts.MinPoints = 3
	}
	return opts
}

// Registry owns every obstacle. Force modules only read from it.
type Registry struct {
	opts   Options
	items  []*Obstacle
	nextID int

	drafting bool
	draft    orb.LineString
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.MinPoints < 3 {
		opts.MinPoints = 3
	}
	return &Registry{opts: opts, nextID: 1}
}

// AddRectangle registers an axis-aligned rectangle centered on center.
func (r *Registry) AddRectangle(center, size r2.Vec) *Obstacle {
	hw, hh := math.Abs(size.X)/2, math.Abs(size.Y)/2
	ring := orb.Ring{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
		{center.X - hw, center.Y - hh},
	}
	o := r.register(KindRectangle, ring)
	o.Center = center
	o.Size = r2.Vec{X: 2 * hw, Y: 2 * hh}
	return o
}

// AddPolygon registers a closed polygon from raw points without smoothing.
// Returns false if fewer than three points were given.
func (r *Registry) AddPolygon(points []r2.Vec) (*Obstacle, bool) {
	if len(points) < 3 {
		return nil, false
	}
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, toPoint(p))
	}
	return r.register(KindFreehand, closeRing(ring)), true
}

func (r *Registry) register(kind Kind, ring orb.Ring) *Obstacle {
	o := &Obstacle{
		ID:         r.nextID,
		Kind:       kind,
		Ring:       ring,
		IsObstacle: true,
		bound:      ring.Bound(),
	}
	r.nextID++
	r.items = append(r.items, o)
	return o
}

// AllClosedRegions returns every obstacle eligible for containment and avoidance queries.
func (r *Registry) AllClosedRegions() []*Obstacle {
	out := make([]*Obstacle, 0, len(r.items))
	for _, o := range r.items {
		if o.IsObstacle {
			out = append(out, o)
		}
	}
	return out
}

// All returns every registered shape, decorative ones included.
func (r *Registry) All() []*Obstacle {
	return r.items
}

// Len returns the number of registered shapes.
func (r *Registry) Len() int {
	return len(r.items)
}

// Get returns the obstacle with the given id.
func (r *Registry) Get(id int) (*Obstacle, bool) {
	for _, o := range r.items {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// AnyContains reports whether p lies inside any obstacle.
func (r *Registry) AnyContains(p r2.Vec) bool {
	for _, o := range r.items {
		if o.IsObstacle && o.Contains(p) {
			return true
		}
	}
	return false
}

// HitTest returns the most recently added shape containing p.
func (r *Registry) HitTest(p r2.Vec) (*Obstacle, bool) {
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Contains(p) {
			return r.items[i], true
		}
	}
	return nil, false
}

// RemoveOne deletes the obstacle with the given id.
func (r *Registry) RemoveOne(id int) bool {
	for i, o := range r.items {
		if o.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll deletes every obstacle and any freehand draft.
func (r *Registry) ClearAll() {
	r.items = r.items[:0]
	r.drafting = false
	r.draft = nil
}

// ContainsPoint reports whether p lies inside o.
func ContainsPoint(o *Obstacle, p r2.Vec) bool {
	return o.Contains(p)
}

// NearestBoundaryPoint returns the point on o's boundary closest to p.
func NearestBoundaryPoint(o *Obstacle, p r2.Vec) r2.Vec {
	return o.NearestBoundaryPoint(p)
}

// Contains reports whether p lies inside the region.
func (o *Obstacle) Contains(p r2.Vec) bool {
	pt := toPoint(p)
	if !o.bound.Contains(pt) {
		return false
	}
	return planar.RingContains(o.Ring, pt)
}

// Near reports whether p is within d of the region's bounding box.
func (o *Obstacle) Near(p r2.Vec, d float64) bool {
	return o.bound.Pad(d).Contains(toPoint(p))
}

// NearestBoundaryPoint returns the closest point on the ring to p.
func (o *Obstacle) NearestBoundaryPoint(p r2.Vec) r2.Vec {
	best := r2.Vec{}
	bestD := math.Inf(1)
	for i := 0; i+1 < len(o.Ring); i++ {
		q := closestOnSegment(toVec(o.Ring[i]), toVec(o.Ring[i+1]), p)
		if d := r2.Norm2(r2.Sub(q, p)); d < bestD {
			bestD = d
			best = q
		}
	}
	return best
}

// Centroid returns the area centroid of the region.
func (o *Obstacle) Centroid() r2.Vec {
	c, _ := planar.CentroidArea(o.Ring)
	return toVec(c)
}

// Points returns the ring without its closing point.
func (o *Obstacle) Points() []r2.Vec {
	n := len(o.Ring)
	if n > 1 && o.Ring[0] == o.Ring[n-1] {
		n--
	}
	out := make([]r2.Vec, n)
	for i := 0; i < n; i++ {
		out[i] = toVec(o.Ring[i])
	}
	return out
}

func (o *Obstacle) refresh() {
	o.bound = o.Ring.Bound()
}

func closestOnSegment(a, b, p r2.Vec) r2.Vec {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r2.Add(a, r2.Scale(t, ab))
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

func toPoint(v r2.Vec) orb.Point {
	return orb.Point{v.X, v.Y}
}

func toVec(p orb.Point) r2.Vec {
	return r2.Vec{X: p[0], Y: p[1]}
}
