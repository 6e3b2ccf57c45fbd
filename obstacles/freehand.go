package obstacles

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"gonum.org/v1/gonum/spatial/r2"
)

// BeginFreehand starts tracing a new freehand path, discarding any unfinished one.
func (r *Registry) BeginFreehand(p r2.Vec) {
	r.drafting = true
	r.draft = orb.LineString{toPoint(p)}
}

// ExtendFreehand appends p to the path. When the path returns close to its
// start after enough points it finishes on its own and the new obstacle is returned.
func (r *Registry) ExtendFreehand(p r2.Vec) *Obstacle {
	if !r.drafting {
		return nil
	}
	pt := toPoint(p)
	if last := r.draft[len(r.draft)-1]; last == pt {
		return nil
	}
	r.draft = append(r.draft, pt)

	if len(r.draft) <= r.opts.MinPoints || r.opts.CloseDistance <= 0 {
		return nil
	}
	start := toVec(r.draft[0])
	if r2.Norm(r2.Sub(p, start)) > r.opts.CloseDistance {
		return nil
	}
	// Ignore the first few points that are near the start simply because the stroke just began.
	if farthest(r.draft, start) <= r.opts.CloseDistance {
		return nil
	}
	o, _ := r.EndFreehand()
	return o
}

// EndFreehand closes the path and registers it. Paths with fewer than
// MinPoints points are discarded.
func (r *Registry) EndFreehand() (*Obstacle, bool) {
	if !r.drafting {
		return nil, false
	}
	points := r.draft
	r.drafting = false
	r.draft = nil

	if len(points) < r.opts.MinPoints {
		return nil, false
	}

	ring := closeRing(orb.Ring(points.Clone()))
	ring = smoothRing(ring, r.opts.SmoothIterations)
	ring = simplifyRing(ring, r.opts.SimplifyTolerance)
	if len(ring) < 4 {
		return nil, false
	}
	return r.register(KindFreehand, ring), true
}

// Drafting reports whether a freehand path is being traced.
func (r *Registry) Drafting() bool {
	return r.drafting
}

// Draft returns the points of the path being traced.
func (r *Registry) Draft() []r2.Vec {
	out := make([]r2.Vec, len(r.draft))
	for i, p := range r.draft {
		out[i] = toVec(p)
	}
	return out
}

// smoothRing applies Chaikin corner cutting to a closed ring.
func smoothRing(ring orb.Ring, iterations int) orb.Ring {
	for it := 0; it < iterations; it++ {
		n := len(ring) - 1 // last point duplicates the first
		if n < 3 {
			return ring
		}
		out := make(orb.Ring, 0, 2*n+1)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[i+1]
			out = append(out,
				orb.Point{0.75*a[0] + 0.25*b[0], 0.75*a[1] + 0.25*b[1]},
				orb.Point{0.25*a[0] + 0.75*b[0], 0.25*a[1] + 0.75*b[1]},
			)
		}
		ring = closeRing(out)
	}
	return ring
}

// simplifyRing bounds the point count with Douglas-Peucker, keeping the
// smoothed ring when simplification would leave fewer than three corners.
func simplifyRing(ring orb.Ring, tolerance float64) orb.Ring {
	if tolerance <= 0 {
		return ring
	}
	g := simplify.DouglasPeucker(tolerance).Simplify(orb.LineString(ring).Clone())
	ls, ok := g.(orb.LineString)
	if !ok || len(ls) < 4 {
		return ring
	}
	return closeRing(orb.Ring(ls))
}

func farthest(ls orb.LineString, from r2.Vec) float64 {
	best := 0.0
	for _, p := range ls {
		if d := r2.Norm(r2.Sub(toVec(p), from)); d > best {
			best = d
		}
	}
	return best
}
