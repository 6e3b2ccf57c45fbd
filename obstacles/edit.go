package obstacles

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"
)

// Move translates the obstacle by delta.
func (r *Registry) Move(id int, delta r2.Vec) bool {
	o, ok := r.Get(id)
	if !ok {
		return false
	}
	for i := range o.Ring {
		o.Ring[i] = orb.Point{o.Ring[i][0] + delta.X, o.Ring[i][1] + delta.Y}
	}
	if o.Kind == KindRectangle {
		o.Center = r2.Add(o.Center, delta)
	}
	o.refresh()
	return true
}

// Resize scales the obstacle about its centroid. Non-positive factors are ignored.
func (r *Registry) Resize(id int, factor float64) bool {
	o, ok := r.Get(id)
	if !ok || factor <= 0 {
		return false
	}
	c := o.Centroid()
	for i := range o.Ring {
		v := r2.Sub(toVec(o.Ring[i]), c)
		o.Ring[i] = toPoint(r2.Add(c, r2.Scale(factor, v)))
	}
	if o.Kind == KindRectangle {
		o.Size = r2.Scale(factor, o.Size)
	}
	o.refresh()
	return true
}

// Rotate turns the obstacle by angle radians about its centroid.
func (r *Registry) Rotate(id int, angle float64) bool {
	o, ok := r.Get(id)
	if !ok {
		return false
	}
	c := o.Centroid()
	sin, cos := math.Sincos(angle)
	for i := range o.Ring {
		v := r2.Sub(toVec(o.Ring[i]), c)
		rot := r2.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
		o.Ring[i] = toPoint(r2.Add(c, rot))
	}
	if o.Kind == KindRectangle {
		o.Rotation = math.Remainder(o.Rotation+angle, 2*math.Pi)
	}
	o.refresh()
	return true
}

// SetObstacle toggles the fill tag that makes a shape block agents.
func (r *Registry) SetObstacle(id int, isObstacle bool) bool {
	o, ok := r.Get(id)
	if !ok {
		return false
	}
	o.IsObstacle = isObstacle
	return true
}
