package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

// AddRectangle places a rectangular obstacle. Agents already inside stay
// where they are and are pushed out by avoidance.
func (g *Game) AddRectangle(center, size r2.Vec) *obstacles.Obstacle {
	return g.obstacles.AddRectangle(center, size)
}

// ObstacleAt returns the topmost obstacle containing p.
func (g *Game) ObstacleAt(p r2.Vec) (*obstacles.Obstacle, bool) {
	return g.obstacles.HitTest(p)
}

// DeleteObstacle removes one obstacle by ID.
func (g *Game) DeleteObstacle(id int) bool {
	if g.pointer.selected == id {
		g.pointer.selected = 0
	}
	return g.obstacles.RemoveOne(id)
}

// ClearObstacles removes every obstacle.
func (g *Game) ClearObstacles() {
	g.pointer.selected = 0
	g.obstacles.ClearAll()
}

// MoveObstacle translates an obstacle by delta.
func (g *Game) MoveObstacle(id int, delta r2.Vec) bool {
	return g.obstacles.Move(id, delta)
}

// ResizeObstacle scales an obstacle about its centroid.
func (g *Game) ResizeObstacle(id int, factor float64) bool {
	return g.obstacles.Resize(id, factor)
}

// RotateObstacle turns an obstacle by degrees about its centroid.
func (g *Game) RotateObstacle(id int, degrees float64) bool {
	return g.obstacles.Rotate(id, config.Radians(degrees))
}

// SetObstacleFill toggles whether a shape blocks agents.
func (g *Game) SetObstacleFill(id int, isObstacle bool) bool {
	return g.obstacles.SetObstacle(id, isObstacle)
}

// Selected returns the obstacle picked by the select tool.
func (g *Game) Selected() (*obstacles.Obstacle, bool) {
	if g.pointer.selected == 0 {
		return nil, false
	}
	return g.obstacles.Get(g.pointer.selected)
}
