package world

import "math"

const waypointEpsilon = 0.1

// systemCitizenMovement advances every routed citizen along its waypoints.
// Runs every tick; Abstract citizens are skipped entirely.
func (w *World) systemCitizenMovement() {
	for i := range w.citizens {
		c := &w.citizens[i]
		if !c.Alive || c.Lod == LodAbstract || c.Path == nil {
			continue
		}
		w.moveCitizen(c)
	}
}

func (w *World) moveCitizen(c *Citizen) {
	p := c.Path
	if p.Index >= len(p.Waypoints) {
		c.Path = nil
		c.Vel = Vec2{}
		w.arrive(c)
		return
	}
	target := p.Waypoints[p.Index].Center()

	cur := cellOf(c.Pos)
	speed := w.cellSpeed(cur) * transportSpeedFactor(c.Transport)

	dx := target.X - c.Pos.X
	dy := target.Y - c.Pos.Y
	dist := math.Hypot(dx, dy)
	if dist <= waypointEpsilon || dist <= speed {
		c.Pos = target
		p.Index++
		if p.Index >= len(p.Waypoints) {
			c.Path = nil
			c.Vel = Vec2{}
			w.arrive(c)
		}
		return
	}
	c.Vel = Vec2{X: dx / dist * speed, Y: dy / dist * speed}
	c.Pos.X += c.Vel.X
	c.Pos.Y += c.Vel.Y

	// Driving over a road cell bumps its traffic density (saturating).
	if c.Transport == TransportCar && w.roads.IsRoad(cur) {
		i := cur.Index()
		if w.grids.TrafficDensity[i] < 255 {
			w.grids.TrafficDensity[i]++
		}
	}
}

// cellSpeed is the base cells-per-tick speed at a position: road-kind speed
// damped by local congestion. Off-road movement crawls.
func (w *World) cellSpeed(p CellPos) float64 {
	if !p.InBounds() {
		return 0.02
	}
	c := w.grid.At(p)
	if c.Terrain != TerrainRoad {
		return 0.02
	}
	spec := roadSpecs[c.Road]
	density := float64(w.grids.TrafficDensity[p.Index()])
	congestion := 1.0 / (1.0 + density/spec.Capacity)
	return spec.MaxSpeed * congestion
}
