package world

import "github.com/ojrac/opensimplex-go"

const (
	terrainScale   = 0.015
	waterThreshold = 0.30
)

// generateTerrain fills the grid from layered simplex noise: two octaves of
// elevation with the low end flooded. The noise source is seeded separately
// from the gameplay RNG so terrain shape never perturbs the simulation's
// random stream.
func (w *World) generateTerrain(seed int64) {
	noise := opensimplex.NewNormalized(seed)
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			fx := float64(x) * terrainScale
			fy := float64(y) * terrainScale
			e := noise.Eval2(fx, fy)*0.7 + noise.Eval2(fx*4, fy*4)*0.3

			c := w.grid.At(CellPos{X: x, Y: y})
			c.Elevation = float32(e)
			if e < waterThreshold {
				c.Terrain = TerrainWater
			} else {
				c.Terrain = TerrainGrass
			}
		}
	}
}
