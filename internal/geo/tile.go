package geo

import "math"

// TileForCoordinate converts geographic coordinates to slippy-map tile
// indices at the given zoom level.
// See https://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
func TileForCoordinate(lat, lon float64, zoom int) (x, y int) {
	n := math.Pow(2, float64(zoom))
	x = int(math.Floor(((lon + 180.0) / 360.0) * n))
	y = int(math.Floor((1.0 - math.Log(math.Tan(lat*math.Pi/180.0)+1.0/math.Cos(lat*math.Pi/180.0))/math.Pi) / 2.0 * n))
	return x, y
}
