package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileForCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		zoom     int
		wantX    int
		wantY    int
	}{
		{name: "new york at zoom 12", lat: 40.7128, lon: -74.0060, zoom: 12, wantX: 1206, wantY: 1539},
		{name: "origin at zoom 0", lat: 0, lon: 0, zoom: 0, wantX: 0, wantY: 0},
		{name: "greenwich at zoom 1", lat: 51.4779, lon: 0, zoom: 1, wantX: 1, wantY: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := TileForCoordinate(tt.lat, tt.lon, tt.zoom)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestTileForCoordinateDeterministic(t *testing.T) {
	x1, y1 := TileForCoordinate(48.8566, 2.3522, 15)
	for i := 0; i < 10; i++ {
		x2, y2 := TileForCoordinate(48.8566, 2.3522, 15)
		assert.Equal(t, x1, x2)
		assert.Equal(t, y1, y2)
	}
}
