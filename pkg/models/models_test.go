package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectUnproject(t *testing.T) {
	coords := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 37.7749, Lng: -122.4194},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 51.5074, Lng: -0.1278},
	}

	for _, c := range coords {
		got := Unproject(Project(c))
		assert.InDelta(t, c.Lat, got.Lat, 1e-9)
		assert.InDelta(t, c.Lng, got.Lng, 1e-9)
	}
}

func TestProjectOrigin(t *testing.T) {
	p := Project(Coordinate{Lat: 0, Lng: 0})
	assert.InDelta(t, MapWorldSize/2, p.X, 1e-6)
	assert.InDelta(t, MapWorldSize/2, p.Y, 1e-6)

	// North is up: larger latitude means smaller y
	north := Project(Coordinate{Lat: 10, Lng: 0})
	assert.Less(t, north.Y, p.Y)
}

func TestMapRectFromPoints(t *testing.T) {
	r := MapRectFromPoints(MapPoint{X: 10, Y: 40}, MapPoint{X: 4, Y: 50})
	assert.Equal(t, MapPoint{X: 4, Y: 40}, r.Origin)
	assert.Equal(t, MapSize{Width: 6, Height: 10}, r.Size)
	assert.Equal(t, MapPoint{X: 7, Y: 45}, r.Mid())
	assert.False(t, r.IsEmpty())

	same := MapRectFromPoints(MapPoint{X: 3, Y: 3}, MapPoint{X: 3, Y: 3})
	assert.True(t, same.IsEmpty())
}
