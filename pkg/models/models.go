package models

import "math"

const (
	// MapWorldSize is the width and height of the projected world in map points
	MapWorldSize = 268435456.0

	// maxMercatorLat keeps the projection finite at the poles
	maxMercatorLat = 85.05112878
)

// Coordinate represents a geographic location with latitude and longitude
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapPoint is a coordinate projected onto the planar Web Mercator map surface
type MapPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MapSize is a width/height pair in map points
type MapSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapRect represents a rectangular area of the map defined by its origin and size
type MapRect struct {
	Origin MapPoint `json:"origin"`
	Size   MapSize  `json:"size"`
}

// Project converts a coordinate into map points
func Project(c Coordinate) MapPoint {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, c.Lat))
	sinLat := math.Sin(lat * math.Pi / 180.0)

	return MapPoint{
		X: (c.Lng + 180.0) / 360.0 * MapWorldSize,
		Y: (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * MapWorldSize,
	}
}

// Unproject converts map points back into a coordinate
func Unproject(p MapPoint) Coordinate {
	lng := p.X/MapWorldSize*360.0 - 180.0
	n := (0.5 - p.Y/MapWorldSize) * 2 * math.Pi
	lat := (2*math.Atan(math.Exp(n)) - math.Pi/2) * 180.0 / math.Pi

	return Coordinate{Lat: lat, Lng: lng}
}

// MapRectFromPoints returns the smallest rectangle containing both points
func MapRectFromPoints(a, b MapPoint) MapRect {
	return MapRect{
		Origin: MapPoint{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Size:   MapSize{Width: math.Abs(a.X - b.X), Height: math.Abs(a.Y - b.Y)},
	}
}

// Mid returns the center of the rectangle
func (r MapRect) Mid() MapPoint {
	return MapPoint{
		X: r.Origin.X + r.Size.Width/2,
		Y: r.Origin.Y + r.Size.Height/2,
	}
}

// IsEmpty reports whether the rectangle has collapsed to a single point
func (r MapRect) IsEmpty() bool {
	return r.Size.Width == 0 && r.Size.Height == 0
}

// BoundingBox represents a rectangular area defined by two corners in degrees
type BoundingBox struct {
	BottomLeft Coordinate
	TopRight   Coordinate
}
