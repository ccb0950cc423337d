package region

import (
	"math"

	"github.com/kass/geofencer/pkg/models"
)

const earthRadius = 6371.0 // km

// Circle is the shape derived from a region's first and last points.
// Rect is the planar bounding rectangle of the two projected points; Center
// and RadiusMeters describe the same two-point circle without the projection.
type Circle struct {
	Rect         models.MapRect    `json:"rect"`
	Center       models.Coordinate `json:"center"`
	RadiusMeters float64           `json:"radius_m"`
}

// CircleFromPoints builds the circle spanned by two coordinates
func CircleFromPoints(a, b models.Coordinate) Circle {
	p1 := models.Project(a)
	p2 := models.Project(b)

	return Circle{
		Rect: models.MapRectFromPoints(p1, p2),
		Center: models.Coordinate{
			Lat: (a.Lat + b.Lat) / 2,
			Lng: (a.Lng + b.Lng) / 2,
		},
		RadiusMeters: Distance(a, b) / 2,
	}
}

// Contains reports whether c lies within the circle
func (c Circle) Contains(p models.Coordinate) bool {
	return Distance(c.Center, p) <= c.RadiusMeters
}

// IsDegenerate reports whether both defining points were identical
func (c Circle) IsDegenerate() bool {
	return c.Rect.IsEmpty()
}

// Distance calculates the Haversine distance between two coordinates in meters
func Distance(a, b models.Coordinate) float64 {
	lat1Rad := a.Lat * math.Pi / 180.0
	lon1Rad := a.Lng * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0
	lon2Rad := b.Lng * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c * 1000
}
