// Package region holds the fence data model: regions defined by two
// geographic points, the circle derived from them, and the text codec
// used to persist and export them.
package region

import (
	"slices"

	"github.com/google/uuid"
	"github.com/kass/geofencer/pkg/models"
)

// MinPoints is the number of points a region needs to derive its circle
const MinPoints = 2

// Kind tags the concrete region variant
type Kind string

const (
	KindCircular Kind = "circular"
	KindGeofence Kind = "geofence"
)

// Shape is what the display surface renders for a region: the circle acts
// as both the overlay and the callout annotation.
type Shape struct {
	RegionID string
	Label    string
	Circle   Circle
}

// Region is anything built from an ordered list of points that can be
// drawn on a map and round-tripped through text.
type Region interface {
	ID() string
	Kind() Kind
	Title() string
	Points() []models.Coordinate
	Circle() Circle
	Shapes() []Shape
	Encode() (string, error)
}

// fence is the geometry shared by every region variant
type fence struct {
	id     string
	points []models.Coordinate
	circle Circle
	shapes []Shape
}

func newFence(points []models.Coordinate, label string) (fence, error) {
	if len(points) < MinPoints {
		return fence{}, &InvalidArgumentError{Got: len(points), Want: MinPoints}
	}

	f := fence{
		id:     uuid.NewString(),
		points: slices.Clone(points),
	}
	// Only the first and last points define the circle
	f.circle = CircleFromPoints(f.points[0], f.points[len(f.points)-1])
	f.shapes = []Shape{{RegionID: f.id, Label: label, Circle: f.circle}}
	return f, nil
}

func (f *fence) ID() string {
	return f.id
}

func (f *fence) Points() []models.Coordinate {
	return slices.Clone(f.points)
}

func (f *fence) Circle() Circle {
	return f.circle
}

func (f *fence) Shapes() []Shape {
	return slices.Clone(f.shapes)
}

// Equal compares two regions by value: variant, title and ordered points.
// Identifiers are ignored.
func Equal(a, b Region) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() &&
		a.Title() == b.Title() &&
		slices.Equal(a.Points(), b.Points())
}

// EqualLists compares two region lists element-wise with Equal
func EqualLists(a, b []Region) bool {
	return slices.EqualFunc(a, b, Equal)
}
