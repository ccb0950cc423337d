package region

import "github.com/kass/geofencer/pkg/models"

// CircularRegion is a titled fence, the variant users create and persist
type CircularRegion struct {
	fence
	title string
}

// NewCircularRegion builds a titled region and derives its circle
func NewCircularRegion(points []models.Coordinate, title string) (*CircularRegion, error) {
	f, err := newFence(points, title)
	if err != nil {
		return nil, err
	}
	return &CircularRegion{fence: f, title: title}, nil
}

func (r *CircularRegion) Kind() Kind {
	return KindCircular
}

func (r *CircularRegion) Title() string {
	return r.title
}

// Encode renders {"title":...,"points":["lat,lng",...]}
func (r *CircularRegion) Encode() (string, error) {
	title := r.title
	return encodeRecord(&title, r.points)
}

// DecodeCircularRegion parses text produced by CircularRegion.Encode.
// Both "title" and "points" must be present.
func DecodeCircularRegion(text string, opts ...DecodeOption) (*CircularRegion, error) {
	rec, err := decodeRecord(text, true, opts...)
	if err != nil {
		return nil, err
	}
	return NewCircularRegion(rec.points, *rec.title)
}
