package region

import "github.com/kass/geofencer/pkg/models"

// Geofence is an untitled fence
type Geofence struct {
	fence
}

// NewGeofence builds an untitled region and derives its circle
func NewGeofence(points []models.Coordinate) (*Geofence, error) {
	f, err := newFence(points, "")
	if err != nil {
		return nil, err
	}
	return &Geofence{fence: f}, nil
}

func (g *Geofence) Kind() Kind {
	return KindGeofence
}

func (g *Geofence) Title() string {
	return ""
}

// Encode renders {"points":["lat,lng",...]}
func (g *Geofence) Encode() (string, error) {
	return encodeRecord(nil, g.points)
}

// DecodeGeofence parses text produced by Geofence.Encode. A title, if
// present, is ignored.
func DecodeGeofence(text string, opts ...DecodeOption) (*Geofence, error) {
	rec, err := decodeRecord(text, false, opts...)
	if err != nil {
		return nil, err
	}
	return NewGeofence(rec.points)
}
