package region

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/geofencer/pkg/models"
)

// record is the wire shape of a single region. Title is omitted for geofences.
type record struct {
	Title  *string  `json:"title,omitempty"`
	Points []string `json:"points"`
}

type decoded struct {
	title  *string
	points []models.Coordinate
}

type decodeConfig struct {
	permissive bool
}

// DecodeOption tunes how point strings are parsed
type DecodeOption func(*decodeConfig)

// Strict rejects point strings that are not exactly two numbers. This is the default.
func Strict() DecodeOption {
	return func(c *decodeConfig) { c.permissive = false }
}

// Permissive reads unparsable or missing numeric fields as 0
func Permissive() DecodeOption {
	return func(c *decodeConfig) { c.permissive = true }
}

// Decode parses either variant, choosing CircularRegion when a title is present
func Decode(text string, opts ...DecodeOption) (Region, error) {
	rec, err := decodeRecord(text, false, opts...)
	if err != nil {
		return nil, err
	}
	if rec.title != nil {
		r, err := NewCircularRegion(rec.points, *rec.title)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	g, err := NewGeofence(rec.points)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FormatPoint renders a coordinate as "lat,lng"
func FormatPoint(c models.Coordinate) string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Lng)
}

// ParsePoint parses a "lat,lng" string
func ParsePoint(s string, opts ...DecodeOption) (models.Coordinate, error) {
	cfg := newDecodeConfig(opts)
	return parsePoint(0, s, cfg.permissive)
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// formatDegrees keeps a fractional part on integral values so 37 renders as 37.0
func formatDegrees(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func encodeRecord(title *string, points []models.Coordinate) (string, error) {
	rec := record{
		Title:  title,
		Points: make([]string, len(points)),
	}
	for i, p := range points {
		rec.Points[i] = FormatPoint(p)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func decodeRecord(text string, requireTitle bool, opts ...DecodeOption) (*decoded, error) {
	cfg := newDecodeConfig(opts)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &ParseError{Err: err}
	}
	if fields == nil {
		return nil, &ParseError{Err: fmt.Errorf("not an object")}
	}

	rawPoints, ok := present(fields, "points")
	if !ok {
		return nil, &ParseError{Field: "points", Err: errMissingField}
	}
	var pointStrings []string
	if err := json.Unmarshal(rawPoints, &pointStrings); err != nil {
		return nil, &ParseError{Field: "points", Err: err}
	}

	out := &decoded{points: make([]models.Coordinate, len(pointStrings))}
	for i, s := range pointStrings {
		c, err := parsePoint(i, s, cfg.permissive)
		if err != nil {
			return nil, err
		}
		out.points[i] = c
	}

	rawTitle, ok := present(fields, "title")
	if ok {
		var title string
		if err := json.Unmarshal(rawTitle, &title); err != nil {
			return nil, &ParseError{Field: "title", Err: err}
		}
		out.title = &title
	} else if requireTitle {
		return nil, &ParseError{Field: "title", Err: errMissingField}
	}

	return out, nil
}

// present treats an explicit JSON null like a missing key
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func parsePoint(index int, s string, permissive bool) (models.Coordinate, error) {
	parts := strings.Split(s, ",")

	if permissive {
		var c models.Coordinate
		c.Lat = parseLoose(parts[0])
		if len(parts) > 1 {
			c.Lng = parseLoose(parts[1])
		}
		return c, nil
	}

	if len(parts) != 2 {
		return models.Coordinate{}, &MalformedPointError{Index: index, Value: s}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinate{}, &MalformedPointError{Index: index, Value: s, Err: err}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinate{}, &MalformedPointError{Index: index, Value: s, Err: err}
	}
	return models.Coordinate{Lat: lat, Lng: lng}, nil
}

func parseLoose(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
