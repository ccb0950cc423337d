package region

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/kass/geofencer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularRegionEncode(t *testing.T) {
	r, err := NewCircularRegion(home, "Home")
	require.NoError(t, err)

	text, err := r.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Home","points":["37.0,-122.0","37.01,-122.01"]}`, text)
}

func TestGeofenceEncode(t *testing.T) {
	g, err := NewGeofence(home)
	require.NoError(t, err)

	text, err := g.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"points":["37.0,-122.0","37.01,-122.01"]}`, text)
}

func TestEncodeEscapesTitle(t *testing.T) {
	title := `Bob's "secret" <spot> \ here`
	r, err := NewCircularRegion(home, title)
	require.NoError(t, err)

	text, err := r.Encode()
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(text)))

	back, err := DecodeCircularRegion(text)
	require.NoError(t, err)
	assert.Equal(t, title, back.Title())
}

func TestCircularRegionRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		points := []models.Coordinate{
			{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180},
			{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180},
		}
		title := fmt.Sprintf("region %d", i)

		orig, err := NewCircularRegion(points, title)
		require.NoError(t, err)

		text, err := orig.Encode()
		require.NoError(t, err)

		back, err := DecodeCircularRegion(text)
		require.NoError(t, err)
		assert.True(t, Equal(orig, back), "round trip of %s", text)
		assert.Equal(t, orig.Circle(), back.Circle())
	}
}

func TestGeofenceRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		points := []models.Coordinate{
			{Lat: r.Float64()*180 - 90, Lng: r.Float64()*360 - 180},
			{Lat: float64(r.Intn(180) - 90), Lng: float64(r.Intn(360) - 180)},
		}

		orig, err := NewGeofence(points)
		require.NoError(t, err)

		text, err := orig.Encode()
		require.NoError(t, err)

		back, err := DecodeGeofence(text)
		require.NoError(t, err)
		assert.True(t, Equal(orig, back), "round trip of %s", text)
	}
}

func TestDecodeParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		text  string
		field string
	}{
		{"not json", `{"title":"Home", "points":[`, ""},
		{"array", `["37.0,-122.0"]`, ""},
		{"null", `null`, ""},
		{"missing points", `{"title":"Home"}`, "points"},
		{"null points", `{"title":"Home","points":null}`, "points"},
		{"points not strings", `{"title":"Home","points":[1,2]}`, "points"},
		{"missing title", `{"points":["1,2","3,4"]}`, "title"},
		{"null title", `{"title":null,"points":["1,2","3,4"]}`, "title"},
		{"title not string", `{"title":5,"points":["1,2","3,4"]}`, "title"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := DecodeCircularRegion(tc.text)
			assert.Nil(t, r)
			require.ErrorIs(t, err, ErrParse)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.field, perr.Field)
		})
	}
}

func TestDecodeGeofenceIgnoresTitle(t *testing.T) {
	g, err := DecodeGeofence(`{"title":"x","points":["1,2","3,4"]}`)
	require.NoError(t, err)
	assert.Equal(t, "", g.Title())

	_, err = DecodeGeofence(`{"title":"x"}`)
	assert.ErrorIs(t, err, ErrParse)
}

func TestDecodeTooFewPoints(t *testing.T) {
	_, err := DecodeCircularRegion(`{"title":"x","points":["1,2"]}`)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeStrictMalformedPoints(t *testing.T) {
	testCases := []string{
		`{"title":"x","points":["1,2","abc,4"]}`,
		`{"title":"x","points":["1,2","3"]}`,
		`{"title":"x","points":["1,2","3,4,5"]}`,
		`{"title":"x","points":["1,2",""]}`,
	}

	for _, text := range testCases {
		t.Run(text, func(t *testing.T) {
			_, err := DecodeCircularRegion(text)
			assert.ErrorIs(t, err, ErrMalformedPoint)
			assert.ErrorIs(t, err, ErrParse)

			var perr *MalformedPointError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 1, perr.Index)
		})
	}
}

func TestDecodePermissive(t *testing.T) {
	r, err := DecodeCircularRegion(`{"title":"x","points":["1,2","abc"]}`, Permissive())
	require.NoError(t, err)
	assert.Equal(t, []models.Coordinate{{Lat: 1, Lng: 2}, {Lat: 0, Lng: 0}}, r.Points())

	r, err = DecodeCircularRegion(`{"title":"x","points":["1,zz","3,4,5"]}`, Permissive())
	require.NoError(t, err)
	assert.Equal(t, []models.Coordinate{{Lat: 1, Lng: 0}, {Lat: 3, Lng: 4}}, r.Points())
}

func TestDecodePicksVariant(t *testing.T) {
	r, err := Decode(`{"title":"Home","points":["1,2","3,4"]}`)
	require.NoError(t, err)
	assert.Equal(t, KindCircular, r.Kind())
	assert.Equal(t, "Home", r.Title())

	r, err = Decode(`{"points":["1,2","3,4"]}`)
	require.NoError(t, err)
	assert.Equal(t, KindGeofence, r.Kind())
}

func TestFormatAndParsePoint(t *testing.T) {
	testCases := []struct {
		coord models.Coordinate
		text  string
	}{
		{models.Coordinate{Lat: 37, Lng: -122}, "37.0,-122.0"},
		{models.Coordinate{Lat: 37.01, Lng: -122.01}, "37.01,-122.01"},
		{models.Coordinate{Lat: 0, Lng: 0}, "0.0,0.0"},
		{models.Coordinate{Lat: 0.00001, Lng: 1e-7}, "0.00001,0.0000001"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.text, FormatPoint(tc.coord))

		c, err := ParsePoint(tc.text)
		require.NoError(t, err)
		assert.Equal(t, tc.coord, c)
	}

	c, err := ParsePoint(" 1.5 , -2.5 ")
	require.NoError(t, err)
	assert.Equal(t, models.Coordinate{Lat: 1.5, Lng: -2.5}, c)
}
