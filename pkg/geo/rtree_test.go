package geo

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegion(t testing.TB, title string, lat1, lng1, lat2, lng2 float64) region.Region {
	t.Helper()
	r, err := region.NewCircularRegion([]models.Coordinate{
		{Lat: lat1, Lng: lng1},
		{Lat: lat2, Lng: lng2},
	}, title)
	require.NoError(t, err)
	return r
}

func titles(regions []region.Region) map[string]bool {
	out := make(map[string]bool)
	for _, r := range regions {
		out[r.Title()] = true
	}
	return out
}

func TestIndexAndRegionsAt(t *testing.T) {
	index := NewIndex()

	regions := []region.Region{
		mustRegion(t, "SF", 37.70, -122.50, 37.80, -122.40),
		mustRegion(t, "Oakland", 37.78, -122.30, 37.83, -122.24),
		mustRegion(t, "London", 51.45, -0.20, 51.55, -0.05),
	}
	require.NoError(t, index.IndexRegions(regions))
	assert.Equal(t, int64(3), index.Size())

	found := index.RegionsAt(models.Coordinate{Lat: 37.75, Lng: -122.45})
	require.Len(t, found, 1)
	assert.Equal(t, "SF", found[0].Title())

	found = index.RegionsAt(models.Coordinate{Lat: 51.5, Lng: -0.125})
	require.Len(t, found, 1)
	assert.Equal(t, "London", found[0].Title())

	assert.Empty(t, index.RegionsAt(models.Coordinate{Lat: 0, Lng: 0}))
}

func TestRegionsAtOverlapping(t *testing.T) {
	index := NewIndex()
	require.NoError(t, index.IndexRegions([]region.Region{
		mustRegion(t, "big", 40.0, -74.2, 40.2, -74.0),
		mustRegion(t, "small", 40.09, -74.11, 40.11, -74.09),
	}))

	found := titles(index.RegionsAt(models.Coordinate{Lat: 40.1, Lng: -74.1}))
	assert.True(t, found["big"])
	assert.True(t, found["small"])
}

func TestDegenerateRegionIsIndexed(t *testing.T) {
	index := NewIndex()
	require.NoError(t, index.IndexRegions([]region.Region{
		mustRegion(t, "dot", 10, 10, 10, 10),
	}))

	found := index.RegionsAt(models.Coordinate{Lat: 10, Lng: 10})
	require.Len(t, found, 1)
	assert.Empty(t, index.RegionsAt(models.Coordinate{Lat: 10.01, Lng: 10}))
}

func TestSearchBox(t *testing.T) {
	index := NewIndex()
	require.NoError(t, index.IndexRegions([]region.Region{
		mustRegion(t, "London", 51.45, -0.20, 51.55, -0.05),
		mustRegion(t, "Paris", 48.80, 2.30, 48.90, 2.40),
		mustRegion(t, "Tokyo", 35.60, 139.60, 35.70, 139.70),
	}))

	results, err := index.SearchBox(models.BoundingBox{
		BottomLeft: models.Coordinate{Lat: 45.0, Lng: -5.0},
		TopRight:   models.Coordinate{Lat: 55.0, Lng: 10.0},
	})
	require.NoError(t, err)

	found := titles(results)
	assert.Len(t, found, 2)
	assert.True(t, found["London"])
	assert.True(t, found["Paris"])

	_, err = index.SearchBox(models.BoundingBox{
		BottomLeft: models.Coordinate{Lat: 10, Lng: 10},
		TopRight:   models.Coordinate{Lat: 5, Lng: 20},
	})
	assert.Error(t, err)
}

func TestNearest(t *testing.T) {
	index := NewIndex()

	var regions []region.Region
	for i := 0; i < 10; i++ {
		lat := float64(i)
		regions = append(regions, mustRegion(t, fmt.Sprintf("r%d", i), lat, 0, lat+0.1, 0.1))
	}
	require.NoError(t, index.IndexRegions(regions))

	nearest := index.Nearest(models.Coordinate{Lat: 4.05, Lng: 0.05}, 3)
	require.Len(t, nearest, 3)
	assert.Equal(t, "r4", nearest[0].Title())
}

func TestHandleChangeRebuilds(t *testing.T) {
	ctx := context.Background()
	index := NewIndex()

	a := mustRegion(t, "A", 1, 1, 1.1, 1.1)
	b := mustRegion(t, "B", 2, 2, 2.1, 2.1)

	index.HandleChange(ctx, regionlist.ChangeEvent{New: []region.Region{a, b}})
	assert.Equal(t, int64(2), index.Size())

	index.HandleChange(ctx, regionlist.ChangeEvent{Old: []region.Region{a, b}, New: []region.Region{b}})
	assert.Equal(t, int64(1), index.Size())
	assert.Empty(t, index.RegionsAt(models.Coordinate{Lat: 1.05, Lng: 1.05}))
	assert.Len(t, index.RegionsAt(models.Coordinate{Lat: 2.05, Lng: 2.05}), 1)
}

func TestIndexFollowsManager(t *testing.T) {
	ctx := context.Background()
	index := NewIndex()
	m := regionlist.New(nil, regionlist.WithSubscriber(index))

	r, err := m.AppendConfirmed(ctx, []models.Coordinate{{Lat: 5, Lng: 5}, {Lat: 5.2, Lng: 5.2}}, "tap me")
	require.NoError(t, err)

	found := index.RegionsAt(models.Coordinate{Lat: 5.1, Lng: 5.1})
	require.Len(t, found, 1)
	assert.Equal(t, r.ID(), found[0].ID())
	assert.Equal(t, 0, m.IndexOf(found[0].ID()))

	m.Reset(ctx)
	assert.Equal(t, int64(0), index.Size())
}

func TestCircleBoundsAsSpatial(t *testing.T) {
	r := mustRegion(t, "Home", 37.33, -122.03, 37.34, -122.02)

	rect, err := circleBounds(r.Circle())
	require.NoError(t, err)
	require.NotNil(t, rect)

	var item rtreego.Spatial = &spatialItem{region: r, rect: rect}
	assert.Same(t, rect, item.Bounds())

	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	tree.Insert(item)

	center := r.Circle().Center
	hits := tree.SearchIntersect(rtreego.Point{center.Lat, center.Lng}.ToRect(tolerance))
	require.Len(t, hits, 1)
	found, ok := hits[0].(*spatialItem)
	require.True(t, ok)
	assert.Equal(t, r.ID(), found.region.ID())

	miss := tree.SearchIntersect(rtreego.Point{0, 0}.ToRect(tolerance))
	assert.Empty(t, miss)
}

func BenchmarkRegionsAt(b *testing.B) {
	index := NewIndex()

	regions := make([]region.Region, 0, 10000)
	for i := 0; i < 10000; i++ {
		lat := rand.Float64()*160 - 80
		lng := rand.Float64()*340 - 170
		regions = append(regions, mustRegion(b, fmt.Sprintf("p%d", i), lat, lng, lat+0.05, lng+0.05))
	}
	if err := index.IndexRegions(regions); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		lat := rand.Float64()*160 - 80
		lng := rand.Float64()*340 - 170
		_ = index.RegionsAt(models.Coordinate{Lat: lat, Lng: lng})
	}
}
