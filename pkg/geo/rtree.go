// Package geo provides an R-Tree index over region circles, used to find
// the regions under a tapped map coordinate.
package geo

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
)

const (
	tolerance       = 1e-6
	minChildren     = 2
	maxChildren     = 8
	dimensions      = 2
	metersPerDegLat = 111320.0
)

// spatialItem wraps a region for R-Tree indexing
type spatialItem struct {
	region region.Region
	rect   *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe R-Tree of region bounding boxes in lat/lng degrees
type Index struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

var (
	_ regionlist.Subscriber = (*Index)(nil)
	_ rtreego.Spatial       = (*spatialItem)(nil)
)

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// IndexRegions adds regions to the index
func (g *Index) IndexRegions(regions []region.Region) error {
	items := make([]*spatialItem, 0, len(regions))
	for _, r := range regions {
		rect, err := circleBounds(r.Circle())
		if err != nil {
			return fmt.Errorf("failed to index region %s: %w", r.ID(), err)
		}
		items = append(items, &spatialItem{region: r, rect: rect})
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, item := range items {
		g.tree.Insert(item)
	}
	g.itemCount.Add(int64(len(items)))
	return nil
}

// HandleChange rebuilds the index from the new list
func (g *Index) HandleChange(_ context.Context, ev regionlist.ChangeEvent) {
	g.Clear()
	// circleBounds only fails on non-finite geometry; such regions are not tappable
	for _, r := range ev.New {
		_ = g.IndexRegions([]region.Region{r})
	}
}

// RegionsAt returns every region whose circle contains c
func (g *Index) RegionsAt(c models.Coordinate) []region.Region {
	g.mu.RLock()
	defer g.mu.RUnlock()

	results := g.tree.SearchIntersect(rtreego.Point{c.Lat, c.Lng}.ToRect(tolerance))

	regions := make([]region.Region, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		if item.region.Circle().Contains(c) {
			regions = append(regions, item.region)
		}
	}
	return regions
}

// SearchBox returns all regions whose bounds intersect the given box
func (g *Index) SearchBox(box models.BoundingBox) ([]region.Region, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	bounds, err := rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lng},
		[]float64{box.TopRight.Lat - box.BottomLeft.Lat, box.TopRight.Lng - box.BottomLeft.Lng},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	regions := make([]region.Region, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialItem); ok {
			regions = append(regions, item.region)
		}
	}
	return regions, nil
}

// Nearest returns up to n regions ordered by distance from c to their bounds
func (g *Index) Nearest(c models.Coordinate, n int) []region.Region {
	g.mu.RLock()
	defer g.mu.RUnlock()

	results := g.tree.NearestNeighbors(n, rtreego.Point{c.Lat, c.Lng})

	regions := make([]region.Region, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialItem); ok {
			regions = append(regions, item.region)
		}
	}
	return regions
}

// Size returns the number of indexed regions
func (g *Index) Size() int64 {
	return g.itemCount.Load()
}

// Clear removes all regions from the index
func (g *Index) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.itemCount.Store(0)
}

// circleBounds converts a circle into a lat/lng box padded to a minimum size
func circleBounds(c region.Circle) (*rtreego.Rect, error) {
	latDelta := c.RadiusMeters / metersPerDegLat
	lngDelta := 360.0
	if cos := math.Cos(c.Center.Lat * math.Pi / 180.0); cos > 1e-9 {
		lngDelta = math.Min(360.0, c.RadiusMeters/(metersPerDegLat*cos))
	}

	latDelta = math.Max(latDelta, tolerance)
	lngDelta = math.Max(lngDelta, tolerance)

	return rtreego.NewRect(
		rtreego.Point{c.Center.Lat - latDelta, c.Center.Lng - lngDelta},
		[]float64{2 * latDelta, 2 * lngDelta},
	)
}
