package main

import (
	"context"
	"fmt"
	"log"

	"github.com/kass/geofencer/pkg/geo"
	"github.com/kass/geofencer/pkg/logging"
	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
	"github.com/kass/geofencer/pkg/store"
)

func main() {
	ctx := context.Background()

	// Regions around a few US cities, each spanning two corner points
	cities := []struct {
		title      string
		lat, lng   float64
		spanDegree float64
	}{
		{"New York", 40.7128, -74.0060, 0.2},
		{"Los Angeles", 34.0522, -118.2437, 0.4},
		{"Chicago", 41.8781, -87.6298, 0.2},
		{"Dallas", 32.7767, -96.7970, 0.3},
		{"San Francisco", 37.7749, -122.4194, 0.1},
		{"San Jose", 37.3382, -121.8863, 0.1},
	}

	index := geo.NewIndex()
	list := regionlist.New(store.NewMemory(),
		regionlist.WithLogger(logging.Discard()),
		regionlist.WithSubscriber(index),
	)
	if _, err := list.Load(ctx); err != nil {
		log.Fatal(err)
	}

	for _, c := range cities {
		half := c.spanDegree / 2
		_, err := list.AppendConfirmed(ctx, []models.Coordinate{
			{Lat: c.lat - half, Lng: c.lng - half},
			{Lat: c.lat + half, Lng: c.lng + half},
		}, c.title)
		if err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("Indexed %d regions\n\n", index.Size())

	// Example 1: regions inside California
	fmt.Println("=== Regions in California (Bounding Box) ===")
	california := models.BoundingBox{
		BottomLeft: models.Coordinate{Lat: 32.5, Lng: -124.5},
		TopRight:   models.Coordinate{Lat: 42.0, Lng: -114.0},
	}
	results, err := index.SearchBox(california)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		c := r.Circle()
		fmt.Printf("  - %s: center %s, radius %.1f km\n", r.Title(), region.FormatPoint(c.Center), c.RadiusMeters/1000)
	}

	// Example 2: which region contains a point
	fmt.Println("\n=== Regions containing Union Square, SF ===")
	unionSquare := models.Coordinate{Lat: 37.7880, Lng: -122.4075}
	for _, r := range index.RegionsAt(unionSquare) {
		fmt.Printf("  - %s\n", r.Title())
	}

	// Example 3: nearest regions to Denver
	fmt.Println("\n=== 3 Nearest Regions to Denver ===")
	denver := models.Coordinate{Lat: 39.7392, Lng: -104.9903}
	for _, r := range index.Nearest(denver, 3) {
		fmt.Printf("  - %s: %.0f km away\n", r.Title(), region.Distance(denver, r.Circle().Center)/1000)
	}

	// Example 4: share the whole list
	fmt.Println("\n=== Export ===")
	payload, err := list.ExportAll()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(payload)
}
