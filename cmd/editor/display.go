package main

import (
	"slices"
	"sync"

	"github.com/kass/geofencer/pkg/region"
)

// board is the terminal stand-in for a map: it holds the shapes currently
// drawn and whether the list actions are enabled.
type board struct {
	mu      sync.Mutex
	shapes  []region.Shape
	actions bool
}

func (b *board) RemoveShapes(shapes []region.Shape) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shapes = slices.DeleteFunc(b.shapes, func(s region.Shape) bool {
		return slices.ContainsFunc(shapes, func(o region.Shape) bool {
			return o.RegionID == s.RegionID
		})
	})
}

func (b *board) AddShapes(shapes []region.Shape) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shapes = append(b.shapes, shapes...)
}

func (b *board) SetActionsEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions = enabled
}

func (b *board) snapshot() ([]region.Shape, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.shapes), b.actions
}
