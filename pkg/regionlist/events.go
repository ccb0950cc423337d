package regionlist

import (
	"context"

	"github.com/kass/geofencer/pkg/region"
)

// ChangeEvent describes one replacement of the region list.
// Initial is set for the event produced by Load. HoldSave is set while the
// store could not be read, so nothing it still holds gets overwritten.
type ChangeEvent struct {
	Op       string
	Old      []region.Region
	New      []region.Region
	Initial  bool
	HoldSave bool
}

// Subscriber reacts to region list changes. Events are delivered in
// mutation order, one at a time. Subscribers handle their own failures.
type Subscriber interface {
	HandleChange(ctx context.Context, ev ChangeEvent)
}

// SubscriberFunc adapts a function to the Subscriber interface
type SubscriberFunc func(ctx context.Context, ev ChangeEvent)

func (f SubscriberFunc) HandleChange(ctx context.Context, ev ChangeEvent) {
	f(ctx, ev)
}

// Display is the map surface that renders region shapes
type Display interface {
	RemoveShapes(shapes []region.Shape)
	AddShapes(shapes []region.Shape)
	SetActionsEnabled(enabled bool)
}

// DisplaySubscriber swaps every shape of the old list for those of the new one
type DisplaySubscriber struct {
	display Display
}

// NewDisplaySubscriber wraps a display
func NewDisplaySubscriber(d Display) *DisplaySubscriber {
	return &DisplaySubscriber{display: d}
}

func (s *DisplaySubscriber) HandleChange(_ context.Context, ev ChangeEvent) {
	for _, r := range ev.Old {
		s.display.RemoveShapes(r.Shapes())
	}
	for _, r := range ev.New {
		s.display.AddShapes(r.Shapes())
	}
	s.display.SetActionsEnabled(len(ev.New) > 0)
}
