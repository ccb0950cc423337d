// Package editor implements the two-point editing session behind the map
// surface: staging the first and second point, previewing the current
// circle, confirming it as a titled region and reopening saved regions.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/region"
	"github.com/kass/geofencer/pkg/regionlist"
)

// CurrentRegionLabel labels the circle being edited
const CurrentRegionLabel = "Current Region"

var (
	ErrNotReady       = errors.New("both points must be set")
	ErrEmptyTitle     = errors.New("region title is empty")
	ErrNoLocation     = errors.New("current location unavailable")
	ErrNothingToShare = errors.New("no regions to share")
)

// Which selects one of the two staged points
type Which int

const (
	First Which = iota
	Second
)

func (w Which) String() string {
	if w == First {
		return "first"
	}
	return "second"
}

// LocationProvider supplies the user's current coordinate
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (models.Coordinate, bool)
}

// FixedLocation is a LocationProvider that always reports the same coordinate
type FixedLocation models.Coordinate

func (f FixedLocation) CurrentLocation(context.Context) (models.Coordinate, bool) {
	return models.Coordinate(f), true
}

// Sharer hands an export payload to some outside transport
type Sharer interface {
	Share(ctx context.Context, payload string) error
}

// SharerFunc adapts a function to Sharer
type SharerFunc func(ctx context.Context, payload string) error

func (f SharerFunc) Share(ctx context.Context, payload string) error {
	return f(ctx, payload)
}

// Session is one user's editing state on top of a region list
type Session struct {
	regions  *regionlist.Manager
	location LocationProvider
	logger   *slog.Logger

	mu      sync.Mutex
	first   *models.Coordinate
	second  *models.Coordinate
	title   string
	editing string // ID of the region reopened for editing, if any
}

// NewSession creates an editing session. location may be nil.
func NewSession(regions *regionlist.Manager, location LocationProvider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{regions: regions, location: location, logger: logger}
}

// SetFirst stages the first point
func (s *Session) SetFirst(c models.Coordinate) {
	s.set(First, c)
}

// SetSecond stages the second point
func (s *Session) SetSecond(c models.Coordinate) {
	s.set(Second, c)
}

// UseCurrentLocation stages the provider's coordinate as the chosen point
func (s *Session) UseCurrentLocation(ctx context.Context, which Which) (models.Coordinate, error) {
	if s.location == nil {
		return models.Coordinate{}, ErrNoLocation
	}
	c, ok := s.location.CurrentLocation(ctx)
	if !ok {
		return models.Coordinate{}, ErrNoLocation
	}
	s.set(which, c)
	return c, nil
}

func (s *Session) set(which Which, c models.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if which == First {
		s.first = &c
	} else {
		s.second = &c
	}
}

// Staged returns the staged points; ok is false for a point that is unset
func (s *Session) Staged() (first, second models.Coordinate, firstOK, secondOK bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.first != nil {
		first, firstOK = *s.first, true
	}
	if s.second != nil {
		second, secondOK = *s.second, true
	}
	return first, second, firstOK, secondOK
}

// PendingTitle is the title restored when a region was reopened
func (s *Session) PendingTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// CanConfirm reports whether both points are staged
func (s *Session) CanConfirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first != nil && s.second != nil
}

// CurrentCircle previews the circle for the staged points
func (s *Session) CurrentCircle() (region.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.first == nil || s.second == nil {
		return region.Shape{}, false
	}
	return region.Shape{
		Label:  CurrentRegionLabel,
		Circle: region.CircleFromPoints(*s.first, *s.second),
	}, true
}

// OnDone confirms the staged points as a titled region. On failure the
// session is left untouched.
func (s *Session) OnDone(ctx context.Context, title string) (*region.CircularRegion, error) {
	title = strings.TrimSpace(title)

	s.mu.Lock()
	if s.first == nil || s.second == nil {
		s.mu.Unlock()
		return nil, ErrNotReady
	}
	if title == "" {
		s.mu.Unlock()
		return nil, ErrEmptyTitle
	}
	points := []models.Coordinate{*s.first, *s.second}
	s.mu.Unlock()

	r, err := s.regions.AppendConfirmed(ctx, points, title)
	if err != nil {
		return nil, err
	}

	s.clear()
	s.logger.Info("region confirmed", "id", r.ID(), "title", title)
	return r, nil
}

// OnReset erases every region and the staged points
func (s *Session) OnReset(ctx context.Context) {
	s.regions.Reset(ctx)
	s.clear()
	s.logger.Info("regions reset")
}

// OnShare exports every region and hands the payload to sharer
func (s *Session) OnShare(ctx context.Context, sharer Sharer) error {
	if s.regions.Len() == 0 {
		return ErrNothingToShare
	}

	payload, err := s.regions.ExportAll()
	if err != nil {
		return fmt.Errorf("failed to export regions: %w", err)
	}
	if err := sharer.Share(ctx, payload); err != nil {
		return fmt.Errorf("failed to share regions: %w", err)
	}
	return nil
}

// OnEditExistingRegion removes the region with the given ID from the list
// and stages its points and title for editing.
func (s *Session) OnEditExistingRegion(ctx context.Context, id string) (region.Region, error) {
	r, err := s.regions.Remove(ctx, id)
	if err != nil {
		s.clear()
		return nil, err
	}

	points := r.Points()
	first, second := points[0], points[len(points)-1]

	s.mu.Lock()
	s.first = &first
	s.second = &second
	s.title = r.Title()
	s.editing = r.ID()
	s.mu.Unlock()

	s.logger.Info("editing region", "id", r.ID(), "title", r.Title())
	return r, nil
}

// Editing returns the ID of the region reopened for editing, if any
func (s *Session) Editing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing, s.editing != ""
}

// Cancel drops the staged points without touching the list
func (s *Session) Cancel() {
	s.clear()
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.first = nil
	s.second = nil
	s.title = ""
	s.editing = ""
}
