// Package regionlist manages the ordered list of regions shown on the map.
// Every mutation replaces the whole list and notifies subscribers, which
// redraw the display and persist the full list.
package regionlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/kass/geofencer/pkg/metrics"
	"github.com/kass/geofencer/pkg/models"
	"github.com/kass/geofencer/pkg/region"
)

var (
	ErrIndexOutOfRange = errors.New("region index out of range")
	ErrAlreadyLoaded   = errors.New("regions already loaded")
	ErrNotFound        = errors.New("region not found")
	ErrStoreUnreadable = errors.New("failed to load regions")
)

// Manager holds the region list. Mutations are serialized; subscribers see
// changes in the order they were made.
type Manager struct {
	store       Store
	logger      *slog.Logger
	decodeOpts  []region.DecodeOption
	subscribers []Subscriber

	writeMu sync.Mutex // serializes mutate+notify
	mu      sync.RWMutex
	regions []region.Region
	loaded  bool

	// set when store.Load failed; saves are held until AllowOverwrite
	holdSave bool
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDisplay renders list changes on d
func WithDisplay(d Display) Option {
	return func(m *Manager) { m.subscribers = append(m.subscribers, NewDisplaySubscriber(d)) }
}

// WithSubscriber adds a change subscriber
func WithSubscriber(s Subscriber) Option {
	return func(m *Manager) { m.subscribers = append(m.subscribers, s) }
}

// WithDecodeOptions controls how persisted entries are parsed
func WithDecodeOptions(opts ...region.DecodeOption) Option {
	return func(m *Manager) { m.decodeOpts = append(m.decodeOpts, opts...) }
}

// New creates a manager backed by store. Unless a PersistSubscriber is
// passed with WithSubscriber, a synchronous one is registered for store.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	hasPersister := slices.ContainsFunc(m.subscribers, func(s Subscriber) bool {
		_, ok := s.(*PersistSubscriber)
		return ok
	})
	if store != nil && !hasPersister {
		m.subscribers = append(m.subscribers, NewPersistSubscriber(store, m.logger))
	}
	return m
}

// Load reads the persisted list once. Entries that fail to decode are
// skipped; their errors are joined into the returned error while the
// valid regions are kept. A store failure leaves the list empty.
func (m *Manager) Load(ctx context.Context) (int, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.loaded {
		return 0, ErrAlreadyLoaded
	}
	m.loaded = true

	var encoded []string
	var loadErr error
	if m.store != nil {
		encoded, loadErr = m.store.Load(ctx)
	}
	if loadErr != nil {
		m.logger.Error("failed to load regions, starting empty and holding saves", "error", loadErr)
		encoded = nil
		loadErr = fmt.Errorf("%w: %w", ErrStoreUnreadable, loadErr)
		m.holdSave = true
	}

	regions := make([]region.Region, 0, len(encoded))
	var decodeErrs []error
	for i, text := range encoded {
		r, err := region.Decode(text, m.decodeOpts...)
		if err != nil {
			metrics.DecodeFailures.Inc()
			m.logger.Warn("skipping corrupt region", "index", i, "error", err)
			decodeErrs = append(decodeErrs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		regions = append(regions, r)
	}

	m.apply(ctx, ChangeEvent{Op: "load", New: regions, Initial: true})
	m.logger.Info("loaded regions", "regions", len(regions), "skipped", len(decodeErrs))

	if loadErr != nil {
		return 0, loadErr
	}
	return len(regions), errors.Join(decodeErrs...)
}

// Replace swaps in a new list: the display drops every old shape and draws
// the new ones, and the whole list is saved.
func (m *Manager) Replace(ctx context.Context, newList []region.Region) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.replace(ctx, "replace", slices.Clone(newList))
}

// AppendConfirmed builds a titled region from points and appends it
func (m *Manager) AppendConfirmed(ctx context.Context, points []models.Coordinate, title string) (*region.CircularRegion, error) {
	r, err := region.NewCircularRegion(points, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create region %q: %w", title, err)
	}

	m.Append(ctx, r)
	return r, nil
}

// Append adds regions to the end of the list
func (m *Manager) Append(ctx context.Context, regions ...region.Region) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	next := append(m.Regions(), regions...)
	m.replace(ctx, "append", next)
}

// RemoveAt removes and returns the region at index
func (m *Manager) RemoveAt(ctx context.Context, index int) (region.Region, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	current := m.Regions()
	if index < 0 || index >= len(current) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(current))
	}

	removed := current[index]
	m.replace(ctx, "remove", slices.Delete(current, index, index+1))
	return removed, nil
}

// Remove removes the region with the given ID
func (m *Manager) Remove(ctx context.Context, id string) (region.Region, error) {
	index := m.IndexOf(id)
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.RemoveAt(ctx, index)
}

// Reset clears the list
func (m *Manager) Reset(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.replace(ctx, "reset", nil)
}

// Regions returns a copy of the current list
func (m *Manager) Regions() []region.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.regions)
}

// Len returns the number of regions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions)
}

// At returns the region at index
func (m *Manager) At(index int) (region.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.regions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(m.regions))
	}
	return m.regions[index], nil
}

// IndexOf returns the position of the region with the given ID, or -1
func (m *Manager) IndexOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.IndexFunc(m.regions, func(r region.Region) bool {
		return r.ID() == id
	})
}

// AllowOverwrite lets saves through after a failed Load, accepting that the
// store contents will be replaced by the in-memory list on the next change.
func (m *Manager) AllowOverwrite() {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.holdSave {
		m.logger.Warn("saves re-enabled after failed load, store will be overwritten")
	}
	m.holdSave = false
}

// SavesHeld reports whether saves are held because Load could not read the store
func (m *Manager) SavesHeld() bool {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.holdSave
}

// ExportAll encodes the whole list as one shareable payload
func (m *Manager) ExportAll() (string, error) {
	return Export(m.Regions())
}

func (m *Manager) replace(ctx context.Context, op string, next []region.Region) {
	m.mu.RLock()
	old := m.regions
	m.mu.RUnlock()

	m.apply(ctx, ChangeEvent{Op: op, Old: old, New: next, HoldSave: m.holdSave})
}

// apply must be called with writeMu held
func (m *Manager) apply(ctx context.Context, ev ChangeEvent) {
	m.mu.Lock()
	m.regions = ev.New
	m.mu.Unlock()

	metrics.Mutations.WithLabelValues(ev.Op).Inc()
	metrics.Regions.Set(float64(len(ev.New)))

	for _, s := range m.subscribers {
		s.HandleChange(ctx, ev)
	}
}
