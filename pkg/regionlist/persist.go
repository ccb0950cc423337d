package regionlist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kass/geofencer/pkg/metrics"
)

// Store is the persistence adapter. Save overwrites everything previously
// stored; Load returns the saved entries in order, or none.
type Store interface {
	Save(ctx context.Context, encoded []string) error
	Load(ctx context.Context) ([]string, error)
}

// PersistSubscriber encodes the whole list and saves it on every change.
// In async mode a single writer goroutine performs the saves so they are
// never reordered relative to the mutations that produced them.
type PersistSubscriber struct {
	store  Store
	logger *slog.Logger

	mu     sync.Mutex
	queue  chan []string
	done   chan struct{}
	closed bool
}

// NewPersistSubscriber saves synchronously from HandleChange
func NewPersistSubscriber(store Store, logger *slog.Logger) *PersistSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistSubscriber{store: store, logger: logger}
}

// Async moves saves onto a background writer with a queue of the given depth.
// Close must be called to flush pending saves.
func (p *PersistSubscriber) Async(ctx context.Context, depth int) *PersistSubscriber {
	if depth < 1 {
		depth = 1
	}
	p.queue = make(chan []string, depth)
	p.done = make(chan struct{})

	go p.writer(ctx)
	return p
}

func (p *PersistSubscriber) HandleChange(ctx context.Context, ev ChangeEvent) {
	// Loading must not rewrite what it just read
	if ev.Initial {
		return
	}
	if ev.HoldSave {
		p.logger.Warn("not saving regions, store was unreadable at load", "op", ev.Op, "regions", len(ev.New))
		metrics.Saves.WithLabelValues("held").Inc()
		return
	}

	encoded, err := EncodeAll(ev.New)
	if err != nil {
		p.logger.Error("failed to encode regions", "op", ev.Op, "error", err)
		metrics.Saves.WithLabelValues("error").Inc()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn("dropping save after close", "op", ev.Op, "regions", len(encoded))
		return
	}
	if p.queue != nil {
		p.queue <- encoded
		return
	}
	p.save(ctx, encoded)
}

// Close stops the background writer after it has saved the latest queued list
func (p *PersistSubscriber) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

func (p *PersistSubscriber) writer(ctx context.Context) {
	defer close(p.done)

	for encoded := range p.queue {
		// Every save is a full overwrite, so only the newest pending list matters
		for drained := false; !drained; {
			select {
			case next, ok := <-p.queue:
				if !ok {
					drained = true
					break
				}
				encoded = next
			default:
				drained = true
			}
		}
		p.save(ctx, encoded)
	}
}

func (p *PersistSubscriber) save(ctx context.Context, encoded []string) {
	err := p.store.Save(ctx, encoded)
	metrics.Saves.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		p.logger.Error("failed to save regions", "regions", len(encoded), "error", err)
		return
	}
	p.logger.Debug("saved regions", "regions", len(encoded))
}
