package event

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Pending-Status/CalendarMeet/internal/clock"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	items  map[string]Event
	nextId int
	clock  clock.Clock
	// GetEventsCalls counts range queries that reached the store.
	GetEventsCalls int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:  make(map[string]Event),
		nextId: 1,
		clock:  clock.SystemClock{},
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	original := maps.Clone(r.items)
	originalNextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items = original
		r.nextId = originalNextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.Id = fmt.Sprintf("event-%d", r.nextId)
	r.nextId++
	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	now := r.clock.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.items[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetAllEvents(ctx context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedByStart(slices.Collect(maps.Values(r.items))), nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetEventsCalls++

	window := interval.Between(from, to)
	events := make([]Event, 0)
	for _, event := range r.items {
		if interval.RangesOverlapInclusive(event.Interval(), window) {
			events = append(events, event)
		}
	}
	return sortedByStart(events), nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[event.Id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = r.clock.Now()
	r.items[event.Id] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *RepositoryStub) CountEvents(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func sortedByStart(events []Event) []Event {
	slices.SortFunc(events, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return events
}
