// Package bookingtest provides an in-memory booking.Store for tests.
package bookingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/club-planner/internal/booking"
)

// Names resolves display names for the joined interval rows.
type Names struct {
	Squads    map[string]string
	Users     map[string]string
	Resources map[string]string
}

type state struct {
	bookings  map[string]booking.Booking
	order     []string
	intervals []booking.Interval
}

func (s *state) clone() *state {
	c := &state{
		bookings:  make(map[string]booking.Booking, len(s.bookings)),
		order:     append([]string(nil), s.order...),
		intervals: make([]booking.Interval, len(s.intervals)),
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	copy(c.intervals, s.intervals)
	return c
}

// MemoryStore enforces the same no-overlap rule as the Postgres exclusion
// constraint and supports nested transactions.
type MemoryStore struct {
	mu    sync.Mutex
	data  *state
	names Names
	now   func() time.Time
}

var (
	_ booking.Store      = (*MemoryStore)(nil)
	_ booking.Transactor = (*MemoryStore)(nil)
)

func NewMemoryStore(names Names) *MemoryStore {
	return &MemoryStore{
		data:  &state{bookings: make(map[string]booking.Booking)},
		names: names,
		now:   time.Now,
	}
}

// WithoutTx hides the Transactor capability of a store.
func WithoutTx(s booking.Store) booking.Store {
	return struct{ booking.Store }{s}
}

func (m *MemoryStore) view() *txStore {
	return &txStore{data: m.data, names: m.names, now: m.now}
}

func (m *MemoryStore) WithTx(ctx context.Context, fn func(booking.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &txStore{data: m.data.clone(), names: m.names, now: m.now}
	if err := fn(tx); err != nil {
		return err
	}
	m.data = tx.data
	return nil
}

func (m *MemoryStore) InsertBooking(ctx context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().InsertBooking(ctx, b)
}

func (m *MemoryStore) InsertIntervals(ctx context.Context, intervals []booking.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view()
	err := v.InsertIntervals(ctx, intervals)
	m.data = v.data
	return err
}

func (m *MemoryStore) DeleteBooking(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view()
	err := v.DeleteBooking(ctx, id)
	m.data = v.data
	return err
}

func (m *MemoryStore) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().GetBooking(ctx, id)
}

func (m *MemoryStore) ListBookingIntervals(ctx context.Context, bookingID string) ([]booking.Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().ListBookingIntervals(ctx, bookingID)
}

func (m *MemoryStore) ListIntervals(ctx context.Context, from, to time.Time) ([]booking.IntervalRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().ListIntervals(ctx, from, to)
}

func (m *MemoryStore) HasOverlap(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().HasOverlap(ctx, resourceID, start, end, excludeBookingID)
}

// Bookings returns a snapshot of stored headers in insertion order.
func (m *MemoryStore) Bookings() []booking.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]booking.Booking, 0, len(m.data.order))
	for _, id := range m.data.order {
		out = append(out, m.data.bookings[id])
	}
	return out
}

// Intervals returns a snapshot of stored intervals.
func (m *MemoryStore) Intervals() []booking.Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]booking.Interval, len(m.data.intervals))
	copy(out, m.data.intervals)
	return out
}

// txStore operates on a private copy of the state; the caller holds the lock.
type txStore struct {
	data  *state
	names Names
	now   func() time.Time
}

func (t *txStore) WithTx(ctx context.Context, fn func(booking.Store) error) error {
	child := &txStore{data: t.data.clone(), names: t.names, now: t.now}
	if err := fn(child); err != nil {
		return err
	}
	t.data = child.data
	return nil
}

func (t *txStore) InsertBooking(_ context.Context, b *booking.Booking) error {
	if _, ok := t.names.Squads[b.SquadID]; t.names.Squads != nil && !ok {
		return booking.ErrSquadNotFound
	}
	b.ID = uuid.NewString()
	b.CreatedAt = t.now()
	b.SquadName = t.names.Squads[b.SquadID]
	b.CreatorName = t.names.Users[b.CreatedBy]
	t.data.bookings[b.ID] = *b
	t.data.order = append(t.data.order, b.ID)
	return nil
}

func (t *txStore) InsertIntervals(_ context.Context, intervals []booking.Interval) error {
	for i, iv := range intervals {
		if !iv.EndAt.After(iv.StartAt) {
			return booking.ErrInvalidTimeRange
		}
		if _, ok := t.names.Resources[iv.ResourceID]; t.names.Resources != nil && !ok {
			return booking.ErrResourceNotFound
		}
		for _, other := range t.data.intervals {
			if overlaps(iv, other) {
				return booking.ErrOverlap
			}
		}
		for _, other := range intervals[:i] {
			if overlaps(iv, other) {
				return booking.ErrOverlap
			}
		}
	}
	t.data.intervals = append(t.data.intervals, intervals...)
	return nil
}

func overlaps(a, b booking.Interval) bool {
	return a.ResourceID == b.ResourceID && a.StartAt.Before(b.EndAt) && b.StartAt.Before(a.EndAt)
}

func (t *txStore) DeleteBooking(_ context.Context, id string) error {
	if _, ok := t.data.bookings[id]; !ok {
		return nil
	}
	delete(t.data.bookings, id)
	order := make([]string, 0, len(t.data.order))
	for _, o := range t.data.order {
		if o != id {
			order = append(order, o)
		}
	}
	t.data.order = order
	kept := t.data.intervals[:0:0]
	for _, iv := range t.data.intervals {
		if iv.BookingID != id {
			kept = append(kept, iv)
		}
	}
	t.data.intervals = kept
	return nil
}

func (t *txStore) GetBooking(_ context.Context, id string) (*booking.Booking, error) {
	b, ok := t.data.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &b, nil
}

func (t *txStore) ListBookingIntervals(_ context.Context, bookingID string) ([]booking.Interval, error) {
	var out []booking.Interval
	for _, iv := range t.data.intervals {
		if iv.BookingID == bookingID {
			out = append(out, iv)
		}
	}
	sortIntervals(out)
	return out, nil
}

func (t *txStore) ListIntervals(_ context.Context, from, to time.Time) ([]booking.IntervalRow, error) {
	var out []booking.IntervalRow
	for _, iv := range t.data.intervals {
		if iv.StartAt.Before(from) || !iv.StartAt.Before(to) {
			continue
		}
		out = append(out, booking.IntervalRow{
			Interval:     iv,
			ResourceName: t.names.Resources[iv.ResourceID],
			Booking:      t.data.bookings[iv.BookingID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (t *txStore) HasOverlap(_ context.Context, resourceID string, start, end time.Time, excludeBookingID string) (bool, error) {
	candidate := booking.Interval{ResourceID: resourceID, StartAt: start, EndAt: end}
	for _, iv := range t.data.intervals {
		if iv.BookingID == excludeBookingID && excludeBookingID != "" {
			continue
		}
		if overlaps(candidate, iv) {
			return true, nil
		}
	}
	return false, nil
}

func sortIntervals(ivs []booking.Interval) {
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].StartAt.Before(ivs[j].StartAt) })
}
