package booking

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/pkg/events"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

// CatalogSource provides the current resource catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (*resource.Catalog, error)
}

// SquadAuthorizer decides which squads an actor may book for.
type SquadAuthorizer interface {
	CanBook(ctx context.Context, actor auth.Actor, squadID string) (bool, error)
}

// ChangeNotifier is told which days changed after a successful write.
type ChangeNotifier interface {
	BookingsChanged(ctx context.Context, days []time.Time)
}

type Options struct {
	// MaxSeriesWeeks caps the occurrences of a recurring request. Zero means no cap.
	MaxSeriesWeeks int
	Notifier       ChangeNotifier
	Events         events.Publisher
}

type Service interface {
	// Create books every day of the request. Days of a series that collide
	// are skipped; a collision on a single booking fails with ErrTimeConflict.
	Create(ctx context.Context, actor auth.Actor, req Request) (*Result, error)
	// Preview plans the request and flags days that currently overlap.
	Preview(ctx context.Context, actor auth.Actor, req Request, excludeBookingID string) ([]DayPreview, error)
	Get(ctx context.Context, id string) (*Detail, error)
	// Update replaces a booking with a new request.
	Update(ctx context.Context, actor auth.Actor, id string, req Request) (*Result, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
}

type service struct {
	store   Store
	catalog CatalogSource
	squads  SquadAuthorizer
	planner *Planner
	model   slot.Model
	opts    Options
}

func NewService(store Store, catalog CatalogSource, squads SquadAuthorizer, planner *Planner, model slot.Model, opts Options) Service {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	return &service{
		store:   store,
		catalog: catalog,
		squads:  squads,
		planner: planner,
		model:   model,
		opts:    opts,
	}
}

// CanModify reports whether actor may change or delete b.
func CanModify(actor auth.Actor, b *Booking) bool {
	return actor.IsAdmin || (actor.ID != "" && b.CreatedBy == actor.ID)
}

type dayPlan struct {
	day    time.Time
	drafts []Draft
}

type plan struct {
	req       Request
	kind      Kind
	seriesID  string
	recurring bool
	days      []dayPlan
	catalog   *resource.Catalog
}

// prepare validates req and plans every day before anything is written.
func (s *service) prepare(ctx context.Context, actor auth.Actor, req Request) (*plan, error) {
	if req.Category == "" {
		req.Category = CategoryTraining
	}
	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if req.SquadID == "" {
		return nil, ErrSquadRequired
	}
	if s.squads != nil {
		ok, err := s.squads.CanBook(ctx, actor, req.SquadID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrSquadNotAllowed
		}
	}

	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if req.ResourceID == "" {
		return nil, ErrResourceRequired
	}
	res, ok := cat.Get(req.ResourceID)
	if !ok {
		return nil, ErrResourceNotFound
	}

	series, err := Expand(req, s.model, s.opts.MaxSeriesWeeks)
	if err != nil {
		return nil, err
	}

	p := &plan{
		req:       req,
		kind:      KindFor(res),
		seriesID:  series.ID,
		recurring: req.Repeat,
		days:      make([]dayPlan, 0, len(series.Days)),
		catalog:   cat,
	}
	for _, day := range series.Days {
		drafts, err := s.planner.Plan(req, day, cat)
		if err != nil {
			return nil, err
		}
		p.days = append(p.days, dayPlan{day: day, drafts: drafts})
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req Request) (*Result, error) {
	p, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	result, err := s.commit(ctx, s.store, actor, p)
	if result != nil && len(result.Booked) > 0 {
		s.notify(ctx, result.Booked)
	}
	if err != nil {
		return nil, err
	}

	key := "booking.created"
	if p.recurring {
		key = "booking.series"
	}
	s.publish(ctx, key, newEvent(key, actor, result, ""))
	return result, nil
}

// commit writes each planned day as its own unit. On failure it still
// returns the days already written so callers can report them.
func (s *service) commit(ctx context.Context, store Store, actor auth.Actor, p *plan) (*Result, error) {
	result := &Result{SeriesID: p.seriesID, Requested: len(p.days)}

	for _, d := range p.days {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		b := &Booking{
			SquadID:   p.req.SquadID,
			CreatedBy: actor.ID,
			Category:  p.req.Category,
			Status:    StatusProposed,
			Kind:      p.kind,
			Notes:     p.req.Notes,
			SeriesID:  p.seriesID,
		}
		err := s.writeDay(ctx, store, b, d.drafts)
		switch {
		case err == nil:
			result.Bookings = append(result.Bookings, b)
			result.Booked = append(result.Booked, d.day)
		case errors.Is(err, ErrOverlap):
			if !p.recurring {
				return result, ErrTimeConflict
			}
			result.Skipped = append(result.Skipped, d.day)
		default:
			return result, err
		}
	}
	return result, nil
}

// writeDay stores one header with its intervals. Without a transactional
// store the header is removed again when the intervals are rejected.
func (s *service) writeDay(ctx context.Context, store Store, b *Booking, drafts []Draft) error {
	insert := func(st Store) error {
		if err := st.InsertBooking(ctx, b); err != nil {
			return err
		}
		intervals := make([]Interval, len(drafts))
		for i, d := range drafts {
			intervals[i] = Interval{BookingID: b.ID, ResourceID: d.ResourceID, StartAt: d.StartAt, EndAt: d.EndAt}
		}
		return st.InsertIntervals(ctx, intervals)
	}

	if tx, ok := store.(Transactor); ok {
		return tx.WithTx(ctx, insert)
	}

	if err := insert(store); err != nil {
		if b.ID != "" {
			if delErr := store.DeleteBooking(context.WithoutCancel(ctx), b.ID); delErr != nil {
				log.Printf("[booking] failed to remove header %s after rejected intervals: %v", b.ID, delErr)
			}
		}
		return err
	}
	return nil
}

func (s *service) Preview(ctx context.Context, actor auth.Actor, req Request, excludeBookingID string) ([]DayPreview, error) {
	p, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	out := make([]DayPreview, 0, len(p.days))
	for _, d := range p.days {
		dp := DayPreview{Day: d.day, Drafts: d.drafts}
		for _, draft := range d.drafts {
			overlap, err := s.store.HasOverlap(ctx, draft.ResourceID, draft.StartAt, draft.EndAt, excludeBookingID)
			if err != nil {
				return nil, err
			}
			if overlap {
				dp.HasOverlap = true
				break
			}
		}
		out = append(out, dp)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*Detail, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	intervals, err := s.store.ListBookingIntervals(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Booking:   b,
		Intervals: intervals,
		Request:   s.reconstruct(b, intervals, cat),
	}, nil
}

// reconstruct derives the form values that would produce the given intervals.
func (s *service) reconstruct(b *Booking, intervals []Interval, cat *resource.Catalog) Request {
	req := Request{
		SquadID:  b.SquadID,
		Category: b.Category,
		Notes:    b.Notes,
	}
	if len(intervals) == 0 {
		return req
	}

	var main *Interval
	var lockers []Interval
	hasA, hasB := false, false
	for i := range intervals {
		iv := &intervals[i]
		res, ok := cat.Get(iv.ResourceID)
		if !ok {
			continue
		}
		switch {
		case cat.IsHalfA(iv.ResourceID):
			hasA = true
			if main == nil || !cat.IsHalfA(main.ResourceID) {
				main = iv
			}
		case cat.IsHalfB(iv.ResourceID):
			hasB = true
			if main == nil {
				main = iv
			}
		case res.Kind == resource.KindLocker:
			lockers = append(lockers, *iv)
		default:
			if main == nil {
				main = iv
			}
		}
	}

	switch {
	case hasA && hasB:
		req.FieldMode = FieldModeFull
	case hasA:
		req.FieldMode = FieldModeHalfA
	case hasB:
		req.FieldMode = FieldModeHalfB
	}

	if main == nil {
		if len(lockers) == 0 {
			return req
		}
		// Locker-only booking: the first locker is the clicked one.
		main = &lockers[0]
		lockers = lockers[1:]
		for _, l := range lockers {
			req.LockerIDs = append(req.LockerIDs, l.ResourceID)
		}
	} else {
		for _, l := range lockers {
			req.LockerIDs = append(req.LockerIDs, l.ResourceID)
		}
		if len(lockers) > 0 {
			req.LockerBefore = int(main.StartAt.Sub(lockers[0].StartAt) / time.Minute)
			req.LockerAfter = int(lockers[0].EndAt.Sub(main.EndAt) / time.Minute)
		}
	}

	req.ResourceID = main.ResourceID
	req.Date = s.model.Day(main.StartAt)
	req.Start = s.model.TimeOf(main.StartAt)
	req.End = s.model.TimeOf(main.EndAt)
	if !s.model.Day(main.EndAt).Equal(req.Date) {
		req.End = slot.TimeOfDay(int(main.EndAt.Sub(req.Date) / time.Minute))
	}
	return req
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id string, req Request) (*Result, error) {
	existing, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, existing) {
		return nil, ErrPermissionDenied
	}
	oldIntervals, err := s.store.ListBookingIntervals(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	var result *Result
	if tx, ok := s.store.(Transactor); ok {
		err = tx.WithTx(ctx, func(st Store) error {
			if err := st.DeleteBooking(ctx, id); err != nil {
				return err
			}
			r, err := s.commit(ctx, st, actor, p)
			if err != nil {
				return err
			}
			if len(r.Bookings) == 0 {
				return ErrTimeConflict
			}
			result = r
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.store.DeleteBooking(ctx, id); err != nil {
			return nil, err
		}
		r, err := s.commit(ctx, s.store, actor, p)
		if err == nil && len(r.Bookings) == 0 {
			err = ErrTimeConflict
		}
		if err != nil {
			touched := intervalDays(s.model, oldIntervals)
			if r != nil {
				touched = append(touched, r.Booked...)
			}
			s.notify(ctx, touched)
			log.Printf("[booking] replace of %s removed the old booking but failed: %v", id, err)
			return nil, ErrReplaceIncomplete.WithCause(err)
		}
		result = r
	}

	s.notify(ctx, append(intervalDays(s.model, oldIntervals), result.Booked...))
	s.publish(ctx, "booking.replaced", newEvent("booking.replaced", actor, result, id))
	return result, nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	existing, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !CanModify(actor, existing) {
		return ErrPermissionDenied
	}

	intervals, err := s.store.ListBookingIntervals(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	days := intervalDays(s.model, intervals)
	s.notify(ctx, days)
	s.publish(ctx, "booking.deleted", Event{
		Type:       "booking.deleted",
		BookingIDs: []string{id},
		SeriesID:   existing.SeriesID,
		SquadID:    existing.SquadID,
		ActorID:    actor.ID,
		Days:       dayKeys(days),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *service) notify(ctx context.Context, days []time.Time) {
	if s.opts.Notifier == nil || len(days) == 0 {
		return
	}
	s.opts.Notifier.BookingsChanged(ctx, uniqueDays(days))
}

func (s *service) publish(ctx context.Context, key string, ev Event) {
	if err := s.opts.Events.PublishJSON(ctx, key, ev); err != nil {
		log.Printf("[booking] publish %s failed: %v", key, err)
	}
}

// intervalDays lists the calendar days touched by intervals.
func intervalDays(model slot.Model, intervals []Interval) []time.Time {
	days := make([]time.Time, 0, len(intervals))
	for _, iv := range intervals {
		days = append(days, model.Day(iv.StartAt))
		if last := model.Day(iv.EndAt.Add(-time.Nanosecond)); !last.Equal(model.Day(iv.StartAt)) {
			days = append(days, last)
		}
	}
	return days
}

func uniqueDays(days []time.Time) []time.Time {
	seen := make(map[int64]struct{}, len(days))
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d.Unix()]; ok {
			continue
		}
		seen[d.Unix()] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
