package booking_test

import (
	"context"
	"sync"
	"time"

	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/booking/bookingtest"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

const (
	halfA   = "half-a"
	halfB   = "half-b"
	mini    = "mini"
	locker1 = "locker-1"
	locker2 = "locker-2"
	locker3 = "locker-3"
	bus     = "bus"

	squadU14 = "squad-u14"
	squadU16 = "squad-u16"
)

var (
	coach      = auth.Actor{ID: "coach-1"}
	otherCoach = auth.Actor{ID: "coach-2"}
	admin      = auth.Actor{ID: "admin-1", IsAdmin: true}
)

// monday is a Monday; the whole fixture runs in UTC.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

var model = slot.NewModel(time.UTC)

func testResources() []*resource.Resource {
	return []*resource.Resource{
		{ID: halfA, Name: "Campo A", Kind: resource.KindFieldHalf, SortOrder: 1},
		{ID: halfB, Name: "Campo B", Kind: resource.KindFieldHalf, SortOrder: 2},
		{ID: mini, Name: "Campetto", Kind: resource.KindMiniField, SortOrder: 3},
		{ID: locker1, Name: "Spogliatoio 1", Kind: resource.KindLocker, SortOrder: 4},
		{ID: locker2, Name: "Spogliatoio 2", Kind: resource.KindLocker, SortOrder: 5},
		{ID: locker3, Name: "Spogliatoio 3", Kind: resource.KindLocker, SortOrder: 6},
		{ID: bus, Name: "Pulmino", Kind: resource.KindVehicle, SortOrder: 7},
	}
}

func testCatalog() *resource.Catalog {
	return resource.NewCatalog(testResources(), resource.DefaultHalfNames)
}

type staticCatalog struct{ cat *resource.Catalog }

func (s staticCatalog) Catalog(context.Context) (*resource.Catalog, error) { return s.cat, nil }

// squadACL lets coaches book the listed squads; admins book anything.
type squadACL map[string][]string

func (a squadACL) CanBook(_ context.Context, actor auth.Actor, squadID string) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	for _, id := range a[actor.ID] {
		if id == squadID {
			return true, nil
		}
	}
	return false, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	days []time.Time
}

func (n *recordingNotifier) BookingsChanged(_ context.Context, days []time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.days = append(n.days, days...)
}

func newStore() *bookingtest.MemoryStore {
	names := bookingtest.Names{
		Squads:    map[string]string{squadU14: "Under 14", squadU16: "Under 16"},
		Users:     map[string]string{coach.ID: "Coach One", otherCoach.ID: "Coach Two", admin.ID: "Admin"},
		Resources: map[string]string{},
	}
	for _, r := range testResources() {
		names.Resources[r.ID] = r.Name
	}
	return bookingtest.NewMemoryStore(names)
}

func newPlanner(opts booking.PlannerOptions) *booking.Planner {
	return booking.NewPlanner(model, opts)
}

func at(day time.Time, hh, mm int) time.Time {
	return model.Combine(day, slot.At(hh, mm))
}

func fieldRequest(day time.Time) booking.Request {
	return booking.Request{
		ResourceID: halfA,
		SquadID:    squadU14,
		Date:       day,
		Start:      slot.At(15, 0),
		End:        slot.At(16, 0),
		FieldMode:  booking.FieldModeFull,
	}
}
