package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

func TestPlannerPlan(t *testing.T) {
	p := newPlanner(booking.PlannerOptions{MaxLockerPadding: 180})
	day := monday

	tests := []struct {
		name string
		req  booking.Request
		want []booking.Draft
	}{
		{
			name: "half A only",
			req: booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
				FieldMode: booking.FieldModeHalfA},
			want: []booking.Draft{{ResourceID: halfA, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)}},
		},
		{
			name: "full field with padded locker",
			req: booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
				FieldMode: booking.FieldModeFull, LockerIDs: []string{locker1}, LockerBefore: 60, LockerAfter: 60},
			want: []booking.Draft{
				{ResourceID: halfA, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)},
				{ResourceID: halfB, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)},
				{ResourceID: locker1, StartAt: at(day, 14, 0), EndAt: at(day, 17, 0)},
			},
		},
		{
			name: "auto mode on half B books that half",
			req:  booking.Request{ResourceID: halfB, SquadID: squadU14, Start: slot.At(17, 0), End: slot.At(18, 30)},
			want: []booking.Draft{{ResourceID: halfB, StartAt: at(day, 17, 0), EndAt: at(day, 18, 30)}},
		},
		{
			name: "explicit mode governs the clicked half",
			req: booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
				FieldMode: booking.FieldModeHalfB},
			want: []booking.Draft{{ResourceID: halfB, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)}},
		},
		{
			name: "times snap to the step",
			req: booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 4), End: slot.At(15, 56),
				FieldMode: booking.FieldModeHalfA},
			want: []booking.Draft{{ResourceID: halfA, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)}},
		},
		{
			name: "inverted range is clamped to one step",
			req: booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(16, 0), End: slot.At(15, 0),
				FieldMode: booking.FieldModeHalfA},
			want: []booking.Draft{{ResourceID: halfA, StartAt: at(day, 16, 0), EndAt: at(day, 16, 10)}},
		},
		{
			name: "vehicle ignores lockers",
			req: booking.Request{ResourceID: bus, SquadID: squadU14, Start: slot.At(9, 0), End: slot.At(13, 0),
				LockerIDs: []string{locker1}, LockerBefore: 30},
			want: []booking.Draft{{ResourceID: bus, StartAt: at(day, 9, 0), EndAt: at(day, 13, 0)}},
		},
		{
			name: "locker only books clicked and chosen lockers unpadded",
			req: booking.Request{ResourceID: locker1, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
				LockerIDs: []string{locker1, locker2}, LockerBefore: 30, LockerAfter: 30},
			want: []booking.Draft{
				{ResourceID: locker1, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)},
				{ResourceID: locker2, StartAt: at(day, 15, 0), EndAt: at(day, 16, 0)},
			},
		},
		{
			name: "mini field pads lockers",
			req: booking.Request{ResourceID: mini, SquadID: squadU14, Start: slot.At(16, 0), End: slot.At(17, 0),
				LockerIDs: []string{locker3}, LockerBefore: 15, LockerAfter: 30},
			want: []booking.Draft{
				{ResourceID: mini, StartAt: at(day, 16, 0), EndAt: at(day, 17, 0)},
				{ResourceID: locker3, StartAt: at(day, 15, 45), EndAt: at(day, 17, 30)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Plan(tt.req, day, testCatalog())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlannerFullFieldHalvesShareBounds(t *testing.T) {
	p := newPlanner(booking.PlannerOptions{})
	for _, clicked := range []string{halfA, halfB} {
		req := booking.Request{ResourceID: clicked, SquadID: squadU14, Start: slot.At(18, 20), End: slot.At(19, 40),
			FieldMode: booking.FieldModeFull}
		got, err := p.Plan(req, monday, testCatalog())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, halfA, got[0].ResourceID)
		assert.Equal(t, halfB, got[1].ResourceID)
		assert.Equal(t, got[0].StartAt, got[1].StartAt)
		assert.Equal(t, got[0].EndAt, got[1].EndAt)
	}
}

func TestPlannerPinClickedHalf(t *testing.T) {
	p := newPlanner(booking.PlannerOptions{PinClickedHalf: true})
	req := booking.Request{ResourceID: halfB, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
		FieldMode: booking.FieldModeFull}

	got, err := p.Plan(req, monday, testCatalog())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, halfB, got[0].ResourceID)
}

func TestPlannerErrors(t *testing.T) {
	p := newPlanner(booking.PlannerOptions{MaxLockerPadding: 180})
	base := func() booking.Request {
		return booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
			FieldMode: booking.FieldModeFull}
	}

	tests := []struct {
		name   string
		mutate func(*booking.Request)
		cat    *resource.Catalog
		want   error
	}{
		{"missing resource", func(r *booking.Request) { r.ResourceID = "" }, nil, booking.ErrResourceRequired},
		{"unknown resource", func(r *booking.Request) { r.ResourceID = "nope" }, nil, booking.ErrResourceNotFound},
		{"missing squad", func(r *booking.Request) { r.SquadID = "" }, nil, booking.ErrSquadRequired},
		{"invalid mode", func(r *booking.Request) { r.FieldMode = "SIDEWAYS" }, nil, booking.ErrInvalidFieldMode},
		{"chosen locker is a field", func(r *booking.Request) { r.LockerIDs = []string{halfB} }, nil, booking.ErrNotALocker},
		{"too many lockers", func(r *booking.Request) { r.LockerIDs = []string{locker1, locker2, locker3} }, nil, booking.ErrTooManyLockers},
		{"negative padding", func(r *booking.Request) {
			r.LockerIDs = []string{locker1}
			r.LockerBefore = -10
		}, nil, booking.ErrNegativePadding},
		{"padding above cap", func(r *booking.Request) {
			r.LockerIDs = []string{locker1}
			r.LockerAfter = 240
		}, nil, booking.ErrPaddingTooLarge},
		{"locker only with three lockers", func(r *booking.Request) {
			r.ResourceID = locker1
			r.LockerIDs = []string{locker2, locker3}
		}, nil, booking.ErrTooManyLockers},
		{"half B missing from catalog", func(r *booking.Request) {}, resource.NewCatalog(testResources()[:1], resource.DefaultHalfNames),
			booking.ErrFieldHalfMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			cat := tt.cat
			if cat == nil {
				cat = testCatalog()
			}
			_, err := p.Plan(req, monday, cat)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlannerDuplicateLockersCollapse(t *testing.T) {
	p := newPlanner(booking.PlannerOptions{})
	req := booking.Request{ResourceID: halfA, SquadID: squadU14, Start: slot.At(15, 0), End: slot.At(16, 0),
		FieldMode: booking.FieldModeHalfA, LockerIDs: []string{locker2, locker2}}

	got, err := p.Plan(req, monday, testCatalog())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, locker2, got[1].ResourceID)
}
