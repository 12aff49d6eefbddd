package booking

import (
	"time"

	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

const maxLockers = 2

// PlannerOptions tunes the allocation rules.
type PlannerOptions struct {
	// PinClickedHalf makes a click on half A or B book that half whatever the field mode says.
	PinClickedHalf bool
	// MaxLockerPadding caps LockerBefore and LockerAfter, in minutes. Zero disables the cap.
	MaxLockerPadding int
}

// Planner turns a booking request into the concrete intervals to reserve on one day.
type Planner struct {
	model slot.Model
	opts  PlannerOptions
}

func NewPlanner(model slot.Model, opts PlannerOptions) *Planner {
	return &Planner{model: model, opts: opts}
}

// KindFor reports the booking kind produced by a click on res.
func KindFor(res *resource.Resource) Kind {
	switch res.Kind {
	case resource.KindVehicle:
		return KindVehicle
	case resource.KindLocker:
		return KindLocker
	default:
		return KindField
	}
}

// Plan computes the ordered drafts for req on day. It performs no I/O.
func (p *Planner) Plan(req Request, day time.Time, cat *resource.Catalog) ([]Draft, error) {
	if req.ResourceID == "" {
		return nil, ErrResourceRequired
	}
	res, ok := cat.Get(req.ResourceID)
	if !ok {
		return nil, ErrResourceNotFound
	}
	if req.SquadID == "" {
		return nil, ErrSquadRequired
	}

	start, end := slot.ClampOrder(slot.SnapToStep(req.Start), slot.SnapToStep(req.End))
	startAt := p.model.Combine(day, start)
	endAt := p.model.Combine(day, end)
	if !endAt.After(startAt) {
		return nil, ErrInvalidTimeRange
	}

	switch res.Kind {
	case resource.KindVehicle:
		return []Draft{{ResourceID: res.ID, StartAt: startAt, EndAt: endAt}}, nil

	case resource.KindLocker:
		ids, err := lockerSet(append([]string{res.ID}, req.LockerIDs...), cat)
		if err != nil {
			return nil, err
		}
		drafts := make([]Draft, 0, len(ids))
		for _, id := range ids {
			drafts = append(drafts, Draft{ResourceID: id, StartAt: startAt, EndAt: endAt})
		}
		return drafts, nil

	case resource.KindMiniField:
		drafts := []Draft{{ResourceID: res.ID, StartAt: startAt, EndAt: endAt}}
		lockers, err := p.fieldLockers(req, startAt, endAt, cat)
		if err != nil {
			return nil, err
		}
		return append(drafts, lockers...), nil

	case resource.KindFieldHalf:
		halves, err := p.fieldHalves(res, req.FieldMode, cat)
		if err != nil {
			return nil, err
		}
		drafts := make([]Draft, 0, len(halves)+maxLockers)
		for _, id := range halves {
			drafts = append(drafts, Draft{ResourceID: id, StartAt: startAt, EndAt: endAt})
		}
		lockers, err := p.fieldLockers(req, startAt, endAt, cat)
		if err != nil {
			return nil, err
		}
		return append(drafts, lockers...), nil
	}

	return nil, ErrResourceNotFound
}

// ResolveFieldMode returns the effective mode for a click on a field half.
func (p *Planner) ResolveFieldMode(res *resource.Resource, mode FieldMode, cat *resource.Catalog) (FieldMode, error) {
	isA, isB := cat.IsHalfA(res.ID), cat.IsHalfB(res.ID)
	if p.opts.PinClickedHalf {
		switch {
		case isA:
			return FieldModeHalfA, nil
		case isB:
			return FieldModeHalfB, nil
		}
	}

	switch mode {
	case FieldModeAuto:
		switch {
		case isA:
			return FieldModeHalfA, nil
		case isB:
			return FieldModeHalfB, nil
		}
		return FieldModeFull, nil
	case FieldModeFull, FieldModeHalfA, FieldModeHalfB:
		return mode, nil
	}
	return "", ErrInvalidFieldMode
}

func (p *Planner) fieldHalves(res *resource.Resource, mode FieldMode, cat *resource.Catalog) ([]string, error) {
	mode, err := p.ResolveFieldMode(res, mode, cat)
	if err != nil {
		return nil, err
	}

	a, okA := cat.HalfA()
	b, okB := cat.HalfB()
	switch mode {
	case FieldModeHalfA:
		if !okA {
			return nil, ErrFieldHalfMissing
		}
		return []string{a.ID}, nil
	case FieldModeHalfB:
		if !okB {
			return nil, ErrFieldHalfMissing
		}
		return []string{b.ID}, nil
	default:
		if !okA || !okB {
			return nil, ErrFieldHalfMissing
		}
		return []string{a.ID, b.ID}, nil
	}
}

func (p *Planner) fieldLockers(req Request, startAt, endAt time.Time, cat *resource.Catalog) ([]Draft, error) {
	if len(req.LockerIDs) == 0 {
		return nil, nil
	}
	if req.LockerBefore < 0 || req.LockerAfter < 0 {
		return nil, ErrNegativePadding
	}
	if limit := p.opts.MaxLockerPadding; limit > 0 && (req.LockerBefore > limit || req.LockerAfter > limit) {
		return nil, ErrPaddingTooLarge
	}

	ids, err := lockerSet(req.LockerIDs, cat)
	if err != nil {
		return nil, err
	}

	from := startAt.Add(-time.Duration(req.LockerBefore) * time.Minute)
	to := endAt.Add(time.Duration(req.LockerAfter) * time.Minute)
	drafts := make([]Draft, 0, len(ids))
	for _, id := range ids {
		drafts = append(drafts, Draft{ResourceID: id, StartAt: from, EndAt: to})
	}
	return drafts, nil
}

// lockerSet deduplicates ids preserving order and checks they are locker rooms.
func lockerSet(ids []string, cat *resource.Catalog) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		res, ok := cat.Get(id)
		if !ok {
			return nil, ErrResourceNotFound
		}
		if res.Kind != resource.KindLocker {
			return nil, ErrNotALocker
		}
		out = append(out, id)
	}
	if len(out) > maxLockers {
		return nil, ErrTooManyLockers
	}
	return out, nil
}
