package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/nekogravitycat/club-planner/internal/slot"
)

// Series is the set of calendar days a request expands to.
type Series struct {
	ID   string
	Days []time.Time
}

// Expand returns the days covered by req starting from its anchor date.
// A repeating request recurs weekly up to and including RepeatUntil.
func Expand(req Request, model slot.Model, maxOccurrences int) (Series, error) {
	if req.Date.IsZero() {
		return Series{}, ErrDateRequired
	}
	anchor := model.Day(req.Date)
	if !req.Repeat {
		return Series{Days: []time.Time{anchor}}, nil
	}

	if req.RepeatUntil.IsZero() {
		return Series{}, ErrRepeatUntilRequired
	}
	until := model.Day(req.RepeatUntil)
	if until.Before(anchor) {
		return Series{}, ErrRepeatUntilBefore
	}

	// Calendar days, so DST shifts do not change the count.
	span := int(math.Round(until.Sub(anchor).Hours() / 24))
	if maxOccurrences > 0 && span/7+1 > maxOccurrences {
		return Series{}, ErrSeriesTooLong
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: anchor,
		Until:   model.NextDay(until).Add(-time.Second),
	})
	if err != nil {
		return Series{}, fmt.Errorf("build weekly rule failed: %w", err)
	}

	occ := r.All()

	days := make([]time.Time, 0, len(occ))
	for _, t := range occ {
		days = append(days, model.Day(t))
	}
	return Series{ID: uuid.NewString(), Days: days}, nil
}
