package booking

import (
	"time"

	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

// Event is the payload published on booking lifecycle changes.
type Event struct {
	Type       string    `json:"type"`
	BookingIDs []string  `json:"booking_ids"`
	ReplacedID string    `json:"replaced_id,omitempty"`
	SeriesID   string    `json:"series_id,omitempty"`
	SquadID    string    `json:"squad_id,omitempty"`
	ActorID    string    `json:"actor_id"`
	Days       []string  `json:"days"`
	Skipped    []string  `json:"skipped,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(typ string, actor auth.Actor, r *Result, replacedID string) Event {
	ev := Event{
		Type:       typ,
		ReplacedID: replacedID,
		SeriesID:   r.SeriesID,
		ActorID:    actor.ID,
		Days:       dayKeys(r.Booked),
		Skipped:    dayKeys(r.Skipped),
		OccurredAt: time.Now().UTC(),
	}
	for _, b := range r.Bookings {
		ev.BookingIDs = append(ev.BookingIDs, b.ID)
		ev.SquadID = b.SquadID
	}
	return ev
}

func dayKeys(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = slot.DayKey(d)
	}
	return out
}
