package http

import (
	"time"

	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

// BookingBody is the booking form as submitted by the client.
type BookingBody struct {
	ResourceID   string   `json:"resource_id" binding:"required,uuid"`
	SquadID      string   `json:"squad_id" binding:"required,uuid"`
	Category     string   `json:"category" binding:"omitempty,oneof=TRAINING MATCH MAINTENANCE"`
	Notes        string   `json:"notes" binding:"max=1000"`
	Date         string   `json:"date" binding:"required,datetime=2006-01-02"`
	Start        string   `json:"start" binding:"required,hhmm"`
	End          string   `json:"end" binding:"required,hhmm_end"`
	FieldMode    string   `json:"field_mode" binding:"omitempty,oneof=FULL HALF_A HALF_B"`
	LockerIDs    []string `json:"locker_ids" binding:"omitempty,dive,uuid"`
	LockerBefore int      `json:"locker_before"`
	LockerAfter  int      `json:"locker_after"`
	Repeat       bool     `json:"repeat"`
	RepeatUntil  string   `json:"repeat_until" binding:"omitempty,datetime=2006-01-02"`
}

// ToRequest converts the form into a planner request. Dates are read in the facility time zone.
func (b *BookingBody) ToRequest(model slot.Model) (booking.Request, error) {
	day, err := model.ParseDay(b.Date)
	if err != nil {
		return booking.Request{}, err
	}
	start, err := slot.ParseTimeOfDay(b.Start)
	if err != nil {
		return booking.Request{}, err
	}
	end, err := slot.ParseEndTime(b.End)
	if err != nil {
		return booking.Request{}, err
	}

	req := booking.Request{
		ResourceID:   b.ResourceID,
		SquadID:      b.SquadID,
		Category:     booking.Category(b.Category),
		Notes:        b.Notes,
		Date:         day,
		Start:        start,
		End:          end,
		FieldMode:    booking.FieldMode(b.FieldMode),
		LockerIDs:    b.LockerIDs,
		LockerBefore: b.LockerBefore,
		LockerAfter:  b.LockerAfter,
		Repeat:       b.Repeat,
	}
	if b.RepeatUntil != "" {
		until, err := model.ParseDay(b.RepeatUntil)
		if err != nil {
			return booking.Request{}, err
		}
		req.RepeatUntil = until
	}
	return req, nil
}

// NewBookingBody renders a request back into form values.
func NewBookingBody(req booking.Request) BookingBody {
	body := BookingBody{
		ResourceID:   req.ResourceID,
		SquadID:      req.SquadID,
		Category:     string(req.Category),
		Notes:        req.Notes,
		Date:         slot.DayKey(req.Date),
		Start:        req.Start.String(),
		End:          req.End.String(),
		FieldMode:    string(req.FieldMode),
		LockerIDs:    req.LockerIDs,
		LockerBefore: req.LockerBefore,
		LockerAfter:  req.LockerAfter,
		Repeat:       req.Repeat,
	}
	if !req.RepeatUntil.IsZero() {
		body.RepeatUntil = slot.DayKey(req.RepeatUntil)
	}
	return body
}

type SquadTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID        string    `json:"id"`
	Squad     SquadTag  `json:"squad"`
	CreatedBy UserTag   `json:"created_by"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes,omitempty"`
	SeriesID  string    `json:"series_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Squad:     SquadTag{ID: b.SquadID, Name: b.SquadName},
		CreatedBy: UserTag{ID: b.CreatedBy, Name: b.CreatorName},
		Category:  string(b.Category),
		Status:    b.Status,
		Kind:      string(b.Kind),
		Notes:     b.Notes,
		SeriesID:  b.SeriesID,
		CreatedAt: b.CreatedAt,
	}
}

type IntervalResponse struct {
	ResourceID string    `json:"resource_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
}

type ResultResponse struct {
	SeriesID  string            `json:"series_id,omitempty"`
	Bookings  []BookingResponse `json:"bookings"`
	Booked    []string          `json:"booked"`
	Skipped   []string          `json:"skipped"`
	Requested int               `json:"requested"`
}

func NewResultResponse(r *booking.Result) ResultResponse {
	resp := ResultResponse{
		SeriesID:  r.SeriesID,
		Bookings:  make([]BookingResponse, len(r.Bookings)),
		Booked:    dayKeys(r.Booked),
		Skipped:   dayKeys(r.Skipped),
		Requested: r.Requested,
	}
	for i, b := range r.Bookings {
		resp.Bookings[i] = NewBookingResponse(b)
	}
	return resp
}

type PreviewDayResponse struct {
	Date       string             `json:"date"`
	Intervals  []IntervalResponse `json:"intervals"`
	HasOverlap bool               `json:"has_overlap"`
}

type PreviewResponse struct {
	Days []PreviewDayResponse `json:"days"`
}

func NewPreviewResponse(days []booking.DayPreview) PreviewResponse {
	resp := PreviewResponse{Days: make([]PreviewDayResponse, len(days))}
	for i, d := range days {
		intervals := make([]IntervalResponse, len(d.Drafts))
		for j, dr := range d.Drafts {
			intervals[j] = IntervalResponse{ResourceID: dr.ResourceID, StartAt: dr.StartAt, EndAt: dr.EndAt}
		}
		resp.Days[i] = PreviewDayResponse{Date: slot.DayKey(d.Day), Intervals: intervals, HasOverlap: d.HasOverlap}
	}
	return resp
}

type DetailResponse struct {
	Booking   BookingResponse    `json:"booking"`
	Intervals []IntervalResponse `json:"intervals"`
	Form      BookingBody        `json:"form"`
	CanModify bool               `json:"can_modify"`
}

type PreviewQuery struct {
	ExcludeBookingID string `form:"exclude" binding:"omitempty,uuid"`
}

func dayKeys(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = slot.DayKey(d)
	}
	return out
}
