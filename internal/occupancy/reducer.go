package occupancy

import (
	"sort"
	"time"

	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

// Block is one rectangle on the planner grid. A full-field booking is a
// single block anchored at half A spanning two columns.
type Block struct {
	BookingID        string           `json:"booking_id"`
	Day              time.Time        `json:"day"`
	AnchorResourceID string           `json:"anchor_resource_id"`
	Span             int              `json:"span"`
	StartAt          time.Time        `json:"start_at"`
	EndAt            time.Time        `json:"end_at"`
	FirstSlot        int              `json:"first_slot"`
	Slots            int              `json:"slots"`
	SquadName        string           `json:"squad_name"`
	CreatorName      string           `json:"creator_name"`
	CreatedBy        string           `json:"created_by"`
	Category         booking.Category `json:"category"`
	Status           string           `json:"status"`
	Kind             booking.Kind     `json:"kind"`
	Notes            string           `json:"notes"`
	SeriesID         string           `json:"series_id"`
	IsVehicle        bool             `json:"is_vehicle"`
}

type groupKey struct {
	bookingID string
	day       int64
}

// Reduce turns reserved intervals into display blocks, one per booking and
// day, merging both field halves into one span=2 block.
func Reduce(rows []booking.IntervalRow, halfA, halfB string, model slot.Model) []Block {
	groups := make(map[groupKey][]booking.IntervalRow)
	var order []groupKey
	for _, r := range rows {
		k := groupKey{bookingID: r.BookingID, day: model.Day(r.StartAt).Unix()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var blocks []Block
	for _, k := range order {
		group := groups[k]
		day := model.Day(group[0].StartAt)

		var halves []booking.IntervalRow
		hasA, hasB := false, false
		for _, r := range group {
			switch r.ResourceID {
			case halfA:
				hasA = true
				halves = append(halves, r)
			case halfB:
				hasB = true
				halves = append(halves, r)
			}
		}
		merged := halfA != "" && halfB != "" && hasA && hasB

		if merged {
			start, end := halves[0].StartAt, halves[0].EndAt
			for _, h := range halves[1:] {
				if h.StartAt.Before(start) {
					start = h.StartAt
				}
				if h.EndAt.After(end) {
					end = h.EndAt
				}
			}
			blocks = append(blocks, newBlock(group[0], day, halfA, 2, start, end, model))
		}

		for _, r := range group {
			if merged && (r.ResourceID == halfA || r.ResourceID == halfB) {
				continue
			}
			blocks = append(blocks, newBlock(r, day, r.ResourceID, 1, r.StartAt, r.EndAt, model))
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.AnchorResourceID != b.AnchorResourceID {
			return a.AnchorResourceID < b.AnchorResourceID
		}
		return a.StartAt.Before(b.StartAt)
	})
	return blocks
}

func newBlock(r booking.IntervalRow, day time.Time, anchor string, span int, start, end time.Time, model slot.Model) Block {
	first, rows := model.Extent(day, start, end)
	b := r.Booking
	return Block{
		BookingID:        r.BookingID,
		Day:              day,
		AnchorResourceID: anchor,
		Span:             span,
		StartAt:          start,
		EndAt:            end,
		FirstSlot:        first,
		Slots:            rows,
		SquadName:        b.SquadName,
		CreatorName:      b.CreatorName,
		CreatedBy:        b.CreatedBy,
		Category:         b.Category,
		Status:           b.Status,
		Kind:             b.Kind,
		Notes:            b.Notes,
		SeriesID:         b.SeriesID,
		IsVehicle:        b.Kind == booking.KindVehicle,
	}
}

// GroupByAnchor indexes blocks by the column they are drawn in.
func GroupByAnchor(blocks []Block) map[string][]Block {
	out := make(map[string][]Block)
	for _, b := range blocks {
		out[b.AnchorResourceID] = append(out[b.AnchorResourceID], b)
	}
	return out
}
