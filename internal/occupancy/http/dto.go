package http

import (
	"github.com/nekogravitycat/club-planner/internal/occupancy"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

type ColumnResponse struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Kind resource.Kind `json:"kind"`
}

type BlockResponse struct {
	BookingID        string `json:"booking_id"`
	AnchorResourceID string `json:"anchor_resource_id"`
	Span             int    `json:"span"`
	Start            string `json:"start"`
	End              string `json:"end"`
	FirstSlot        int    `json:"first_slot"`
	Slots            int    `json:"slots"`
	Squad            string `json:"squad"`
	Creator          string `json:"creator"`
	CreatedBy        string `json:"created_by"`
	Category         string `json:"category"`
	Status           string `json:"status"`
	Kind             string `json:"kind"`
	Notes            string `json:"notes,omitempty"`
	SeriesID         string `json:"series_id,omitempty"`
	IsVehicle        bool   `json:"is_vehicle"`
}

type DayResponse struct {
	Date    string           `json:"date"`
	Open    string           `json:"open"`
	Close   string           `json:"close"`
	Slots   []string         `json:"slots"`
	Columns []ColumnResponse `json:"columns,omitempty"`
	Blocks  []BlockResponse  `json:"blocks"`
}

type WeekResponse struct {
	Start   string           `json:"start"`
	Columns []ColumnResponse `json:"columns"`
	Days    []DayResponse    `json:"days"`
}

func newColumns(rs []*resource.Resource) []ColumnResponse {
	out := make([]ColumnResponse, len(rs))
	for i, r := range rs {
		out[i] = ColumnResponse{ID: r.ID, Name: r.Name, Kind: r.Kind}
	}
	return out
}

func newBlock(b occupancy.Block, model slot.Model) BlockResponse {
	return BlockResponse{
		BookingID:        b.BookingID,
		AnchorResourceID: b.AnchorResourceID,
		Span:             b.Span,
		Start:            model.TimeOf(b.StartAt).String(),
		End:              model.TimeOf(b.EndAt).String(),
		FirstSlot:        b.FirstSlot,
		Slots:            b.Slots,
		Squad:            b.SquadName,
		Creator:          b.CreatorName,
		CreatedBy:        b.CreatedBy,
		Category:         string(b.Category),
		Status:           b.Status,
		Kind:             string(b.Kind),
		Notes:            b.Notes,
		SeriesID:         b.SeriesID,
		IsVehicle:        b.IsVehicle,
	}
}

// NewDayResponse renders a day view. withColumns is false inside a week, where columns are shared.
func NewDayResponse(v *occupancy.DayView, model slot.Model, withColumns bool) DayResponse {
	resp := DayResponse{
		Date:   slot.DayKey(v.Day),
		Open:   v.Window.Open.String(),
		Close:  v.Window.Close.String(),
		Slots:  make([]string, len(v.Slots)),
		Blocks: make([]BlockResponse, len(v.Blocks)),
	}
	for i, s := range v.Slots {
		resp.Slots[i] = s.String()
	}
	for i, b := range v.Blocks {
		resp.Blocks[i] = newBlock(b, model)
	}
	if withColumns {
		resp.Columns = newColumns(v.Columns)
	}
	return resp
}

func NewWeekResponse(v *occupancy.WeekView, model slot.Model) WeekResponse {
	resp := WeekResponse{
		Start:   slot.DayKey(v.Start),
		Columns: newColumns(v.Columns),
		Days:    make([]DayResponse, len(v.Days)),
	}
	for i, d := range v.Days {
		resp.Days[i] = NewDayResponse(d, model, false)
	}
	return resp
}
