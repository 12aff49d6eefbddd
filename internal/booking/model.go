package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/club-planner/internal/pkg/apperror"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict        = apperror.New(http.StatusConflict, "time already taken for this resource")
	ErrInvalidTimeRange    = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrResourceRequired    = apperror.New(http.StatusBadRequest, "resource is required")
	ErrResourceNotFound    = apperror.New(http.StatusNotFound, "resource not found")
	ErrSquadRequired       = apperror.New(http.StatusBadRequest, "squad is required")
	ErrSquadNotFound       = apperror.New(http.StatusNotFound, "squad not found")
	ErrSquadNotAllowed     = apperror.New(http.StatusForbidden, "squad is not managed by this user")
	ErrDateRequired        = apperror.New(http.StatusBadRequest, "date is required")
	ErrInvalidCategory     = apperror.New(http.StatusBadRequest, "invalid booking category")
	ErrInvalidFieldMode    = apperror.New(http.StatusBadRequest, "invalid field mode")
	ErrFieldHalfMissing    = apperror.New(http.StatusUnprocessableEntity, "field half is not configured")
	ErrNotALocker          = apperror.New(http.StatusBadRequest, "chosen resource is not a locker room")
	ErrTooManyLockers      = apperror.New(http.StatusBadRequest, "at most two locker rooms can be booked")
	ErrNegativePadding     = apperror.New(http.StatusBadRequest, "locker padding cannot be negative")
	ErrPaddingTooLarge     = apperror.New(http.StatusBadRequest, "locker padding is too large")
	ErrRepeatUntilRequired = apperror.New(http.StatusBadRequest, "repeat until date is required")
	ErrRepeatUntilBefore   = apperror.New(http.StatusBadRequest, "repeat until date is before the first day")
	ErrSeriesTooLong       = apperror.New(http.StatusBadRequest, "series has too many occurrences")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrReplaceIncomplete   = apperror.New(http.StatusInternalServerError, "booking was removed but could not be recreated")
)

// ErrOverlap is returned by a Store when an interval intersects an existing
// reservation on the same resource.
var ErrOverlap = errors.New("reserved interval overlaps an existing reservation")

type Category string

const (
	CategoryTraining    Category = "TRAINING"
	CategoryMatch       Category = "MATCH"
	CategoryMaintenance Category = "MAINTENANCE"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTraining, CategoryMatch, CategoryMaintenance:
		return true
	}
	return false
}

const StatusProposed = "PROPOSED"

// Kind records which allocation branch produced a booking.
type Kind string

const (
	KindField   Kind = "FIELD"
	KindLocker  Kind = "LOCKER"
	KindVehicle Kind = "VEHICLE"
)

type FieldMode string

const (
	FieldModeAuto  FieldMode = ""
	FieldModeFull  FieldMode = "FULL"
	FieldModeHalfA FieldMode = "HALF_A"
	FieldModeHalfB FieldMode = "HALF_B"
)

// Booking is the header shared by every interval of one reservation.
type Booking struct {
	ID          string
	SquadID     string
	SquadName   string
	CreatedBy   string
	CreatorName string
	Category    Category
	Status      string
	Kind        Kind
	Notes       string
	SeriesID    string
	CreatedAt   time.Time
}

// Interval is a half-open reservation [StartAt, EndAt) of one resource.
type Interval struct {
	BookingID  string
	ResourceID string
	StartAt    time.Time
	EndAt      time.Time
}

// IntervalRow is an interval joined with its booking header, as read for display.
type IntervalRow struct {
	Interval
	ResourceName string
	Booking      Booking
}

// Draft is a planned interval not yet bound to a booking.
type Draft struct {
	ResourceID string
	StartAt    time.Time
	EndAt      time.Time
}

// Request is what a user submits from the booking form.
type Request struct {
	ResourceID   string
	SquadID      string
	Category     Category
	Notes        string
	Date         time.Time
	Start        slot.TimeOfDay
	End          slot.TimeOfDay
	FieldMode    FieldMode
	LockerIDs    []string
	LockerBefore int
	LockerAfter  int
	Repeat       bool
	RepeatUntil  time.Time
}

// Result reports the outcome of a create or replace.
type Result struct {
	SeriesID  string
	Bookings  []*Booking
	Booked    []time.Time
	Skipped   []time.Time
	Requested int
}

// DayPreview is the planned allocation of one day with an advisory overlap flag.
type DayPreview struct {
	Day        time.Time
	Drafts     []Draft
	HasOverlap bool
}

// Detail is a stored booking with its intervals and the form values that produce it.
type Detail struct {
	Booking   *Booking
	Intervals []Interval
	Request   Request
}
