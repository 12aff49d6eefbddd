// Package slot models the facility's wall-clock day: operating windows,
// a fixed booking step and conversions between time-of-day input and instants.
package slot

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/nekogravitycat/club-planner/internal/pkg/apperror"
)

const (
	// StepMinutes is the booking granularity.
	StepMinutes = 10
	Step        = StepMinutes * time.Minute

	// DateLayout is the calendar day format used by the API and cache keys.
	DateLayout = "2006-01-02"

	minutesPerDay = 24 * 60

	// EndOfDay is 24:00, the latest end of a range.
	EndOfDay TimeOfDay = minutesPerDay
)

var (
	ErrMalformedTime = apperror.New(http.StatusBadRequest, "time of day must be formatted as HH:MM")
	ErrMalformedDate = apperror.New(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
// The end of a range may be 24:00.
type TimeOfDay int

// At builds a TimeOfDay from hours and minutes.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses a strict "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, ErrMalformedTime
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, ErrMalformedTime
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, ErrMalformedTime
	}
	if h > 23 || m > 59 {
		return 0, ErrMalformedTime
	}
	return At(h, m), nil
}

// ParseEndTime is ParseTimeOfDay that also accepts "24:00" for the end of a range.
func ParseEndTime(s string) (TimeOfDay, error) {
	if s == "24:00" {
		return EndOfDay, nil
	}
	return ParseTimeOfDay(s)
}

// MustParse is ParseTimeOfDay for literals known to be valid.
func MustParse(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(fmt.Sprintf("slot: invalid time of day %q", s))
	}
	return t
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add shifts the time by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// SnapToStep rounds to the nearest step boundary, halves rounding up.
// 23:55 and later snap to 24:00.
func SnapToStep(t TimeOfDay) TimeOfDay {
	if t < 0 {
		return 0
	}
	snapped := (int(t) + StepMinutes/2) / StepMinutes * StepMinutes
	if snapped > minutesPerDay {
		snapped = minutesPerDay
	}
	return TimeOfDay(snapped)
}

// ClampOrder guarantees a strictly positive range inside the day. A start at
// 24:00 moves back to 23:50, and when end <= start the end is moved to one
// step after start.
func ClampOrder(start, end TimeOfDay) (TimeOfDay, TimeOfDay) {
	if start > EndOfDay-StepMinutes {
		start = EndOfDay - StepMinutes
	}
	if end > EndOfDay {
		end = EndOfDay
	}
	if end <= start {
		end = start.Add(StepMinutes)
	}
	return start, end
}

// Window is the bookable part of a day.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

var (
	WeekdayWindow = Window{Open: At(15, 0), Close: At(21, 0)}
	WeekendWindow = Window{Open: At(9, 0), Close: At(21, 0)}
)

// IsWeekend reports whether the day is a Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WindowFor returns the operating window of the given day.
func WindowFor(day time.Time) Window {
	if IsWeekend(day) {
		return WeekendWindow
	}
	return WeekdayWindow
}

// Slots lists every step boundary from Open (inclusive) to Close (exclusive).
func (w Window) Slots() []TimeOfDay {
	out := make([]TimeOfDay, 0, (w.Close-w.Open)/StepMinutes)
	for t := w.Open; t < w.Close; t = t.Add(StepMinutes) {
		out = append(out, t)
	}
	return out
}

// Model binds the day arithmetic to the facility's location.
type Model struct {
	loc *time.Location
}

// NewModel creates a Model for the given location. A nil location means time.Local.
func NewModel(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{loc: loc}
}

func (m Model) Location() *time.Location {
	if m.loc == nil {
		return time.Local
	}
	return m.loc
}

// Day normalises an instant to local midnight of its calendar day.
func (m Model) Day(t time.Time) time.Time {
	t = t.In(m.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, m.Location())
}

// ParseDay parses a YYYY-MM-DD calendar day in the facility location.
func (m Model) ParseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, m.Location())
	if err != nil {
		return time.Time{}, ErrMalformedDate
	}
	return d, nil
}

// Combine produces the instant of a wall-clock time on the given day.
func (m Model) Combine(day time.Time, t TimeOfDay) time.Time {
	d := m.Day(day)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, int(t), 0, 0, m.Location())
}

// TimeOf returns the wall-clock time of day of an instant.
func (m Model) TimeOf(t time.Time) TimeOfDay {
	t = t.In(m.Location())
	return At(t.Hour(), t.Minute())
}

// NextDay returns local midnight of the following calendar day.
func (m Model) NextDay(day time.Time) time.Time {
	d := m.Day(day)
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, m.Location())
}

// WeekStart returns the Monday of the week containing day.
func (m Model) WeekStart(day time.Time) time.Time {
	d := m.Day(day)
	offset := (int(d.Weekday()) + 6) % 7
	return time.Date(d.Year(), d.Month(), d.Day()-offset, 0, 0, 0, 0, m.Location())
}

// Window returns the operating window of the day.
func (m Model) Window(day time.Time) Window {
	return WindowFor(m.Day(day))
}

// Extent positions a [start, end) range on the day grid: the first row
// counted from the window opening and the number of rows it covers.
func (m Model) Extent(day, start, end time.Time) (first, rows int) {
	open := m.Combine(day, m.Window(day).Open)
	step := float64(StepMinutes)

	first = int(math.Floor(start.Sub(open).Minutes() / step))
	if first < 0 {
		first = 0
	}
	rows = int(math.Ceil(end.Sub(start).Minutes() / step))
	if rows < 1 {
		rows = 1
	}
	return first, rows
}

// DayKey formats a day as YYYY-MM-DD.
func DayKey(day time.Time) string {
	return day.Format(DateLayout)
}
