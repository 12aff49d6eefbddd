package occupancy

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/pkg/cache"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

const (
	dayKeyPrefix = "occupancy:day:"
	genKeyPrefix = "occupancy:gen:"
)

// IntervalReader reads reserved intervals with their booking headers.
type IntervalReader interface {
	ListIntervals(ctx context.Context, from, to time.Time) ([]booking.IntervalRow, error)
}

// DayView is the grid of one day.
type DayView struct {
	Day      time.Time
	Window   slot.Window
	Slots    []slot.TimeOfDay
	Columns  []*resource.Resource
	Blocks   []Block
	ByAnchor map[string][]Block
}

// WeekView is seven consecutive day views starting on Monday.
type WeekView struct {
	Start   time.Time
	Columns []*resource.Resource
	Days    []*DayView
}

type Service interface {
	Day(ctx context.Context, day time.Time) (*DayView, error)
	Week(ctx context.Context, day time.Time) (*WeekView, error)
	// BookingsChanged moves the given days to a new cache generation.
	BookingsChanged(ctx context.Context, days []time.Time)
}

type service struct {
	reader  IntervalReader
	catalog booking.CatalogSource
	model   slot.Model
	cache   cache.Cache
	ttl     time.Duration
}

// NewService builds the occupancy service. c may be nil to disable caching.
func NewService(reader IntervalReader, catalog booking.CatalogSource, model slot.Model, c cache.Cache, ttl time.Duration) Service {
	return &service{
		reader:  reader,
		catalog: catalog,
		model:   model,
		cache:   c,
		ttl:     ttl,
	}
}

func (s *service) Day(ctx context.Context, day time.Time) (*DayView, error) {
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return s.dayView(ctx, s.model.Day(day), cat, cat.All())
}

func (s *service) Week(ctx context.Context, day time.Time) (*WeekView, error) {
	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	columns := cat.Filter(resource.KindFieldHalf, resource.KindMiniField)

	start := s.model.WeekStart(day)
	week := &WeekView{Start: start, Columns: columns, Days: make([]*DayView, 0, 7)}
	d := start
	for i := 0; i < 7; i++ {
		view, err := s.dayView(ctx, d, cat, columns)
		if err != nil {
			return nil, err
		}
		week.Days = append(week.Days, view)
		d = s.model.NextDay(d)
	}
	return week, nil
}

func (s *service) dayView(ctx context.Context, day time.Time, cat *resource.Catalog, columns []*resource.Resource) (*DayView, error) {
	blocks, err := s.dayBlocks(ctx, day, cat)
	if err != nil {
		return nil, err
	}

	visible := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		visible[c.ID] = struct{}{}
	}
	shown := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if _, ok := visible[b.AnchorResourceID]; ok {
			shown = append(shown, b)
		}
	}

	window := s.model.Window(day)
	return &DayView{
		Day:      day,
		Window:   window,
		Slots:    window.Slots(),
		Columns:  columns,
		Blocks:   shown,
		ByAnchor: GroupByAnchor(shown),
	}, nil
}

// dayBlocks reads the blocks of one day through the cache. Entries are keyed by
// the day's generation, read before the intervals, so a write that commits
// during the read bumps the generation and orphans the stale entry.
func (s *service) dayBlocks(ctx context.Context, day time.Time, cat *resource.Catalog) ([]Block, error) {
	key, cached := s.blocksKey(ctx, day)
	if cached {
		raw, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[occupancy] cache read %s failed: %v", key, err)
		} else if ok {
			var blocks []Block
			if err := json.Unmarshal(raw, &blocks); err == nil {
				return blocks, nil
			}
			log.Printf("[occupancy] discarding unreadable cache entry %s", key)
		}
	}

	rows, err := s.reader.ListIntervals(ctx, day, s.model.NextDay(day))
	if err != nil {
		return nil, err
	}
	a, b := cat.HalfIDs()
	blocks := Reduce(rows, a, b, s.model)

	if cached {
		raw, err := json.Marshal(blocks)
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.ttl)
		}
		if err != nil {
			log.Printf("[occupancy] cache write %s failed: %v", key, err)
		}
	}
	return blocks, nil
}

// blocksKey returns the cache key for the day's current generation. It reports
// false when caching is off or the generation cannot be read.
func (s *service) blocksKey(ctx context.Context, day time.Time) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	dayKey := slot.DayKey(day)
	raw, ok, err := s.cache.Get(ctx, genKeyPrefix+dayKey)
	if err != nil {
		log.Printf("[occupancy] generation read %s failed: %v", dayKey, err)
		return "", false
	}
	gen := int64(0)
	if ok {
		if gen, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			log.Printf("[occupancy] unreadable generation for %s", dayKey)
			return "", false
		}
	}
	return dayKeyPrefix + dayKey + ":g" + strconv.FormatInt(gen, 10), true
}

func (s *service) BookingsChanged(ctx context.Context, days []time.Time) {
	if s.cache == nil || len(days) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, d := range days {
		dayKey := slot.DayKey(s.model.Day(d))
		if _, err := s.cache.Incr(ctx, genKeyPrefix+dayKey); err != nil {
			log.Printf("[occupancy] cache invalidation %s failed: %v", dayKey, err)
		}
	}
}
