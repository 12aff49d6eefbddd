package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/booking/bookingtest"
	"github.com/nekogravitycat/club-planner/internal/occupancy"
	occHttp "github.com/nekogravitycat/club-planner/internal/occupancy/http"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

type staticCatalog struct{ cat *resource.Catalog }

func (s staticCatalog) Catalog(context.Context) (*resource.Catalog, error) { return s.cat, nil }

var model = slot.NewModel(time.UTC)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := staticCatalog{resource.NewCatalog([]*resource.Resource{
		{ID: "half-a", Name: "Campo A", Kind: resource.KindFieldHalf, SortOrder: 1},
		{ID: "half-b", Name: "Campo B", Kind: resource.KindFieldHalf, SortOrder: 2},
		{ID: "locker-1", Name: "Spogliatoio 1", Kind: resource.KindLocker, SortOrder: 3},
		{ID: "bus", Name: "Pulmino", Kind: resource.KindVehicle, SortOrder: 4},
	}, resource.DefaultHalfNames)}
	store := bookingtest.NewMemoryStore(bookingtest.Names{Squads: map[string]string{"u14": "Under 14"}})
	svc := booking.NewService(store, catalog, nil, booking.NewPlanner(model, booking.PlannerOptions{}), model, booking.Options{})

	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), auth.Actor{ID: "coach"}, booking.Request{
		ResourceID: "half-b", SquadID: "u14", Date: tuesday,
		Start: slot.At(15, 0), End: slot.At(16, 30), FieldMode: booking.FieldModeFull,
		LockerIDs: []string{"locker-1"}, LockerBefore: 15, LockerAfter: 15,
	})
	require.NoError(t, err)

	r := gin.New()
	occHttp.RegisterRoutes(r.Group("/v1"), occHttp.NewHandler(occupancy.NewService(store, catalog, model, nil, 0), model),
		func(c *gin.Context) { c.Next() })
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDay(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/v1/occupancy/day?date=2026-03-03")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var day occHttp.DayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
	assert.Equal(t, "2026-03-03", day.Date)
	assert.Equal(t, "15:00", day.Open)
	assert.Equal(t, "21:00", day.Close)
	assert.Len(t, day.Slots, 36)
	assert.Len(t, day.Columns, 4)

	require.Len(t, day.Blocks, 2)
	field := day.Blocks[0]
	assert.Equal(t, "half-a", field.AnchorResourceID)
	assert.Equal(t, 2, field.Span)
	assert.Equal(t, "15:00", field.Start)
	assert.Equal(t, "16:30", field.End)
	assert.Equal(t, "Under 14", field.Squad)

	locker := day.Blocks[1]
	assert.Equal(t, "locker-1", locker.AnchorResourceID)
	assert.Equal(t, "14:45", locker.Start)
	assert.Equal(t, "16:45", locker.End)
}

func TestWeek(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/v1/occupancy/week?week=2026-03-05")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var week occHttp.WeekResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &week))
	assert.Equal(t, "2026-03-02", week.Start)
	require.Len(t, week.Days, 7)
	require.Len(t, week.Columns, 2)
	assert.Equal(t, "half-a", week.Columns[0].ID)
	assert.Len(t, week.Days[1].Blocks, 1)
	assert.Empty(t, week.Days[0].Blocks)
	assert.Equal(t, "09:00", week.Days[5].Open)
}

func TestBadDate(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/occupancy/day?date=03-03-2026").Code)
}
