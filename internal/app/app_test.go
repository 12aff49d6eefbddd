package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/club-planner/internal/booking"
	bookingHttp "github.com/nekogravitycat/club-planner/internal/booking/http"
	"github.com/nekogravitycat/club-planner/internal/db"
	occHttp "github.com/nekogravitycat/club-planner/internal/occupancy/http"
	"github.com/nekogravitycat/club-planner/internal/pkg/cache"
	"github.com/nekogravitycat/club-planner/internal/pkg/events"
	"github.com/nekogravitycat/club-planner/internal/resource"
	resHttp "github.com/nekogravitycat/club-planner/internal/resource/http"
	"github.com/nekogravitycat/club-planner/internal/seed"
	squadHttp "github.com/nekogravitycat/club-planner/internal/squad/http"
	userHttp "github.com/nekogravitycat/club-planner/internal/user/http"
)

var (
	testPool      *pgxpool.Pool
	testContainer *Container
	testEvents    *events.Recorder
)

func TestMain(m *testing.M) {
	// Attempt to load .env from the repository root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Printf("TEST_DB_DSN is not set, skipping end-to-end tests")
		os.Exit(0)
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("Unable to migrate database: %v\n", err)
	}

	gin.SetMode(gin.TestMode)
	testEvents = &events.Recorder{}
	testContainer = NewContainer(Config{
		DBPool:     testPool,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4, // Lower cost for testing purposes
		Location:   time.UTC,
		HalfNames:  resource.DefaultHalfNames,
		Planner:    booking.PlannerOptions{MaxLockerPadding: 180},
		MaxSeries:  52,
		Cache:      cache.NewMemory(),
		CacheTTL:   time.Minute,
		Events:     testEvents,
	})

	exitCode := m.Run()

	testPool.Close()
	os.Exit(exitCode)
}

func clearTables(t *testing.T) {
	t.Helper()
	for _, q := range []string{
		"TRUNCATE TABLE public.booking_resources, public.bookings CASCADE",
		"TRUNCATE TABLE public.squad_coaches, public.squads, public.resources, public.users CASCADE",
	} {
		_, err := testPool.Exec(context.Background(), q)
		require.NoError(t, err)
	}
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testContainer.Router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, email string) string {
	t.Helper()
	w := executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{Email: email, Password: "club-password"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

const seedFile = `
users:
  - {email: admin@club.test, display_name: Segreteria, role: admin, password: club-password}
  - {email: coach@club.test, display_name: Mister Rossi, role: coach, password: club-password}
  - {email: other@club.test, display_name: Mister Bianchi, role: coach, password: club-password}
resources:
  - {name: Campo A, kind: FULL_FIELD_HALF, sort_order: 1}
  - {name: Campo B, kind: FULL_FIELD_HALF, sort_order: 2}
  - {name: Campetto, kind: MINI_FIELD, sort_order: 3}
  - {name: Spogliatoio 1, kind: LOCKER, sort_order: 4}
  - {name: Pulmino, kind: VEHICLE, sort_order: 5}
squads:
  - {name: Under 14, coaches: [coach@club.test]}
  - {name: Under 16, coaches: [other@club.test]}
`

func TestPlannerFlow(t *testing.T) {
	clearTables(t)

	f, err := seed.Parse([]byte(seedFile))
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), f, testContainer.Seed))

	coachToken := login(t, "coach@club.test")
	otherToken := login(t, "other@club.test")
	adminToken := login(t, "admin@club.test")

	var resources resHttp.ListResponse
	w := executeRequest("GET", "/v1/resources", nil, coachToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resources))
	require.Len(t, resources.Items, 5)
	ids := map[string]string{}
	for _, r := range resources.Items {
		ids[r.Name] = r.ID
	}
	assert.Equal(t, "A", resources.Items[0].FieldHalf)

	var squads squadHttp.ListResponse
	w = executeRequest("GET", "/v1/squads", nil, coachToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &squads))
	require.Len(t, squads.Items, 1)
	u14 := squads.Items[0].ID

	body := bookingHttp.BookingBody{
		ResourceID:   ids["Campo A"],
		SquadID:      u14,
		Category:     "TRAINING",
		Date:         "2026-03-02",
		Start:        "15:00",
		End:          "16:00",
		FieldMode:    "FULL",
		LockerIDs:    []string{ids["Spogliatoio 1"]},
		LockerBefore: 30,
		LockerAfter:  30,
		Repeat:       true,
		RepeatUntil:  "2026-03-16",
	}

	t.Run("CoachCannotBookOtherSquad", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", body, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var bookingID string
	t.Run("CreateSeries", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", body, coachToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var res bookingHttp.ResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, []string{"2026-03-02", "2026-03-09", "2026-03-16"}, res.Booked)
		bookingID = res.Bookings[0].ID
		assert.Contains(t, testEvents.Keys(), "booking.series")
	})

	t.Run("ExclusionConstraintRejectsOverlap", func(t *testing.T) {
		single := body
		single.Repeat = false
		single.RepeatUntil = ""
		single.FieldMode = "HALF_B"
		single.LockerIDs = nil
		w := executeRequest("POST", "/v1/bookings", single, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Occupancy", func(t *testing.T) {
		w := executeRequest("GET", "/v1/occupancy/day?date=2026-03-09", nil, otherToken)
		require.Equal(t, http.StatusOK, w.Code)
		var day occHttp.DayResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
		require.Len(t, day.Blocks, 2)
		var field *occHttp.BlockResponse
		for i := range day.Blocks {
			if day.Blocks[i].AnchorResourceID == ids["Campo A"] {
				field = &day.Blocks[i]
			}
		}
		require.NotNil(t, field)
		assert.Equal(t, 2, field.Span)
		assert.Equal(t, "Under 14", field.Squad)
		assert.Equal(t, "Mister Rossi", field.Creator)
	})

	t.Run("ReplaceKeepsOriginalOnConflict", func(t *testing.T) {
		moved := body
		moved.Repeat = false
		moved.RepeatUntil = ""
		moved.Date = "2026-03-09"
		w := executeRequest("PUT", "/v1/bookings/"+bookingID, moved, coachToken)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, http.StatusOK, executeRequest("GET", "/v1/bookings/"+bookingID, nil, coachToken).Code)
	})

	t.Run("AdminDeletes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, otherToken).Code)
		assert.Equal(t, http.StatusNoContent, executeRequest("DELETE", "/v1/bookings/"+bookingID, nil, adminToken).Code)

		w := executeRequest("GET", "/v1/occupancy/day?date=2026-03-02", nil, otherToken)
		require.Equal(t, http.StatusOK, w.Code)
		var day occHttp.DayResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
		assert.Empty(t, day.Blocks)
	})
}
