package app

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/club-planner/internal/api"
	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/occupancy"
	"github.com/nekogravitycat/club-planner/internal/pkg/cache"
	"github.com/nekogravitycat/club-planner/internal/pkg/events"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/seed"
	"github.com/nekogravitycat/club-planner/internal/slot"
	"github.com/nekogravitycat/club-planner/internal/squad"
	"github.com/nekogravitycat/club-planner/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	LogWriter    io.Writer
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	Location  *time.Location
	HalfNames resource.HalfNames
	Planner   booking.PlannerOptions
	MaxSeries int
	// Cache may be nil to disable the occupancy cache.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Events may be nil to publish nothing.
	Events events.Publisher
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Seed       seed.Services
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	model := slot.NewModel(cfg.Location)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Squad Module
	squadRepo := squad.NewPgxRepository(cfg.DBPool)
	squadService := squad.NewService(squadRepo)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo, cfg.HalfNames)

	// Booking + Occupancy Modules
	store := booking.NewPgxStore(cfg.DBPool)
	occService := occupancy.NewService(store, resService, model, cfg.Cache, cfg.CacheTTL)
	bookingService := booking.NewService(store, resService, squadService,
		booking.NewPlanner(model, cfg.Planner), model,
		booking.Options{
			MaxSeriesWeeks: cfg.MaxSeries,
			Notifier:       occService,
			Events:         cfg.Events,
		})

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		LogWriter:        cfg.LogWriter,
		Model:            model,
		UserService:      userService,
		SquadService:     squadService,
		ResourceService:  resService,
		BookingService:   bookingService,
		OccupancyService: occService,
		JWTManager:       jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Seed: seed.Services{
			Users:     userService,
			Resources: resService,
			Squads:    squadService,
		},
	}
}
