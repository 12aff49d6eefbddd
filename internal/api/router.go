package api

import (
	"io"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/booking"
	bookingHttp "github.com/nekogravitycat/club-planner/internal/booking/http"
	"github.com/nekogravitycat/club-planner/internal/occupancy"
	occHttp "github.com/nekogravitycat/club-planner/internal/occupancy/http"
	"github.com/nekogravitycat/club-planner/internal/pkg/request"
	"github.com/nekogravitycat/club-planner/internal/resource"
	resHttp "github.com/nekogravitycat/club-planner/internal/resource/http"
	"github.com/nekogravitycat/club-planner/internal/slot"
	"github.com/nekogravitycat/club-planner/internal/squad"
	squadHttp "github.com/nekogravitycat/club-planner/internal/squad/http"
	"github.com/nekogravitycat/club-planner/internal/user"
	userHttp "github.com/nekogravitycat/club-planner/internal/user/http"
)

// Config holds the services and settings the router is built from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	// LogWriter receives gin's request log. Nil means stdout.
	LogWriter io.Writer
	Model     slot.Model

	UserService      user.Service
	SquadService     squad.Service
	ResourceService  resource.Service
	BookingService   booking.Service
	OccupancyService occupancy.Service
	JWTManager       *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	request.RegisterValidators()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console and the log file.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	logWriter := cfg.LogWriter
	if logWriter == nil {
		logWriter = os.Stdout
	}
	r.Use(gin.LoggerWithWriter(logWriter), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is a club admin.
	adminMiddleware := RequireAdmin()

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	squadHandler := squadHttp.NewHandler(cfg.SquadService)
	resHandler := resHttp.NewHandler(cfg.ResourceService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.Model)
	occHandler := occHttp.NewHandler(cfg.OccupancyService, cfg.Model)

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		squadHttp.RegisterRoutes(v1, squadHandler, authMiddleware, adminMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		occHttp.RegisterRoutes(v1, occHandler, authMiddleware)
	}

	return r
}

// allowedOrigins returns PROD_ORIGINS in production and local dev servers otherwise.
func allowedOrigins(cfg Config) []string {
	if !cfg.IsProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	var out []string
	for _, o := range strings.Split(cfg.ProdOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
