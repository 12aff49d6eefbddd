package squad

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/club-planner/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "squad not found")
	ErrNameRequired  = apperror.New(http.StatusBadRequest, "squad name is required")
	ErrCoachRequired = apperror.New(http.StatusBadRequest, "coach is required")
)

// Squad is a team of the club that bookings are made for.
type Squad struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
