package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/club-planner/internal/occupancy"
	"github.com/nekogravitycat/club-planner/internal/pkg/request"
	"github.com/nekogravitycat/club-planner/internal/pkg/response"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

type Handler struct {
	service occupancy.Service
	model   slot.Model
	now     func() time.Time
}

func NewHandler(service occupancy.Service, model slot.Model) *Handler {
	return &Handler{service: service, model: model, now: time.Now}
}

// day resolves an optional YYYY-MM-DD parameter, defaulting to today.
func (h *Handler) day(s string) (time.Time, error) {
	if s == "" {
		return h.model.Day(h.now()), nil
	}
	return h.model.ParseDay(s)
}

func (h *Handler) Day(c *gin.Context) {
	var q request.DayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	day, err := h.day(q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.Day(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDayResponse(view, h.model, true))
}

func (h *Handler) Week(c *gin.Context) {
	var q request.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	day, err := h.day(q.Week)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.Week(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewWeekResponse(view, h.model))
}
