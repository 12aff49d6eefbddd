package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/pkg/request"
	"github.com/nekogravitycat/club-planner/internal/pkg/response"
	"github.com/nekogravitycat/club-planner/internal/slot"
)

type Handler struct {
	service booking.Service
	model   slot.Model
}

func NewHandler(service booking.Service, model slot.Model) *Handler {
	return &Handler{service: service, model: model}
}

func (h *Handler) actor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
	}
	return actor, ok
}

func (h *Handler) bindRequest(c *gin.Context) (booking.Request, bool) {
	var body BookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return booking.Request{}, false
	}
	req, err := body.ToRequest(h.model)
	if err != nil {
		response.Error(c, err)
		return booking.Request{}, false
	}
	return req, true
}

// Create books a single day or a weekly series.
// A series where every day is taken still answers 201 with an empty booking list.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	res, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResultResponse(res))
}

// Preview plans the request without writing and flags days that look taken.
func (h *Handler) Preview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q PreviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	days, err := h.service.Preview(c.Request.Context(), actor, req, q.ExcludeBookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPreviewResponse(days))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	d, err := h.service.Get(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	intervals := make([]IntervalResponse, len(d.Intervals))
	for i, iv := range d.Intervals {
		intervals[i] = IntervalResponse{ResourceID: iv.ResourceID, StartAt: iv.StartAt, EndAt: iv.EndAt}
	}
	c.JSON(http.StatusOK, DetailResponse{
		Booking:   NewBookingResponse(d.Booking),
		Intervals: intervals,
		Form:      NewBookingBody(d.Request),
		CanModify: booking.CanModify(actor, d.Booking),
	})
}

// Update replaces the booking with the submitted form.
func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	res, err := h.service.Update(c.Request.Context(), actor, uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(res))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
