package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/club-planner/internal/auth"
	"github.com/nekogravitycat/club-planner/internal/pkg/request"
	"github.com/nekogravitycat/club-planner/internal/pkg/response"
	"github.com/nekogravitycat/club-planner/internal/squad"
)

type Handler struct {
	service squad.Service
}

func NewHandler(service squad.Service) *Handler {
	return &Handler{service: service}
}

// List returns the squads the caller may book for.
func (h *Handler) List(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	squads, err := h.service.ListForActor(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SquadResponse, len(squads))
	for i, s := range squads {
		items[i] = NewSquadResponse(s)
	}
	c.JSON(http.StatusOK, ListResponse{Items: items})
}

// AddCoach links a coach to a squad. Admin only.
func (h *Handler) AddCoach(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid squad id", err)
		return
	}
	var body AddCoachRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.service.GetByID(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AddCoach(ctx, uri.ID, body.UserID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
