package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/club-planner/internal/pkg/request"
	"github.com/nekogravitycat/club-planner/internal/pkg/response"
	"github.com/nekogravitycat/club-planner/internal/resource"
)

type Handler struct {
	service resource.Service
}

func NewHandler(service resource.Service) *Handler {
	return &Handler{service: service}
}

// List returns every bookable resource in display order.
func (h *Handler) List(c *gin.Context) {
	cat, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	all := cat.All()
	items := make([]ResourceResponse, len(all))
	for i, r := range all {
		items[i] = NewResponse(r, cat)
	}
	c.JSON(http.StatusOK, ListResponse{Items: items})
}

// Get returns one resource, including its field half when it is one.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", err)
		return
	}

	ctx := c.Request.Context()
	res, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	cat, err := h.service.Catalog(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(res, cat))
}
