package http

import (
	"github.com/nekogravitycat/club-planner/internal/resource"
)

type ResourceResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Kind      resource.Kind `json:"kind"`
	SortOrder int           `json:"sort_order"`
	// FieldHalf is "A" or "B" for the two halves of the full field.
	FieldHalf string `json:"field_half,omitempty"`
}

func NewResponse(r *resource.Resource, cat *resource.Catalog) ResourceResponse {
	resp := ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      r.Kind,
		SortOrder: r.SortOrder,
	}
	switch {
	case cat.IsHalfA(r.ID):
		resp.FieldHalf = "A"
	case cat.IsHalfB(r.ID):
		resp.FieldHalf = "B"
	}
	return resp
}

type ListResponse struct {
	Items []ResourceResponse `json:"items"`
}
