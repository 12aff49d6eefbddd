package http

import (
	"time"

	"github.com/nekogravitycat/club-planner/internal/squad"
)

type SquadResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSquadResponse(s *squad.Squad) SquadResponse {
	return SquadResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
}

type ListResponse struct {
	Items []SquadResponse `json:"items"`
}

type AddCoachRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
