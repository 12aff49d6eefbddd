package squad

import (
	"context"
	"strings"

	"github.com/nekogravitycat/club-planner/internal/auth"
)

type Service interface {
	// ListForActor returns every squad for admins and the coached squads otherwise.
	ListForActor(ctx context.Context, actor auth.Actor) ([]*Squad, error)
	GetByID(ctx context.Context, id string) (*Squad, error)
	// CanBook reports whether actor may create bookings for the squad.
	CanBook(ctx context.Context, actor auth.Actor, squadID string) (bool, error)
	Ensure(ctx context.Context, name string) (*Squad, error)
	AddCoach(ctx context.Context, squadID, userID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListForActor(ctx context.Context, actor auth.Actor) ([]*Squad, error) {
	if actor.IsAdmin {
		return s.repo.List(ctx)
	}
	if actor.ID == "" {
		return nil, nil
	}
	return s.repo.ListByCoach(ctx, actor.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Squad, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CanBook(ctx context.Context, actor auth.Actor, squadID string) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	if actor.ID == "" || squadID == "" {
		return false, nil
	}
	return s.repo.IsCoach(ctx, squadID, actor.ID)
}

func (s *service) Ensure(ctx context.Context, name string) (*Squad, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	sq := &Squad{Name: name}
	if err := s.repo.Upsert(ctx, sq); err != nil {
		return nil, err
	}
	return sq, nil
}

func (s *service) AddCoach(ctx context.Context, squadID, userID string) error {
	if userID == "" {
		return ErrCoachRequired
	}
	return s.repo.AddCoach(ctx, squadID, userID)
}
