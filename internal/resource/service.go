package resource

import (
	"context"
	"strings"
)

type Service interface {
	List(ctx context.Context) ([]*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	// Catalog loads the current resources as an indexed snapshot.
	Catalog(ctx context.Context) (*Catalog, error)
	// Ensure creates or refreshes a resource identified by its name.
	Ensure(ctx context.Context, name string, kind Kind, sortOrder int) (*Resource, error)
}

type service struct {
	repo  Repository
	names HalfNames
}

func NewService(repo Repository, names HalfNames) Service {
	return &service{
		repo:  repo,
		names: names,
	}
}

func (s *service) List(ctx context.Context) ([]*Resource, error) {
	return s.repo.List(ctx)
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Catalog(ctx context.Context) (*Catalog, error) {
	resources, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(resources, s.names), nil
}

func (s *service) Ensure(ctx context.Context, name string, kind Kind, sortOrder int) (*Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	res := &Resource{
		Name:      name,
		Kind:      kind,
		SortOrder: sortOrder,
	}
	if err := s.repo.Upsert(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}
