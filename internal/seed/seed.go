// Package seed loads reference data (resources, squads, coaches and staff
// accounts) from a YAML file and upserts it at startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/squad"
	"github.com/nekogravitycat/club-planner/internal/user"
)

type UserSeed struct {
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	// Password is only used when the account does not exist yet.
	Password string `yaml:"password"`
}

type ResourceSeed struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	SortOrder int    `yaml:"sort_order"`
}

type SquadSeed struct {
	Name string `yaml:"name"`
	// Coaches are user emails.
	Coaches []string `yaml:"coaches"`
}

type File struct {
	Users     []UserSeed     `yaml:"users"`
	Resources []ResourceSeed `yaml:"resources"`
	Squads    []SquadSeed    `yaml:"squads"`
}

type UserEnsurer interface {
	Ensure(ctx context.Context, email, password, displayName string, role user.Role) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type ResourceEnsurer interface {
	Ensure(ctx context.Context, name string, kind resource.Kind, sortOrder int) (*resource.Resource, error)
}

type SquadEnsurer interface {
	Ensure(ctx context.Context, name string) (*squad.Squad, error)
	AddCoach(ctx context.Context, squadID, userID string) error
}

type Services struct {
	Users     UserEnsurer
	Resources ResourceEnsurer
	Squads    SquadEnsurer
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the whole file before anything is written.
func (f *File) Validate() error {
	var errs []error
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: email is required", i))
		}
		if !user.Role(u.Role).Valid() {
			errs = append(errs, fmt.Errorf("users[%d]: invalid role %q", i, u.Role))
		}
	}
	for i, r := range f.Resources {
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Errorf("resources[%d]: name is required", i))
		}
		if !resource.Kind(r.Kind).Valid() {
			errs = append(errs, fmt.Errorf("resources[%d]: invalid kind %q", i, r.Kind))
		}
	}
	for i, s := range f.Squads {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("squads[%d]: name is required", i))
		}
	}
	return errors.Join(errs...)
}

// Apply upserts users, then resources, then squads with their coach links.
// Existing users keep their password and role.
func Apply(ctx context.Context, f *File, svc Services) error {
	for _, u := range f.Users {
		if _, err := svc.Users.Ensure(ctx, u.Email, u.Password, u.DisplayName, user.Role(u.Role)); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	for _, r := range f.Resources {
		if _, err := svc.Resources.Ensure(ctx, r.Name, resource.Kind(r.Kind), r.SortOrder); err != nil {
			return fmt.Errorf("seed resource %s: %w", r.Name, err)
		}
	}

	for _, s := range f.Squads {
		sq, err := svc.Squads.Ensure(ctx, s.Name)
		if err != nil {
			return fmt.Errorf("seed squad %s: %w", s.Name, err)
		}
		for _, email := range s.Coaches {
			u, err := svc.Users.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("seed coach %s of %s: %w", email, s.Name, err)
			}
			if err := svc.Squads.AddCoach(ctx, sq.ID, u.ID); err != nil {
				return fmt.Errorf("seed coach %s of %s: %w", email, s.Name, err)
			}
		}
	}

	log.Printf("[seed] applied %d users, %d resources, %d squads", len(f.Users), len(f.Resources), len(f.Squads))
	return nil
}
