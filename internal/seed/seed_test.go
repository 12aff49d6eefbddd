package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/squad"
	"github.com/nekogravitycat/club-planner/internal/user"
)

const sample = `
users:
  - email: admin@club.test
    display_name: Segreteria
    role: admin
    password: change-me-now
  - email: coach@club.test
    role: coach
    password: change-me-now
resources:
  - {name: Campo A, kind: FULL_FIELD_HALF, sort_order: 1}
  - {name: Campo B, kind: FULL_FIELD_HALF, sort_order: 2}
  - {name: Spogliatoio 1, kind: LOCKER, sort_order: 3}
squads:
  - name: Under 14
    coaches: [coach@club.test]
  - name: Prima Squadra
`

type fakeUsers struct{ byEmail map[string]*user.User }

func (f *fakeUsers) Ensure(_ context.Context, email, _, name string, role user.Role) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	u := &user.User{ID: fmt.Sprintf("u%d", len(f.byEmail)+1), Email: email, DisplayName: &name, Role: role}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type fakeResources struct{ byName map[string]*resource.Resource }

func (f *fakeResources) Ensure(_ context.Context, name string, kind resource.Kind, order int) (*resource.Resource, error) {
	r := &resource.Resource{ID: "r-" + name, Name: name, Kind: kind, SortOrder: order}
	f.byName[name] = r
	return r, nil
}

type fakeSquads struct {
	byName  map[string]*squad.Squad
	coaches map[string][]string
}

func (f *fakeSquads) Ensure(_ context.Context, name string) (*squad.Squad, error) {
	if s, ok := f.byName[name]; ok {
		return s, nil
	}
	s := &squad.Squad{ID: "s-" + name, Name: name}
	f.byName[name] = s
	return s, nil
}

func (f *fakeSquads) AddCoach(_ context.Context, squadID, userID string) error {
	for _, id := range f.coaches[squadID] {
		if id == userID {
			return nil
		}
	}
	f.coaches[squadID] = append(f.coaches[squadID], userID)
	return nil
}

func newServices() (Services, *fakeUsers, *fakeResources, *fakeSquads) {
	u := &fakeUsers{byEmail: map[string]*user.User{}}
	r := &fakeResources{byName: map[string]*resource.Resource{}}
	s := &fakeSquads{byName: map[string]*squad.Squad{}, coaches: map[string][]string{}}
	return Services{Users: u, Resources: r, Squads: s}, u, r, s
}

func TestApply(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	svc, users, resources, squads := newServices()
	ctx := context.Background()
	require.NoError(t, Apply(ctx, f, svc))
	require.NoError(t, Apply(ctx, f, svc))

	assert.Len(t, users.byEmail, 2)
	assert.Equal(t, user.RoleAdmin, users.byEmail["admin@club.test"].Role)
	assert.Len(t, resources.byName, 3)
	assert.Equal(t, resource.KindLocker, resources.byName["Spogliatoio 1"].Kind)
	assert.Len(t, squads.byName, 2)

	coachID := users.byEmail["coach@club.test"].ID
	assert.Equal(t, []string{coachID}, squads.coaches["s-Under 14"])
	assert.Empty(t, squads.coaches["s-Prima Squadra"])
}

func TestApplyUnknownCoach(t *testing.T) {
	f, err := Parse([]byte("squads:\n  - name: Under 16\n    coaches: [ghost@club.test]\n"))
	require.NoError(t, err)

	svc, _, _, _ := newServices()
	err = Apply(context.Background(), f, svc)
	require.Error(t, err)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	_, err := Parse([]byte(`
users:
  - email: x@club.test
    role: janitor
resources:
  - {name: Campo C, kind: TENNIS}
  - {kind: LOCKER}
`))
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, `invalid role "janitor"`), msg)
	assert.True(t, strings.Contains(msg, `invalid kind "TENNIS"`), msg)
	assert.True(t, strings.Contains(msg, "resources[1]: name is required"), msg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Resources, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
