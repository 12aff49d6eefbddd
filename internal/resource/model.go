package resource

import (
	"net/http"
	"sort"
	"time"

	"github.com/nekogravitycat/club-planner/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName   = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind = apperror.New(http.StatusBadRequest, "invalid resource kind")
)

// Kind drives the allocation rules applied to a resource.
type Kind string

const (
	KindFieldHalf Kind = "FULL_FIELD_HALF"
	KindMiniField Kind = "MINI_FIELD"
	KindLocker    Kind = "LOCKER"
	KindVehicle   Kind = "VEHICLE"
)

// ValidKinds lists every supported resource kind.
var ValidKinds = []Kind{KindFieldHalf, KindMiniField, KindLocker, KindVehicle}

func (k Kind) Valid() bool {
	for _, v := range ValidKinds {
		if k == v {
			return true
		}
	}
	return false
}

// IsField reports whether bookings on this kind follow the field rules (padded lockers).
func (k Kind) IsField() bool {
	return k == KindFieldHalf || k == KindMiniField
}

// Resource represents a bookable unit (a field half, the mini-field, a locker room, the minibus).
type Resource struct {
	ID        string
	Name      string
	Kind      Kind
	SortOrder int
	CreatedAt time.Time
}

// HalfNames identifies the two field halves that compose the full field.
type HalfNames struct {
	A string
	B string
}

// DefaultHalfNames matches the names used on the club's pitch.
var DefaultHalfNames = HalfNames{A: "Campo A", B: "Campo B"}

// Catalog is an immutable, indexed snapshot of the bookable resources.
type Catalog struct {
	ordered []*Resource
	byID    map[string]*Resource
	halfA   *Resource
	halfB   *Resource
}

// NewCatalog indexes resources. Half A and half B are the FULL_FIELD_HALF
// resources whose names match names.A and names.B.
func NewCatalog(resources []*Resource, names HalfNames) *Catalog {
	c := &Catalog{
		ordered: make([]*Resource, 0, len(resources)),
		byID:    make(map[string]*Resource, len(resources)),
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		c.ordered = append(c.ordered, r)
		c.byID[r.ID] = r
		if r.Kind != KindFieldHalf {
			continue
		}
		switch r.Name {
		case names.A:
			c.halfA = r
		case names.B:
			c.halfB = r
		}
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		if c.ordered[i].SortOrder != c.ordered[j].SortOrder {
			return c.ordered[i].SortOrder < c.ordered[j].SortOrder
		}
		return c.ordered[i].Name < c.ordered[j].Name
	})
	return c
}

func (c *Catalog) Get(id string) (*Resource, bool) {
	r, ok := c.byID[id]
	return r, ok
}

func (c *Catalog) HalfA() (*Resource, bool) {
	return c.halfA, c.halfA != nil
}

func (c *Catalog) HalfB() (*Resource, bool) {
	return c.halfB, c.halfB != nil
}

// HalfIDs returns the ids of half A and half B; missing halves are empty strings.
func (c *Catalog) HalfIDs() (a, b string) {
	if c.halfA != nil {
		a = c.halfA.ID
	}
	if c.halfB != nil {
		b = c.halfB.ID
	}
	return a, b
}

func (c *Catalog) IsHalfA(id string) bool {
	return c.halfA != nil && c.halfA.ID == id
}

func (c *Catalog) IsHalfB(id string) bool {
	return c.halfB != nil && c.halfB.ID == id
}

// All returns resources in display order.
func (c *Catalog) All() []*Resource {
	out := make([]*Resource, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Filter returns resources in display order whose kind is one of kinds.
func (c *Catalog) Filter(kinds ...Kind) []*Resource {
	var out []*Resource
	for _, r := range c.ordered {
		for _, k := range kinds {
			if r.Kind == k {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
