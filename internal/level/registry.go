package level

import (
	"errors"
	"fmt"
)

// Registry holds the playable levels in order.
type Registry struct {
	levels []*Def
	byID   map[string]int
}

// NewRegistry creates a registry from validated level definitions.
func NewRegistry(defs []*Def) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.New("no levels loaded")
	}
	r := &Registry{
		levels: defs,
		byID:   make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[d.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate level id %q", ErrInvalid, d.ID)
		}
		r.byID[d.ID] = i
	}
	return r, nil
}

// LoadRegistry loads and creates a registry from the embedded levels.
func LoadRegistry() (*Registry, error) {
	defs, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs)
}

// LoadDirRegistry loads and creates a registry from the levels in dir.
func LoadDirRegistry(dir string) (*Registry, error) {
	defs, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs)
}

// MustLoadRegistry loads the embedded registry, panicking on error. The
// embedded levels ship with the binary, so a failure is a build defect.
func MustLoadRegistry() *Registry {
	registry, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the level with the given ID, or nil if not found.
func (r *Registry) GetByID(id string) *Def {
	if i, ok := r.byID[id]; ok {
		return r.levels[i]
	}
	return nil
}

// First returns the first level.
func (r *Registry) First() *Def {
	return r.levels[0]
}

// Next returns the level after id, wrapping around to the first. An unknown
// id yields the first level.
func (r *Registry) Next(id string) *Def {
	i, ok := r.byID[id]
	if !ok {
		return r.levels[0]
	}
	return r.levels[(i+1)%len(r.levels)]
}

// Previous returns the level before id, wrapping around to the last. An
// unknown id yields the first level.
func (r *Registry) Previous(id string) *Def {
	i, ok := r.byID[id]
	if !ok {
		return r.levels[0]
	}
	return r.levels[(i-1+len(r.levels))%len(r.levels)]
}

// All returns all level definitions.
func (r *Registry) All() []*Def {
	return r.levels
}

// Count returns the number of levels in the registry.
func (r *Registry) Count() int {
	return len(r.levels)
}
