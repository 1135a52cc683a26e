package instrument

import (
	"fmt"
	"strings"
)

// Registry is an immutable index over a fixed set of instruments.
// It is safe for concurrent use without locking.
type Registry struct {
	ordered []Instrument
	byID    map[int]int
	byPath  map[string]int
}

// NewRegistry validates identity uniqueness and builds the lookup indexes.
// Instruments keep their declaration order.
func NewRegistry(defs ...Instrument) (*Registry, error) {
	r := &Registry{
		ordered: make([]Instrument, 0, len(defs)),
		byID:    make(map[int]int, len(defs)),
		byPath:  make(map[string]int, len(defs)),
	}
	names := make(map[string]struct{}, len(defs))

	for _, def := range defs {
		switch {
		case strings.TrimSpace(def.Path) == "":
			return nil, fmt.Errorf("%w: id %d has an empty path", ErrInvalidInstrument, def.ID)
		case strings.TrimSpace(def.Name) == "":
			return nil, fmt.Errorf("%w: %q has an empty name", ErrInvalidInstrument, def.Path)
		case len(def.Buckets) == 0:
			return nil, fmt.Errorf("%w: %q has no interpretation buckets", ErrInvalidInstrument, def.Path)
		}
		if _, ok := r.byID[def.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, def.ID)
		}
		if _, ok := r.byPath[def.Path]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, def.Path)
		}
		if _, ok := names[def.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, def.Name)
		}

		idx := len(r.ordered)
		r.ordered = append(r.ordered, def.clone())
		r.byID[def.ID] = idx
		r.byPath[def.Path] = idx
		names[def.Name] = struct{}{}
	}
	return r, nil
}

// ByPath resolves an instrument by its URL path slug.
func (r *Registry) ByPath(path string) (Instrument, error) {
	idx, ok := r.byPath[path]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: path %q", ErrNotFound, path)
	}
	return r.ordered[idx].clone(), nil
}

// ByID resolves an instrument by its numeric id.
func (r *Registry) ByID(id int) (Instrument, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r.ordered[idx].clone(), nil
}

// All returns every instrument in declaration order. The slice is a copy.
func (r *Registry) All() []Instrument {
	out := make([]Instrument, len(r.ordered))
	for i, in := range r.ordered {
		out[i] = in.clone()
	}
	return out
}

// Len reports the number of instruments.
func (r *Registry) Len() int {
	return len(r.ordered)
}
