// internal/rules/pack.go
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/solatis/renamer/internal/types"
)

// Pack is a named collection of rename rules: one exact table plus one range
// table per item type.
type Pack struct {
	name       string
	classifier types.ItemClassifier
	exact      *ExactTable
	ranges     map[int]*RangeTable
}

// NewPack returns an empty pack. A nil classifier selects types.DefaultClassifier.
func NewPack(name string, c types.ItemClassifier) *Pack {
	if c == nil {
		c = types.DefaultClassifier{}
	}
	return &Pack{
		name:       name,
		classifier: c,
		exact:      NewExactTable(c),
		ranges:     make(map[int]*RangeTable),
	}
}

// Name returns the pack name.
func (p *Pack) Name() string {
	return p.name
}

// Exact returns the pack's exact-match table.
func (p *Pack) Exact() *ExactTable {
	return p.exact
}

// Ranges returns the range table of typeID if one exists.
func (p *Pack) Ranges(typeID int) (*RangeTable, bool) {
	t, ok := p.ranges[typeID]
	return t, ok
}

// RangesFor returns the range table of typeID, creating it when absent.
func (p *Pack) RangesFor(typeID int) *RangeTable {
	t, ok := p.ranges[typeID]
	if !ok {
		t = NewRangeTable()
		p.ranges[typeID] = t
	}
	return t
}

// TypeIDs returns the item types with a range table, ascending.
func (p *Pack) TypeIDs() []int {
	ids := make([]int, 0, len(p.ranges))
	for id := range p.ranges {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ModCount sums the change counters of every table in the pack.
func (p *Pack) ModCount() int {
	n := p.exact.ModCount()
	for _, t := range p.ranges {
		n += t.ModCount()
	}
	return n
}

// Registry holds packs by case-sensitive name.
type Registry struct {
	classifier types.ItemClassifier
	packs      map[string]*Pack
}

// NewRegistry returns an empty registry whose packs normalize with c.
func NewRegistry(c types.ItemClassifier) *Registry {
	if c == nil {
		c = types.DefaultClassifier{}
	}
	return &Registry{
		classifier: c,
		packs:      make(map[string]*Pack),
	}
}

// Create registers a new empty pack.
func (r *Registry) Create(name string) (*Pack, error) {
	if name == "" {
		return nil, errors.New("pack name must not be empty")
	}
	if _, ok := r.packs[name]; ok {
		return nil, fmt.Errorf("%w: %q", types.ErrDuplicatePack, name)
	}
	p := NewPack(name, r.classifier)
	r.packs[name] = p
	return p, nil
}

// GetOrCreate returns the named pack, creating it when absent.
func (r *Registry) GetOrCreate(name string) *Pack {
	if p, ok := r.packs[name]; ok {
		return p
	}
	p := NewPack(name, r.classifier)
	r.packs[name] = p
	return p
}

// Get returns the named pack or ErrUnknownPack.
func (r *Registry) Get(name string) (*Pack, error) {
	p, ok := r.packs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPack, name)
	}
	return p, nil
}

// Put registers p, replacing any pack with the same name.
func (r *Registry) Put(p *Pack) {
	r.packs[p.Name()] = p
}

// Remove unregisters the named pack and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	_, ok := r.packs[name]
	delete(r.packs, name)
	return ok
}

// Names returns the registered pack names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.packs))
	for n := range r.packs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ModCount sums the change counters of every pack.
func (r *Registry) ModCount() int {
	n := 0
	for _, p := range r.packs {
		n += p.ModCount()
	}
	return n
}

// Classifier returns the classifier shared by the registry's packs.
func (r *Registry) Classifier() types.ItemClassifier {
	return r.classifier
}
