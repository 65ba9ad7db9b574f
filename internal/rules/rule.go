// internal/rules/rule.go
package rules

import (
	"strconv"
	"strings"

	"github.com/solatis/renamer/internal/types"
)

/*
 * Rename rule value object.
 *
 * A Rule describes what to change on an item: display name, lore lines,
 * enchantments to force on and enchantments to strip, plus the
 * skip-if-customized flag. Rules are immutable once built; every "modified"
 * rule is a new instance produced by a Builder or by WithSkip.
 *
 * Identity: a rule with no name, no lore and empty enchantment sets is the
 * identity rule. Build() always returns the Identity singleton for such
 * content (the skip flag is dropped), so identity compares equal to Identity
 * structurally and by pointer.
 *
 * Merge is deliberately not commutative: the priority side wins the name and
 * its lore lines are appended after the fallback lines.
 */

// Rule is an immutable rename rule. The zero value is not valid; use a
// Builder or Identity.
type Rule struct {
	name   *string
	lore   []string
	add    []types.Enchantment // sorted, deduplicated
	remove []types.Enchantment // sorted, deduplicated
	skip   bool
}

// Identity is the canonical no-op rule.
var Identity = &Rule{}

// Name returns the display name override.
func (r *Rule) Name() (string, bool) {
	if r.name == nil {
		return "", false
	}
	return *r.name, true
}

// Lore returns a copy of the lore lines.
func (r *Rule) Lore() []string {
	return append([]string(nil), r.lore...)
}

// EnchantmentsAdd returns a copy of the enchantments to force onto the item.
func (r *Rule) EnchantmentsAdd() []types.Enchantment {
	return append([]types.Enchantment(nil), r.add...)
}

// EnchantmentsRemove returns a copy of the enchantments to strip.
func (r *Rule) EnchantmentsRemove() []types.Enchantment {
	return append([]types.Enchantment(nil), r.remove...)
}

// SkipIfCustomized reports whether items with an existing custom name or
// lore are left alone.
func (r *Rule) SkipIfCustomized() bool {
	return r.skip
}

// IsIdentity reports whether the rule changes nothing.
func (r *Rule) IsIdentity() bool {
	return r.name == nil && len(r.lore) == 0 && len(r.add) == 0 && len(r.remove) == 0
}

// Equal reports structural equality. Two nil rules are equal.
func (r *Rule) Equal(o *Rule) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r == o {
		return true
	}
	if (r.name == nil) != (o.name == nil) || (r.name != nil && *r.name != *o.name) {
		return false
	}
	return r.skip == o.skip &&
		equalStrings(r.lore, o.lore) &&
		equalEnchantments(r.add, o.add) &&
		equalEnchantments(r.remove, o.remove)
}

// Key returns a canonical encoding usable as a hash key. Equal rules have
// equal keys.
func (r *Rule) Key() string {
	var b strings.Builder
	if r.name != nil {
		b.WriteString("n")
		b.WriteString(strconv.Quote(*r.name))
	}
	b.WriteString("|l")
	for _, l := range r.lore {
		b.WriteString(strconv.Quote(l))
	}
	b.WriteString("|a")
	for _, e := range r.add {
		b.WriteString(e.String())
		b.WriteByte(',')
	}
	b.WriteString("|r")
	for _, e := range r.remove {
		b.WriteString(e.String())
		b.WriteByte(',')
	}
	if r.skip {
		b.WriteString("|s")
	}
	return b.String()
}

func (r *Rule) String() string {
	if r == nil {
		return "<none>"
	}
	if r.IsIdentity() {
		return "<identity>"
	}
	return r.Key()
}

// WithSkip returns a rule equal to r except for the skip flag. The identity
// rule stays Identity.
func (r *Rule) WithSkip(skip bool) *Rule {
	if r.IsIdentity() {
		return Identity
	}
	if r.skip == skip {
		return r
	}
	cp := *r
	cp.skip = skip
	return &cp
}

// ToBuilder returns a builder seeded with r's content.
func (r *Rule) ToBuilder() *Builder {
	b := &Builder{
		lore:   r.Lore(),
		add:    r.EnchantmentsAdd(),
		remove: r.EnchantmentsRemove(),
		skip:   r.skip,
	}
	if r.name != nil {
		name := *r.name
		b.name = &name
	}
	return b
}

// Builder assembles a Rule.
type Builder struct {
	name   *string
	lore   []string
	add    []types.Enchantment
	remove []types.Enchantment
	skip   bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Name sets the display name override.
func (b *Builder) Name(name string) *Builder {
	b.name = &name
	return b
}

// ClearName removes the display name override.
func (b *Builder) ClearName() *Builder {
	b.name = nil
	return b
}

// Lore replaces the lore lines.
func (b *Builder) Lore(lines ...string) *Builder {
	b.lore = append([]string(nil), lines...)
	return b
}

// AppendLore adds lore lines after the existing ones.
func (b *Builder) AppendLore(lines ...string) *Builder {
	b.lore = append(b.lore, lines...)
	return b
}

// Enchant adds enchantments to force onto the item.
func (b *Builder) Enchant(enchs ...types.Enchantment) *Builder {
	b.add = append(b.add, enchs...)
	return b
}

// Dechant adds enchantments to strip from the item.
func (b *Builder) Dechant(enchs ...types.Enchantment) *Builder {
	b.remove = append(b.remove, enchs...)
	return b
}

// SkipIfCustomized sets the skip-if-customized flag.
func (b *Builder) SkipIfCustomized(skip bool) *Builder {
	b.skip = skip
	return b
}

// Build returns the immutable rule, or Identity when nothing is set.
func (b *Builder) Build() *Rule {
	r := &Rule{
		add:    types.SortEnchantments(append([]types.Enchantment(nil), b.add...)),
		remove: types.SortEnchantments(append([]types.Enchantment(nil), b.remove...)),
		skip:   b.skip,
	}
	if b.name != nil {
		name := *b.name
		r.name = &name
	}
	if len(b.lore) > 0 {
		r.lore = append([]string(nil), b.lore...)
	}
	if len(r.add) == 0 {
		r.add = nil
	}
	if len(r.remove) == 0 {
		r.remove = nil
	}
	if r.IsIdentity() {
		return Identity
	}
	return r
}

// Merge combines a priority rule with a fallback rule.
//
// An absent (nil) or identity side yields the other side unchanged. The name
// comes from priority when set, else from fallback. Lore is fallback lines
// followed by priority lines. Enchantment sets are unioned per field. The
// skip flag is taken from priority; call sites overwrite it per tier.
func Merge(priority, fallback *Rule) *Rule {
	switch {
	case priority == nil:
		return fallback
	case fallback == nil:
		return priority
	case fallback.IsIdentity():
		return priority
	case priority.IsIdentity():
		return fallback
	}

	b := &Builder{skip: priority.skip}
	switch {
	case priority.name != nil:
		b.Name(*priority.name)
	case fallback.name != nil:
		b.Name(*fallback.name)
	}
	b.lore = append(append([]string(nil), fallback.lore...), priority.lore...)
	b.add = append(append([]types.Enchantment(nil), fallback.add...), priority.add...)
	b.remove = append(append([]types.Enchantment(nil), fallback.remove...), priority.remove...)
	return b.Build()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalEnchantments(a, b []types.Enchantment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
