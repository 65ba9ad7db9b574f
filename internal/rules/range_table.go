// internal/rules/range_table.go
package rules

import (
	"fmt"
	"sort"

	"github.com/solatis/renamer/internal/types"
)

/*
 * Sub-variant range table.
 *
 * Maps inclusive sub-variant ranges [Low, High] of one item type to rules,
 * plus two synthetic fallback slots outside the interval space:
 *   - ALL:   merged under every lookup
 *   - OTHER: used when no stored range contains the key
 *
 * Storage: a slice of disjoint ranges sorted by Low. Lookup is a binary
 * search (O(log n)); insertion shifts the slice (O(n)), acceptable because
 * tables are edited by operators, not per item.
 *
 * Overwrite-on-overlap: SetRule discards every stored range that overlaps
 * the new one in its entirety. Set [0,10]->A then [5,5]->B leaves only
 * [5,5]->B; keys 0..4 and 6..10 become undefined. Saved configurations
 * depend on this behavior, so it must not be turned into a splitting merge.
 */

// Range is an inclusive sub-variant interval.
type Range struct {
	Low  int
	High int
}

// Contains reports whether key lies inside the range.
func (r Range) Contains(key int) bool {
	return key >= r.Low && key <= r.High
}

// Overlaps reports whether two ranges share at least one key.
func (r Range) Overlaps(o Range) bool {
	return r.Low <= o.High && o.Low <= r.High
}

func (r Range) String() string {
	if r.Low == r.High {
		return fmt.Sprintf("%d", r.Low)
	}
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// RangeEntry is one stored range and its rule.
type RangeEntry struct {
	Range Range
	Rule  *Rule
}

// RangeTable holds the range rules of one item type within one pack.
// Not safe for concurrent mutation; see package pipeline for the threading model.
type RangeTable struct {
	entries  []RangeEntry // disjoint, sorted by Range.Low
	all      *Rule
	other    *Rule
	modCount int
}

// NewRangeTable returns an empty table.
func NewRangeTable() *RangeTable {
	return &RangeTable{}
}

// ValidateRange checks 0 <= low <= high <= MaxSubVariant.
func ValidateRange(low, high int) error {
	if low < 0 || high < low || high > types.MaxSubVariant {
		return fmt.Errorf("%w: [%d, %d]", types.ErrInvalidRange, low, high)
	}
	return nil
}

// SetRule stores rule for every key in [low, high]. A nil rule deletes the
// range instead. Stored ranges overlapping [low, high] are discarded whole.
func (t *RangeTable) SetRule(low, high int, rule *Rule) error {
	if err := ValidateRange(low, high); err != nil {
		return err
	}
	r := Range{Low: low, High: high}

	// First entry that could overlap: High >= low.
	start := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Range.High >= low
	})
	end := start
	for end < len(t.entries) && t.entries[end].Range.Overlaps(r) {
		end++
	}

	if rule == nil && start == end {
		return nil
	}
	if rule != nil && end-start == 1 && t.entries[start].Range == r && t.entries[start].Rule.Equal(rule) {
		return nil
	}

	var replacement []RangeEntry
	if rule != nil {
		replacement = []RangeEntry{{Range: r, Rule: rule}}
	}
	tail := append(replacement, t.entries[end:]...)
	t.entries = append(t.entries[:start], tail...)
	t.modCount++
	return nil
}

// SetAll sets the ALL fallback slot. A non-identity rule is stored with
// skip-if-customized forced on. Nil clears the slot.
func (t *RangeTable) SetAll(rule *Rule) {
	t.setFallback(&t.all, rule)
}

// SetOther sets the OTHER fallback slot. A non-identity rule is stored with
// skip-if-customized forced on. Nil clears the slot.
func (t *RangeTable) SetOther(rule *Rule) {
	t.setFallback(&t.other, rule)
}

func (t *RangeTable) setFallback(slot **Rule, rule *Rule) {
	if rule != nil && !rule.IsIdentity() {
		rule = rule.WithSkip(true)
	}
	if (*slot).Equal(rule) {
		return
	}
	*slot = rule
	t.modCount++
}

// All returns the ALL fallback rule, or nil.
func (t *RangeTable) All() *Rule {
	return t.all
}

// Other returns the OTHER fallback rule, or nil.
func (t *RangeTable) Other() *Rule {
	return t.other
}

// GetDefined returns the rule of the stored range containing key, or nil.
func (t *RangeTable) GetDefined(key int) *Rule {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Range.High >= key
	})
	if i < len(t.entries) && t.entries[i].Range.Contains(key) {
		return t.entries[i].Rule
	}
	return nil
}

// GetEffective returns Merge(defined, ALL) when a stored range contains key,
// else Merge(OTHER, ALL). Nil when nothing applies.
func (t *RangeTable) GetEffective(key int) *Rule {
	rule, _ := t.lookup(key)
	return rule
}

// lookup is GetEffective plus whether a stored range matched.
func (t *RangeTable) lookup(key int) (*Rule, bool) {
	if defined := t.GetDefined(key); defined != nil {
		return Merge(defined, t.all), true
	}
	return Merge(t.other, t.all), false
}

// Entries returns the stored ranges sorted by (Low, High).
func (t *RangeTable) Entries() []RangeEntry {
	return append([]RangeEntry(nil), t.entries...)
}

// Len returns the number of stored ranges, excluding fallback slots.
func (t *RangeTable) Len() int {
	return len(t.entries)
}

// IsEmpty reports whether the table holds no ranges and no fallbacks.
func (t *RangeTable) IsEmpty() bool {
	return len(t.entries) == 0 && t.all == nil && t.other == nil
}

// ModCount returns the number of structural changes made so far.
func (t *RangeTable) ModCount() int {
	return t.modCount
}
