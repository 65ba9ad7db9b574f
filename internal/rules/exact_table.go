// internal/rules/exact_table.go
package rules

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/types"
)

/*
 * Exact-match rule table.
 *
 * Keys are normalized item signatures: a structural copy of type,
 * sub-variant and extra data with two normalizations applied:
 *   1. sub-variant zeroed for armor and tools (wear is not identity)
 *   2. RepairCost removed from the extra data
 * Two items differing only in wear or repair cost share a key. Every entry
 * point normalizes; raw signatures never touch the map.
 *
 * The map key is the canonical encoding of the normalized signature, so
 * equal signatures hash identically regardless of map iteration order in
 * the extra data.
 */

// Signature is the normalized identity of an item for exact matching.
type Signature struct {
	TypeID int
	Damage int
	Extra  nbt.Compound
}

// Key returns the canonical hash key of the signature.
func (s Signature) Key() string {
	return strconv.Itoa(s.TypeID) + ":" + strconv.Itoa(s.Damage) + ":" + s.Extra.Canonical()
}

// Item returns a one-count item with the signature's state.
func (s Signature) Item() *types.Item {
	return &types.Item{TypeID: s.TypeID, Damage: s.Damage, Amount: 1, Extra: s.Extra.Clone()}
}

// Normalize builds the signature of item under classifier c.
func Normalize(c types.ItemClassifier, item *types.Item) (Signature, error) {
	if types.IsEmpty(item) || item.TypeID < 0 {
		return Signature{}, fmt.Errorf("%w: %v", types.ErrInvalidSignature, item)
	}
	sig := Signature{
		TypeID: item.TypeID,
		Damage: item.Damage,
		Extra:  item.Extra.Clone(),
	}
	if types.Wears(c, item.TypeID) {
		sig.Damage = 0
	}
	sig.Extra.Remove(types.KeyRepairCost)
	if sig.Extra != nil && sig.Extra.IsEmpty() {
		sig.Extra = nil
	}
	return sig, nil
}

// ExactEntry is one stored signature and its rule.
type ExactEntry struct {
	Signature Signature
	Rule      *Rule
}

// ExactTable maps normalized signatures to rules.
type ExactTable struct {
	classifier types.ItemClassifier
	entries    map[string]ExactEntry
	modCount   int
}

// NewExactTable returns an empty table normalizing with classifier c.
// A nil classifier selects types.DefaultClassifier.
func NewExactTable(c types.ItemClassifier) *ExactTable {
	if c == nil {
		c = types.DefaultClassifier{}
	}
	return &ExactTable{
		classifier: c,
		entries:    make(map[string]ExactEntry),
	}
}

// SetRule stores rule for the normalized signature of item. A nil rule
// removes the entry. Reports whether the stored value changed; the change
// counter moves only in that case.
func (t *ExactTable) SetRule(item *types.Item, rule *Rule) (bool, error) {
	sig, err := Normalize(t.classifier, item)
	if err != nil {
		return false, err
	}
	key := sig.Key()
	prev, exists := t.entries[key]

	if rule == nil {
		if !exists {
			return false, nil
		}
		delete(t.entries, key)
		t.modCount++
		return true, nil
	}
	if exists && prev.Rule.Equal(rule) {
		return false, nil
	}
	t.entries[key] = ExactEntry{Signature: sig, Rule: rule}
	t.modCount++
	return true, nil
}

// GetRule returns the rule stored for item's normalized signature with
// skip-if-customized forced off, or nil.
func (t *ExactTable) GetRule(item *types.Item) (*Rule, error) {
	sig, err := Normalize(t.classifier, item)
	if err != nil {
		return nil, err
	}
	entry, ok := t.entries[sig.Key()]
	if !ok {
		return nil, nil
	}
	return entry.Rule.WithSkip(false), nil
}

// Stored returns the rule exactly as stored for item's normalized signature,
// or nil. Unlike GetRule it leaves skip-if-customized untouched, so the
// result can be written back with SetRule.
func (t *ExactTable) Stored(item *types.Item) (*Rule, error) {
	sig, err := Normalize(t.classifier, item)
	if err != nil {
		return nil, err
	}
	return t.entries[sig.Key()].Rule, nil
}

// Entries returns every entry sorted by canonical signature key.
func (t *ExactTable) Entries() []ExactEntry {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ExactEntry, 0, len(keys))
	for _, k := range keys {
		e := t.entries[k]
		out = append(out, ExactEntry{Signature: Signature{TypeID: e.Signature.TypeID, Damage: e.Signature.Damage, Extra: e.Signature.Extra.Clone()}, Rule: e.Rule})
	}
	return out
}

// Len returns the number of stored signatures.
func (t *ExactTable) Len() int {
	return len(t.entries)
}

// ModCount returns the number of value changes made so far.
func (t *ExactTable) ModCount() int {
	return t.modCount
}

// Classifier returns the classifier used for normalization.
func (t *ExactTable) Classifier() types.ItemClassifier {
	return t.classifier
}
