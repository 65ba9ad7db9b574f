package pipeline

import (
	"fmt"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/types"
)

// StashKey is the extra-data key holding an item's pre-rename state.
const StashKey = "Renamer.Original"

const (
	stashType   = "type"
	stashDamage = "damage"
	stashExtra  = "extra"
)

// stash records pre as the original state of item.
func stash(item, pre *types.Item) {
	rec := nbt.Compound{
		stashType:   pre.TypeID,
		stashDamage: pre.Damage,
	}
	if pre.Extra != nil {
		rec[stashExtra] = pre.Extra.Clone()
	}
	if item.Extra == nil {
		item.Extra = nbt.New()
	}
	item.Extra[StashKey] = rec
}

// IsStashed reports whether item carries a stashed original.
func IsStashed(item *types.Item) bool {
	return !types.IsEmpty(item) && item.Extra.Has(StashKey)
}

// Restore replaces item's type, sub-variant and extra data with its stashed
// original. Amount is kept. Reports whether a stash was found.
func Restore(item *types.Item) (bool, error) {
	if types.IsEmpty(item) {
		return false, nil
	}
	raw, ok := item.Extra.Get(StashKey)
	if !ok {
		return false, nil
	}

	rec, ok := raw.(nbt.Compound)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T", types.ErrCorruptStash, StashKey, raw)
	}
	typeID, ok := rec.GetInt(stashType)
	if !ok || typeID <= types.AirTypeID {
		return false, fmt.Errorf("%w: missing or invalid %s", types.ErrCorruptStash, stashType)
	}
	damage, ok := rec.GetInt(stashDamage)
	if !ok {
		return false, fmt.Errorf("%w: missing %s", types.ErrCorruptStash, stashDamage)
	}
	var extra nbt.Compound
	if v, present := rec.Get(stashExtra); present {
		c, ok := v.(nbt.Compound)
		if !ok {
			return false, fmt.Errorf("%w: %s is %T", types.ErrCorruptStash, stashExtra, v)
		}
		extra = c.Clone()
	}

	item.TypeID = typeID
	item.Damage = damage
	item.Extra = extra
	return true, nil
}
