package pipeline

import (
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

// ApplyRule writes a resolved rule into item and reports whether it was
// applied. Identity and nil rules are no-ops. Items that already carry a
// custom name or lore are left alone when the rule says so.
func ApplyRule(item *types.Item, rule *rules.Rule) bool {
	if types.IsEmpty(item) || rule == nil || rule.IsIdentity() {
		return false
	}
	if rule.SkipIfCustomized() && item.HasCustomDisplay() {
		return false
	}

	if name, ok := rule.Name(); ok {
		item.SetDisplayName(TranslateColorCodes(name))
	}
	if lore := rule.Lore(); len(lore) > 0 {
		lines := make([]string, len(lore))
		for i, l := range lore {
			lines[i] = TranslateColorCodes(l)
		}
		item.SetLore(lines)
	}

	add, remove := rule.EnchantmentsAdd(), rule.EnchantmentsRemove()
	if len(add) > 0 || len(remove) > 0 {
		item.SetEnchantments(ApplyEnchantments(item.Enchantments(), add, remove))
	}
	return true
}

// ApplyEnchantments removes, then adds. A removal with level 0 matches any
// level of that enchantment. An addition replaces an existing enchantment
// with the same ID in place.
func ApplyEnchantments(current, add, remove []types.Enchantment) []types.Enchantment {
	out := make([]types.Enchantment, 0, len(current)+len(add))
	for _, e := range current {
		if !removedBy(e, remove) {
			out = append(out, e)
		}
	}
	for _, a := range add {
		replaced := false
		for i := range out {
			if out[i].ID == a.ID {
				out[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, a)
		}
	}
	return out
}

func removedBy(e types.Enchantment, remove []types.Enchantment) bool {
	for _, r := range remove {
		if r.ID == e.ID && (r.Level == 0 || r.Level == e.Level) {
			return true
		}
	}
	return false
}
