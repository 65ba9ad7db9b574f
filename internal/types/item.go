package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/solatis/renamer/internal/nbt"
)

// Item is one inventory stack. A nil *Item is an empty slot.
type Item struct {
	TypeID int
	Damage int
	Amount int
	Extra  nbt.Compound // nil when the item carries no extra data
}

// IsEmpty reports whether the slot holds nothing.
func IsEmpty(it *Item) bool {
	return it == nil || it.TypeID == AirTypeID
}

// Clone returns a deep copy. Cloning nil yields nil.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	return &Item{
		TypeID: it.TypeID,
		Damage: it.Damage,
		Amount: it.Amount,
		Extra:  it.Extra.Clone(),
	}
}

// SameState reports whether two items agree on type, sub-variant and extra
// data. Amount is ignored.
func SameState(a, b *Item) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return IsEmpty(a) == IsEmpty(b)
	}
	return a.TypeID == b.TypeID && a.Damage == b.Damage && nbt.Equal(a.Extra, b.Extra)
}

func (it *Item) String() string {
	if IsEmpty(it) {
		return "empty"
	}
	return fmt.Sprintf("%d:%d x%d", it.TypeID, it.Damage, it.Amount)
}

// extra returns the extra compound, allocating it on first write.
func (it *Item) extra() nbt.Compound {
	if it.Extra == nil {
		it.Extra = nbt.New()
	}
	return it.Extra
}

// tidyDisplay drops an empty display compound and an empty extra compound
// so that "set then cleared" compares equal to "never set".
func (it *Item) tidyDisplay() {
	if display, ok := it.Extra.GetCompound(KeyDisplay); ok && display.IsEmpty() {
		it.Extra.Remove(KeyDisplay)
	}
	if it.Extra != nil && it.Extra.IsEmpty() {
		it.Extra = nil
	}
}

// DisplayName returns the custom display name, if any.
func (it *Item) DisplayName() (string, bool) {
	display, ok := it.Extra.GetCompound(KeyDisplay)
	if !ok {
		return "", false
	}
	return display.GetString(KeyName)
}

// SetDisplayName sets the custom display name.
func (it *Item) SetDisplayName(name string) {
	it.extra().Subcompound(KeyDisplay).Put(KeyName, name)
}

// ClearDisplayName removes the custom display name.
func (it *Item) ClearDisplayName() {
	if display, ok := it.Extra.GetCompound(KeyDisplay); ok {
		display.Remove(KeyName)
		it.tidyDisplay()
	}
}

// Lore returns the description lines, or nil when the item has none.
func (it *Item) Lore() []string {
	display, ok := it.Extra.GetCompound(KeyDisplay)
	if !ok {
		return nil
	}
	list, ok := display.GetList(KeyLore)
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}

// SetLore replaces the description lines. An empty slice removes the lore.
func (it *Item) SetLore(lines []string) {
	if len(lines) == 0 {
		if display, ok := it.Extra.GetCompound(KeyDisplay); ok {
			display.Remove(KeyLore)
			it.tidyDisplay()
		}
		return
	}
	list := make(nbt.List, len(lines))
	for i, l := range lines {
		list[i] = l
	}
	it.extra().Subcompound(KeyDisplay).Put(KeyLore, list)
}

// HasCustomDisplay reports whether the item already carries a custom name or lore.
func (it *Item) HasCustomDisplay() bool {
	if _, ok := it.DisplayName(); ok {
		return true
	}
	return len(it.Lore()) > 0
}

// Enchantments returns the enchantments stored on the item in stored order.
func (it *Item) Enchantments() []Enchantment {
	list, ok := it.Extra.GetList(KeyEnchantments)
	if !ok {
		return nil
	}
	out := make([]Enchantment, 0, len(list))
	for _, v := range list {
		c, ok := v.(nbt.Compound)
		if !ok {
			continue
		}
		id, _ := c.GetString(KeyEnchantID)
		lvl, _ := c.GetInt(KeyEnchantLevel)
		out = append(out, Enchantment{ID: id, Level: lvl})
	}
	return out
}

// SetEnchantments replaces the stored enchantments. An empty slice removes them.
func (it *Item) SetEnchantments(enchs []Enchantment) {
	if len(enchs) == 0 {
		if it.Extra.Remove(KeyEnchantments) && it.Extra.IsEmpty() {
			it.Extra = nil
		}
		return
	}
	list := make(nbt.List, len(enchs))
	for i, e := range enchs {
		list[i] = nbt.Compound{KeyEnchantID: e.ID, KeyEnchantLevel: e.Level}
	}
	it.extra().Put(KeyEnchantments, list)
}

// Enchantment is an enchantment type and level. Level 0 in a removal set
// matches any level.
type Enchantment struct {
	ID    string
	Level int
}

func (e Enchantment) String() string {
	return e.ID + ":" + strconv.Itoa(e.Level)
}

// Less orders enchantments by ID, then level.
func (e Enchantment) Less(o Enchantment) bool {
	if e.ID != o.ID {
		return e.ID < o.ID
	}
	return e.Level < o.Level
}

// ParseEnchantment parses "id" or "id:level".
func ParseEnchantment(s string) (Enchantment, error) {
	s = strings.TrimSpace(s)
	id, lvl, hasLevel := strings.Cut(s, ":")
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Enchantment{}, fmt.Errorf("empty enchantment id in %q", s)
	}
	e := Enchantment{ID: id}
	if hasLevel {
		n, err := strconv.Atoi(strings.TrimSpace(lvl))
		if err != nil || n < 0 {
			return Enchantment{}, fmt.Errorf("invalid enchantment level in %q", s)
		}
		e.Level = n
	}
	return e, nil
}

// SortEnchantments sorts in place and drops duplicates.
func SortEnchantments(enchs []Enchantment) []Enchantment {
	sort.Slice(enchs, func(i, j int) bool { return enchs[i].Less(enchs[j]) })
	out := enchs[:0]
	for _, e := range enchs {
		if len(out) > 0 && e == out[len(out)-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}
