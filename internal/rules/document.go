// internal/rules/document.go
package rules

import (
	"fmt"

	"github.com/solatis/renamer/internal/types"
)

// Document is the serialized form of a Rule shared by the pack file and the
// database store. Enchantments are written as "id:level".
type Document struct {
	Name             *string  `json:"name,omitempty" yaml:"name,omitempty"`
	Lore             []string `json:"lore,omitempty" yaml:"lore,omitempty"`
	Enchant          []string `json:"enchant,omitempty" yaml:"enchant,omitempty"`
	Dechant          []string `json:"dechant,omitempty" yaml:"dechant,omitempty"`
	SkipIfCustomized bool     `json:"skip_if_customized,omitempty" yaml:"skip_if_customized,omitempty"`
}

// Document converts the rule to its serialized form.
func (r *Rule) Document() Document {
	d := Document{
		Lore:             r.Lore(),
		SkipIfCustomized: r.skip,
	}
	if name, ok := r.Name(); ok {
		d.Name = &name
	}
	for _, e := range r.add {
		d.Enchant = append(d.Enchant, e.String())
	}
	for _, e := range r.remove {
		d.Dechant = append(d.Dechant, e.String())
	}
	return d
}

// Rule builds the rule described by the document.
func (d Document) Rule() (*Rule, error) {
	b := NewBuilder().Lore(d.Lore...).SkipIfCustomized(d.SkipIfCustomized)
	if d.Name != nil {
		b.Name(*d.Name)
	}
	for _, s := range d.Enchant {
		e, err := types.ParseEnchantment(s)
		if err != nil {
			return nil, fmt.Errorf("enchant: %w", err)
		}
		b.Enchant(e)
	}
	for _, s := range d.Dechant {
		e, err := types.ParseEnchantment(s)
		if err != nil {
			return nil, fmt.Errorf("dechant: %w", err)
		}
		b.Dechant(e)
	}
	return b.Build(), nil
}
