package pipeline

import (
	"testing"

	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

func ench(id string, lvl int) types.Enchantment {
	return types.Enchantment{ID: id, Level: lvl}
}

func TestApplyEnchantments(t *testing.T) {
	tests := []struct {
		name    string
		current []types.Enchantment
		add     []types.Enchantment
		remove  []types.Enchantment
		want    []types.Enchantment
	}{
		{
			name:    "add new",
			current: []types.Enchantment{ench("sharpness", 1)},
			add:     []types.Enchantment{ench("unbreaking", 3)},
			want:    []types.Enchantment{ench("sharpness", 1), ench("unbreaking", 3)},
		},
		{
			name:    "add replaces same id in place",
			current: []types.Enchantment{ench("sharpness", 1), ench("looting", 2)},
			add:     []types.Enchantment{ench("sharpness", 5)},
			want:    []types.Enchantment{ench("sharpness", 5), ench("looting", 2)},
		},
		{
			name:    "remove any level",
			current: []types.Enchantment{ench("sharpness", 4), ench("looting", 2)},
			remove:  []types.Enchantment{ench("sharpness", 0)},
			want:    []types.Enchantment{ench("looting", 2)},
		},
		{
			name:    "remove exact level mismatch keeps",
			current: []types.Enchantment{ench("sharpness", 4)},
			remove:  []types.Enchantment{ench("sharpness", 2)},
			want:    []types.Enchantment{ench("sharpness", 4)},
		},
		{
			name:    "remove then add",
			current: []types.Enchantment{ench("sharpness", 4)},
			remove:  []types.Enchantment{ench("sharpness", 0)},
			add:     []types.Enchantment{ench("sharpness", 1)},
			want:    []types.Enchantment{ench("sharpness", 1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyEnchantments(tt.current, tt.add, tt.remove)
			if len(got) != len(tt.want) {
				t.Fatalf("ApplyEnchantments() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ApplyEnchantments()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplyRule(t *testing.T) {
	t.Run("identity is a no-op", func(t *testing.T) {
		it := namedItem(1, "")
		if ApplyRule(it, rules.Identity) {
			t.Error("ApplyRule(Identity) = true, want false")
		}
		if it.Extra != nil {
			t.Errorf("Extra = %v, want nil", it.Extra)
		}
	})

	t.Run("empty lore leaves existing lore", func(t *testing.T) {
		it := namedItem(1, "")
		it.SetLore([]string{"keep me"})
		rule := rules.NewBuilder().Name("&bNamed").Build()

		if !ApplyRule(it, rule) {
			t.Fatal("ApplyRule() = false, want true")
		}
		if got := nameOf(it); got != "§bNamed" {
			t.Errorf("name = %q, want §bNamed", got)
		}
		if lore := it.Lore(); len(lore) != 1 || lore[0] != "keep me" {
			t.Errorf("lore = %v, want [keep me]", lore)
		}
	})

	t.Run("skip if customized", func(t *testing.T) {
		it := namedItem(1, "Mine")
		rule := rules.NewBuilder().Name("Theirs").SkipIfCustomized(true).Build()
		if ApplyRule(it, rule) {
			t.Error("ApplyRule() = true, want false")
		}
		if got := nameOf(it); got != "Mine" {
			t.Errorf("name = %q, want Mine", got)
		}
	})

	t.Run("lore and enchantments", func(t *testing.T) {
		it := namedItem(1, "")
		rule := rules.NewBuilder().
			Lore("&7line one", "line two").
			Enchant(ench("sharpness", 2)).
			Build()
		if !ApplyRule(it, rule) {
			t.Fatal("ApplyRule() = false, want true")
		}
		lore := it.Lore()
		if len(lore) != 2 || lore[0] != "§7line one" || lore[1] != "line two" {
			t.Errorf("lore = %v", lore)
		}
		enchs := it.Enchantments()
		if len(enchs) != 1 || enchs[0] != ench("sharpness", 2) {
			t.Errorf("enchantments = %v", enchs)
		}
	})
}
