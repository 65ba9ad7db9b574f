package db

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	q, err := LoadQueries(openTestDB(t))
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}
	log, _ := test.NewNullLogger()
	return NewStore(q, log)
}

func samplePack(t *testing.T) *rules.Pack {
	t.Helper()
	p := rules.NewPack("survival", nil)

	swords := p.RangesFor(276)
	swords.SetAll(rules.NewBuilder().Lore("&7Forged").Build())
	if err := swords.SetRule(0, 100, rules.NewBuilder().Name("&cRuby Sword").Build()); err != nil {
		t.Fatalf("SetRule() error = %v", err)
	}
	p.RangesFor(35).SetOther(rules.NewBuilder().
		Name("Cloth").
		Enchant(types.Enchantment{ID: "unbreaking", Level: 1}).
		Dechant(types.Enchantment{ID: "thorns"}).
		Build())

	key := &types.Item{TypeID: 35, Damage: 14, Extra: nbt.Compound{"Tag": "red", "Depth": 3}}
	if _, err := p.Exact().SetRule(key, rules.NewBuilder().Name("Red Wool").Build()); err != nil {
		t.Fatalf("Exact().SetRule() error = %v", err)
	}
	return p
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	want := samplePack(t)

	if err := s.SavePack(ctx, want); err != nil {
		t.Fatalf("SavePack() error = %v", err)
	}
	// Saving again replaces rather than duplicates.
	if err := s.SavePack(ctx, want); err != nil {
		t.Fatalf("second SavePack() error = %v", err)
	}

	reg, err := s.LoadPacks(ctx, nil)
	if err != nil {
		t.Fatalf("LoadPacks() error = %v", err)
	}
	got, err := reg.Get("survival")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	wantRecs, gotRecs := want.Records(), got.Records()
	if len(gotRecs) != len(wantRecs) {
		t.Fatalf("Records() = %d, want %d", len(gotRecs), len(wantRecs))
	}
	for i := range wantRecs {
		w, g := wantRecs[i], gotRecs[i]
		if g.Kind != w.Kind || g.TypeID != w.TypeID || g.Low != w.Low || g.High != w.High {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
		if !g.Rule.Equal(w.Rule) {
			t.Errorf("record %d rule = %v, want %v", i, g.Rule, w.Rule)
		}
		if !nbt.Equal(g.Extra, w.Extra) {
			t.Errorf("record %d extra = %v, want %v", i, g.Extra, w.Extra)
		}
	}

	// The exact entry still matches items carrying the same extra data.
	probe := &types.Item{TypeID: 35, Damage: 14, Extra: nbt.Compound{"Depth": 3, "Tag": "red"}}
	rule, err := got.Exact().GetRule(probe)
	if err != nil || rule == nil {
		t.Fatalf("GetRule() = %v, %v, want Red Wool", rule, err)
	}
	if name, _ := rule.Name(); name != "Red Wool" {
		t.Errorf("name = %q, want Red Wool", name)
	}
}

func TestStore_EmptyPackSurvives(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SavePack(ctx, rules.NewPack("empty", nil)); err != nil {
		t.Fatalf("SavePack() error = %v", err)
	}
	reg, err := s.LoadPacks(ctx, nil)
	if err != nil {
		t.Fatalf("LoadPacks() error = %v", err)
	}
	if _, err := reg.Get("empty"); err != nil {
		t.Errorf("Get(empty) error = %v", err)
	}
}

func TestStore_DeletePack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.SavePack(ctx, samplePack(t)); err != nil {
		t.Fatalf("SavePack() error = %v", err)
	}

	ok, err := s.DeletePack(ctx, "survival")
	if err != nil || !ok {
		t.Fatalf("DeletePack() = %v, %v, want true, nil", ok, err)
	}
	ok, err = s.DeletePack(ctx, "survival")
	if err != nil || ok {
		t.Errorf("second DeletePack() = %v, %v, want false, nil", ok, err)
	}

	reg, err := s.LoadPacks(ctx, nil)
	if err != nil {
		t.Fatalf("LoadPacks() error = %v", err)
	}
	if names := reg.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want none", names)
	}
}

func TestStore_ExactSignatureKeepsValueTypes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := rules.NewPack("typed", nil)
	item := &types.Item{TypeID: 35, Damage: 2, Extra: nbt.Compound{
		"Blob":  []byte{0x00, 0xff, 'a'},
		"Seed":  1<<60 + 1,
		"Ratio": 0.5,
		"Flags": nbt.List{true, "x"},
	}}
	if _, err := p.Exact().SetRule(item, rules.NewBuilder().Name("Marked").Build()); err != nil {
		t.Fatalf("SetRule() error = %v", err)
	}
	if err := s.SavePack(ctx, p); err != nil {
		t.Fatalf("SavePack() error = %v", err)
	}

	reg, err := s.LoadPacks(ctx, nil)
	if err != nil {
		t.Fatalf("LoadPacks() error = %v", err)
	}
	got, err := reg.Get("typed")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	rule, err := got.Exact().GetRule(item)
	if err != nil {
		t.Fatal(err)
	}
	if rule == nil {
		t.Fatal("GetRule() after reload = nil, want the stored rule")
	}
	if name, _ := rule.Name(); name != "Marked" {
		t.Errorf("Name() = %q, want Marked", name)
	}
}
