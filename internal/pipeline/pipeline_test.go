package pipeline

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

const (
	diamondSword = 276
	wool         = 35
)

func newTestPipeline(t *testing.T, reporter ErrorReporter) (*Pipeline, *rules.Pack) {
	t.Helper()
	reg := rules.NewRegistry(nil)
	pack, err := reg.Create("default")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	opts := DefaultOptions()
	opts.Reporter = reporter
	p, err := New(rules.NewResolver(reg), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, pack
}

func TestProcess_RenamesAndStashes(t *testing.T) {
	p, pack := newTestPipeline(t, nil)
	pack.RangesFor(diamondSword).SetAll(rules.NewBuilder().Name("&cRuby Sword").Build())

	sword := &types.Item{TypeID: diamondSword, Damage: 12, Amount: 1}
	snap := NewSnapshot([]*types.Item{sword, nil}, 9)

	res, err := p.Process("default", snap)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := nameOf(sword); got != "§cRuby Sword" {
		t.Errorf("name = %q, want §cRuby Sword", got)
	}
	if !IsStashed(sword) {
		t.Error("processed item carries no stash")
	}
	if res.States[0] != StateWritten {
		t.Errorf("States[0] = %v, want written", res.States[0])
	}
	if res.States[1] != StateSkipped {
		t.Errorf("States[1] = %v, want skipped", res.States[1])
	}
	if res.Tiers[0] != rules.TierFallback {
		t.Errorf("Tiers[0] = %v, want fallback", res.Tiers[0])
	}

	ok, err := p.Unprocess(sword)
	if err != nil || !ok {
		t.Fatalf("Unprocess() = %v, %v, want true, nil", ok, err)
	}
	want := &types.Item{TypeID: diamondSword, Damage: 12, Amount: 1}
	if !types.SameState(sword, want) {
		t.Errorf("after Unprocess = %v %v, want pristine sword", sword, sword.Extra)
	}

	ok, err = p.Unprocess(sword)
	if err != nil || ok {
		t.Errorf("second Unprocess() = %v, %v, want false, nil", ok, err)
	}
}

func TestProcess_UnknownPackTouchesNothing(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	it := namedItem(wool, "")
	_, err := p.Process("Default", NewSnapshot([]*types.Item{it}, 0))
	if !errors.Is(err, types.ErrUnknownPack) {
		t.Fatalf("Process() error = %v, want ErrUnknownPack", err)
	}
	if it.Extra != nil {
		t.Errorf("item modified: %v", it.Extra)
	}
}

func TestProcess_UnmatchedItemUntouched(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	it := &types.Item{TypeID: wool, Damage: 3, Amount: 4}
	res, err := p.Process("default", NewSnapshot([]*types.Item{it}, 0))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.States[0] != StateSkipped {
		t.Errorf("States[0] = %v, want skipped", res.States[0])
	}
	if it.Extra != nil {
		t.Errorf("Extra = %v, want nil", it.Extra)
	}
}

func TestProcess_ExactOverridesCustomName(t *testing.T) {
	p, pack := newTestPipeline(t, nil)
	key := &types.Item{TypeID: wool, Damage: 14}
	if _, err := pack.Exact().SetRule(key, rules.NewBuilder().Name("Red Wool").Build()); err != nil {
		t.Fatalf("SetRule() error = %v", err)
	}
	pack.RangesFor(wool).SetAll(rules.NewBuilder().Name("Any Wool").Build())

	exact := &types.Item{TypeID: wool, Damage: 14, Amount: 1}
	named := namedItem(wool, "Player Named")
	if _, err := p.Process("default", NewSnapshot([]*types.Item{exact, named}, 0)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := nameOf(exact); got != "Red Wool" {
		t.Errorf("exact name = %q, want Red Wool", got)
	}
	if got := nameOf(named); got != "Player Named" {
		t.Errorf("customized name = %q, want Player Named", got)
	}
}

func TestProcess_DestroyedItemRollsBack(t *testing.T) {
	var reports []report
	p, pack := newTestPipeline(t, recordingReporter(&reports))
	pack.RangesFor(wool).SetAll(rules.NewBuilder().Name("Wool").Build())

	if _, err := p.Chain().Add("thief", PriorityHigh, ObserverFunc(func(s *Snapshot) error {
		return s.Set(1, nil)
	})); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	items := []*types.Item{
		{TypeID: wool, Amount: 1},
		{TypeID: wool, Damage: 2, Amount: 1},
	}
	snap := NewSnapshot(items, 0)
	_, err := p.Process("default", snap)
	if !errors.Is(err, types.ErrItemDestroyed) {
		t.Fatalf("Process() error = %v, want ErrItemDestroyed", err)
	}
	for i, it := range snap.Slots() {
		if it == nil || it.TypeID != wool || it.Extra != nil {
			t.Errorf("slot %d = %v, want untouched wool", i, it)
		}
	}
	if len(reports) != 0 {
		t.Errorf("reports = %+v, want none", reports)
	}
}

func TestProcess_CustomDataMerged(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	if _, err := p.Chain().Add("tagger", PriorityNormal, ObserverFunc(func(s *Snapshot) error {
		cd, err := s.CustomData(0)
		if err != nil {
			return err
		}
		cd.Put("Tagged", "yes")
		return nil
	})); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	it := &types.Item{TypeID: wool, Amount: 1}
	res, err := p.Process("default", NewSnapshot([]*types.Item{it}, 0))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if v, _ := it.Extra.GetString("Tagged"); v != "yes" {
		t.Errorf("Tagged = %q, want yes", v)
	}
	if res.States[0] != StateWritten {
		t.Errorf("States[0] = %v, want written", res.States[0])
	}

	if _, err := p.Unprocess(it); err != nil {
		t.Fatalf("Unprocess() error = %v", err)
	}
	if it.Extra != nil {
		t.Errorf("Extra after Unprocess = %v, want nil", it.Extra)
	}
}

func TestProcess_RawExtraValues(t *testing.T) {
	p, pack := newTestPipeline(t, nil)
	pack.RangesFor(wool).SetOther(rules.NewBuilder().Name("Cloth").Build())

	// Extra data built as literals, never passed through Put.
	renamed := &types.Item{TypeID: wool, Damage: 1, Extra: nbt.Compound{
		"tags": []any{"a", map[string]any{"k": []string{"v"}}},
	}}
	untouched := &types.Item{TypeID: diamondSword, Extra: nbt.Compound{"tags": []any{"b"}}}
	snap := NewSnapshot([]*types.Item{renamed, untouched}, 0)

	if _, err := p.Chain().Add("tagger", PriorityHigh, ObserverFunc(func(s *Snapshot) error {
		custom, err := s.CustomData(0)
		if err != nil {
			return err
		}
		custom["seen"] = []any{1, 2}
		return nil
	})); err != nil {
		t.Fatal(err)
	}

	res, err := p.Process("default", snap)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.States[0] != StateWritten {
		t.Errorf("States[0] = %v, want written", res.States[0])
	}
	if res.States[1] != StateSkipped {
		t.Errorf("States[1] = %v, want skipped", res.States[1])
	}

	if ok, err := p.Unprocess(renamed); err != nil || !ok {
		t.Fatalf("Unprocess() = %v, %v, want true, nil", ok, err)
	}
	want := nbt.Compound{"tags": nbt.List{"a", nbt.Compound{"k": nbt.List{"v"}}}}
	if !nbt.Equal(renamed.Extra, want) {
		t.Errorf("restored extra = %v, want %v", renamed.Extra, want)
	}
}

func TestProcess_ReprocessKeepsFirstOriginal(t *testing.T) {
	p, pack := newTestPipeline(t, nil)
	table := pack.RangesFor(wool)
	table.SetAll(rules.NewBuilder().Name("First").Build())

	it := &types.Item{TypeID: wool, Amount: 1}
	if _, err := p.Process("default", NewSnapshot([]*types.Item{it}, 0)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// The fallback rule now skips the named item; target it exactly.
	if _, err := pack.Exact().SetRule(it.Clone(), rules.NewBuilder().Name("Second").Build()); err != nil {
		t.Fatalf("SetRule() error = %v", err)
	}
	if _, err := p.Process("default", NewSnapshot([]*types.Item{it}, 0)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := nameOf(it); got != "Second" {
		t.Fatalf("name = %q, want Second", got)
	}

	if _, err := p.Unprocess(it); err != nil {
		t.Fatalf("Unprocess() error = %v", err)
	}
	if it.Extra != nil {
		t.Errorf("Extra after Unprocess = %v, want nil", it.Extra)
	}
}

func TestUnprocess_CorruptStash(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	it := &types.Item{TypeID: wool, Amount: 1}
	it.SetDisplayName("x")
	it.Extra[StashKey] = "garbage"

	_, err := p.Unprocess(it)
	if !errors.Is(err, types.ErrCorruptStash) {
		t.Errorf("Unprocess() error = %v, want ErrCorruptStash", err)
	}
	if got := nameOf(it); got != "x" {
		t.Errorf("name = %q, want x (untouched)", got)
	}
}

func TestUnprocessAll(t *testing.T) {
	p, pack := newTestPipeline(t, nil)
	pack.RangesFor(wool).SetAll(rules.NewBuilder().Name("Wool").Build())

	items := []*types.Item{
		{TypeID: wool, Amount: 1},
		nil,
		{TypeID: wool, Damage: 1, Amount: 1},
	}
	if _, err := p.Process("default", NewSnapshot(items, 0)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	n, err := p.UnprocessAll(items)
	if err != nil {
		t.Fatalf("UnprocessAll() error = %v", err)
	}
	if n != 2 {
		t.Errorf("UnprocessAll() = %d, want 2", n)
	}
}

// Property: Unprocess(Process(x)) restores type, sub-variant and extra data.
func TestProcess_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("process then unprocess restores the item", prop.ForAll(
		func(typeID, damage int, name string, lore []string) bool {
			reg := rules.NewRegistry(nil)
			pack := reg.GetOrCreate("default")
			pack.RangesFor(typeID).SetAll(rules.NewBuilder().
				Name("&6Renamed").
				Lore("&7Generated").
				Enchant(ench("unbreaking", 1)).
				Build())
			if _, err := pack.Exact().SetRule(&types.Item{TypeID: typeID, Damage: damage},
				rules.NewBuilder().Name("Exact").Build()); err != nil {
				return false
			}
			p, err := New(rules.NewResolver(reg), DefaultOptions())
			if err != nil {
				return false
			}

			it := &types.Item{TypeID: typeID, Damage: damage, Amount: 1}
			if name != "" {
				it.SetDisplayName(name)
			}
			it.SetLore(lore)
			orig := it.Clone()

			if _, err := p.Process("default", NewSnapshot([]*types.Item{it}, 0)); err != nil {
				return false
			}
			if _, err := p.Unprocess(it); err != nil {
				return false
			}
			return types.SameState(it, orig)
		},
		gen.IntRange(1, 400),
		gen.IntRange(0, 64),
		gen.AlphaString(),
		gen.SliceOfN(2, gen.AlphaString()),
	))

	properties.TestingRun(t)
}
