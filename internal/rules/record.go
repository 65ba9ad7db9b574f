package rules

import (
	"fmt"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/types"
)

// RecordKind names the table slot a Record occupies.
type RecordKind string

const (
	KindExact RecordKind = "exact"
	KindRange RecordKind = "range"
	KindAll   RecordKind = "all"
	KindOther RecordKind = "other"
)

// Record is one stored rule of a pack in flat form, as written to the pack
// file and the database. For KindExact, Low is the sub-variant and Extra the
// signature's extra data; KindAll and KindOther ignore Low and High.
type Record struct {
	Kind   RecordKind
	TypeID int
	Low    int
	High   int
	Extra  nbt.Compound
	Rule   *Rule
}

// Records flattens the pack: exact entries in signature order, then every
// type's ALL, OTHER and ranges in type order.
func (p *Pack) Records() []Record {
	var out []Record
	for _, e := range p.exact.Entries() {
		out = append(out, Record{
			Kind:   KindExact,
			TypeID: e.Signature.TypeID,
			Low:    e.Signature.Damage,
			High:   e.Signature.Damage,
			Extra:  e.Signature.Extra,
			Rule:   e.Rule,
		})
	}
	for _, id := range p.TypeIDs() {
		t := p.ranges[id]
		if t.All() != nil {
			out = append(out, Record{Kind: KindAll, TypeID: id, Rule: t.All()})
		}
		if t.Other() != nil {
			out = append(out, Record{Kind: KindOther, TypeID: id, Rule: t.Other()})
		}
		for _, e := range t.Entries() {
			out = append(out, Record{Kind: KindRange, TypeID: id, Low: e.Range.Low, High: e.Range.High, Rule: e.Rule})
		}
	}
	return out
}

// Apply stores rec into the pack.
func (p *Pack) Apply(rec Record) error {
	if rec.Rule == nil {
		return fmt.Errorf("%s record for type %d has no rule", rec.Kind, rec.TypeID)
	}
	switch rec.Kind {
	case KindExact:
		item := &types.Item{TypeID: rec.TypeID, Damage: rec.Low, Extra: rec.Extra}
		_, err := p.exact.SetRule(item, rec.Rule)
		return err
	case KindRange:
		return p.RangesFor(rec.TypeID).SetRule(rec.Low, rec.High, rec.Rule)
	case KindAll:
		p.RangesFor(rec.TypeID).SetAll(rec.Rule)
		return nil
	case KindOther:
		p.RangesFor(rec.TypeID).SetOther(rec.Rule)
		return nil
	default:
		return fmt.Errorf("unknown record kind %q", rec.Kind)
	}
}

// ParseRecordKind validates a kind name.
func ParseRecordKind(s string) (RecordKind, error) {
	switch k := RecordKind(s); k {
	case KindExact, KindRange, KindAll, KindOther:
		return k, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}
