package api

import (
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

// Wire layout of an item: {"type": 276, "damage": 0, "amount": 1, "extra": {...}}.
// A null value is an empty slot.
const (
	fieldType   = "type"
	fieldDamage = "damage"
	fieldAmount = "amount"
	fieldExtra  = "extra"
)

// decodeItem converts a wire value to an item. Null decodes to nil.
func decodeItem(v *structpb.Value) (*types.Item, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.GetKind().(*structpb.Value_NullValue); ok {
		return nil, nil
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("item must be an object or null")
	}

	typeID, err := intField(s, fieldType, true)
	if err != nil {
		return nil, err
	}
	damage, err := intField(s, fieldDamage, false)
	if err != nil {
		return nil, err
	}
	amount, err := intField(s, fieldAmount, false)
	if err != nil {
		return nil, err
	}
	if typeID < 0 || damage < 0 || amount < 0 {
		return nil, fmt.Errorf("type, damage and amount must not be negative")
	}

	it := &types.Item{TypeID: typeID, Damage: damage, Amount: amount}
	if ev, ok := s.GetFields()[fieldExtra]; ok {
		switch k := ev.GetKind().(type) {
		case *structpb.Value_NullValue:
		case *structpb.Value_StructValue:
			it.Extra = nbt.FromMap(k.StructValue.AsMap())
		default:
			return nil, fmt.Errorf("%s must be an object", fieldExtra)
		}
	}
	return it, nil
}

// encodeItem converts an item to its wire value. Empty slots encode as null.
func encodeItem(it *types.Item) (*structpb.Value, error) {
	if types.IsEmpty(it) {
		return structpb.NewNullValue(), nil
	}
	m := map[string]any{
		fieldType:   it.TypeID,
		fieldDamage: it.Damage,
		fieldAmount: it.Amount,
	}
	if it.Extra != nil {
		m[fieldExtra] = it.Extra.ToMap()
	}
	return structpb.NewValue(m)
}

func decodeSlots(s *structpb.Struct, field string) ([]*types.Item, error) {
	v, ok := s.GetFields()[field]
	if !ok {
		return nil, fmt.Errorf("missing %s", field)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%s must be a list", field)
	}
	items := make([]*types.Item, len(list.GetValues()))
	for i, raw := range list.GetValues() {
		it, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		items[i] = it
	}
	return items, nil
}

func encodeSlots(items []*types.Item) (*structpb.Value, error) {
	values := make([]*structpb.Value, len(items))
	for i, it := range items {
		v, err := encodeItem(it)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		values[i] = v
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
}

// decodeRule converts a wire rule document. Null decodes to a nil rule.
func decodeRule(v *structpb.Value) (*rules.Rule, error) {
	if v == nil {
		return nil, fmt.Errorf("missing rule")
	}
	if _, ok := v.GetKind().(*structpb.Value_NullValue); ok {
		return nil, nil
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("rule must be an object or null")
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, err
	}
	var doc rules.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rule: %w", err)
	}
	return doc.Rule()
}

// encodeRule converts a rule to its wire document. Nil encodes as null.
func encodeRule(r *rules.Rule) (*structpb.Value, error) {
	if r == nil {
		return structpb.NewNullValue(), nil
	}
	raw, err := json.Marshal(r.Document())
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewValue(m)
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// intField reads an integral number field. Absent optional fields read as 0.
func intField(s *structpb.Struct, name string, required bool) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		if required {
			return 0, fmt.Errorf("missing %s", name)
		}
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<31 {
		return 0, fmt.Errorf("%s must be an integer, got %v", name, f)
	}
	return int(f), nil
}
