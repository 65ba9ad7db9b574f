// Package nbt provides the opaque key-value tree attached to every item.
//
// A Compound holds string keys mapped to a closed set of value types:
// string, int, float64, bool, []byte, List and nested Compound. Values
// arriving from decoders (yaml, structpb, json) are normalized into that set
// by Normalize so that structural equality and canonical encoding are stable
// regardless of where a tree came from.
package nbt

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Compound is a mutable string-keyed tree node.
type Compound map[string]any

// List is an ordered sequence of values.
type List []any

// New returns an empty compound.
func New() Compound {
	return Compound{}
}

// Get returns the value stored under key.
func (c Compound) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// Put stores a normalized value under key. Putting nil removes the key.
func (c Compound) Put(key string, value any) {
	if value == nil {
		delete(c, key)
		return
	}
	c[key] = Normalize(value)
}

// Remove deletes key and reports whether it was present.
func (c Compound) Remove(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c[key]
	delete(c, key)
	return ok
}

// Has reports whether key is present.
func (c Compound) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// GetCompound returns the nested compound stored under key.
func (c Compound) GetCompound(key string) (Compound, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(Compound)
	return sub, ok
}

// GetString returns the string stored under key.
func (c Compound) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns the integer stored under key.
func (c Compound) GetInt(key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// GetList returns the list stored under key.
func (c Compound) GetList(key string) (List, bool) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	l, ok := v.(List)
	return l, ok
}

// Subcompound returns the compound under key, creating it when absent or
// when the existing value is not a compound.
func (c Compound) Subcompound(key string) Compound {
	if sub, ok := c.GetCompound(key); ok {
		return sub
	}
	sub := Compound{}
	c[key] = sub
	return sub
}

// Merge copies every top-level entry of src into c, replacing existing keys.
func (c Compound) Merge(src Compound) {
	for k, v := range src {
		c[k] = cloneValue(v)
	}
}

// Clone returns a deep copy. Cloning a nil compound yields nil.
func (c Compound) Clone() Compound {
	if c == nil {
		return nil
	}
	out := make(Compound, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// IsEmpty reports whether the compound holds no entries.
func (c Compound) IsEmpty() bool {
	return len(c) == 0
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Compound:
		return t.Clone()
	case List:
		out := make(List, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	case string, int, float64, bool, nil:
		return t
	default:
		// Written directly into the map instead of through Put.
		return Normalize(t)
	}
}

// closed maps a value outside the compound value set into it.
func closed(v any) any {
	switch v.(type) {
	case Compound, List, []byte, string, int, float64, bool, nil:
		return v
	default:
		return Normalize(v)
	}
}

// Equal reports structural equality. A nil compound equals an empty one.
func Equal(a, b Compound) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !equalValue(av, bv) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	a, b = closed(a), closed(b)
	switch at := a.(type) {
	case Compound:
		bt, ok := b.(Compound)
		return ok && Equal(at, bt)
	case List:
		bt, ok := b.(List)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !equalValue(at[i], bt[i]) {
				return false
			}
		}
		return true
	case []byte:
		bt, ok := b.([]byte)
		return ok && string(at) == string(bt)
	default:
		return a == b
	}
}

// Normalize converts decoder output into the compound value set.
// Integral numbers become int; maps become Compound; slices become List.
// Unknown types are stringified.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Compound:
		out := make(Compound, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = Normalize(e)
			}
		}
		return out
	case map[string]any:
		out := make(Compound, len(t))
		for k, e := range t {
			if e != nil {
				out[k] = Normalize(e)
			}
		}
		return out
	case List:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	case []string:
		out := make(List, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []byte:
		return cloneValue(t)
	case string, bool, int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	default:
		return fmt.Sprint(t)
	}
}

func normalizeSlice(in []any) List {
	out := make(List, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, Normalize(e))
		}
	}
	return out
}

// normalizeFloat folds integral floats (json, structpb) back into int.
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// FromMap builds a compound from a generic decoded map.
func FromMap(m map[string]any) Compound {
	if m == nil {
		return nil
	}
	return Normalize(m).(Compound)
}

// ToMap converts the compound back into plain Go maps and slices, suitable
// for yaml and structpb encoders.
func (c Compound) ToMap() map[string]any {
	if c == nil {
		return nil
	}
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[k] = toPlain(v)
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case Compound:
		return t.ToMap()
	case List:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	case []byte:
		return string(t)
	case string, int, float64, bool, nil:
		return t
	default:
		return toPlain(Normalize(t))
	}
}

// Canonical returns a deterministic, type-tagged encoding of the tree.
// Keys are sorted; equal trees always encode identically and trees that
// differ in value type never collide.
func (c Compound) Canonical() string {
	var b strings.Builder
	writeCompound(&b, c)
	return b.String()
}

func writeCompound(b *strings.Builder, c Compound) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		writeValue(b, c[k])
	}
	b.WriteByte('}')
}

func writeValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case Compound:
		writeCompound(b, t)
	case List:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case string:
		b.WriteString("s")
		b.WriteString(strconv.Quote(t))
	case int:
		b.WriteString("i")
		b.WriteString(strconv.Itoa(t))
	case float64:
		b.WriteString("f")
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case bool:
		if t {
			b.WriteString("bT")
		} else {
			b.WriteString("bF")
		}
	case []byte:
		b.WriteString("x")
		b.WriteString(strconv.Quote(string(t)))
	case nil:
		b.WriteString("?")
	default:
		writeValue(b, Normalize(t))
	}
}
