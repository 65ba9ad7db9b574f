// Package packfile reads and writes rule packs as YAML.
//
// Layout:
//
//	packs:
//	  - name: default
//	    types:
//	      - type: 276
//	        all: {lore: ["&7Forged"]}
//	        other: {name: "Sword"}
//	        ranges:
//	          - {low: 0, high: 100, rule: {name: "&cRuby Sword"}}
//	    exact:
//	      - {type: 35, damage: 14, extra: {...}, rule: {name: "Red Wool"}}
//
// Range entries are written sorted by (low, high), exact entries by
// canonical signature, so saving the same registry twice yields the same file.
package packfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

// File is the top-level document.
type File struct {
	Packs []Pack `yaml:"packs"`
}

// Pack is one rule pack.
type Pack struct {
	Name  string      `yaml:"name"`
	Types []TypeRules `yaml:"types,omitempty"`
	Exact []Exact     `yaml:"exact,omitempty"`
}

// TypeRules is the range table of one item type.
type TypeRules struct {
	Type   int             `yaml:"type"`
	All    *rules.Document `yaml:"all,omitempty"`
	Other  *rules.Document `yaml:"other,omitempty"`
	Ranges []Range         `yaml:"ranges,omitempty"`
}

// Range is one stored sub-variant range.
type Range struct {
	Low  int            `yaml:"low"`
	High int            `yaml:"high"`
	Rule rules.Document `yaml:"rule"`
}

// Exact is one exact-match entry.
type Exact struct {
	Type   int            `yaml:"type"`
	Damage int            `yaml:"damage"`
	Extra  map[string]any `yaml:"extra,omitempty"`
	Rule   rules.Document `yaml:"rule"`
}

// FromRegistry converts every pack of reg, sorted by name.
func FromRegistry(reg *rules.Registry) (*File, error) {
	f := &File{}
	for _, name := range reg.Names() {
		p, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		f.Packs = append(f.Packs, fromPack(p))
	}
	return f, nil
}

func fromPack(p *rules.Pack) Pack {
	out := Pack{Name: p.Name()}
	byType := make(map[int]int)
	for _, rec := range p.Records() {
		if rec.Kind == rules.KindExact {
			out.Exact = append(out.Exact, Exact{
				Type:   rec.TypeID,
				Damage: rec.Low,
				Extra:  rec.Extra.ToMap(),
				Rule:   rec.Rule.Document(),
			})
			continue
		}
		i, ok := byType[rec.TypeID]
		if !ok {
			i = len(out.Types)
			byType[rec.TypeID] = i
			out.Types = append(out.Types, TypeRules{Type: rec.TypeID})
		}
		tr := &out.Types[i]
		doc := rec.Rule.Document()
		switch rec.Kind {
		case rules.KindAll:
			tr.All = &doc
		case rules.KindOther:
			tr.Other = &doc
		case rules.KindRange:
			tr.Ranges = append(tr.Ranges, Range{Low: rec.Low, High: rec.High, Rule: doc})
		}
	}
	return out
}

// Registry builds a registry from the file. Duplicate pack names are
// rejected; overlapping ranges within one type follow the range table's
// overwrite semantics in file order.
func (f *File) Registry(classifier types.ItemClassifier) (*rules.Registry, error) {
	reg := rules.NewRegistry(classifier)
	for _, fp := range f.Packs {
		p, err := reg.Create(fp.Name)
		if err != nil {
			return nil, err
		}
		if err := fp.apply(p); err != nil {
			return nil, fmt.Errorf("pack %q: %w", fp.Name, err)
		}
	}
	return reg, nil
}

func (fp Pack) apply(p *rules.Pack) error {
	for _, tr := range fp.Types {
		if tr.All != nil {
			if err := applyDoc(p, rules.Record{Kind: rules.KindAll, TypeID: tr.Type}, *tr.All); err != nil {
				return err
			}
		}
		if tr.Other != nil {
			if err := applyDoc(p, rules.Record{Kind: rules.KindOther, TypeID: tr.Type}, *tr.Other); err != nil {
				return err
			}
		}
		for _, r := range tr.Ranges {
			rec := rules.Record{Kind: rules.KindRange, TypeID: tr.Type, Low: r.Low, High: r.High}
			if err := applyDoc(p, rec, r.Rule); err != nil {
				return err
			}
		}
	}
	for _, e := range fp.Exact {
		rec := rules.Record{Kind: rules.KindExact, TypeID: e.Type, Low: e.Damage, High: e.Damage, Extra: nbt.FromMap(e.Extra)}
		if err := applyDoc(p, rec, e.Rule); err != nil {
			return err
		}
	}
	return nil
}

func applyDoc(p *rules.Pack, rec rules.Record, doc rules.Document) error {
	rule, err := doc.Rule()
	if err != nil {
		return fmt.Errorf("type %d %s: %w", rec.TypeID, rec.Kind, err)
	}
	rec.Rule = rule
	if err := p.Apply(rec); err != nil {
		return fmt.Errorf("type %d %s: %w", rec.TypeID, rec.Kind, err)
	}
	return nil
}

// Decode reads a pack file from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode pack file: %w", err)
	}
	return &f, nil
}

// Encode writes f to w.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode pack file: %w", err)
	}
	return enc.Close()
}

// Load reads the pack file at path into a new registry.
func Load(path string, classifier types.ItemClassifier) (*rules.Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack file: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reg, err := f.Registry(classifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Save writes every pack of reg to path, replacing the file atomically.
func Save(path string, reg *rules.Registry) error {
	f, err := FromRegistry(reg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".packs-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write pack file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write pack file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace pack file: %w", err)
	}
	return nil
}
