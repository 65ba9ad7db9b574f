package nbt

import (
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPutNormalizes(t *testing.T) {
	c := New()
	c.Put("n", int64(7))
	c.Put("f", 3.0)
	c.Put("l", []string{"a", "b"})
	c.Put("m", map[string]any{"x": 1.5})
	c.Put("gone", nil)

	want := Compound{"n": 7, "f": 3, "l": List{"a", "b"}, "m": Compound{"x": 1.5}}
	if !Equal(c, want) {
		t.Errorf("Put() result = %v, want %v", c, want)
	}
}

func TestEqual_RawLiteralValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Compound
		want bool
	}{
		{"raw slice vs list", Compound{"t": []any{"a"}}, Compound{"t": List{"a"}}, true},
		{"raw slice vs raw slice", Compound{"t": []any{"a"}}, Compound{"t": []any{"a"}}, true},
		{"raw slices differ", Compound{"t": []any{"a"}}, Compound{"t": []any{"b"}}, false},
		{"string slice", Compound{"t": []string{"a"}}, Compound{"t": List{"a"}}, true},
		{"raw map vs compound", Compound{"m": map[string]any{"k": 1}}, Compound{"m": Compound{"k": 1}}, true},
		{"raw map differs", Compound{"m": map[string]any{"k": 1}}, Compound{"m": Compound{"k": 2}}, false},
		{"nested raw in list", Compound{"l": List{[]any{1}}}, Compound{"l": List{List{1}}}, true},
		{"bytes", Compound{"x": []byte("ab")}, Compound{"x": []byte("ab")}, true},
		{"bytes vs string", Compound{"x": []byte("ab")}, Compound{"x": "ab"}, false},
		{"nil vs empty", nil, New(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone_Detached(t *testing.T) {
	raw := []any{"a"}
	c := Compound{"raw": raw, "sub": Compound{"k": "v"}, "x": []byte("b")}
	cp := c.Clone()

	raw[0] = "changed"
	c["sub"].(Compound)["k"] = "changed"
	c["x"].([]byte)[0] = 'z'

	want := Compound{"raw": List{"a"}, "sub": Compound{"k": "v"}, "x": []byte("b")}
	if !Equal(cp, want) {
		t.Errorf("Clone() = %v, want %v", cp, want)
	}
	if _, ok := cp["raw"].(List); !ok {
		t.Errorf("cloned raw slice has type %T, want List", cp["raw"])
	}
}

func TestCanonical_RawLiteralMatchesNormalized(t *testing.T) {
	raw := Compound{"t": []any{"a", map[string]any{"k": 1}}}
	norm := Compound{"t": List{"a", Compound{"k": 1}}}
	if raw.Canonical() != norm.Canonical() {
		t.Errorf("Canonical() = %s, want %s", raw.Canonical(), norm.Canonical())
	}
}

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		name string
		c    Compound
	}{
		{"empty", New()},
		{"scalars", Compound{"s": "hi, \"there\"}", "i": -42, "f": 0.25, "t": true, "n": false}},
		{"bytes", Compound{"x": []byte{0x00, 0xff, ','}}},
		{"large int", Compound{"seed": 1<<60 + 1}},
		{"integral float", Compound{"f": 2.0}},
		{"special floats", Compound{"nan": math.NaN(), "inf": math.Inf(-1)}},
		{"nested", Compound{"display": Compound{"Name": "x", "Lore": List{"a", "b"}}, "ench": List{Compound{"id": "sharpness", "lvl": 2}}}},
		{"empty list", Compound{"l": List{}}},
		{"odd keys", Compound{"a:b": 1, "{}": 2, "": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := tt.c.Canonical()
			got, err := ParseCanonical(enc)
			if err != nil {
				t.Fatalf("ParseCanonical(%s) error = %v", enc, err)
			}
			if got.Canonical() != enc {
				t.Errorf("round trip = %s, want %s", got.Canonical(), enc)
			}
		})
	}
}

func TestParseCanonical_KeepsTypes(t *testing.T) {
	c := Compound{"x": []byte("ab"), "seed": 1<<60 + 1, "f": 2.0}
	got, err := ParseCanonical(c.Canonical())
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := got["x"].([]byte); !ok || string(b) != "ab" {
		t.Errorf("x = %#v, want []byte(\"ab\")", got["x"])
	}
	if n, ok := got["seed"].(int); !ok || n != 1<<60+1 {
		t.Errorf("seed = %#v, want int %d", got["seed"], 1<<60+1)
	}
	if f, ok := got["f"].(float64); !ok || f != 2 {
		t.Errorf("f = %#v, want float64 2", got["f"])
	}
}

func TestParseCanonical_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"{",
		`{"a"}`,
		`{"a":}`,
		`{"a":q1}`,
		`{"a":i1.5}`,
		`{"a":bX}`,
		`{"a":s"unterminated}`,
		`{"a":i1}extra`,
		`{"a":[i1}`,
	}
	for _, in := range inputs {
		if _, err := ParseCanonical(in); err == nil {
			t.Errorf("ParseCanonical(%q) error = nil, want error", in)
		}
	}
}

func TestParseCanonical_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("parse inverts canonical", prop.ForAll(
		func(keys []string, ints []int, strs []string) bool {
			c := New()
			for i, k := range keys {
				switch i % 3 {
				case 0:
					if len(ints) > 0 {
						c[k] = ints[i%len(ints)]
					}
				case 1:
					if len(strs) > 0 {
						c[k] = []byte(strs[i%len(strs)])
					}
				default:
					c[k] = List{strings.Join(strs, ","), i}
				}
			}
			got, err := ParseCanonical(c.Canonical())
			return err == nil && got.Canonical() == c.Canonical()
		},
		gen.SliceOf(gen.AnyString()),
		gen.SliceOf(gen.Int()),
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}
