package oasgen_test

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
)

func TestObject_SetKeepsFirstPosition(t *testing.T) {
	o := oasgen.NewObject().Set("a", oasgen.Int(1)).Set("b", oasgen.Int(2)).Set("a", oasgen.String("x"))
	if keys := o.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	v, _ := o.Get("a")
	if s, _ := v.AsString(); s != "x" {
		t.Fatalf("expected overwrite, got %+v", v)
	}
}

func TestFloat_RendersLikeJavaScript(t *testing.T) {
	cases := map[float64]string{
		100:     "100",
		0.1:     "0.1",
		-2.5:    "-2.5",
		1e16:    "10000000000000000",
		1e21:    "1e+21",
		1.5e-10: "1.5e-10",
	}
	for f, want := range cases {
		n, _ := oasgen.Float(f).AsNumber()
		if n.Text != want {
			t.Fatalf("%v: expected %s, got %s", f, want, n.Text)
		}
	}
}

type base struct {
	ID int `json:"id"`
}

type sample struct {
	base
	Name     string            `json:"name"`
	Skip     string            `json:"-"`
	Empty    string            `json:"empty,omitempty"`
	Count    int64             `json:"count,string"`
	When     time.Time         `json:"when"`
	Tags     []string          `json:"tags"`
	Labels   map[string]string `json:"labels"`
	Parent   *sample           `json:"parent"`
	Raw      json.RawMessage   `json:"raw"`
	Num      json.Number       `json:"num"`
	Data     []byte            `json:"data"`
	Untagged bool
	hidden   int
}

func TestFromGo_Struct(t *testing.T) {
	in := sample{
		base:   base{ID: 7},
		Name:   "n",
		Skip:   "s",
		Count:  42,
		When:   time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		Tags:   []string{"a"},
		Labels: map[string]string{"z": "1", "a": "2"},
		Raw:    json.RawMessage(`{"z":1,"a":2}`),
		Num:    json.Number("12"),
		Data:   []byte("hi"),
		hidden: 1,
	}
	v, err := oasgen.FromGo(in)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"id", "name", "count", "when", "tags", "labels", "parent", "raw", "num", "data", "Untagged"}
	keys := v.Object().Keys()
	if len(keys) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, keys)
		}
	}

	get := func(k string) oasgen.Value {
		x, _ := v.Object().Get(k)
		return x
	}
	if s, _ := get("count").AsString(); s != "42" {
		t.Fatalf("string option should quote the number, got %+v", get("count"))
	}
	if s, _ := get("when").AsString(); s != "1999-12-31T23:59:59Z" {
		t.Fatalf("time should use its JSON form, got %+v", get("when"))
	}
	if get("parent").Kind() != oasgen.KindNull {
		t.Fatalf("nil pointer should be null")
	}
	if k := get("labels").Object().Keys(); k[0] != "a" || k[1] != "z" {
		t.Fatalf("map keys should be sorted, got %v", k)
	}
	if k := get("raw").Object().Keys(); k[0] != "z" || k[1] != "a" {
		t.Fatalf("raw JSON should keep its member order, got %v", k)
	}
	if s, _ := get("data").AsString(); s != "aGk=" {
		t.Fatalf("bytes should be base64, got %+v", get("data"))
	}

	s, err := oasgen.Infer(v, oasgen.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if f := prop(t, s, "when").Format(); f != oasgen.FormatDateTime {
		t.Fatalf("expected date-time for time.Time, got %q", f)
	}
	if f := prop(t, s, "num").Format(); f != oasgen.FormatInt32 {
		t.Fatalf("expected json.Number to infer as int32, got %q", f)
	}
}

func TestFromGo_Scalars(t *testing.T) {
	cases := []struct {
		in   any
		kind oasgen.ValueKind
	}{
		{nil, oasgen.KindNull},
		{true, oasgen.KindBool},
		{int8(-3), oasgen.KindNumber},
		{uint64(math.MaxUint64), oasgen.KindNumber},
		{float32(1.5), oasgen.KindNumber},
		{"s", oasgen.KindString},
		{[2]int{1, 2}, oasgen.KindArray},
		{map[int]bool{1: true}, oasgen.KindObject},
		{oasgen.Null(), oasgen.KindNull},
		{oasgen.NewObject(), oasgen.KindObject},
	}
	for _, tc := range cases {
		v, err := oasgen.FromGo(tc.in)
		if err != nil {
			t.Fatalf("%#v: %v", tc.in, err)
		}
		if v.Kind() != tc.kind {
			t.Fatalf("%#v: expected %s, got %s", tc.in, tc.kind, v.Kind())
		}
	}
}

func TestFromGo_Unsupported(t *testing.T) {
	cases := []struct {
		name string
		in   any
		path string
	}{
		{"undefined", oasgen.Undefined, "/"},
		{"nested undefined", map[string]any{"k": oasgen.Undefined}, "/k"},
		{"chan", []any{1, make(chan int)}, "/1"},
		{"func", struct{ F func() }{F: func() {}}, "/F"},
		{"nan", map[string]float64{"x": math.NaN()}, "/x"},
		{"inf", math.Inf(1), "/"},
		{"complex", complex(1, 2), "/"},
		{"json.Number NaN", map[string]any{"n": json.Number("NaN")}, "/n"},
		{"json.Number Inf", []any{json.Number("Inf")}, "/0"},
		{"json.Number underscore", json.Number("1_0"), "/"},
		{"json.Number hex", json.Number("0x10"), "/"},
	}
	for _, tc := range cases {
		_, err := oasgen.InferFromValue(tc.in, oasgen.DefaultConfig())
		var ue *oasgen.UnsupportedValueError
		if !errors.As(err, &ue) {
			t.Fatalf("%s: expected *UnsupportedValueError, got %v", tc.name, err)
		}
		if ue.Path != tc.path {
			t.Fatalf("%s: expected path %s, got %s", tc.name, tc.path, ue.Path)
		}
		iss := ue.Issues()
		if len(iss) != 1 || iss[0].Code != oasgen.CodeUnsupportedValue {
			t.Fatalf("%s: unexpected issues %v", tc.name, iss)
		}
	}
}

type celsius struct{ deg float64 }

func (c *celsius) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.deg, 'f', -1, 64) + `.5`), nil
}

type reading struct {
	Ptr *celsius `json:"ptr"`
	Val celsius  `json:"val"`
	Nil *celsius `json:"nil"`
}

func TestFromGo_PointerReceiverMarshaler(t *testing.T) {
	v, err := oasgen.FromGo(&reading{Ptr: &celsius{deg: 20}, Val: celsius{deg: 3}})
	if err != nil {
		t.Fatal(err)
	}
	get := func(k string) oasgen.Value {
		x, _ := v.Object().Get(k)
		return x
	}
	if n, ok := get("ptr").AsNumber(); !ok || n.Text != "20.5" {
		t.Fatalf("pointer field should use MarshalJSON, got %+v", get("ptr"))
	}
	if n, ok := get("val").AsNumber(); !ok || n.Text != "3.5" {
		t.Fatalf("addressable field should use MarshalJSON, got %+v", get("val"))
	}
	if get("nil").Kind() != oasgen.KindNull {
		t.Fatalf("nil pointer should be null, got %+v", get("nil"))
	}

	// Not addressable: encoding/json falls back to the struct itself.
	v, err = oasgen.FromGo(reading{Val: celsius{deg: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if get("val").Kind() != oasgen.KindObject {
		t.Fatalf("non-addressable value should not use the pointer method, got %+v", get("val"))
	}
}
