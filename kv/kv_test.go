package kv_test

import (
	"bytes"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/zhucebuliaopx/requests/kv"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want kv.Kind
	}{
		{"nil", nil, kv.Nil},
		{"nil pointer", (*int)(nil), kv.Nil},
		{"bool", true, kv.Bool},
		{"int", 3, kv.Number},
		{"float", 4.2, kv.Number},
		{"string", "s", kv.String},
		{"bytes", []byte("s"), kv.String},
		{"slice", []string{"a"}, kv.Sequence},
		{"array", [2]int{1, 2}, kv.Sequence},
		{"map", map[string]string{"a": "b"}, kv.Mapping},
		{"func", func() {}, kv.Callable},
		{"struct", struct{}{}, kv.Opaque},
		{"pointer to struct", &bytes.Buffer{}, kv.Opaque},
		{"named number", level(3), kv.Number},
		{"cty null", cty.NullVal(cty.String), kv.Nil},
		{"cty string", cty.StringVal("x"), kv.String},
		{"cty number", cty.NumberIntVal(7), kv.Number},
		{"cty bool", cty.True, kv.Bool},
		{"cty tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), kv.Sequence},
		{"cty list", cty.ListVal([]cty.Value{cty.StringVal("a")}), kv.Sequence},
		{"cty empty tuple", cty.EmptyTupleVal, kv.Sequence},
		{"cty object", cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b")}), kv.Mapping},
		{"cty map", cty.MapVal(map[string]cty.Value{"a": cty.StringVal("b")}), kv.Mapping},
		{"cty unknown", cty.DynamicVal, kv.Opaque},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := kv.KindOf(c.in); got != c.want {
				t.Errorf("KindOf = %s, want %s", got, c.want)
			}
		})
	}
}

type level int

func TestIsSequenceStrategies(t *testing.T) {
	full := kv.Default()
	var scan kv.Capabilities // zero value walks elements

	cases := []struct {
		name string
		v    cty.Value
		want bool
	}{
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), true},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), true},
		{"empty tuple", cty.EmptyTupleVal, true},
		{"object", cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b")}), false},
		{"map", cty.MapVal(map[string]cty.Value{"a": cty.StringVal("b")}), false},
		{"string", cty.StringVal("x"), false},
		{"number", cty.NumberIntVal(1), false},
		{"null list", cty.NullVal(cty.List(cty.String)), false},
		{"unknown", cty.DynamicVal, false},
	}
	for _, c := range cases {
		if got := full.IsSequence(c.v); got != c.want {
			t.Errorf("introspection: %s = %t, want %t", c.name, got, c.want)
		}
		if got := scan.IsSequence(c.v); got != c.want {
			t.Errorf("scan: %s = %t, want %t", c.name, got, c.want)
		}
	}

	// empty keyed containers are the one point of disagreement: the scan
	// has no keys to rule the container out with
	if !scan.IsSequence(cty.EmptyObjectVal) {
		t.Error("scan should pass an empty keyed container")
	}
	if full.IsSequence(cty.EmptyObjectVal) {
		t.Error("introspection should reject an empty keyed container")
	}
}

func TestCount(t *testing.T) {
	full := kv.Default()
	var scan kv.Capabilities

	cases := []struct {
		name string
		v    cty.Value
		want int
	}{
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1), cty.True}), 3},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a")}), 1},
		{"empty tuple", cty.EmptyTupleVal, 0},
		{"object", cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b"), "c": cty.StringVal("d")}), 2},
		{"map", cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), 1},
		{"string", cty.StringVal("x"), 0},
		{"null", cty.NullVal(cty.List(cty.String)), 0},
		{"unknown", cty.UnknownVal(cty.List(cty.String)), 0},
	}
	for _, c := range cases {
		if got := full.Count(c.v); got != c.want {
			t.Errorf("constant-time: %s = %d, want %d", c.name, got, c.want)
		}
		if got := scan.Count(c.v); got != c.want {
			t.Errorf("scan: %s = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestContains(t *testing.T) {
	list := cty.ListVal([]cty.Value{cty.StringVal("gzip"), cty.StringVal("br")})
	mixed := cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("br")})
	keyed := cty.MapVal(map[string]cty.Value{"a": cty.StringVal("gzip")})

	for _, c := range []kv.Capabilities{kv.Default(), {}} {
		if !c.Contains(list, "gzip") || !c.Contains(list, "br") {
			t.Error("expected membership hits")
		}
		if c.Contains(list, "deflate") {
			t.Error("unexpected membership hit")
		}
		if !c.Contains(mixed, "br") {
			t.Error("non-string elements should be skipped, not fatal")
		}
		if c.Contains(keyed, "gzip") {
			t.Error("keyed containers are not searched")
		}
		if c.Contains(cty.NullVal(cty.List(cty.String)), "gzip") {
			t.Error("null is not searchable")
		}
	}
}
