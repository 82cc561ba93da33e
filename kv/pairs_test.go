package kv_test

import (
	"errors"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/zhucebuliaopx/requests/kv"
)

func TestPairsFromKeyedContainer(t *testing.T) {
	obj := cty.ObjectVal(map[string]cty.Value{
		"b": cty.NumberIntVal(2),
		"a": cty.StringVal("1"),
	})
	pairs, err := kv.Pairs(obj)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	// attributes iterate in lexical order
	if pairs[0].Key != "a" || kv.Text(pairs[0].Value) != "1" {
		t.Errorf("pairs[0] = %s=%s", pairs[0].Key, kv.Text(pairs[0].Value))
	}
	if pairs[1].Key != "b" || kv.Text(pairs[1].Value) != "2" {
		t.Errorf("pairs[1] = %s=%s", pairs[1].Key, kv.Text(pairs[1].Value))
	}
}

func TestPairsFromPairList(t *testing.T) {
	seq := cty.TupleVal([]cty.Value{
		cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("1")}),
		cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(2)}),
		cty.TupleVal([]cty.Value{cty.StringVal("flag"), cty.True}),
	})
	pairs, err := kv.Pairs(seq)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]string{{"a", "1"}, {"a", "2"}, {"flag", "true"}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i, w := range want {
		if pairs[i].Key != w[0] || kv.Text(pairs[i].Value) != w[1] {
			t.Errorf("pairs[%d] = %s=%s, want %s=%s", i, pairs[i].Key, kv.Text(pairs[i].Value), w[0], w[1])
		}
	}
}

// Pair lists are trusted, not validated: malformed elements keep whatever
// parts they have.
func TestPairsMalformedElements(t *testing.T) {
	seq := cty.TupleVal([]cty.Value{
		cty.StringVal("bare"),
		cty.TupleVal([]cty.Value{cty.StringVal("only-key")}),
		cty.TupleVal([]cty.Value{cty.StringVal("k"), cty.StringVal("v"), cty.StringVal("extra")}),
	})
	pairs, err := kv.Pairs(seq)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	if pairs[0].Key != "bare" || !pairs[0].Value.IsNull() {
		t.Errorf("bare element: %s=%v", pairs[0].Key, pairs[0].Value)
	}
	if pairs[1].Key != "only-key" || !pairs[1].Value.IsNull() {
		t.Errorf("short element: %s=%v", pairs[1].Key, pairs[1].Value)
	}
	if pairs[2].Key != "k" || kv.Text(pairs[2].Value) != "v" {
		t.Errorf("long element: %s=%s", pairs[2].Key, kv.Text(pairs[2].Value))
	}
}

func TestPairsRejectsPrimitives(t *testing.T) {
	for _, v := range []cty.Value{cty.StringVal("s"), cty.NumberIntVal(1), cty.True, cty.DynamicVal} {
		if _, err := kv.Pairs(v); !errors.Is(err, kv.ErrNotPairable) {
			t.Errorf("Pairs(%#v) err = %v, want ErrNotPairable", v, err)
		}
	}
}

func TestPairsNullIsEmpty(t *testing.T) {
	pairs, err := kv.Pairs(cty.NullVal(cty.Map(cty.String)))
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Fatalf("got %d pairs, want none", len(pairs))
	}
}

func TestText(t *testing.T) {
	cases := []struct {
		v    cty.Value
		want string
	}{
		{cty.StringVal("plain"), "plain"},
		{cty.NumberIntVal(42), "42"},
		{cty.NumberFloatVal(2.5), "2.5"},
		{cty.True, "true"},
		{cty.False, "false"},
		{cty.NullVal(cty.String), ""},
		{cty.ListVal([]cty.Value{cty.StringVal("a")}), `["a"]`},
	}
	for _, c := range cases {
		if got := kv.Text(c.v); got != c.want {
			t.Errorf("Text(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}
