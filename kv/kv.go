// Package kv classifies loosely typed option values and flattens containers
// into ordered key/value pairs for form and query encoding.
//
// Container values ride on cty.Value so a list keeps being a list after it
// crosses a package boundary, instead of being re-guessed from its contents
// at every call site.
package kv

import (
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Kind partitions option values by shape rather than concrete type.
type Kind int

const (
	Nil Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
	Callable
	Opaque
)

var kindNames = [...]string{"nil", "bool", "number", "string", "sequence", "mapping", "callable", "opaque"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf classifies v. Plain Go values and cty values are both accepted;
// []byte counts as a string since it is a payload, not a sequence. Nil
// pointers and nil interfaces classify as Nil.
func KindOf(v any) Kind {
	switch x := v.(type) {
	case nil:
		return Nil
	case cty.Value:
		return kindOfCty(x)
	case bool:
		return Bool
	case string, []byte:
		return String
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Number
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Number
	case reflect.String:
		return String
	case reflect.Slice, reflect.Array:
		return Sequence
	case reflect.Map:
		return Mapping
	case reflect.Func:
		return Callable
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Nil
		}
		return KindOf(rv.Elem().Interface())
	}
	return Opaque
}

func kindOfCty(v cty.Value) Kind {
	if v.IsNull() {
		return Nil
	}
	if !v.IsKnown() {
		return Opaque
	}
	t := v.Type()
	switch {
	case t == cty.Bool:
		return Bool
	case t == cty.Number:
		return Number
	case t == cty.String:
		return String
	case t.IsTupleType() || t.IsListType():
		return Sequence
	case t.IsObjectType() || t.IsMapType():
		return Mapping
	}
	return Opaque
}

// Capabilities is the container inspection strategy, resolved once instead
// of probed on every call. The zero value is the conservative strategy that
// walks elements; Default returns the strategy backed by cty's own type
// introspection and length bookkeeping.
type Capabilities struct {
	// SequenceIntrospection answers "is this positional" from the type
	// alone. Without it the keys are scanned.
	SequenceIntrospection bool
	// ConstantTimeLen uses the container's recorded length instead of
	// counting elements.
	ConstantTimeLen bool
}

// Default returns the full strategy. cty always carries type information
// and lengths, so the two flags only change cost, never answers, except
// that the scanning fallback cannot tell an empty keyed container from an
// empty positional one.
func Default() Capabilities {
	return Capabilities{
		SequenceIntrospection: true,
		ConstantTimeLen:       true,
	}
}

var std = Default()

// IsSequence reports whether v is a positional container. Keyed containers,
// primitives, nulls and unknowns all report false.
func (c Capabilities) IsSequence(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() || !v.CanIterateElements() {
		return false
	}
	if c.SequenceIntrospection {
		t := v.Type()
		return t.IsTupleType() || t.IsListType()
	}
	// Scanning fallback: positional containers iterate with consecutive
	// numeric keys from zero. An empty container passes vacuously.
	i := int64(0)
	for it := v.ElementIterator(); it.Next(); {
		k, _ := it.Element()
		if k.Type() != cty.Number {
			return false
		}
		idx, acc := k.AsBigFloat().Int64()
		if acc != big.Exact || idx != i {
			return false
		}
		i++
	}
	return true
}

// Count returns the number of entries in a container, or zero for anything
// that has no elements to iterate.
func (c Capabilities) Count(v cty.Value) int {
	if v.IsNull() || !v.IsKnown() || !v.CanIterateElements() {
		return 0
	}
	if c.ConstantTimeLen {
		return v.LengthInt()
	}
	n := 0
	for it := v.ElementIterator(); it.Next(); {
		n++
	}
	return n
}

// Contains reports whether seq holds a string element equal to s. Only
// positional containers are searched.
func (c Capabilities) Contains(seq cty.Value, s string) bool {
	if !c.IsSequence(seq) || c.Count(seq) == 0 {
		return false
	}
	for it := seq.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsKnown() && !el.IsNull() && el.Type() == cty.String && el.AsString() == s {
			return true
		}
	}
	return false
}

// IsSequence reports whether v is a positional container.
func IsSequence(v cty.Value) bool { return std.IsSequence(v) }

// Count returns the number of entries in a container.
func Count(v cty.Value) int { return std.Count(v) }

// Contains reports whether seq holds a string element equal to s.
func Contains(seq cty.Value, s string) bool { return std.Contains(seq, s) }
