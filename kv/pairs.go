package kv

import (
	"errors"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrNotPairable reports a value that can not be flattened because it is
// neither a positional pair list nor a keyed container.
var ErrNotPairable = errors.New("cannot encode objects that are not key/value containers")

// Pair is one entry produced by flattening a container. Value stays a
// cty.Value so the consumer decides how to render it.
type Pair struct {
	Key   string
	Value cty.Value
}

// Pairs flattens v into an ordered pair list. A keyed container contributes
// one pair per entry. A positional container is taken to already hold
// {key, value} shaped elements and is converted without validating them;
// malformed elements come through with whatever parts they have. Null input
// yields no pairs and no error. Everything else is ErrNotPairable.
func (c Capabilities) Pairs(v cty.Value) ([]Pair, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() || !v.CanIterateElements() {
		return nil, ErrNotPairable
	}
	pairs := make([]Pair, 0, c.Count(v))
	if c.IsSequence(v) {
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			pairs = append(pairs, elementPair(el))
		}
		return pairs, nil
	}
	for it := v.ElementIterator(); it.Next(); {
		k, val := it.Element()
		pairs = append(pairs, Pair{Key: Text(k), Value: val})
	}
	return pairs, nil
}

// Pairs flattens v into an ordered pair list using the default strategy.
func Pairs(v cty.Value) ([]Pair, error) { return std.Pairs(v) }

func elementPair(el cty.Value) Pair {
	p := Pair{Value: cty.NilVal}
	if el.IsNull() || !el.IsKnown() || !el.CanIterateElements() {
		// bare element, carried as a valueless key
		p.Key = Text(el)
		return p
	}
	it := el.ElementIterator()
	if it.Next() {
		_, k := it.Element()
		p.Key = Text(k)
	}
	if it.Next() {
		_, v := it.Element()
		p.Value = v
	}
	return p
}

// Text renders a primitive the way it should appear in a form or query
// component. Containers fall back to their JSON form, unknowns to "".
func Text(v cty.Value) string {
	if v.IsNull() {
		return ""
	}
	if v.IsKnown() {
		switch v.Type() {
		case cty.String:
			return v.AsString()
		case cty.Number:
			return v.AsBigFloat().Text('f', -1)
		case cty.Bool:
			if v.True() {
				return "true"
			}
			return "false"
		}
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return ""
	}
	return string(b)
}
