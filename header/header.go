// Package header holds request header fields in a case-insensitive dict.
//
// Keys are stored exactly as written. Normalization happens on the read
// side: a lookup that misses the literal key is retried with the canonical
// form of the name, lowercase with underscores folded to hyphens. Iteration
// walks the raw stored keys, so entries written with unnormalized names show
// up unnormalized.
package header

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"
)

// ErrInvalidName reports a field name that cannot be normalized because it
// contains bytes outside the RFC 7230 token set.
var ErrInvalidName = errors.New("invalid header field name")

// NormalizeFunc converts a field name to its canonical form. Implementations
// return an error when the name cannot be carried on the wire at all.
type NormalizeFunc func(name string) (string, error)

// Normalize is the canonical NormalizeFunc: ASCII upper-case letters are
// lowered and underscores become hyphens. Any byte that is not an RFC 7230
// token character after folding is rejected.
func Normalize(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c == '_':
			c = '-'
		case !isToken(c):
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// isToken reports whether c is an RFC 7230 tchar: any visible ASCII byte
// that is not a separator.
func isToken(c byte) bool {
	return c > 0x20 && c < 0x7f && !strings.ContainsRune("\"(),/:;<=>?@[\\]{}", rune(c))
}

// Dict is a header container with raw writes and normalized reads. The zero
// value is not usable; construct with New or From.
type Dict struct {
	norm NormalizeFunc
	// raw holds entries keyed exactly as Set received them.
	raw map[string]string
	// canon maps the normalized form of each stored key back to the raw
	// key, so reads can find entries written with any casing. Keys that do
	// not normalize have no canon entry and can only be read back exactly.
	canon map[string]string
}

// New returns an empty Dict using norm for lookups, sized for hint entries.
// A nil norm falls back to Normalize.
func New(norm NormalizeFunc, hint int) *Dict {
	if norm == nil {
		norm = Normalize
	}
	if hint < 0 {
		hint = 0
	}
	return &Dict{
		norm:  norm,
		raw:   make(map[string]string, hint),
		canon: make(map[string]string, hint),
	}
}

// From builds a Dict from init, keeping the keys as given.
func From(init map[string]string) *Dict {
	d := New(nil, len(init))
	for k, v := range init {
		d.Set(k, v)
	}
	return d
}

// Set stores value under the exact key given. No error is reported for keys
// that cannot be normalized; such entries are only reachable by exact match.
func (d *Dict) Set(key, value string) {
	d.raw[key] = value
	if nk, err := d.norm(key); err == nil {
		d.canon[nk] = key
	}
}

// Get looks up key, first by exact match against stored keys, then by its
// normalized form. The bool result distinguishes a stored empty value from
// an absent entry.
func (d *Dict) Get(key string) (string, bool) {
	if v, ok := d.raw[key]; ok {
		return v, true
	}
	nk, err := d.norm(key)
	if err != nil {
		return "", false
	}
	rk, ok := d.canon[nk]
	if !ok {
		return "", false
	}
	v, ok := d.raw[rk]
	return v, ok
}

// Has reports whether key resolves to an entry.
func (d *Dict) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Len returns the number of stored entries. Two raw keys sharing a canonical
// form count separately.
func (d *Dict) Len() int {
	return len(d.raw)
}

// All iterates over the stored entries in map order. Keys come back exactly
// as written, not normalized.
func (d *Dict) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, v := range d.raw {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Clone returns an independent copy sharing the normalize function.
func (d *Dict) Clone() *Dict {
	return &Dict{
		norm:  d.norm,
		raw:   maps.Clone(d.raw),
		canon: maps.Clone(d.canon),
	}
}
