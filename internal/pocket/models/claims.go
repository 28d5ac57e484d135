package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// ClaimKind distinguishes the two claim value shapes.
type ClaimKind uint8

const (
	ClaimText ClaimKind = iota + 1
	ClaimNumber
)

// ClaimValue is either a text or a numeric claim. The zero value is the empty text claim.
type ClaimValue struct {
	kind   ClaimKind
	text   string
	number float64
}

// Text returns a text claim value.
func Text(s string) ClaimValue {
	return ClaimValue{kind: ClaimText, text: s}
}

// Number returns a numeric claim value. NaN and infinities cannot be serialised.
func Number(f float64) ClaimValue {
	return ClaimValue{kind: ClaimNumber, number: f}
}

// Kind reports whether the value is text or a number.
func (v ClaimValue) Kind() ClaimKind {
	if v.kind == 0 {
		return ClaimText
	}
	return v.kind
}

// Text returns the text payload and whether the value is text.
func (v ClaimValue) Text() (string, bool) {
	return v.text, v.Kind() == ClaimText
}

// Number returns the numeric payload and whether the value is a number.
func (v ClaimValue) Number() (float64, bool) {
	return v.number, v.kind == ClaimNumber
}

// String renders the value for display.
func (v ClaimValue) String() string {
	if v.kind == ClaimNumber {
		return formatNumber(v.number)
	}
	return v.text
}

// Equal reports whether two claim values have the same kind and payload.
func (v ClaimValue) Equal(o ClaimValue) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	if v.kind == ClaimNumber {
		return v.number == o.number
	}
	return v.text == o.text
}

// MarshalJSON encodes the value as a JSON string or number.
func (v ClaimValue) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil)
}

func (v ClaimValue) appendJSON(dst []byte) ([]byte, error) {
	if v.kind == ClaimNumber {
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return nil, fmt.Errorf("claim number %v is not representable in JSON", v.number)
		}
		return append(dst, formatNumber(v.number)...), nil
	}
	return AppendJSONString(dst, v.text), nil
}

// UnmarshalJSON accepts a JSON string or number; any other JSON kind is rejected.
func (v *ClaimValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty claim value")
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid claim number: %w", err)
		}
		*v = Number(f)
		return nil
	default:
		return fmt.Errorf("claim value must be a string or a number, got %s", data)
	}
}

// formatNumber renders f the way JavaScript's Number#toString does:
// shortest round-trip digits, plain notation for 1e-6 <= |f| < 1e21,
// exponent notation without zero padding otherwise.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + string(sign) + exp
}

// Claim is one named claim.
type Claim struct {
	Key   string
	Value ClaimValue
}

// Claims is an insertion-ordered mapping from claim name to value.
// Order is preserved through JSON encoding and decoding because signatures
// are computed over the serialised form.
type Claims struct {
	keys   []string
	values map[string]ClaimValue
}

// NewClaims builds Claims from pairs in order. A repeated key replaces the earlier value in place.
func NewClaims(pairs ...Claim) Claims {
	var c Claims
	for _, p := range pairs {
		c.Set(p.Key, p.Value)
	}
	return c
}

// Set inserts key at the end, or replaces its value in place when already present.
func (c *Claims) Set(key string, value ClaimValue) {
	if c.values == nil {
		c.values = make(map[string]ClaimValue)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key.
func (c Claims) Get(key string) (ClaimValue, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present, regardless of its value.
func (c Claims) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Len returns the number of claims.
func (c Claims) Len() int {
	return len(c.keys)
}

// Keys returns a copy of the claim names in order.
func (c Claims) Keys() []string {
	return append([]string(nil), c.keys...)
}

// All iterates claims in order.
func (c Claims) All() iter.Seq2[string, ClaimValue] {
	return func(yield func(string, ClaimValue) bool) {
		for _, k := range c.keys {
			if !yield(k, c.values[k]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (c Claims) Clone() Claims {
	out := Claims{keys: c.Keys()}
	if c.values != nil {
		out.values = make(map[string]ClaimValue, len(c.values))
		for k, v := range c.values {
			out.values[k] = v
		}
	}
	return out
}

// Equal reports whether both claim sets hold the same entries in the same order.
func (c Claims) Equal(o Claims) bool {
	if len(c.keys) != len(o.keys) {
		return false
	}
	for i, k := range c.keys {
		if o.keys[i] != k || !c.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes claims as a compact JSON object in insertion order
// without HTML escaping.
func (c Claims) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 32*len(c.keys)+2)
	buf = append(buf, '{')
	for i, k := range c.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = AppendJSONString(buf, k)
		buf = append(buf, ':')
		var err error
		if buf, err = c.values[k].appendJSON(buf); err != nil {
			return nil, fmt.Errorf("claim %q: %w", k, err)
		}
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. JSON null leaves c unchanged.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("claims must be a JSON object")
	}

	out := Claims{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("claim name must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v ClaimValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}
