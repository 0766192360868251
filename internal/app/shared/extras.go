package shared

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Limits on the extension map carried by products and tags.
const (
	MaxExtraFields    = 32
	MaxExtraKeyLength = 64
	MaxExtrasBytes    = 16 << 10
)

var (
	ErrTooManyExtras    = errors.New("too many extension fields")
	ErrExtraKeyTooLong  = errors.New("extension field name too long")
	ErrEmptyExtraKey    = errors.New("extension field name cannot be empty")
	ErrExtrasTooLarge   = errors.New("extension fields too large")
	ErrReservedExtraKey = errors.New("extension field shadows a fixed field")
)

// Extras holds client-supplied fields outside the fixed schema. Values are
// whatever JSON decoding produced.
type Extras map[string]interface{}

// Validate enforces the extension limits. reserved lists the fixed field
// names an extension may not shadow.
func (e Extras) Validate(reserved ...string) error {
	if len(e) > MaxExtraFields {
		return fmt.Errorf("%w: %d > %d", ErrTooManyExtras, len(e), MaxExtraFields)
	}
	for k := range e {
		if k == "" {
			return ErrEmptyExtraKey
		}
		if len(k) > MaxExtraKeyLength {
			return fmt.Errorf("%w: %.16q...", ErrExtraKeyTooLong, k)
		}
		for _, r := range reserved {
			if k == r {
				return fmt.Errorf("%w: %q", ErrReservedExtraKey, k)
			}
		}
	}
	if len(e) == 0 {
		return nil
	}
	encoded, err := json.Marshal(map[string]interface{}(e))
	if err != nil {
		return fmt.Errorf("encode extension fields: %w", err)
	}
	if len(encoded) > MaxExtrasBytes {
		return fmt.Errorf("%w: %d bytes", ErrExtrasTooLarge, len(encoded))
	}
	return nil
}

// Clone returns a shallow copy. A nil map clones to an empty one.
func (e Extras) Clone() Extras {
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge returns a copy of e overlaid with patch.
func (e Extras) Merge(patch Extras) Extras {
	out := e.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps encode to the same JSON.
func (e Extras) Equal(other Extras) bool {
	if len(e) != len(other) {
		return false
	}
	if len(e) == 0 {
		return true
	}
	a, err1 := json.Marshal(map[string]interface{}(e))
	b, err2 := json.Marshal(map[string]interface{}(other))
	return err1 == nil && err2 == nil && string(a) == string(b)
}
