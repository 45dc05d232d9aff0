package shop

import (
	"errors"
	"strings"
)

// ErrIdentityMissing is returned when no shop domain can be resolved for a
// request. Engine-bound operations refuse to run rather than calling out
// with a blank identity.
var ErrIdentityMissing = errors.New("shop domain missing")

// Domain identifies the merchant storefront. It is always threaded
// explicitly through session creation and engine calls, never read from
// ambient state.
type Domain string

func (d Domain) String() string { return string(d) }

// Parse validates and canonicalizes a raw shop domain value.
func Parse(raw string) (Domain, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || strings.ContainsAny(v, " \t/") {
		return "", ErrIdentityMissing
	}
	return Domain(v), nil
}
