package normalize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidRouteCode is returned when a normalized route code is not 4-5 characters.
var ErrInvalidRouteCode = errors.New("invalid route code")

const (
	minRouteCodeLen = 4
	maxRouteCodeLen = 5
)

// NormalizeRouteCode canonicalizes a raw route code without validating it.
// Uppercase, trimmed, apostrophes dropped, internal whitespace removed.
func NormalizeRouteCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if r == '\'' || r == '’' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RouteCode normalizes raw and validates the canonical length.
func RouteCode(raw string) (string, error) {
	code := NormalizeRouteCode(raw)
	if n := len([]rune(code)); n < minRouteCodeLen || n > maxRouteCodeLen {
		return "", fmt.Errorf("%w: %q must be %d-%d characters", ErrInvalidRouteCode, raw, minRouteCodeLen, maxRouteCodeLen)
	}
	return code, nil
}
