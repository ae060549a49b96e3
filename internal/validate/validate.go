package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUser = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Barcode normalizes a raw decoded barcode. Trimming is the only
// validation; matching downstream is an exact string comparison.
func Barcode(s string) string {
	return strings.TrimSpace(s)
}

// ID validates a product/purchase identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// UserID validates the lane/user key carts are keyed by.
func UserID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reUser.MatchString(s)
}

// Text validates a displayable string with a max length.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > max {
		return "", false
	}
	return s, true
}

// Qty parses a quantity, clamping to a sane window.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	if n > 100000 {
		return 100000
	}
	return n
}

// Price parses a non-negative price; returns ok=false on anything else.
func Price(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
