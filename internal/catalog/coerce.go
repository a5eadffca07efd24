package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// plainDecimal accepts "12", "12.5", "12." and ".5" after comma folding.
var plainDecimal = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// ParseQuantity reads a stock count. A comma is treated as the decimal
// separator; integral values ("12", "12.0") are accepted and anything else
// (fractions, negatives, text, empty cells) becomes 0.
func ParseQuantity(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !plainDecimal.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// NormalizePrice returns the price with "," replaced by "." when it is a
// non-negative decimal, and "" otherwise. Currency symbols or codes around
// the number ("€4,50", "12.50 лв.") are dropped.
func NormalizePrice(s string) string {
	s = strings.TrimLeftFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != '.' && r != ','
	})
	s = strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	s = strings.ReplaceAll(s, ",", ".")
	if !plainDecimal.MatchString(s) || strings.HasPrefix(s, "-") {
		return ""
	}
	return s
}
