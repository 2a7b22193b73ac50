package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// nonPriceCharsRegex matches everything that is not a digit or the decimal separator
var nonPriceCharsRegex = regexp.MustCompile(`[^0-9.]`)

// UnknownPrice is the sentinel for prices that cannot be parsed.
// It sorts after every real price and never wins a cheapest comparison.
var UnknownPrice = domain.Price(math.Inf(1))

// ParsePrice extracts a comparable number from a free-form price string
// such as "₹5,500.00" or "Rs. 5,999". Malformed input yields UnknownPrice.
func ParsePrice(raw string) domain.Price {
	digits := nonPriceCharsRegex.ReplaceAllString(raw, "")

	// Currency abbreviations ("Rs.") leave separators around the amount
	digits = strings.Trim(digits, ".")
	if digits == "" {
		return UnknownPrice
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return UnknownPrice
	}

	return domain.Price(value)
}

// IsUnknownPrice reports whether p is the unknown-price sentinel
func IsUnknownPrice(p domain.Price) bool {
	return !p.IsKnown()
}
