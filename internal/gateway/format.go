package gateway

import (
	"regexp"
	"strconv"
	"strings"
)

var phonePattern = regexp.MustCompile(`(\d{4})(\d{3})(\d{3})`)

// FormatNumber renders a price with Vietnamese digit grouping, where
// thousands are separated by dots: 1500000 becomes "1.500.000". Prices
// are whole VND so the fraction is discarded.
func FormatNumber(amount float64) string {
	n := int64(amount)
	negative := n < 0
	if negative {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// MaskTail hides the last three characters of a string, the way seller
// names are displayed on listing cards.
func MaskTail(s string) string {
	runes := []rune(s)
	if len(runes) <= 3 {
		return "***"
	}
	return string(runes[:len(runes)-3]) + "***"
}

// FormatPhone groups a ten digit phone number as 0123.456.789. Numbers
// that do not match are returned unchanged.
func FormatPhone(phone string) string {
	return phonePattern.ReplaceAllString(phone, "$1.$2.$3")
}
