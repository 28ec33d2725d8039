package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPoints renders an integer point amount with thousand separators,
// e.g. 12500 -> "12.500 poin".
func FormatPoints(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s poin", sign, formatThousand(amount))
}

// ParsePoints parses "1.000" or "1,000 poin" into an integer point amount.
func ParsePoints(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "poin")
	replacer := strings.NewReplacer(".", "", ",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid point amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
