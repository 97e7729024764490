package format

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(n + n/3 + len(sign))
	b.WriteString(sign)
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatCount formats a flip count with thousands separators.
func FormatCount(n uint64) string {
	return FormatNumberString(strconv.FormatUint(n, 10))
}

// FormatPercent renders a proportion in [0, 1] as a percentage with two
// decimals ("30.00%").
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// FormatProportion renders a proportion with two decimals, the precision
// used by the charts.
func FormatProportion(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
