package grant

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// currencyAmountRegex captures "<magnitude>[,<fraction>] [M]SEK" with optional space grouping.
	currencyAmountRegex = regexp.MustCompile(
		`(?i)(\d{1,3}(?:[ \x{00A0}]\d{3})+|\d+)(?:[.,](\d+))?\s*(m)?(?:sek|eur|kr)\b`,
	)
	// plainNumberRegex is the fallback for display strings without a currency.
	plainNumberRegex = regexp.MustCompile(`\d+(?:[ \x{00A0}]*\d+)*`)
)

const million = 1_000_000

// ParseAmount extracts a numeric amount from a display string such as "2,5 MSEK".
// The "M" prefix multiplies by 1 000 000. Returns false when no number is present.
func ParseAmount(display string) (float64, bool) {
	s := strings.TrimSpace(display)
	if s == "" {
		return 0, false
	}

	if m := currencyAmountRegex.FindStringSubmatch(s); m != nil {
		num := stripGrouping(m[1])
		if m[2] != "" {
			num += "." + m[2]
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || math.IsInf(v, 0) {
			return 0, false
		}
		if m[3] != "" {
			v *= million
		}
		return v, true
	}

	m := plainNumberRegex.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(stripGrouping(m), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func stripGrouping(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
}

// FormatFunding renders funding bounds the way grant cards display them:
// amounts of a million or more as "N MSEK", smaller ones with space-grouped thousands,
// a range when both bounds differ, and "Not specified" when nothing is known.
func FormatFunding(minAmount, maxAmount, total float64, currency string) string {
	if currency == "" {
		currency = "SEK"
	}
	switch {
	case maxAmount > 0:
		if minAmount > 0 && minAmount != maxAmount {
			return formatAmount(minAmount, currency) + " - " + formatAmount(maxAmount, currency)
		}
		return formatAmount(maxAmount, currency)
	case total > 0:
		return formatAmount(total, currency)
	case minAmount > 0:
		return formatAmount(minAmount, currency)
	default:
		return "Not specified"
	}
}

func formatAmount(v float64, currency string) string {
	if v >= million {
		m := v / million
		if m == math.Trunc(m) {
			return strconv.FormatFloat(m, 'f', 0, 64) + " M" + currency
		}
		return strconv.FormatFloat(m, 'f', 1, 64) + " M" + currency
	}
	return groupThousands(int64(math.Round(v))) + " " + currency
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
