package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrency is the only currency the marketplace quotes in.
const DefaultCurrency = "KZT"

var currencySymbols = map[string]string{
	"KZT": "₸",
}

// FormatAmount renders a numeric amount with space-grouped thousands, a
// comma decimal separator and the currency's symbol, e.g. "1 250 000 ₸".
// Non-numeric input falls back to its plain string form.
func FormatAmount(amount any, currency string) string {
	val, ok := toFloat(amount)
	if !ok {
		return fmt.Sprint(amount)
	}

	var formatted string
	if val == math.Trunc(val) {
		formatted = groupThousands(strconv.FormatInt(int64(val), 10))
	} else {
		s := strconv.FormatFloat(val, 'f', 2, 64)
		dot := strings.IndexByte(s, '.')
		formatted = groupThousands(s[:dot]) + "," + s[dot+1:]
	}

	sym := currencySymbols[currency]
	return strings.TrimSpace(formatted + " " + sym)
}

func toFloat(amount any) (float64, bool) {
	switch v := amount.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// groupThousands inserts a space every three digits from the right:
// "1250000" → "1 250 000".
func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign = "-"
		digits = digits[1:]
	}

	n := len(digits)
	if n <= 3 {
		return sign + digits
	}

	var b strings.Builder
	first := n % 3
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
