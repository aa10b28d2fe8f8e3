package booking

import (
	"strconv"
	"strings"
)

// Prices are whole rupees; derived amounts are paise. An 18% tax on a
// whole-rupee price is always a whole number of paise, so no rounding occurs.
const (
	paisePerRupee = 100
	taxPercent    = 18
)

// TaxPaise returns the 18% tax on a rupee price, in paise.
func TaxPaise(priceRupees int64) int64 {
	return priceRupees * taxPercent
}

// TotalPaise returns price × 1.18, in paise.
func TotalPaise(priceRupees int64) int64 {
	return priceRupees*paisePerRupee + TaxPaise(priceRupees)
}

// FormatINR renders paise as Indian rupees with lakh/crore grouping, e.g.
// 141600 paise is "₹1,416" and 1234567 paise is "₹12,345.67".
func FormatINR(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees, frac := paise/paisePerRupee, paise%paisePerRupee

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("₹")
	b.WriteString(groupIndian(strconv.FormatInt(rupees, 10)))
	if frac != 0 {
		b.WriteByte('.')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}

// groupIndian groups the last three digits, then pairs: 1234567 → 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}
