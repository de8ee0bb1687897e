package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/balkashynov/tally/internal/apperr"
)

var rateRegex = regexp.MustCompile(`^\$?(\d*)(?:\.(\d*))?$`)

// ParseRate converts a decimal currency string into integer cents, rounding
// half up on the third decimal place. Accepts "45", "45.5", "$45.50",
// "1,250.00" and ".75".
func ParseRate(input string) (int64, error) {
	raw := input
	input = strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if input == "" {
		return 0, apperr.Invalid("rate", raw, "value is empty")
	}
	if strings.HasPrefix(input, "-") {
		return 0, apperr.Invalid("rate", raw, "must not be negative")
	}

	m := rateRegex.FindStringSubmatch(input)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, apperr.Invalid("rate", raw, "must be a number like 45 or 45.50")
	}

	whole := int64(0)
	if m[1] != "" {
		w, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || w > (math.MaxInt64-100)/100 {
			return 0, apperr.Invalid("rate", raw, "too large")
		}
		whole = w
	}

	// Three fractional digits: two for the cents, one to round on.
	frac := (m[2] + "000")[:3]
	mills, _ := strconv.ParseInt(frac, 10, 64)

	cents := whole*100 + mills/10
	if mills%10 >= 5 {
		cents++
	}
	return cents, nil
}

// FormatRate renders cents as a currency amount, e.g. 4550 -> "45.50".
func FormatRate(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
