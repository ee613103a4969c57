package signal

import (
	"strconv"
	"strings"
)

// ParseAmount converts dollar strings like "$1M", "$500K", "$2.5B" or
// "1,000" into whole dollars.
func ParseAmount(amount string) (int64, bool) {
	amount = strings.ReplaceAll(amount, "$", "")
	amount = strings.ReplaceAll(amount, ",", "")
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, false
	}

	multiplier := float64(1)
	switch amount[len(amount)-1] {
	case 'K', 'k':
		multiplier = 1_000
		amount = amount[:len(amount)-1]
	case 'M', 'm':
		multiplier = 1_000_000
		amount = amount[:len(amount)-1]
	case 'B', 'b':
		multiplier = 1_000_000_000
		amount = amount[:len(amount)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, false
	}
	return int64(value * multiplier), true
}
