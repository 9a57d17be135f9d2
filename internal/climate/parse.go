// Package climate fetches and parses the once-daily official climate report
// and locks the authoritative high/low into the results store.
package climate

import (
	"strconv"
	"strings"
)

// Reported temperatures outside this range (exclusive) are discarded as
// parse noise, e.g. a precipitation total or a year caught on a MAX line.
const (
	minPlausibleF = -40.0
	maxPlausibleF = 135.0
)

// ExtractHighLow scans a free-text climate report for the day's maximum and
// minimum temperature. The report is prose/tabular text, so extraction is
// heuristic: lines are scanned in order, uppercased; lines mentioning
// FORECAST are skipped to avoid forward-looking sections; a high candidate
// contains MAX plus TEMP or YESTERDAY, a low candidate MIN plus TEMP or
// YESTERDAY; the first numeric token on a candidate line is taken and kept
// only if plausible. The first accepted value per field wins, and scanning
// stops once both are found. A nil return means that field was never found.
func ExtractHighLow(text string) (high, low *float64) {
	for _, line := range strings.Split(text, "\n") {
		clean := strings.ToUpper(strings.TrimSpace(line))

		if strings.Contains(clean, "FORECAST") {
			continue
		}

		if high == nil && strings.Contains(clean, "MAX") &&
			(strings.Contains(clean, "TEMP") || strings.Contains(clean, "YESTERDAY")) {
			if v, ok := firstPlausibleNumber(clean); ok {
				high = &v
			}
		}

		if low == nil && strings.Contains(clean, "MIN") &&
			(strings.Contains(clean, "TEMP") || strings.Contains(clean, "YESTERDAY")) {
			if v, ok := firstPlausibleNumber(clean); ok {
				low = &v
			}
		}

		if high != nil && low != nil {
			break
		}
	}
	return high, low
}

// firstPlausibleNumber returns the leftmost numeric token on the line if it
// lies inside the plausible Fahrenheit range.
func firstPlausibleNumber(line string) (float64, bool) {
	for _, tok := range numericTokens(line) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if v > minPlausibleF && v < maxPlausibleF {
			return v, true
		}
		// Out of range: the line is not a usable candidate. Later candidate
		// lines may still supply the value.
		return 0, false
	}
	return 0, false
}

// numericTokens extracts signed, optionally decimal numbers from the line in
// left-to-right order.
func numericTokens(line string) []string {
	var toks []string
	i := 0
	for i < len(line) {
		start := i
		if line[i] == '+' || line[i] == '-' {
			i++
		}
		digits := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
			digits++
		}
		if i < len(line) && line[i] == '.' {
			i++
			for i < len(line) && line[i] >= '0' && line[i] <= '9' {
				i++
				digits++
			}
		}
		if digits > 0 {
			toks = append(toks, line[start:i])
		} else {
			i = start + 1
		}
	}
	return toks
}
