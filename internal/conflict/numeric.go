package conflict

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Quantity is a numeric value extracted from clause text with the unit
// class it was mentioned in
type Quantity struct {
	Value float64
	Unit  string // "usd", "percent", "days" or "" for bare numbers
}

var (
	dollarPattern  = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)
	percentPattern = regexp.MustCompile(`([\d,]+(?:\.\d+)?)\s*(?:%|percent)`)
	daysPattern    = regexp.MustCompile(`([\d,]+(?:\.\d+)?)\s*(?:calendar\s+|business\s+)?days?\b`)
	barePattern    = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
)

// extractQuantities pulls dollar amounts, percentages and day counts
// out of normalized text. Bare numbers not matched by a unit pattern
// are kept with an empty unit.
func extractQuantities(text string) []Quantity {
	var quantities []Quantity
	claimed := make([][2]int, 0, 4)

	for _, spec := range []struct {
		re   *regexp.Regexp
		unit string
	}{
		{dollarPattern, "usd"},
		{percentPattern, "percent"},
		{daysPattern, "days"},
	} {
		for _, m := range spec.re.FindAllStringSubmatchIndex(text, -1) {
			value, ok := parseNumber(text[m[2]:m[3]])
			if !ok {
				continue
			}
			quantities = append(quantities, Quantity{Value: value, Unit: spec.unit})
			claimed = append(claimed, [2]int{m[2], m[3]})
		}
	}

	for _, m := range barePattern.FindAllStringIndex(text, -1) {
		if overlapsAny(m[0], m[1], claimed) {
			continue
		}
		value, ok := parseNumber(text[m[0]:m[1]])
		if !ok {
			continue
		}
		quantities = append(quantities, Quantity{Value: value})
	}

	return quantities
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func overlapsAny(start, end int, spans [][2]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// numericDelta returns the largest relative difference between
// quantities of units both clauses mention. ok is false when the
// clauses share no unit, in which case no numeric comparison applies.
func numericDelta(a, b []Quantity) (delta float64, ok bool) {
	byUnitA := groupByUnit(a)
	byUnitB := groupByUnit(b)

	for unit, va := range byUnitA {
		vb, shared := byUnitB[unit]
		if !shared {
			continue
		}
		ok = true

		n := len(va)
		if len(vb) < n {
			n = len(vb)
		}
		for i := 0; i < n; i++ {
			d := relativeDelta(va[i], vb[i])
			if d > delta {
				delta = d
			}
		}
	}

	return delta, ok
}

func groupByUnit(quantities []Quantity) map[string][]float64 {
	grouped := make(map[string][]float64)
	for _, q := range quantities {
		grouped[q.Unit] = append(grouped[q.Unit], q.Value)
	}
	for _, values := range grouped {
		sort.Float64s(values)
	}
	return grouped
}

func relativeDelta(a, b float64) float64 {
	if a == b {
		return 0
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return 0
	}
	d := (a - b) / max
	if d < 0 {
		d = -d
	}
	return d
}
