// Package product parses free-text product labels into a canonical
// (type, pack factor, unit weight) key and aggregates unit counts over it.
package product

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the canonical key extracted from a product label.
// "Burrata 3x100g" → {Tipo: "Burrata", Factor: 3, Gramaje: "100g"}
// "Ricotta 250g"   → {Tipo: "Ricotta", Factor: 1, Gramaje: "250g"}
type Parsed struct {
	Tipo    string
	Factor  int
	Gramaje string
}

// Key is the aggregation key: "{tipo} {gramaje}".
func (p Parsed) Key() string {
	return p.Tipo + " " + p.Gramaje
}

// ParseError reports a label that matched no known pattern.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable product name: %q", e.Input)
}

// Type is the longest leading run of letters (accents included) and
// spaces. The trailing "g" is case-insensitive and may be missing.
var (
	multiPackPattern  = regexp.MustCompile(`(?i)^([\p{L}\s]+?)\s+(\d+)x(\d+)\s*g?$`)
	singleUnitPattern = regexp.MustCompile(`(?i)^([\p{L}\s]+?)\s+(\d+)\s*g?$`)
)

// Parse extracts the canonical key from a free-text product label.
// Patterns are tried in order: "<Type> <N>x<W>g" (multi-pack), then
// "<Type> <W>g" (single unit, factor 1).
func Parse(nombreProducto string) (Parsed, error) {
	normalized := strings.TrimSpace(nombreProducto)

	if m := multiPackPattern.FindStringSubmatch(normalized); m != nil {
		factor, err := strconv.Atoi(m[2])
		if err != nil || factor < 1 {
			return Parsed{}, &ParseError{Input: nombreProducto}
		}
		return Parsed{
			Tipo:    strings.TrimSpace(m[1]),
			Factor:  factor,
			Gramaje: m[3] + "g",
		}, nil
	}

	if m := singleUnitPattern.FindStringSubmatch(normalized); m != nil {
		return Parsed{
			Tipo:    strings.TrimSpace(m[1]),
			Factor:  1,
			Gramaje: m[2] + "g",
		}, nil
	}

	return Parsed{}, &ParseError{Input: nombreProducto}
}
