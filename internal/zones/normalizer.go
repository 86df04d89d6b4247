// Package zones maps raw upstream zone labels and agent codes to the
// canonical zone names used for storage and display.
package zones

import "strings"

// Source tells how a canonical name was obtained, so callers can warn when
// a new unmapped upstream source shows up instead of accepting it silently.
type Source int

const (
	// SourceMapped: the input matched a mapping table entry.
	SourceMapped Source = iota
	// SourcePassthrough: unmapped label, returned unchanged.
	SourcePassthrough
	// SourceSynthesized: unmapped agent code, name synthesized as
	// AGENTE_<code>.
	SourceSynthesized
)

// Resolution is the outcome of a normalization. Normalization is total:
// every input resolves to some name, never an error.
type Resolution struct {
	Name   string
	Source Source
}

// Known reports whether the resolution came from a mapping table.
func (r Resolution) Known() bool {
	return r.Source == SourceMapped
}

// labelMapping keys the commercial delegation names the route-planning
// tool reports. Lookup is case- and whitespace-insensitive.
var labelMapping = map[string]string{
	"COMERCIAL ZONA NORTE":       "GRAN CANARIA",
	"COMERCIAL ZONA SUR":         "GRAN CANARIA",
	"WEB":                        "GRAN CANARIA",
	"OFICINA":                    "GRAN CANARIA",
	"DELEGACIÓN TENERIFE NORTE":  "TENERIFE",
	"DELEGACIÓN TENERIFE SUR":    "PINGUINO",
	"COMERCIAL LANZAROTE":        "FILIPPO",
	"DELEGACIÓN LA PALMA":        "LA PALMA",
}

// agentMapping keys the ERP agent codes used by the second upstream
// schema.
var agentMapping = map[string]string{
	"001": "GRAN CANARIA",
	"002": "GRAN CANARIA",
	"003": "TENERIFE",
	"004": "PINGUINO",
	"005": "FILIPPO",
	"006": "LA PALMA",
}

// Normalize resolves a raw zone label. Unmapped labels pass through
// unchanged so new upstream zones surface visibly instead of being
// dropped.
func Normalize(raw string) Resolution {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if name, ok := labelMapping[key]; ok {
		return Resolution{Name: name, Source: SourceMapped}
	}
	return Resolution{Name: raw, Source: SourcePassthrough}
}

// NormalizeAgent resolves an ERP agent code. Unmapped codes synthesize
// AGENTE_<code> rather than failing.
func NormalizeAgent(code string) Resolution {
	key := strings.TrimSpace(code)
	if name, ok := agentMapping[key]; ok {
		return Resolution{Name: name, Source: SourceMapped}
	}
	return Resolution{Name: "AGENTE_" + key, Source: SourceSynthesized}
}
