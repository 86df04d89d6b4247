package zones

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantSource Source
	}{
		{
			name:       "mapped label",
			input:      "COMERCIAL ZONA NORTE",
			wantName:   "GRAN CANARIA",
			wantSource: SourceMapped,
		},
		{
			name:       "mapped label lowercase",
			input:      "comercial zona sur",
			wantName:   "GRAN CANARIA",
			wantSource: SourceMapped,
		},
		{
			name:       "mapped label with whitespace",
			input:      "  Web  ",
			wantName:   "GRAN CANARIA",
			wantSource: SourceMapped,
		},
		{
			name:       "accented label",
			input:      "DELEGACIÓN TENERIFE NORTE",
			wantName:   "TENERIFE",
			wantSource: SourceMapped,
		},
		{
			name:       "tenerife sur maps to pinguino",
			input:      "DELEGACIÓN TENERIFE SUR",
			wantName:   "PINGUINO",
			wantSource: SourceMapped,
		},
		{
			name:       "unmapped label passes through unchanged",
			input:      "Zona Desconocida",
			wantName:   "Zona Desconocida",
			wantSource: SourcePassthrough,
		},
		{
			name:       "empty label passes through",
			input:      "",
			wantName:   "",
			wantSource: SourcePassthrough,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestNormalizeAgent(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantName   string
		wantSource Source
	}{
		{
			name:       "mapped agent code",
			code:       "003",
			wantName:   "TENERIFE",
			wantSource: SourceMapped,
		},
		{
			name:       "mapped code with whitespace",
			code:       " 006 ",
			wantName:   "LA PALMA",
			wantSource: SourceMapped,
		},
		{
			name:       "unmapped code is synthesized",
			code:       "099",
			wantName:   "AGENTE_099",
			wantSource: SourceSynthesized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAgent(tt.code)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestResolutionKnown(t *testing.T) {
	assert.True(t, Normalize("OFICINA").Known())
	assert.False(t, Normalize("algo nuevo").Known())
	assert.False(t, NormalizeAgent("777").Known())
}
