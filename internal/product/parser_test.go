package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Parsed
		wantErr bool
	}{
		{
			name:  "multi-pack",
			input: "Burrata 3x100g",
			want:  Parsed{Tipo: "Burrata", Factor: 3, Gramaje: "100g"},
		},
		{
			name:  "single unit",
			input: "Ricotta 250g",
			want:  Parsed{Tipo: "Ricotta", Factor: 1, Gramaje: "250g"},
		},
		{
			name:  "multi-word type",
			input: "Mozzarella Fresca 2x125g",
			want:  Parsed{Tipo: "Mozzarella Fresca", Factor: 2, Gramaje: "125g"},
		},
		{
			name:  "missing trailing g",
			input: "Burrata 3x100",
			want:  Parsed{Tipo: "Burrata", Factor: 3, Gramaje: "100g"},
		},
		{
			name:  "uppercase G",
			input: "Ricotta 250G",
			want:  Parsed{Tipo: "Ricotta", Factor: 1, Gramaje: "250g"},
		},
		{
			name:  "accented type",
			input: "Queso Añejo 500g",
			want:  Parsed{Tipo: "Queso Añejo", Factor: 1, Gramaje: "500g"},
		},
		{
			name:  "surrounding whitespace",
			input: "  Burrata 100g  ",
			want:  Parsed{Tipo: "Burrata", Factor: 1, Gramaje: "100g"},
		},
		{
			name:    "no weight",
			input:   "Burrata",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "number only",
			input:   "12345",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsedKey(t *testing.T) {
	// The pack factor is not part of the key: a 3x100g pack and a loose
	// 100g unit aggregate under the same product.
	multi, err := Parse("Burrata 3x100g")
	require.NoError(t, err)
	single, err := Parse("Burrata 100g")
	require.NoError(t, err)

	assert.Equal(t, "Burrata 100g", multi.Key())
	assert.Equal(t, multi.Key(), single.Key())
}
