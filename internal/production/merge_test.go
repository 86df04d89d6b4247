package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeZones(t *testing.T) {
	existing := []Zone{
		{
			Nombre: "GRAN CANARIA",
			Productos: []Product{
				{Codigo: "P001", Cantidad: 10},
				{Codigo: "P002", Cantidad: 5},
			},
		},
	}

	incoming := []Zone{
		{
			Nombre: "GRAN CANARIA",
			Productos: []Product{
				{Codigo: "P001", Cantidad: 25}, // known code, overwritten
				{Codigo: "P003", Cantidad: 7},  // unknown code, appended
			},
		},
		{
			Nombre: "TENERIFE", // unknown zone, appended wholesale
			Productos: []Product{
				{Codigo: "P001", Cantidad: 3},
			},
		},
	}

	merged := MergeZones(existing, incoming)

	assert.Len(t, merged, 2)
	assert.Equal(t, "GRAN CANARIA", merged[0].Nombre)
	assert.Equal(t, []Product{
		{Codigo: "P001", Cantidad: 25},
		{Codigo: "P002", Cantidad: 5},
		{Codigo: "P003", Cantidad: 7},
	}, merged[0].Productos)
	assert.Equal(t, "TENERIFE", merged[1].Nombre)
}

func TestMergeZonesIsIdempotent(t *testing.T) {
	existing := []Zone{
		{Nombre: "TENERIFE", Productos: []Product{{Codigo: "P001", Cantidad: 4}}},
	}
	incoming := []Zone{
		{Nombre: "TENERIFE", Productos: []Product{{Codigo: "P001", Cantidad: 9}}},
	}

	once := MergeZones(existing, incoming)
	twice := MergeZones(once, incoming)

	// Re-delivering the same payload must not change quantities.
	assert.Equal(t, once, twice)
	assert.Equal(t, 9, twice[0].Productos[0].Cantidad)
}

func TestMergeZonesDoesNotMutateInputs(t *testing.T) {
	existing := []Zone{
		{Nombre: "FILIPPO", Productos: []Product{{Codigo: "P001", Cantidad: 1}}},
	}
	incoming := []Zone{
		{Nombre: "FILIPPO", Productos: []Product{{Codigo: "P001", Cantidad: 2}}},
	}

	_ = MergeZones(existing, incoming)

	assert.Equal(t, 1, existing[0].Productos[0].Cantidad)
}

func TestFlattenZones(t *testing.T) {
	// Two upstream sources mapping to the same canonical zone.
	incoming := []Zone{
		{Nombre: "GRAN CANARIA", Productos: []Product{{Codigo: "P001", Cantidad: 10}}},
		{Nombre: "LA PALMA", Productos: []Product{{Codigo: "P002", Cantidad: 3}}},
		{Nombre: "GRAN CANARIA", Productos: []Product{{Codigo: "P003", Cantidad: 6}}},
	}

	flattened := FlattenZones(incoming)

	assert.Len(t, flattened, 2)
	assert.Equal(t, "GRAN CANARIA", flattened[0].Nombre)
	assert.Equal(t, []Product{
		{Codigo: "P001", Cantidad: 10},
		{Codigo: "P003", Cantidad: 6},
	}, flattened[0].Productos)
	assert.Equal(t, "LA PALMA", flattened[1].Nombre)
}

func TestMergeAggregated(t *testing.T) {
	existing := []AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 50},
		{Nombre: "Ricotta 250g", Cantidad: 20},
	}
	incoming := []AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 80}, // overwritten, not summed
		{Nombre: "Mozzarella 125g", Cantidad: 12},
	}

	merged := MergeAggregated(existing, incoming)

	assert.Equal(t, []AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 80},
		{Nombre: "Mozzarella 125g", Cantidad: 12},
		{Nombre: "Ricotta 250g", Cantidad: 20},
	}, merged)
}

func TestSortedAggregated(t *testing.T) {
	out := SortedAggregated(map[string]int{
		"Ricotta 250g": 5,
		"Burrata 100g": 9,
	})

	assert.Equal(t, []AggregatedProduct{
		{Nombre: "Burrata 100g", Cantidad: 9},
		{Nombre: "Ricotta 250g", Cantidad: 5},
	}, out)
}
