package production

import "sort"

// MergeZones reconciles an incoming zone list (already normalized) against
// the day's existing zone list and returns the merged result. Incoming
// zones with no existing counterpart are appended wholesale. For a zone
// that already exists, products merge by code: unknown codes append, known
// codes have their quantity overwritten. Overwrite, never add: a raw
// snapshot records the latest count as reported, so merging the same
// payload twice is idempotent.
func MergeZones(existing, incoming []Zone) []Zone {
	merged := copyZones(existing)

	for _, in := range incoming {
		idx := findZone(merged, in.Nombre)
		if idx == -1 {
			merged = append(merged, Zone{
				Nombre:    in.Nombre,
				Productos: append([]Product(nil), in.Productos...),
			})
			continue
		}

		for _, p := range in.Productos {
			pidx := findProduct(merged[idx].Productos, p.Codigo)
			if pidx == -1 {
				merged[idx].Productos = append(merged[idx].Productos, p)
			} else {
				merged[idx].Productos[pidx].Cantidad = p.Cantidad
			}
		}
	}

	return merged
}

// FlattenZones collapses duplicate canonical zone names into single zones,
// concatenating their product lists. Used on the first insert of the day,
// where two upstream sources mapping to the same canonical zone would
// otherwise create duplicate entries.
func FlattenZones(incoming []Zone) []Zone {
	var flattened []Zone

	for _, in := range incoming {
		idx := findZone(flattened, in.Nombre)
		if idx == -1 {
			flattened = append(flattened, Zone{
				Nombre:    in.Nombre,
				Productos: append([]Product(nil), in.Productos...),
			})
		} else {
			flattened[idx].Productos = append(flattened[idx].Productos, in.Productos...)
		}
	}

	return flattened
}

// MergeAggregated merges an update sync into the existing aggregated
// product list: every key present in incoming overwrites the existing
// value for that key, keys only in existing are preserved. Overwrite, not
// sum: the upstream reporter resends full day totals per key, so adding
// would double-count. Result is sorted ascending by name.
func MergeAggregated(existing, incoming []AggregatedProduct) []AggregatedProduct {
	byName := make(map[string]int, len(existing)+len(incoming))

	for _, p := range existing {
		byName[p.Nombre] = p.Cantidad
	}
	for _, p := range incoming {
		byName[p.Nombre] = p.Cantidad
	}

	return SortedAggregated(byName)
}

// SortedAggregated converts a name→quantity map into a list sorted
// ascending by name.
func SortedAggregated(byName map[string]int) []AggregatedProduct {
	out := make([]AggregatedProduct, 0, len(byName))
	for nombre, cantidad := range byName {
		out = append(out, AggregatedProduct{Nombre: nombre, Cantidad: cantidad})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out
}

func copyZones(zones []Zone) []Zone {
	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = Zone{
			Nombre:    z.Nombre,
			Productos: append([]Product(nil), z.Productos...),
		}
	}
	return out
}

func findZone(zones []Zone, nombre string) int {
	for i, z := range zones {
		if z.Nombre == nombre {
			return i
		}
	}
	return -1
}

func findProduct(products []Product, codigo string) int {
	for i, p := range products {
		if p.Codigo == codigo {
			return i
		}
	}
	return -1
}
