package ingest

import (
	"context"
	"sync"

	"github.com/lactaria/produccion/backend/internal/production"
	"github.com/lactaria/produccion/backend/internal/zones"
)

// RawSyncResult reports the outcome of a raw sync.
type RawSyncResult struct {
	Snapshot *production.Snapshot
	Created  bool
	Message  string
}

// SyncRaw runs the raw pipeline: validate → normalize zone names → merge
// into the day's snapshot (or flatten and insert on the first call of the
// day) → persist → append one history row per product.
func (s *Service) SyncRaw(ctx context.Context, req RawSyncRequest) (*RawSyncResult, error) {
	if req.Zonas == nil {
		return nil, ErrMissingZonas
	}

	now := s.now()
	fecha := now.Format(production.DateFormat)
	hour := now.Hour()

	normalized := make([]production.Zone, 0, len(req.Zonas))
	for _, z := range req.Zonas {
		res := s.resolveZone(z)
		normalized = append(normalized, production.Zone{
			Nombre:    res.Name,
			Productos: z.Productos,
		})
	}

	existing, err := s.snapshots.GetByDate(ctx, fecha)
	if err != nil {
		return nil, &StoreError{Op: "fetch existing snapshot", Err: err}
	}

	var finalZones []production.Zone
	created := existing == nil
	if created {
		// First call of the day: two upstream sources can map to the
		// same canonical zone, so collapse duplicates before insert.
		finalZones = production.FlattenZones(normalized)
	} else {
		finalZones = production.MergeZones(existing.Zonas, normalized)
	}

	snap, err := s.snapshots.Upsert(ctx, fecha, finalZones)
	if err != nil {
		return nil, &StoreError{Op: "persist snapshot", Err: err}
	}

	s.appendRawHistory(ctx, fecha, hour, normalized)

	if s.alerts != nil {
		s.alerts.Check(ctx, snap.Zonas)
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, "production_data")
	}

	msg := "Production data merged successfully"
	if created {
		msg = "Production data created successfully"
	}

	return &RawSyncResult{
		Snapshot: snap,
		Created:  created,
		Message:  msg,
	}, nil
}

// resolveZone picks the mapping scheme per entry: agent code when present,
// zone label otherwise. Unmapped sources are accepted but logged, so new
// upstream zones surface in monitoring instead of disappearing.
func (s *Service) resolveZone(z RawZone) zones.Resolution {
	var res zones.Resolution
	if z.CodigoAgente != "" {
		res = zones.NormalizeAgent(z.CodigoAgente)
		if !res.Known() {
			s.logger.WithFields(map[string]interface{}{
				"codigo_agente": z.CodigoAgente,
				"nombre_agente": z.NombreAgente,
				"resolved":      res.Name,
			}).Warn("Unmapped agent code, synthesized zone name")
		}
		return res
	}

	res = zones.Normalize(z.Nombre)
	if !res.Known() {
		s.logger.WithFields(map[string]interface{}{
			"nombre":   z.Nombre,
			"resolved": res.Name,
		}).Warn("Unmapped zone label, passing through")
	}
	return res
}

// appendRawHistory writes one event row per product, tagged with the hour
// the sync arrived. Inserts run concurrently with no ordering guarantee;
// failures are logged and swallowed, so a partial history never fails the
// sync. This is a call-by-call event trace, not a change log: rows are
// appended whether or not the product's count changed.
func (s *Service) appendRawHistory(ctx context.Context, fecha string, hour int, zonas []production.Zone) {
	var wg sync.WaitGroup

	for _, zona := range zonas {
		for _, producto := range zona.Productos {
			entry := production.HistoryEntry{
				Date:        fecha,
				ZoneName:    zona.Nombre,
				ProductCode: producto.Codigo,
				Quantity:    producto.Cantidad,
				Hour:        hour,
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.history.AppendRaw(ctx, entry); err != nil {
					s.logger.WithError(err).WithFields(map[string]interface{}{
						"zone":    entry.ZoneName,
						"product": entry.ProductCode,
					}).Warn("History append failed")
				}
			}()
		}
	}

	wg.Wait()
}
