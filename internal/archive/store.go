package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// Store persists measurements in PostgreSQL. Count arrays are additionally
// stored as fixed-dimension pgvector fingerprints so similar spectra can be
// found with a nearest-neighbor search.
type Store struct {
	pool           *pgxpool.Pool
	fingerprintDim int
}

// NewStore creates a measurement store. fingerprintDim is the dimension of
// the fingerprint vector column and must match the existing table.
func NewStore(pool *pgxpool.Pool, fingerprintDim int) *Store {
	if fingerprintDim < 1 {
		fingerprintDim = 256
	}
	return &Store{pool: pool, fingerprintDim: fingerprintDim}
}

// EnsureSchema creates the measurements table and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS measurements (
			id                TEXT PRIMARY KEY,
			method            TEXT NOT NULL,
			region            TEXT NOT NULL,
			group_name        TEXT NOT NULL,
			source_file       TEXT NOT NULL,
			acquired_at       TEXT NOT NULL,
			n_scans           TEXT NOT NULL DEFAULT '',
			dwell_time        TEXT NOT NULL DEFAULT '',
			excitation_energy TEXT NOT NULL DEFAULT '',
			source_label      TEXT NOT NULL DEFAULT '',
			metadata          JSONB NOT NULL,
			energy            DOUBLE PRECISION[] NOT NULL,
			energy_unit       TEXT NOT NULL DEFAULT '',
			count             DOUBLE PRECISION[] NOT NULL,
			fingerprint       vector(%d),
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.fingerprintDim),
		`CREATE INDEX IF NOT EXISTS measurements_region_idx ON measurements (region)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure store schema: %w", err)
		}
	}

	log.Info().Msg("Measurement store schema ensured")
	return nil
}

// Upsert inserts or updates one measurement, keyed by its content hash.
func (s *Store) Upsert(ctx context.Context, m Measurement) error {
	metadata, err := json.Marshal(struct {
		ExperimentParameters map[string]string `json:"experiment_parameters"`
		Instrument           Instrument        `json:"instrument"`
		AdditionalChannels   any               `json:"additional_channel_headers"`
		AdditionalData       [][]float64       `json:"additional_channel_data"`
	}{m.ExperimentParameters, m.Instrument, m.Spectrum.AdditionalChannels, m.Spectrum.AdditionalData})
	if err != nil {
		return fmt.Errorf("marshal measurement metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO measurements (
			id, method, region, group_name, source_file, acquired_at,
			n_scans, dwell_time, excitation_energy, source_label,
			metadata, energy, energy_unit, count, fingerprint
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			method = EXCLUDED.method,
			region = EXCLUDED.region,
			group_name = EXCLUDED.group_name,
			source_file = EXCLUDED.source_file,
			acquired_at = EXCLUDED.acquired_at,
			n_scans = EXCLUDED.n_scans,
			dwell_time = EXCLUDED.dwell_time,
			excitation_energy = EXCLUDED.excitation_energy,
			source_label = EXCLUDED.source_label,
			metadata = EXCLUDED.metadata,
			energy = EXCLUDED.energy,
			energy_unit = EXCLUDED.energy_unit,
			count = EXCLUDED.count,
			fingerprint = EXCLUDED.fingerprint
	`,
		m.ID, m.MethodName, m.Spectrum.Region, m.GroupName, m.SourceFile, m.Timestamp,
		m.Instrument.NScans, m.Instrument.DwellTime, m.Instrument.ExcitationEnergy, m.Instrument.SourceLabel,
		metadata, m.Spectrum.Energy.Values, m.Spectrum.Energy.Unit, m.Spectrum.Count,
		pgvector.NewVector(Fingerprint(m.Spectrum.Count, s.fingerprintDim)),
	)
	if err != nil {
		return fmt.Errorf("upsert measurement %s: %w", m.ID, err)
	}

	return nil
}

// UpsertAll stores a batch of measurements.
func (s *Store) UpsertAll(ctx context.Context, measurements []Measurement) error {
	for _, m := range measurements {
		if err := s.Upsert(ctx, m); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(measurements)).Msg("Stored measurements")
	return nil
}

// SimilarResult is one nearest-neighbor match from a fingerprint search.
type SimilarResult struct {
	ID         string
	Region     string
	GroupName  string
	SourceFile string
	Distance   float64
}

// SearchSimilar finds the topK archived spectra whose count fingerprints are
// nearest (cosine distance) to the given count array.
func (s *Store) SearchSimilar(ctx context.Context, count []float64, topK int) ([]SimilarResult, error) {
	query := pgvector.NewVector(Fingerprint(count, s.fingerprintDim))

	rows, err := s.pool.Query(ctx, `
		SELECT id, region, group_name, source_file, fingerprint <=> $1 AS distance
		FROM measurements
		WHERE fingerprint IS NOT NULL
		ORDER BY distance
		LIMIT $2
	`, query, topK)
	if err != nil {
		return nil, fmt.Errorf("fingerprint search: %w", err)
	}
	defer rows.Close()

	var results []SimilarResult
	for rows.Next() {
		var r SimilarResult
		if err := rows.Scan(&r.ID, &r.Region, &r.GroupName, &r.SourceFile, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fingerprint search rows: %w", err)
	}

	return results, nil
}

// Fingerprint resamples a count array to a fixed dimension by linear
// interpolation and L2-normalizes it. A vector column needs one dimension
// across all rows, whatever the spectrum length.
func Fingerprint(values []float64, dim int) []float32 {
	out := make([]float32, dim)
	if len(values) == 0 {
		return out
	}

	var norm float64
	resampled := make([]float64, dim)
	for i := 0; i < dim; i++ {
		var v float64
		if len(values) == 1 || dim == 1 {
			v = values[0]
		} else {
			pos := float64(i) * float64(len(values)-1) / float64(dim-1)
			lo := int(math.Floor(pos))
			hi := int(math.Ceil(pos))
			if hi >= len(values) {
				hi = len(values) - 1
			}
			frac := pos - float64(lo)
			v = values[lo]*(1-frac) + values[hi]*frac
		}
		resampled[i] = v
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return out
	}
	for i, v := range resampled {
		out[i] = float32(v / norm)
	}

	return out
}
