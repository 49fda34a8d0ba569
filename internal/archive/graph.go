package archive

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Catalog maintains the Neo4j graph linking measurements to their regions,
// groups and recording devices, so the archive can be browsed by structure
// rather than by file.
type Catalog struct {
	driver neo4j.DriverWithContext
}

// NewCatalog creates a catalog over an existing driver.
func NewCatalog(driver neo4j.DriverWithContext) *Catalog {
	return &Catalog{driver: driver}
}

// EnsureSchema creates uniqueness constraints for the catalog node types.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Measurement) REQUIRE m.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Region) REQUIRE r.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (g:Group) REQUIRE g.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Device) REQUIRE d.name IS UNIQUE",
	}

	for _, stmt := range constraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Catalog graph schema ensured")
	return nil
}

// Upsert writes one measurement node and its region, group and device
// relationships.
func (c *Catalog) Upsert(ctx context.Context, m Measurement) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (m:Measurement {id: $id})
		SET m.method = $method,
		    m.acquired_at = $acquired_at,
		    m.source_file = $source_file
		MERGE (r:Region {name: $region})
		MERGE (m)-[:OF_REGION]->(r)
	`, map[string]any{
		"id":          m.ID,
		"method":      m.MethodName,
		"acquired_at": m.Timestamp,
		"source_file": m.SourceFile,
		"region":      m.Spectrum.Region,
	})
	if err != nil {
		return fmt.Errorf("upsert measurement node %s: %w", m.ID, err)
	}

	if m.GroupName != "" {
		_, err = session.Run(ctx, `
			MATCH (m:Measurement {id: $id})
			MERGE (g:Group {name: $group})
			MERGE (m)-[:IN_GROUP]->(g)
		`, map[string]any{"id": m.ID, "group": m.GroupName})
		if err != nil {
			return fmt.Errorf("link measurement group: %w", err)
		}
	}

	for _, settings := range m.Instrument.DeviceSettings {
		if settings.DeviceName == "" {
			continue
		}
		_, err = session.Run(ctx, `
			MATCH (m:Measurement {id: $id})
			MERGE (d:Device {name: $device})
			MERGE (m)-[:RECORDED_BY]->(d)
		`, map[string]any{"id": m.ID, "device": settings.DeviceName})
		if err != nil {
			log.Warn().Err(err).
				Str("measurement", m.ID).
				Str("device", settings.DeviceName).
				Msg("Failed to link device")
		}
	}

	return nil
}

// RegionInfo is one region with its archived measurement count.
type RegionInfo struct {
	Name         string
	Measurements int64
}

// Regions lists every archived spectrum region with measurement counts.
func (c *Catalog) Regions(ctx context.Context) ([]RegionInfo, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Measurement)-[:OF_REGION]->(r:Region)
		RETURN r.name AS name, count(m) AS measurements
		ORDER BY name
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}

	var regions []RegionInfo
	for result.Next(ctx) {
		record := result.Record()
		name, _ := record.Get("name")
		count, _ := record.Get("measurements")

		info := RegionInfo{Name: fmt.Sprintf("%v", name)}
		if n, ok := count.(int64); ok {
			info.Measurements = n
		}
		regions = append(regions, info)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("region results: %w", err)
	}

	log.Debug().Int("regions", len(regions)).Msg("Catalog region query complete")
	return regions, nil
}
