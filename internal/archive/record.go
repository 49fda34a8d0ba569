// Package archive maps normalized spectrum records onto the storage schema
// and persists them: JSON export, a PostgreSQL measurement store with
// pgvector fingerprints, and a Neo4j catalog graph.
package archive

import (
	"fmt"

	"specs-archiver/internal/parser"
	"specs-archiver/internal/textutil"
)

// Instrument holds the acquisition settings of one measurement.
type Instrument struct {
	NScans           string                  `json:"n_scans"`
	DwellTime        string                  `json:"dwell_time"`
	ExcitationEnergy string                  `json:"excitation_energy"`
	SourceLabel      string                  `json:"source_label"`
	DeviceSettings   []parser.DeviceSettings `json:"device_settings"`
}

// Spectrum holds one measurement's channel data: the unit-tagged energy
// axis, the dimensionless count array, and the supplemental channels with
// their header descriptors.
type Spectrum struct {
	NValues            int                `json:"n_values"`
	Region             string             `json:"spectrum_region"`
	Energy             parser.Quantity    `json:"energy"`
	Count              []float64          `json:"count"`
	AdditionalChannels []parser.DataLabel `json:"additional_channel_headers"`
	AdditionalData     [][]float64        `json:"additional_channel_data"`
}

// Measurement is one archived spectrum acquisition.
type Measurement struct {
	// ID is a content-derived hash identifying the measurement across
	// re-ingests of the same file.
	ID                   string            `json:"id"`
	MethodName           string            `json:"method_name"`
	Timestamp            string            `json:"timestamp"`
	GroupName            string            `json:"group_name"`
	SourceFile           string            `json:"source_file"`
	Author               string            `json:"author,omitempty"`
	Sample               string            `json:"sample,omitempty"`
	ExperimentID         string            `json:"experiment_id,omitempty"`
	Project              string            `json:"project,omitempty"`
	ExperimentParameters map[string]string `json:"experiment_parameters"`
	Instrument           Instrument        `json:"instrument"`
	Spectrum             Spectrum          `json:"spectrum"`
}

// FromRecord maps one normalized record onto the archive schema. The field
// list is explicit: the output shape is a compile-time contract, not a
// reflection walk.
func FromRecord(record parser.Record, sourceFile string, index int) Measurement {
	meta := record.Metadata

	return Measurement{
		ID: textutil.HashString(fmt.Sprintf("%s|%d|%s|%s|%s",
			sourceFile, index, meta.SpectrumRegion, meta.GroupName, meta.Timestamp)),
		MethodName:           meta.MethodType,
		Timestamp:            meta.Timestamp,
		GroupName:            meta.GroupName,
		SourceFile:           sourceFile,
		Author:               meta.Author,
		Sample:               meta.Sample,
		ExperimentID:         meta.ExperimentID,
		Project:              meta.Project,
		ExperimentParameters: meta.ExperimentParameters,
		Instrument: Instrument{
			NScans:           meta.NScans,
			DwellTime:        meta.DwellTime,
			ExcitationEnergy: meta.ExcitationEnergy,
			SourceLabel:      meta.SourceLabel,
			DeviceSettings:   meta.DeviceSettings,
		},
		Spectrum: buildSpectrum(record),
	}
}

func buildSpectrum(record parser.Record) Spectrum {
	spectrum := Spectrum{
		NValues: len(record.Count),
		Region:  record.Metadata.SpectrumRegion,
		Energy:  record.Energy,
		Count:   record.Count,
	}

	for _, extra := range record.ExtraChannels {
		spectrum.AdditionalChannels = append(spectrum.AdditionalChannels, extra.Header)
		spectrum.AdditionalData = append(spectrum.AdditionalData, extra.Values)
	}

	return spectrum
}

// Build maps every record of one parsed file.
func Build(records []parser.Record, sourceFile string) []Measurement {
	measurements := make([]Measurement, 0, len(records))
	for i, record := range records {
		measurements = append(measurements, FromRecord(record, sourceFile, i))
	}
	return measurements
}
