package archive

import (
	"math"
	"testing"

	"specs-archiver/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() parser.Record {
	return parser.Record{
		Metadata: parser.GroupMetadata{
			Timestamp:            "06/29/21 12:10:20 UTC",
			DwellTime:            "0.1",
			NScans:               "3",
			ExcitationEnergy:     "1486.71",
			MethodType:           "XPS",
			SpectrumRegion:       "Survey",
			GroupName:            "Oxidation",
			SourceLabel:          "Al K-alpha",
			ExperimentParameters: map[string]string{"Dose": "10L"},
			DeviceSettings: []parser.DeviceSettings{
				{DeviceName: "HSA 3500 plus", ChannelID: 0},
				{DeviceName: "Phoibos Hemispherical Analyzer", ChannelID: 1},
			},
		},
		Energy: parser.Quantity{Values: []float64{1200, 1199.5}, Unit: "eV"},
		Count:  []float64{100, 110},
		ExtraChannels: []parser.ExtraChannel{
			{
				Header: parser.DataLabel{ChannelID: 2, Label: "ring current", Unit: "mA"},
				Values: []float64{297.5, 297.4},
			},
		},
	}
}

func TestFromRecord(t *testing.T) {
	m := FromRecord(testRecord(), "/data/run1.xy", 0)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "XPS", m.MethodName)
	assert.Equal(t, "Oxidation", m.GroupName)
	assert.Equal(t, "/data/run1.xy", m.SourceFile)
	assert.Equal(t, map[string]string{"Dose": "10L"}, m.ExperimentParameters)

	assert.Equal(t, "3", m.Instrument.NScans)
	assert.Equal(t, "0.1", m.Instrument.DwellTime)
	assert.Equal(t, "1486.71", m.Instrument.ExcitationEnergy)
	assert.Equal(t, "Al K-alpha", m.Instrument.SourceLabel)
	require.Len(t, m.Instrument.DeviceSettings, 2)

	assert.Equal(t, "Survey", m.Spectrum.Region)
	assert.Equal(t, 2, m.Spectrum.NValues)
	assert.Equal(t, []float64{1200, 1199.5}, m.Spectrum.Energy.Values)
	assert.Equal(t, "eV", m.Spectrum.Energy.Unit)
	assert.Equal(t, []float64{100, 110}, m.Spectrum.Count)
	require.Len(t, m.Spectrum.AdditionalChannels, 1)
	require.Len(t, m.Spectrum.AdditionalData, 1)
	assert.Equal(t, []float64{297.5, 297.4}, m.Spectrum.AdditionalData[0])
}

func TestFromRecord_StableID(t *testing.T) {
	a := FromRecord(testRecord(), "/data/run1.xy", 0)
	b := FromRecord(testRecord(), "/data/run1.xy", 0)
	c := FromRecord(testRecord(), "/data/run1.xy", 1)
	d := FromRecord(testRecord(), "/data/run2.xy", 0)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, a.ID, d.ID)
}

func TestBuild(t *testing.T) {
	records := []parser.Record{testRecord(), testRecord()}
	measurements := Build(records, "/data/run1.xy")

	require.Len(t, measurements, 2)
	assert.NotEqual(t, measurements[0].ID, measurements[1].ID)
}

func TestFingerprint(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	fp := Fingerprint(values, 4)
	require.Len(t, fp, 4)

	// L2-normalized.
	var norm float64
	for _, v := range fp {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)

	// Endpoints map to endpoints under linear resampling.
	ratio := float64(fp[3]) / float64(fp[0])
	assert.InDelta(t, 8.0, ratio, 1e-4)
}

func TestFingerprint_Degenerate(t *testing.T) {
	assert.Equal(t, make([]float32, 16), Fingerprint(nil, 16))
	assert.Equal(t, make([]float32, 16), Fingerprint([]float64{0, 0, 0}, 16))

	single := Fingerprint([]float64{5}, 4)
	require.Len(t, single, 4)
	for _, v := range single {
		assert.InDelta(t, 0.5, v, 1e-6)
	}

	upsampled := Fingerprint([]float64{1, 2}, 5)
	require.Len(t, upsampled, 5)
	assert.False(t, math.IsNaN(float64(upsampled[0])))
}
