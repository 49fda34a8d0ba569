package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primaryBlock(header HeaderMap) *DataBlock {
	return &DataBlock{Header: header, Type: ChannelPrimary}
}

func TestGroupMetadata_FileScopeWins(t *testing.T) {
	res := &resolver{global: HeaderMap{"Dwell Time": "0.5", "Source": "Al K-alpha"}}

	group := SpectrumGroup{primaryBlock(HeaderMap{
		"Region":     "Survey",
		"Dwell Time": "0.1",
	})}

	meta := res.groupMetadata(group)

	// File-scope header is applied after the group-local header, so it
	// wins on conflict.
	assert.Equal(t, "0.5", meta.DwellTime)
	assert.Equal(t, "Al K-alpha", meta.SourceLabel)
	assert.Equal(t, "Survey", meta.SpectrumRegion)
}

func TestGroupMetadata_CarryOver(t *testing.T) {
	res := &resolver{global: HeaderMap{}}

	first := res.groupMetadata(SpectrumGroup{primaryBlock(HeaderMap{
		"Region": "Fe2p",
		"Group":  "Oxidation",
	})})
	assert.Equal(t, "Fe2p", first.SpectrumRegion)
	assert.Equal(t, "Oxidation", first.GroupName)

	// A loop scan omits Region and Group; the previous group's values
	// carry over.
	second := res.groupMetadata(SpectrumGroup{primaryBlock(HeaderMap{
		"Number of Scans": "2",
	})})
	assert.Equal(t, "Fe2p", second.SpectrumRegion)
	assert.Equal(t, "Oxidation", second.GroupName)

	// A new region replaces the running value.
	third := res.groupMetadata(SpectrumGroup{primaryBlock(HeaderMap{
		"Region": "O1s",
	})})
	assert.Equal(t, "O1s", third.SpectrumRegion)
	assert.Equal(t, "Oxidation", third.GroupName)
}

func TestMethodType(t *testing.T) {
	res := &resolver{global: HeaderMap{}}

	tests := []struct {
		name  string
		group SpectrumGroup
		want  string
	}{
		{
			"nexafs scan mode",
			SpectrumGroup{primaryBlock(HeaderMap{"Scan Mode": "ConstantFinalState"})},
			"NEXAFS",
		},
		{
			"nexafs column label",
			SpectrumGroup{primaryBlock(HeaderMap{"ColumnLabels": "Excitation Energy TEY"})},
			"NEXAFS",
		},
		{
			"analysis method verbatim",
			SpectrumGroup{primaryBlock(HeaderMap{"Analysis Method": "UPS"})},
			"UPS",
		},
		{
			"analysis method on a later block",
			SpectrumGroup{
				primaryBlock(HeaderMap{}),
				{Header: HeaderMap{"Analysis Method": "ARPES"}, Type: ChannelExternal},
			},
			"ARPES",
		},
		{
			"default",
			SpectrumGroup{primaryBlock(HeaderMap{"Region": "Survey"})},
			"XPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, res.methodType(tt.group))
		})
	}
}

func TestIsNexafs(t *testing.T) {
	assert.False(t, isNexafs(SpectrumGroup{primaryBlock(HeaderMap{
		"Scan Mode": "FixedAnalyzerTransmission",
	})}))
	assert.True(t, isNexafs(SpectrumGroup{
		primaryBlock(HeaderMap{}),
		{Header: HeaderMap{"Scan Mode": "ConstantFinalState"}, Type: ChannelExternal},
	}))
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		name        string
		header      HeaderMap
		channelType ChannelType
		want        string
	}{
		{"primary default", HeaderMap{}, ChannelPrimary, "Phoibos Hemispherical Analyzer"},
		{"axis default", HeaderMap{}, ChannelAxis, "HSA 3500 plus"},
		{
			"known device",
			HeaderMap{"External Channel #1": "Ring Current [mA] (UE56/2-PGM1 (TCP))"},
			ChannelExternal,
			"beamline",
		},
		{
			"first table entry wins when several match",
			HeaderMap{"External Channel #1": "ARMIN-ADC3 via AMC Mono (TCP)"},
			ChannelExternal,
			"monochromator",
		},
		{
			"unknown device sentinel",
			HeaderMap{"External Channel #1": "Some New Gadget [V]"},
			ChannelExternal,
			"unknown device",
		},
		{
			"no external channel key",
			HeaderMap{"Other": "value"},
			ChannelExternal,
			"unknown device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deviceName(tt.header, tt.channelType))
		})
	}
}

func TestDeviceSettings_FileScopeWins(t *testing.T) {
	res := &resolver{global: HeaderMap{"Eff. Workfunction": "4.5"}}

	settings := res.deviceSettings(HeaderMap{
		"Scan Mode":         "FixedAnalyzerTransmission",
		"Eff. Workfunction": "4.2",
	}, ChannelPrimary)

	assert.Equal(t, "FixedAnalyzerTransmission", settings.ScanMode)
	assert.Equal(t, "4.5", settings.Workfunction)
	assert.Equal(t, "Phoibos Hemispherical Analyzer", settings.DeviceName)
}

func TestExternalChannelValue_Deterministic(t *testing.T) {
	header := HeaderMap{
		"External Channel B": "second",
		"External Channel A": "first",
	}

	for i := 0; i < 20; i++ {
		value, ok := externalChannelValue(header)
		require.True(t, ok)
		assert.Equal(t, "first", value)
	}
}
