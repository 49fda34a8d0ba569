package parser

import "strings"

// Vendor-specific lookup tables for the Specs Prodigy .xy export format.
// All tables are initialized once and never mutated.

// externalChannelIndicator marks a block header key as belonging to an
// external channel (matched case-insensitively as a substring).
const externalChannelIndicator = "external channel"

// groupMetadataAttributeMap maps vendor header keys to GroupMetadata fields.
var groupMetadataAttributeMap = map[string]func(*GroupMetadata, string){
	"Acquisition Date":  func(m *GroupMetadata, v string) { m.Timestamp = v },
	"Dwell Time":        func(m *GroupMetadata, v string) { m.DwellTime = v },
	"Group":             func(m *GroupMetadata, v string) { m.GroupName = v },
	"Number of Scans":   func(m *GroupMetadata, v string) { m.NScans = v },
	"Region":            func(m *GroupMetadata, v string) { m.SpectrumRegion = v },
	"Excitation Energy": func(m *GroupMetadata, v string) { m.ExcitationEnergy = v },
	"Values/Curve":      func(m *GroupMetadata, v string) { m.NValues = v },
	"Source":            func(m *GroupMetadata, v string) { m.SourceLabel = v },
}

// settingsAttributeMap maps vendor header keys to DeviceSettings fields.
var settingsAttributeMap = map[string]func(*DeviceSettings, string){
	"Analysis Method":   func(s *DeviceSettings, v string) { s.AnalysisMethod = v },
	"Analyzer Lens":     func(s *DeviceSettings, v string) { s.AnalyzerLens = v },
	"Analyzer Slit":     func(s *DeviceSettings, v string) { s.AnalyzerSlit = v },
	"Detector Voltage":  func(s *DeviceSettings, v string) { s.DetectorVoltage = v },
	"Eff. Workfunction": func(s *DeviceSettings, v string) { s.Workfunction = v },
	"Scan Mode":         func(s *DeviceSettings, v string) { s.ScanMode = v },
}

// vendorEntry is one substring-to-normalized-name mapping. The tables below
// are ordered slices: resolution walks them in declaration order and the
// first substring match wins, so lookups are deterministic.
type vendorEntry struct {
	pattern string
	name    string
}

var knownChannelLabels = []vendorEntry{
	{"Ring Current", "ring current"},
	{"I_mirror", "mirror current"},
	{"Excitation Energy", "excitation energy"},
	{"TEY", "total electron yield"},
}

var knownChannelUnits = []vendorEntry{
	{"[mA]", "mA"},
	{"[V]", "V"},
	{"[eV]", "eV"},
}

var knownDeviceNames = []vendorEntry{
	{"AMC Mono (TCP)", "monochromator"},
	{"UE56/2-PGM1 (TCP)", "beamline"},
	{"ARMIN-ADC3", "armin"},
	{"Armin10", "armin"},
}

const (
	defaultEnergyUnit        = "eV"
	defaultPrimaryDeviceName = "Phoibos Hemispherical Analyzer"
	defaultAxisDeviceName    = "HSA 3500 plus"
	defaultMethodType        = "XPS"

	// nexafsScanMode is the Scan Mode sentinel that marks NEXAFS data.
	nexafsScanMode = "ConstantFinalState"

	unknownDeviceName = "unknown device"
	unknownDataLabel  = "unknown data label"
)

// lookupVendor returns the normalized name of the first table entry whose
// pattern is a substring of s, or fallback when none matches.
func lookupVendor(table []vendorEntry, s, fallback string) string {
	for _, e := range table {
		if strings.Contains(s, e.pattern) {
			return e.name
		}
	}
	return fallback
}
