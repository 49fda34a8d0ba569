package parser

// ChannelType classifies a data block within a spectrum group.
type ChannelType string

const (
	// ChannelPrimary is the main measurement channel of a spectrum.
	ChannelPrimary ChannelType = "primary"
	// ChannelExternal is an auxiliary channel recorded alongside the
	// primary channel (ring current, mirror current, ...).
	ChannelExternal ChannelType = "external"
	// ChannelAxis is the synthetic X-axis channel derived from the
	// primary block's first column.
	ChannelAxis ChannelType = "axis"
)

// HeaderMap holds the trimmed key/value pairs of one comment header block.
type HeaderMap map[string]string

// DataBlock is one comment header plus the numeric rows that follow it.
type DataBlock struct {
	// Header holds the block's key/value metadata lines.
	Header HeaderMap
	// Type is assigned during classification.
	Type ChannelType
	// Rows holds the whitespace-delimited numeric rows, each value
	// rounded to 3 decimal places. All rows have the same column count.
	Rows [][]float64
	// Line is the 1-based line where the block's header starts.
	Line int
}

// SpectrumGroup is a primary block followed by its external channels.
// The primary block is always at index 0.
type SpectrumGroup []*DataBlock

// DataLabel describes one channel's label and unit in the group metadata.
type DataLabel struct {
	ChannelID int    `json:"channel_id"`
	Label     string `json:"label"`
	Unit      string `json:"unit"`
}

// DeviceSettings holds the per-channel acquisition device settings.
type DeviceSettings struct {
	DeviceName      string `json:"device_name"`
	ChannelID       int    `json:"channel_id"`
	AnalysisMethod  string `json:"analysis_method,omitempty"`
	AnalyzerLens    string `json:"analyzer_lens,omitempty"`
	AnalyzerSlit    string `json:"analyzer_slit,omitempty"`
	DetectorVoltage string `json:"detector_voltage,omitempty"`
	Workfunction    string `json:"workfunction,omitempty"`
	ScanMode        string `json:"scan_mode,omitempty"`
}

// GroupMetadata is the normalized metadata record for one spectrum group.
type GroupMetadata struct {
	Timestamp        string `json:"timestamp"`
	DwellTime        string `json:"dwell_time"`
	NScans           string `json:"n_scans"`
	NValues          string `json:"n_values"`
	ExcitationEnergy string `json:"excitation_energy"`
	MethodType       string `json:"method_type"`
	SpectrumRegion   string `json:"spectrum_region"`
	GroupName        string `json:"group_name"`
	SourceLabel      string `json:"source_label"`

	// Operator-supplied metadata, passed through from Options.
	Author       string `json:"author,omitempty"`
	Sample       string `json:"sample,omitempty"`
	ExperimentID string `json:"experiment_id,omitempty"`
	Project      string `json:"project,omitempty"`

	// ExperimentParameters holds the key/value tags extracted from the
	// group name's embedded "#Key: value" syntax.
	ExperimentParameters map[string]string `json:"experiment_parameters"`

	DataLabels     []DataLabel      `json:"data_labels"`
	DeviceSettings []DeviceSettings `json:"device_settings"`
}

// DataChannel is one physical channel's extracted values.
type DataChannel struct {
	ChannelID int            `json:"channel_id"`
	Label     string         `json:"label"`
	Unit      string         `json:"unit"`
	Values    []float64      `json:"values"`
	Settings  DeviceSettings `json:"device_settings"`
}

// Quantity is a value array with a physical unit attached.
type Quantity struct {
	Values []float64 `json:"values"`
	Unit   string    `json:"unit"`
}

// ExtraChannel is a supplemental channel with its header descriptor.
type ExtraChannel struct {
	Header DataLabel `json:"header"`
	Values []float64 `json:"values"`
}

// Record is the normalized per-group output: metadata plus channel data
// partitioned into fixed semantic roles.
type Record struct {
	Metadata GroupMetadata `json:"metadata"`
	// Energy is the shared X axis with its unit.
	Energy Quantity `json:"energy"`
	// Count is the dimensionless primary count array.
	Count []float64 `json:"count"`
	// ExtraChannels holds every channel that is neither energy nor count.
	ExtraChannels []ExtraChannel `json:"additional_channels"`
}
