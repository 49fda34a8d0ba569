package parser

import (
	"sort"
	"strings"
)

// resolver carries the merge state for one parse invocation: the file-scope
// header and the region/group names carried over between groups. A fresh
// resolver is built per file, never shared.
type resolver struct {
	global HeaderMap
	opts   Options

	// Running carry-over values. When a group omits Region or Group in
	// its local header, the previous group's value is reused.
	currentRegion string
	currentGroup  string
}

// groupMetadata merges metadata for one group. Group-local values are
// applied first, then the Region/Group carry-over, then file-scope values
// for the same keys, so the file-scope header wins on conflict. The inferred
// method type is resolved last.
func (r *resolver) groupMetadata(group SpectrumGroup) GroupMetadata {
	var meta GroupMetadata

	for _, block := range group {
		if block.Type != ChannelPrimary {
			continue
		}
		for key, value := range block.Header {
			if set, ok := groupMetadataAttributeMap[key]; ok {
				set(&meta, value)
			}
		}

		// A spectrum recorded inside a loop or multi-scan omits Region
		// and Group from its local header.
		if v, ok := block.Header["Region"]; ok {
			r.currentRegion = v
		} else {
			meta.SpectrumRegion = r.currentRegion
		}
		if v, ok := block.Header["Group"]; ok {
			r.currentGroup = v
		} else {
			meta.GroupName = r.currentGroup
		}
	}

	for key, value := range r.global {
		if set, ok := groupMetadataAttributeMap[key]; ok {
			set(&meta, value)
		}
	}

	meta.Author = r.opts.Author
	meta.Sample = r.opts.Sample
	meta.ExperimentID = r.opts.ExperimentID
	meta.Project = r.opts.Project

	meta.MethodType = r.methodType(group)

	return meta
}

// isNexafs reports whether the group holds NEXAFS data. The method type
// does not say so directly; it is inferred from the scan mode sentinel or
// from an Excitation Energy column label.
func isNexafs(group SpectrumGroup) bool {
	for _, block := range group {
		if block.Header["Scan Mode"] == nexafsScanMode {
			return true
		}
		if labels, ok := block.Header["ColumnLabels"]; ok &&
			strings.Contains(labels, "Excitation Energy") {
			return true
		}
	}
	return false
}

// methodType resolves the acquisition method: NEXAFS when inferred, else
// the first block's Analysis Method verbatim, else the XPS default.
func (r *resolver) methodType(group SpectrumGroup) string {
	if isNexafs(group) {
		return "NEXAFS"
	}
	for _, block := range group {
		if v, ok := block.Header["Analysis Method"]; ok {
			return v
		}
	}
	return defaultMethodType
}

// deviceSettings resolves per-channel settings: channel-local header values
// first, then file-scope values for the same keys (file-scope wins), then
// the device name.
func (r *resolver) deviceSettings(header HeaderMap, channelType ChannelType) DeviceSettings {
	var settings DeviceSettings

	for key, value := range header {
		if set, ok := settingsAttributeMap[key]; ok {
			set(&settings, value)
		}
	}
	for key, value := range r.global {
		if set, ok := settingsAttributeMap[key]; ok {
			set(&settings, value)
		}
	}

	settings.DeviceName = deviceName(header, channelType)

	return settings
}

// deviceName resolves the recording device. The vendor export never names
// the spectrometer itself, so primary and axis channels fall back to fixed
// defaults; external channels are matched against the known-device table in
// declaration order, first match winning.
func deviceName(header HeaderMap, channelType ChannelType) string {
	switch channelType {
	case ChannelPrimary:
		return defaultPrimaryDeviceName
	case ChannelAxis:
		return defaultAxisDeviceName
	}

	if value, ok := externalChannelValue(header); ok {
		return lookupVendor(knownDeviceNames, value, unknownDeviceName)
	}
	return unknownDeviceName
}

// externalChannelValue returns the value of the first header key (in sorted
// key order, for determinism) containing "External Channel".
func externalChannelValue(header HeaderMap) (string, bool) {
	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(key, "External Channel") {
			return header[key], true
		}
	}
	return "", false
}
