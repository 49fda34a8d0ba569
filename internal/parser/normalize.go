package parser

import (
	"fmt"
	"strings"

	"specs-archiver/internal/textutil"
)

// normalizeGroup reshapes one group's resolved metadata and channels into
// the final record. Alignment spectra are dropped (retained == false);
// retained groups must end up with exactly one energy and one count role.
func normalizeGroup(meta GroupMetadata, channels []DataChannel) (record *Record, retained bool, err error) {
	if strings.Contains(strings.ToLower(meta.SpectrumRegion), "align") {
		return nil, false, nil
	}

	// Hoist per-channel labels and device settings into the group
	// metadata, ordered by channel id.
	meta.DataLabels = make([]DataLabel, 0, len(channels))
	meta.DeviceSettings = make([]DeviceSettings, 0, len(channels))
	for _, channel := range channels {
		meta.DataLabels = append(meta.DataLabels, DataLabel{
			ChannelID: channel.ChannelID,
			Label:     channel.Label,
			Unit:      channel.Unit,
		})
		meta.DeviceSettings = append(meta.DeviceSettings, channel.Settings)
	}

	extractTags(&meta)

	record = &Record{Metadata: meta}

	var haveEnergy, haveCount bool
	for i, channel := range channels {
		switch textutil.NormalizeLabel(channel.Label) {
		case "count", "total_counts":
			if haveCount {
				return nil, false, &duplicateRoleError{Role: "count", GroupName: meta.GroupName}
			}
			record.Count = channel.Values
			haveCount = true
		case "energy", "kinetic_energy":
			if haveEnergy {
				return nil, false, &duplicateRoleError{Role: "energy", GroupName: meta.GroupName}
			}
			record.Energy = Quantity{Values: channel.Values, Unit: channel.Unit}
			haveEnergy = true
		default:
			record.ExtraChannels = append(record.ExtraChannels, ExtraChannel{
				Header: meta.DataLabels[i],
				Values: channel.Values,
			})
		}
	}

	if !haveEnergy {
		return nil, false, &MissingRequiredFieldError{Field: "energy", GroupName: meta.GroupName}
	}
	if !haveCount {
		return nil, false, &MissingRequiredFieldError{Field: "count", GroupName: meta.GroupName}
	}

	return record, true, nil
}

// duplicateRoleError reports a group where more than one channel resolves to
// the same required role.
type duplicateRoleError struct {
	Role      string
	GroupName string
}

func (e *duplicateRoleError) Error() string {
	return fmt.Sprintf("group %q has more than one %s channel", e.GroupName, e.Role)
}

// extractTags parses the "#Key: value" tag syntax users embed in the group
// name. Tag values populate ExperimentParameters; when the base name before
// the first '#' is empty, the comma-joined values become the group name.
func extractTags(meta *GroupMetadata) {
	meta.ExperimentParameters = make(map[string]string)

	tags := strings.Split(meta.GroupName, "#")
	if len(tags) <= 1 {
		return
	}

	var joined strings.Builder
	for _, tag := range tags[1:] {
		kv := strings.SplitN(tag, ":", 2)
		if len(kv) < 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), ",")
		if len(val) == 0 {
			continue
		}
		meta.ExperimentParameters[key] = val
		joined.WriteString(val)
		joined.WriteString(", ")
	}

	if len(strings.TrimSpace(tags[0])) == 0 {
		meta.GroupName = joined.String()
	} else {
		meta.GroupName = tags[0]
	}
}
