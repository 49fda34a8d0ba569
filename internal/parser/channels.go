package parser

import "fmt"

// extractChannels builds the ordered channel list for one group: the
// synthetic axis channel first (id 0), then one Y channel per block in group
// order. Every block must carry the same number of rows as the primary, so
// all value arrays of the resulting record have equal length.
func (r *resolver) extractChannels(group SpectrumGroup) ([]DataChannel, error) {
	channels := make([]DataChannel, 0, len(group)+1)
	channels = append(channels, r.xChannel(group))

	primaryRows := len(group[0].Rows)

	id := 1
	for _, block := range group {
		if len(block.Rows) != primaryRows {
			return nil, &channelLengthError{Line: block.Line, Got: len(block.Rows), Want: primaryRows}
		}
		y, err := r.yChannel(block, id)
		if err != nil {
			return nil, err
		}
		channels = append(channels, y)
		id++
	}

	return channels, nil
}

// xChannel derives the shared X axis from the first column of the primary
// block. The exported format never labels the axis explicitly: NEXAFS groups
// scan the excitation energy, otherwise the file-scope Energy Axis header
// names it.
func (r *resolver) xChannel(group SpectrumGroup) DataChannel {
	channel := DataChannel{
		ChannelID: 0,
		Unit:      defaultEnergyUnit,
	}

	if isNexafs(group) {
		channel.Label = "excitation energy"
	} else if label, ok := r.global["Energy Axis"]; ok {
		channel.Label = label
	}

	primary := group[0]
	channel.Values = make([]float64, len(primary.Rows))
	for i, row := range primary.Rows {
		channel.Values[i] = row[0]
	}

	channel.Settings = r.deviceSettings(HeaderMap{}, ChannelAxis)
	channel.Settings.ChannelID = 0

	return channel
}

// yChannel extracts one block's measured values (the second column of its
// rows) together with label, unit and device settings.
func (r *resolver) yChannel(block *DataBlock, id int) (DataChannel, error) {
	var label, unit string
	switch block.Type {
	case ChannelPrimary:
		label, unit = r.primaryLabel()
	case ChannelExternal:
		label, unit = externalLabel(block.Header)
	}

	channel := DataChannel{
		ChannelID: id,
		Label:     label,
		Unit:      unit,
	}

	channel.Values = make([]float64, len(block.Rows))
	for i, row := range block.Rows {
		if len(row) < 2 {
			return DataChannel{}, &missingColumnError{Line: block.Line, Cols: len(row)}
		}
		channel.Values[i] = row[1]
	}

	channel.Settings = r.deviceSettings(block.Header, block.Type)
	channel.Settings.ChannelID = id

	return channel, nil
}

// primaryLabel derives the primary channel's label and unit from the
// file-scope Count Rate header.
func (r *resolver) primaryLabel() (label, unit string) {
	switch r.global["Count Rate"] {
	case "Counts":
		return "total counts", "counts"
	case "Counts per Second":
		return "count rate", "counts per second"
	}
	return "", ""
}

// externalLabel matches an external channel's header value against the
// known label and unit tables. An unrecognized label becomes an explicit
// sentinel rather than an error; an unrecognized unit stays empty.
func externalLabel(header HeaderMap) (label, unit string) {
	value, ok := externalChannelValue(header)
	if !ok {
		return "", ""
	}
	label = lookupVendor(knownChannelLabels, value, unknownDataLabel)
	unit = lookupVendor(knownChannelUnits, value, "")
	return label, unit
}

// channelLengthError reports a channel block whose row count differs from
// its group's primary block.
type channelLengthError struct {
	Line int
	Got  int
	Want int
}

func (e *channelLengthError) Error() string {
	return fmt.Sprintf("channel block at line %d has %d rows, expected %d to match the primary channel", e.Line, e.Got, e.Want)
}

// missingColumnError reports a data block whose rows are too narrow to hold
// a Y column.
type missingColumnError struct {
	Line int
	Cols int
}

func (e *missingColumnError) Error() string {
	return fmt.Sprintf("data block at line %d has rows with %d columns, expected at least 2", e.Line, e.Cols)
}
