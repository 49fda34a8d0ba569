package parser

import (
	"github.com/rs/zerolog/log"
)

// Options carries operator-supplied metadata merged into every group's
// record. None of the fields appear in the instrument export itself.
type Options struct {
	Author       string
	Sample       string
	ExperimentID string
	Project      string
}

// XYParser reads ASCII-encoded .xy exports from Specs Prodigy.
//
// Tested against SpecsLab Prodigy v4.64.1-r88350 exports. The parser itself
// holds only configuration; all parse state lives in per-invocation values,
// so one XYParser may parse many files concurrently.
type XYParser struct {
	// Prefix is the comment marker opening header lines. Default "#".
	Prefix string
	Opts   Options
}

func NewXYParser() *XYParser { return &XYParser{Prefix: "#"} }

func (p *XYParser) CanParse(ext string) bool {
	return ext == ".xy"
}

// Parse runs the full pipeline on one file and returns the normalized
// records, one per retained spectrum group. Any failure aborts the whole
// file: no partial records are returned.
func (p *XYParser) Parse(filePath string) ([]Record, error) {
	prefix := p.Prefix
	if prefix == "" {
		prefix = "#"
	}

	lines, err := loadLines(filePath)
	if err != nil {
		return nil, err
	}
	cur := &cursor{lines: lines}

	global, err := parseGlobalHeader(cur, prefix)
	if err != nil {
		return nil, &ParseError{Path: filePath, Line: errorLine(err), Err: err}
	}

	var blocks []*DataBlock
	for cur.remaining() > 1 {
		line := cur.lineNumber()
		header := parseBlockHeader(cur, prefix)
		rows, err := parseDataRows(cur, prefix)
		if err != nil {
			return nil, &ParseError{Path: filePath, Line: errorLine(err), Err: err}
		}
		blocks = append(blocks, &DataBlock{Header: header, Rows: rows, Line: line})
	}

	groups, err := groupSpectra(blocks)
	if err != nil {
		return nil, &ParseError{Path: filePath, Line: errorLine(err), Err: err}
	}

	res := &resolver{global: global, opts: p.Opts}

	var records []Record
	dropped := 0
	for _, group := range groups {
		meta := res.groupMetadata(group)

		channels, err := res.extractChannels(group)
		if err != nil {
			return nil, &ParseError{Path: filePath, Line: errorLine(err), Err: err}
		}

		record, retained, err := normalizeGroup(meta, channels)
		if err != nil {
			return nil, &ParseError{Path: filePath, Err: err}
		}
		if !retained {
			dropped++
			continue
		}
		records = append(records, *record)
	}

	log.Debug().
		Str("file", filePath).
		Int("groups", len(groups)).
		Int("records", len(records)).
		Int("dropped", dropped).
		Msg("Parsed xy file")

	return records, nil
}

// errorLine extracts the offending line number from a typed parse error.
func errorLine(err error) int {
	switch e := err.(type) {
	case *MalformedHeaderError:
		return e.Line
	case *InvalidNumericTokenError:
		return e.Line
	case *OrphanExternalChannelError:
		return e.Line
	case *raggedRowError:
		return e.Line
	case *channelLengthError:
		return e.Line
	case *missingColumnError:
		return e.Line
	}
	return 0
}
