package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHeaderLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		key   string
		value string
	}{
		{"simple", "Region: Survey", "Region", "Survey"},
		{"value keeps later colons", "Analyzer Lens: MediumArea:1.5kV", "Analyzer Lens", "MediumArea:1.5kV"},
		{"no colon", "Region", "Region", ""},
		{"empty value", "Region:", "Region", ""},
		{"padded", "  Dwell Time  :   0.1  ", "Dwell Time", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value := splitHeaderLine(tt.line)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseGlobalHeader(t *testing.T) {
	cur := &cursor{lines: []string{
		"# Count Rate: Counts",
		"# Energy Axis: Kinetic Energy",
		"#",
		"#",
		"# Region: Survey",
	}}

	header, err := parseGlobalHeader(cur, "#")
	require.NoError(t, err)

	assert.Equal(t, "Counts", header["Count Rate"])
	assert.Equal(t, "Kinetic Energy", header["Energy Axis"])
	// Cursor sits on the first block header line.
	assert.Equal(t, 4, cur.pos)
}

func TestParseGlobalHeader_BlankCounterResets(t *testing.T) {
	// A single blank inside the header does not terminate it; only two in
	// a row do.
	cur := &cursor{lines: []string{
		"# Count Rate: Counts",
		"#",
		"# Energy Axis: Kinetic Energy",
		"#",
		"#",
		"data",
	}}

	header, err := parseGlobalHeader(cur, "#")
	require.NoError(t, err)
	assert.Equal(t, "Kinetic Energy", header["Energy Axis"])
	assert.Equal(t, 5, cur.pos)
}

func TestParseGlobalHeader_EOF(t *testing.T) {
	cur := &cursor{lines: []string{"# Count Rate: Counts"}}

	_, err := parseGlobalHeader(cur, "#")
	var herr *MalformedHeaderError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 1, herr.Line)
}

func TestParseBlockHeader(t *testing.T) {
	cur := &cursor{lines: []string{
		"# Region: Survey",
		"# Dwell Time: 0.1",
		"1200.0 100.0",
	}}

	header := parseBlockHeader(cur, "#")
	assert.Equal(t, HeaderMap{"Region": "Survey", "Dwell Time": "0.1"}, header)
	assert.Equal(t, 2, cur.pos)
}

func TestParseDataRows(t *testing.T) {
	cur := &cursor{lines: []string{
		"1200.0 100.123456",
		"",
		"1199.5 110.5",
		"# Region: Fe2p",
		"trailer",
	}}

	rows, err := parseDataRows(cur, "#")
	require.NoError(t, err)

	// Blank lines are skipped, the comment line stops the block.
	assert.Equal(t, [][]float64{{1200, 100.123}, {1199.5, 110.5}}, rows)
	assert.Equal(t, 3, cur.pos)
}

func TestParseDataRows_LastLineNotConsumed(t *testing.T) {
	// The final line of a file is never consumed as data.
	cur := &cursor{lines: []string{
		"1200.0 100.0",
		"1199.5 110.0",
	}}

	rows, err := parseDataRows(cur, "#")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1200, 100}}, rows)
	assert.Equal(t, 1, cur.remaining())
}

func TestParseDataRows_InvalidToken(t *testing.T) {
	cur := &cursor{lines: []string{
		"1200.0 100.0",
		"1199.5 12,5",
		"1199.0 120.0",
	}}

	_, err := parseDataRows(cur, "#")
	var terr *InvalidNumericTokenError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "12,5", terr.Token)
	assert.Equal(t, 2, terr.Line)
}

func TestParseDataRows_RaggedRow(t *testing.T) {
	cur := &cursor{lines: []string{
		"1200.0 100.0",
		"1199.5 110.0 5.0",
		"1199.0 120.0",
	}}

	_, err := parseDataRows(cur, "#")
	var rerr *raggedRowError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 2, rerr.Line)
	assert.Equal(t, 3, rerr.Got)
	assert.Equal(t, 2, rerr.Want)
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 123.457, round3(123.456789))
	assert.Equal(t, 121.0, round3(120.9999))
	assert.Equal(t, -0.123, round3(-0.1234))
	assert.Equal(t, 5.0, round3(5))
}
