package parser

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// cursor walks the loaded lines of one file. All parse state for a single
// invocation lives here, so concurrent parses of different files never share
// anything.
type cursor struct {
	lines []string
	pos   int // index of the next unconsumed line
}

func (c *cursor) remaining() int { return len(c.lines) - c.pos }

// lineNumber is the 1-based number of the next unconsumed line.
func (c *cursor) lineNumber() int { return c.pos + 1 }

// loadLines reads the whole file into an ordered line slice.
func loadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open xy file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 4*1024*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan xy file: %w", err)
	}

	return lines, nil
}

// splitHeaderLine splits a marker-stripped header line on the first ':'.
// Everything after the first colon belongs to the value.
func splitHeaderLine(line string) (key, value string) {
	parts := strings.SplitN(line, ":", 2)
	key = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		value = strings.TrimSpace(parts[1])
	}
	return key, value
}

// parseGlobalHeader consumes the file-scope header block. The block ends
// after two consecutive blank lines (blank after marker-stripping). Reaching
// end of input first is a MalformedHeaderError.
func parseGlobalHeader(cur *cursor, prefix string) (HeaderMap, error) {
	header := make(HeaderMap)
	blanks := 0

	for blanks < 2 {
		if cur.remaining() == 0 {
			return nil, &MalformedHeaderError{Line: len(cur.lines)}
		}
		line := strings.TrimSpace(strings.Trim(cur.lines[cur.pos], prefix))
		cur.pos++

		if len(line) == 0 {
			blanks++
			continue
		}
		blanks = 0
		key, value := splitHeaderLine(line)
		header[key] = value
	}

	return header, nil
}

// parseBlockHeader collects the consecutive comment-marker lines that open a
// data block.
func parseBlockHeader(cur *cursor, prefix string) HeaderMap {
	header := make(HeaderMap)

	for cur.remaining() > 0 && strings.HasPrefix(cur.lines[cur.pos], prefix) {
		line := strings.Trim(cur.lines[cur.pos], prefix)
		cur.pos++
		key, value := splitHeaderLine(line)
		header[key] = value
	}

	return header
}

// parseDataRows collects the whitespace-delimited numeric rows following a
// block header, stopping at the next comment line or when fewer than two
// lines remain. Every token is parsed as a float and rounded to 3 decimal
// places; blank lines inside the block are skipped.
func parseDataRows(cur *cursor, prefix string) ([][]float64, error) {
	var rows [][]float64

	for cur.remaining() > 1 && !strings.HasPrefix(cur.lines[cur.pos], prefix) {
		lineNo := cur.lineNumber()
		fields := strings.Fields(cur.lines[cur.pos])
		cur.pos++

		if len(fields) == 0 {
			continue
		}

		row := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &InvalidNumericTokenError{Line: lineNo, Token: tok}
			}
			row[i] = round3(v)
		}

		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, &raggedRowError{Line: lineNo, Got: len(row), Want: len(rows[0])}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// round3 rounds to 3 decimal places, matching the instrument export
// precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// raggedRowError reports a data row whose column count differs from the
// first row of its block.
type raggedRowError struct {
	Line int
	Got  int
	Want int
}

func (e *raggedRowError) Error() string {
	return fmt.Sprintf("data row on line %d has %d columns, expected %d", e.Line, e.Got, e.Want)
}
