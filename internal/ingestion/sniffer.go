package ingestion

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// delimiterCandidates is the ordered set tried during detection. The first
// candidate producing a plausible table wins.
var delimiterCandidates = []rune{',', ';', '|', '\t'}

// Table is one delimited file parsed into trimmed headers plus data rows.
// Rows keep their original order; short rows are padded to the header width.
type Table struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune
}

// ReadTable sniffs the delimiter on a bounded sample and then parses the whole
// stream with it. A candidate is accepted when it yields more than one column
// and more non-empty cells than sample rows.
func ReadTable(r io.Reader, sampleRows int) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	delim, ok := detectDelimiter(data, sampleRows)
	if !ok {
		tried := make([]string, 0, len(delimiterCandidates))
		for _, d := range delimiterCandidates {
			tried = append(tried, delimiterName(d))
		}
		return nil, &DelimiterDetectionError{Tried: tried}
	}

	return parseTable(data, delim)
}

func delimiterName(d rune) string {
	if d == '\t' {
		return "TAB"
	}
	return string(d)
}

// detectDelimiter tries each candidate against the first sampleRows data rows.
func detectDelimiter(data []byte, sampleRows int) (rune, bool) {
	for _, d := range delimiterCandidates {
		reader := newCSVReader(data, d)

		header, err := reader.Read()
		if err != nil || len(header) <= 1 {
			continue
		}

		rows := 0
		nonEmpty := 0
		for rows < sampleRows {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			rows++
			for _, cell := range record {
				if strings.TrimSpace(cell) != "" {
					nonEmpty++
				}
			}
		}

		if rows > 0 && nonEmpty > rows {
			return d, true
		}
	}
	return 0, false
}

// parseTable reads the full file with the accepted delimiter, trimming header
// whitespace and padding short rows to the header width.
func parseTable(data []byte, delim rune) (*Table, error) {
	reader := newCSVReader(data, delim)

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate ragged tails the way the sniffer sample did.
			break
		}
		row := make([]string, len(headers))
		for i := range row {
			if i < len(record) {
				row[i] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows, Delimiter: delim}, nil
}

func newCSVReader(data []byte, delim rune) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// Column returns the index of the named header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Values returns the trimmed cell values of one column across all rows.
func (t *Table) Values(col int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if col >= 0 && col < len(row) {
			out[i] = strings.TrimSpace(row[col])
		}
	}
	return out
}
