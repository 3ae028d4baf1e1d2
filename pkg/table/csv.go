package table

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads a comma separated table whose first line holds the headers.
// Fields are not unquoted and values are kept as raw strings. Rows with fewer
// fields than headers leave the remaining columns undefined.
func ParseCSV(r io.Reader) (Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var headers []string
	var out Table
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		fields := strings.Split(line, ",")
		if headers == nil {
			headers = fields
			continue
		}
		if line == "" {
			continue
		}
		values := make([]Value, len(fields))
		for i, f := range fields {
			values[i] = String(f)
		}
		out = append(out, NewRow(headers, values))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return out, nil
}

// ParseCSVString is ParseCSV over an in-memory string
func ParseCSVString(s string) (Table, error) {
	return ParseCSV(strings.NewReader(s))
}
