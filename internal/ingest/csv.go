// Package ingest parses the four timetable input CSVs (stations,
// trips, footpaths, groups) into the model package's types, and
// validates cross-references between them. Parsing follows the
// column-map-over-header pattern used throughout the corpus this
// module is grown from: read the header once, build a name->index
// map, then look columns up by name so column order in the file never
// matters.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInputMalformed, path, err)
	}
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	return r, f, nil
}

func columnMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		m[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return m
}

func readAll(path string) ([]map[string]int, [][]string, error) {
	r, f, err := openCSV(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: missing header: %v", ErrInputMalformed, path, err)
	}
	colMap := columnMap(header)

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInputMalformed, path, err)
		}
		rows = append(rows, record)
	}
	return []map[string]int{colMap}, rows, nil
}

func field(colMap map[string]int, row []string, name string) (string, bool) {
	idx, ok := colMap[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

func intField(colMap map[string]int, row []string, name, path string) (int, error) {
	s, ok := field(colMap, row, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s: missing column %q", ErrInputMalformed, path, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: column %q: %v", ErrInputMalformed, path, name, err)
	}
	return v, nil
}

func optionalIntField(colMap map[string]int, row []string, name, path string) (int, bool, error) {
	s, ok := field(colMap, row, name)
	if !ok || s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: column %q: %v", ErrInputMalformed, path, name, err)
	}
	return v, true, nil
}

func stringField(colMap map[string]int, row []string, name, path string) (string, error) {
	s, ok := field(colMap, row, name)
	if !ok {
		return "", fmt.Errorf("%w: %s: missing column %q", ErrInputMalformed, path, name)
	}
	return s, nil
}
