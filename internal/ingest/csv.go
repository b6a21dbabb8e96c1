package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrColumns = errors.New("ingest: latitude/longitude columns not found")

// column indices of a CSV header, -1 when absent
type csvColumns struct {
	lon, lat, name, value int
}

func findColumns(header []string) csvColumns {
	c := csvColumns{lon: -1, lat: -1, name: -1, value: -1}
	set := func(dst *int, i int) {
		if *dst == -1 {
			*dst = i
		}
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			set(&c.lat, i)
		case "lon", "lng", "long", "longitude", "x":
			set(&c.lon, i)
		case "name", "label", "title":
			set(&c.name, i)
		case "value", "val", "magnitude", "mag":
			set(&c.value, i)
		}
	}
	return c
}

// ReadCSV reads one point per row. Rows with unparsable coordinates are
// skipped; an unparsable value reads as 0.
func ReadCSV(r io.Reader) (*Features, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: %w", ErrNoFeatures)
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	cols := findColumns(header)
	if cols.lat == -1 || cols.lon == -1 {
		return nil, ErrColumns
	}
	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	f := &Features{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		lon, err1 := strconv.ParseFloat(cell(row, cols.lon), 64)
		lat, err2 := strconv.ParseFloat(cell(row, cols.lat), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		v, _ := strconv.ParseFloat(cell(row, cols.value), 64)
		f.addPoint(lon, lat, cell(row, cols.name), v)
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("csv: %w", ErrNoFeatures)
	}
	return f, nil
}
