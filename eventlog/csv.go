package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"episode_id", "step", "action", "probability", "state_digest", "timestamp"}

// WriteCSV writes the log as CSV with a header row.
func WriteCSV(w io.Writer, log *Log) error {
	log.SortTraces()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, trace := range log.Traces() {
		for _, event := range trace.Events {
			record := []string{
				event.EpisodeID,
				strconv.Itoa(event.Step),
				event.Action,
				strconv.FormatFloat(event.Probability, 'g', -1, 64),
				event.StateDigest,
				event.Timestamp.Format(time.RFC3339Nano),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the log to a CSV file.
func WriteCSVFile(path string, log *Log) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, log)
}

// ParseCSV reads an episode log from CSV input produced by WriteCSV.
func ParseCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return NewLog(), nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	log := NewLog()
	for i, record := range records[1:] {
		if len(record) != len(csvHeader) {
			return nil, fmt.Errorf("record %d: expected %d fields, got %d", i+1, len(csvHeader), len(record))
		}
		step, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("record %d: step: %w", i+1, err)
		}
		prob, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("record %d: probability: %w", i+1, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, record[5])
		if err != nil {
			return nil, fmt.Errorf("record %d: timestamp: %w", i+1, err)
		}
		log.AddEvent(Event{
			EpisodeID:   record[0],
			Step:        step,
			Action:      record[2],
			Probability: prob,
			StateDigest: record[4],
			Timestamp:   ts,
		})
	}
	log.SortTraces()
	return log, nil
}

// checkHeader verifies the first row names the expected columns, in
// order. A data row in its place would otherwise be silently dropped.
func checkHeader(row []string) error {
	if len(row) != len(csvHeader) {
		return fmt.Errorf("header: expected %d columns, got %d", len(csvHeader), len(row))
	}
	for i, name := range csvHeader {
		if row[i] != name {
			return fmt.Errorf("header: expected column %q at position %d, got %q", name, i, row[i])
		}
	}
	return nil
}

// ParseCSVFile reads an episode log from a CSV file.
func ParseCSVFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}
