package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteJSONL writes every event of the log as one JSON object per line,
// traces ordered by episode ID and events by step.
func WriteJSONL(w io.Writer, log *Log) error {
	log.SortTraces()
	enc := json.NewEncoder(w)
	for _, trace := range log.Traces() {
		for _, event := range trace.Events {
			if err := enc.Encode(event); err != nil {
				return fmt.Errorf("encoding event: %w", err)
			}
		}
	}
	return nil
}

// WriteJSONLFile writes the log to a JSONL file.
func WriteJSONLFile(path string, log *Log) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteJSONL(bw, log); err != nil {
		return err
	}
	return bw.Flush()
}

// ParseJSONL reads an episode log from JSONL input. Blank lines are
// skipped; any malformed line fails the parse.
func ParseJSONL(r io.Reader) (*Log, error) {
	log := NewLog()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(text), &event); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		log.AddEvent(event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	log.SortTraces()
	return log, nil
}

// ParseJSONLFile reads an episode log from a JSONL file.
func ParseJSONLFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ParseJSONL(f)
}
