// Package eventlog records and replays episode traces: the sequence of
// grounded actions sampled while executing a probabilistic planning
// model. Traces can be written to and parsed from JSONL and CSV for
// offline analysis.
package eventlog

import (
	"sort"
	"time"
)

// Event is one sampled action execution within an episode.
type Event struct {
	EpisodeID   string    `json:"episode_id"`
	Step        int       `json:"step"`
	Action      string    `json:"action"` // grounded action label
	Probability float64   `json:"probability"`
	StateDigest string    `json:"state_digest"` // resulting state fingerprint
	Timestamp   time.Time `json:"timestamp"`
}

// Trace is the ordered event sequence of a single episode.
type Trace struct {
	EpisodeID string
	Events    []Event

	// ReachedGoal records whether the episode ended in a goal state.
	ReachedGoal bool
}

// Log collects traces across episodes.
type Log struct {
	Episodes map[string]*Trace
}

// NewLog creates an empty episode log.
func NewLog() *Log {
	return &Log{Episodes: make(map[string]*Trace)}
}

// AddEvent appends an event to its episode's trace, creating the trace
// if needed.
func (l *Log) AddEvent(event Event) {
	trace, ok := l.Episodes[event.EpisodeID]
	if !ok {
		trace = &Trace{EpisodeID: event.EpisodeID}
		l.Episodes[event.EpisodeID] = trace
	}
	trace.Events = append(trace.Events, event)
}

// SortTraces orders events within each trace by step index.
func (l *Log) SortTraces() {
	for _, trace := range l.Episodes {
		sort.Slice(trace.Events, func(i, j int) bool {
			return trace.Events[i].Step < trace.Events[j].Step
		})
	}
}

// Traces returns all traces sorted by episode ID for stable iteration.
func (l *Log) Traces() []*Trace {
	traces := make([]*Trace, 0, len(l.Episodes))
	for _, trace := range l.Episodes {
		traces = append(traces, trace)
	}
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].EpisodeID < traces[j].EpisodeID
	})
	return traces
}

// ActionFrequencies counts how often each action label occurs across
// all traces.
func (l *Log) ActionFrequencies() map[string]int {
	freq := make(map[string]int)
	for _, trace := range l.Episodes {
		for _, event := range trace.Events {
			freq[event.Action]++
		}
	}
	return freq
}
