package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects log records by their structured fields. Zero fields match
// everything. Lines that are not JSON objects only match an empty filter.
type Filter struct {
	JobID     string
	RequestID string
	EventType string
	MinLevel  string
}

type record struct {
	Level         string `json:"level"`
	JobID         string `json:"job_id"`
	CorrelationID string `json:"correlation_id"`
	EventType     string `json:"event_type"`
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// Empty reports whether the filter has no criteria.
func (f Filter) Empty() bool {
	return f.JobID == "" && f.RequestID == "" && f.EventType == "" && f.MinLevel == ""
}

// Match reports whether line satisfies the filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var rec record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return false
	}
	if f.JobID != "" && rec.JobID != f.JobID {
		return false
	}
	if f.RequestID != "" && rec.CorrelationID != f.RequestID {
		return false
	}
	if f.EventType != "" && rec.EventType != f.EventType {
		return false
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToUpper(f.MinLevel)]
		if ok && levelRank[strings.ToUpper(rec.Level)] < want {
			return false
		}
	}
	return true
}
