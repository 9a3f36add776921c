package reports

import (
	"bytes"
	"devicelog/models"
	"encoding/json"
	"fmt"
)

// ConflictPolicy decides the cell value when a session logs the same key more
// than once.
type ConflictPolicy string

const (
	LastWriteWins  ConflictPolicy = "last_write_wins"
	FirstWriteWins ConflictPolicy = "first_write_wins"
	ConcatValues   ConflictPolicy = "concat"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(s); p {
	case LastWriteWins, FirstWriteWins, ConcatValues:
		return p, nil
	case "":
		return LastWriteWins, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", s)
	}
}

// keySet is an insertion-ordered set of keys.
type keySet struct {
	seen map[string]struct{}
	keys []string
}

func newKeySet() *keySet {
	return &keySet{seen: make(map[string]struct{})}
}

// Add appends key if it has not been seen and reports whether it was new.
func (s *keySet) Add(key string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

func (s *keySet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *keySet) Len() int {
	return len(s.keys)
}

// Matrix is the session x key pivot of a window.
type Matrix struct {
	Keys         []string
	Cells        map[string]map[string]json.RawMessage
	TotalEntries int
}

// BuildMatrix pivots data points into one row per session. Only entries with
// a session uuid, a key and a non-null value participate. Keys are listed in
// first-seen (CreatedAt, ID) order. Every session gets a row, possibly empty.
//
// entries must already be ordered by (CreatedAt, ID).
func BuildMatrix(entries []models.LogEntry, sessions []models.Session, policy ConflictPolicy) Matrix {
	keys := newKeySet()
	cells := make(map[string]map[string]json.RawMessage, len(sessions))
	for _, s := range sessions {
		cells[s.UUID] = make(map[string]json.RawMessage)
	}

	var concat map[string]map[string][]json.RawMessage
	if policy == ConcatValues {
		concat = make(map[string]map[string][]json.RawMessage)
	}

	for _, entry := range entries {
		if entry.SessionUUID == nil || entry.Key == "" || !entry.HasValue() {
			continue
		}
		row, ok := cells[*entry.SessionUUID]
		if !ok {
			continue
		}
		keys.Add(entry.Key)

		switch policy {
		case FirstWriteWins:
			if _, exists := row[entry.Key]; !exists {
				row[entry.Key] = entry.Value
			}
		case ConcatValues:
			values := concat[*entry.SessionUUID]
			if values == nil {
				values = make(map[string][]json.RawMessage)
				concat[*entry.SessionUUID] = values
			}
			values[entry.Key] = append(values[entry.Key], entry.Value)
			row[entry.Key] = nil
		default:
			row[entry.Key] = entry.Value
		}
	}

	for sessionUUID, values := range concat {
		for key, list := range values {
			cells[sessionUUID][key] = joinValues(list)
		}
	}

	total := 0
	for _, row := range cells {
		total += len(row)
	}

	return Matrix{
		Keys:         keys.Keys(),
		Cells:        cells,
		TotalEntries: total,
	}
}

// joinValues renders values as a JSON array in their logged order.
func joinValues(values []json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(bytes.TrimSpace(v))
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// ColumnLabels maps keys through the project's column mapping. The result is
// parallel to keys.
func ColumnLabels(keys []string, project *models.Project) []string {
	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = project.Label(key)
	}
	return labels
}
