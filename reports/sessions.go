package reports

import (
	"devicelog/models"
	"sort"
)

// SortEntries orders entries by (CreatedAt, ID) in place.
func SortEntries(entries []models.LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Before(entries[j])
	})
}

// GroupSessions partitions entries by session uuid and derives the metadata of
// each session. Entries without a session uuid are skipped. Sessions are
// ordered by (StartTime, smallest entry id) and indexed from 1 in that order.
//
// entries must already be ordered by (CreatedAt, ID).
func GroupSessions(entries []models.LogEntry) []models.Session {
	byUUID := make(map[string]*models.Session)
	var order []*models.Session

	for _, entry := range entries {
		if entry.SessionUUID == nil || *entry.SessionUUID == "" {
			continue
		}
		id := *entry.SessionUUID

		s, ok := byUUID[id]
		if !ok {
			// First entry in (CreatedAt, ID) order fixes start time and device.
			s = &models.Session{
				UUID:         id,
				DeviceUUID:   entry.DeviceUUID,
				StartTime:    entry.CreatedAt,
				FirstLogTime: entry.CreatedAt,
				LastLogTime:  entry.CreatedAt,
				MinEntryID:   entry.ID,
			}
			byUUID[id] = s
			order = append(order, s)
		}

		s.LogCount++
		s.TypeCounts.Add(entry.DataType, 1)
		if entry.CreatedAt.After(s.LastLogTime) {
			s.LastLogTime = entry.CreatedAt
		}
		if entry.ID < s.MinEntryID {
			s.MinEntryID = entry.ID
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.MinEntryID < b.MinEntryID
	})

	sessions := make([]models.Session, len(order))
	for i, s := range order {
		s.Index = i + 1
		sessions[i] = *s
	}

	return sessions
}
