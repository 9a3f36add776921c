package reports

import (
	"devicelog/models"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatrix_LastWriteWins(t *testing.T) {
	t1 := day1.Add(9 * time.Hour)
	entries := withIDs(
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `"20"`, t1),
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `"25"`, t1.Add(time.Minute)),
	)

	m := BuildMatrix(entries, GroupSessions(entries), LastWriteWins)

	assert.Equal(t, []string{"temp"}, m.Keys)
	assert.JSONEq(t, `"25"`, string(m.Cells["s1"]["temp"]))
	assert.Equal(t, 1, m.TotalEntries)
}

func TestBuildMatrix_Policies(t *testing.T) {
	t1 := day1.Add(9 * time.Hour)
	entries := withIDs(
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `20`, t1),
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `21`, t1.Add(time.Minute)),
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `22`, t1.Add(2*time.Minute)),
	)
	sessions := GroupSessions(entries)

	tests := []struct {
		policy ConflictPolicy
		want   string
	}{
		{LastWriteWins, `22`},
		{FirstWriteWins, `20`},
		{ConcatValues, `[20,21,22]`},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			m := BuildMatrix(entries, sessions, tt.policy)
			assert.JSONEq(t, tt.want, string(m.Cells["s1"]["temp"]))
			assert.Equal(t, 1, m.TotalEntries)
		})
	}
}

func TestBuildMatrix_KeysFirstSeen(t *testing.T) {
	t1 := day1.Add(9 * time.Hour)
	entries := withIDs(
		entryAt("dev-1", "s1", models.DataTypeRecord, "temp", `1`, t1),
		entryAt("dev-2", "s2", models.DataTypeRecord, "humidity", `2`, t1.Add(time.Minute)),
		entryAt("dev-1", "s1", models.DataTypeRecord, "pressure", `3`, t1.Add(2*time.Minute)),
		entryAt("dev-2", "s2", models.DataTypeRecord, "temp", `4`, t1.Add(3*time.Minute)),
	)

	m := BuildMatrix(entries, GroupSessions(entries), LastWriteWins)

	assert.Equal(t, []string{"temp", "humidity", "pressure"}, m.Keys)
	assert.Equal(t, 4, m.TotalEntries)
	for _, key := range m.Keys {
		found := false
		for _, row := range m.Cells {
			if _, ok := row[key]; ok {
				found = true
			}
		}
		assert.True(t, found, "key %s has no cell", key)
	}
}

func TestBuildMatrix_SkipsValuelessEntries(t *testing.T) {
	t1 := day1.Add(9 * time.Hour)
	entries := withIDs(
		entryAt("dev", "s1", models.DataTypeRecord, "temp", `20`, t1),
		entryAt("dev", "s1", models.DataTypeRecord, "empty", ``, t1.Add(time.Second)),
		entryAt("dev", "s1", models.DataTypeRecord, "nulled", `null`, t1.Add(2*time.Second)),
		entryAt("dev", "s2", models.DataTypeWarning, "ping", ``, t1.Add(3*time.Second)),
	)
	sessions := GroupSessions(entries)
	require.Len(t, sessions, 2)

	m := BuildMatrix(entries, sessions, LastWriteWins)

	assert.Equal(t, []string{"temp"}, m.Keys)
	assert.Equal(t, 1, m.TotalEntries)
	require.Contains(t, m.Cells, "s2")
	assert.Empty(t, m.Cells["s2"])
}

func TestBuildMatrix_Empty(t *testing.T) {
	m := BuildMatrix(nil, nil, LastWriteWins)
	assert.Empty(t, m.Keys)
	assert.Empty(t, m.Cells)
	assert.Zero(t, m.TotalEntries)
}

func TestJoinValues(t *testing.T) {
	got := joinValues([]json.RawMessage{json.RawMessage(` "a" `), json.RawMessage(`{"x":1}`)})
	assert.JSONEq(t, `["a",{"x":1}]`, string(got))
}

func TestColumnLabels(t *testing.T) {
	project := &models.Project{ColumnMapping: map[string]string{"temp": "Temperature"}}

	assert.Equal(t, []string{"Temperature", "humidity"}, ColumnLabels([]string{"temp", "humidity"}, project))
	assert.Equal(t, []string{"temp"}, ColumnLabels([]string{"temp"}, nil))
	assert.Empty(t, ColumnLabels(nil, project))
}

func TestParseConflictPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ConflictPolicy
		wantErr bool
	}{
		{"", LastWriteWins, false},
		{"last_write_wins", LastWriteWins, false},
		{"first_write_wins", FirstWriteWins, false},
		{"concat", ConcatValues, false},
		{"merge", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConflictPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeySet(t *testing.T) {
	s := newKeySet()
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.Keys())
}
