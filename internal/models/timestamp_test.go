package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetryx/crimetryx/internal/models"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-12-08T10:30:00Z"`, time.Date(2024, 12, 8, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 with offset", `"2024-12-08T10:30:00+02:00"`, time.Date(2024, 12, 8, 8, 30, 0, 0, time.UTC)},
		{"zoneless isoformat", `"2024-12-08T10:30:00"`, time.Date(2024, 12, 8, 10, 30, 0, 0, time.UTC)},
		{"zoneless with microseconds", `"2024-12-08T10:30:00.123456"`, time.Date(2024, 12, 8, 10, 30, 0, 123456000, time.UTC)},
		{"space separated", `"2024-12-08 10:30:00"`, time.Date(2024, 12, 8, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var ts models.Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.in), &ts))
			assert.True(t, tc.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_UnmarshalJSONRejectsGarbage(t *testing.T) {
	t.Parallel()

	var ts models.Timestamp
	require.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
	require.Error(t, json.Unmarshal([]byte(`42`), &ts))

	// Null and empty mean "not set", not an error.
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	require.True(t, ts.IsZero())
}

func TestTimestamp_MarshalsRFC3339(t *testing.T) {
	t.Parallel()

	ts := models.Timestamp{Time: time.Date(2024, 12, 8, 10, 30, 0, 0, time.UTC)}
	encoded, err := json.Marshal(ts)
	require.NoError(t, err)
	require.Equal(t, `"2024-12-08T10:30:00Z"`, string(encoded))
}
