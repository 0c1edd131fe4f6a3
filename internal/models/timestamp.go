package models

import (
	"database/sql/driver"
	"log/slog"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
)

// Timestamp is a time.Time whose JSON form also accepts the backend's naive
// isoformat strings such as "2024-12-08T10:30:00", which carry no zone
// suffix. Naive timestamps are read as UTC. It marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

// timestampLayouts are tried in order. RFC 3339 first, then the zoneless
// isoformat variants Python's datetime.isoformat produces.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return errors.New("timestamp is not a JSON string", slog.String("value", raw))
	}
	value := raw[1 : len(raw)-1]

	var firstErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return errors.Wrap(firstErr, "parse timestamp", slog.String("value", value))
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// MarshalYAML emits the same RFC 3339 form as JSON; without it the embedded
// time.Time would encode as an empty mapping.
func (t Timestamp) MarshalYAML() (any, error) {
	return t.Time.Format(time.RFC3339Nano), nil
}

// Value stores the underlying time so timestamps can be bound to SQL
// parameters without unwrapping.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}

// Scan accepts the representations the SQLite driver hands back.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.UnmarshalJSON([]byte(`"` + v + `"`))
	case []byte:
		return t.UnmarshalJSON([]byte(`"` + string(v) + `"`))
	}
	return errors.New("unsupported timestamp column type", slog.Any("value", src))
}
