// Package store provides SQLite-backed persistence for projects, drawings,
// requirements, and annotations. It owns row serialization (JSON datum
// lists, decimal tolerance text, RFC3339 timestamps) and query construction.
//
// The store is the only writer of requirements' fcf_text column: the frame
// text is derived from the encoded attributes and recomputed on every insert
// and update, never trusted from the caller.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/calibrant/gdtbench/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// SQLStore implements persistence on a SQLite database.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a store over an opened, migrated database.
func New(conn *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	return &SQLStore{
		db:     conn,
		logger: logger,
		now:    time.Now,
	}
}

// Totals are the dashboard counters.
type Totals struct {
	Projects     int `json:"projects"`
	Drawings     int `json:"drawings"`
	Requirements int `json:"requirements"`
	Annotations  int `json:"annotations"`
}

// Timestamps are stored as RFC3339 UTC text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// marshalDatums serializes a datum list for storage; nil stays NULL.
func marshalDatums(datums []string) (sql.NullString, error) {
	if len(datums) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(datums)
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "marshal datum refs")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalDatums(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal datum refs")
	}
	return out, nil
}

// marshalTolerance stores the decimal's own textual form so the given scale
// survives a round trip.
func marshalTolerance(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func unmarshalTolerance(raw sql.NullString) (*decimal.Decimal, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw.String)
	if err != nil {
		return nil, errors.Wrapf(err, "parse tolerance %q", raw.String)
	}
	return &d, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullable(raw sql.NullString) string {
	if !raw.Valid {
		return ""
	}
	return raw.String
}
