// Package relational is a SQL rendition of the same storage contract:
// one payload table plus one narrow value table standing in for the
// secondary indexes. It exists as a comparison baseline for the
// substrate-backed stack and shares its observable semantics.
package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver registration

	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/record"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	payload    TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS field_values (
	collection TEXT NOT NULL,
	field      TEXT NOT NULL,
	id         TEXT NOT NULL,
	text_value TEXT,
	score      REAL,
	PRIMARY KEY (collection, field, id)
);
CREATE INDEX IF NOT EXISTS idx_field_text  ON field_values (collection, field, text_value);
CREATE INDEX IF NOT EXISTS idx_field_score ON field_values (collection, field, score);
`

// Open opens (and migrates) a sqlite database. Use ":memory:" for an
// ephemeral instance.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return db, nil
}

// Store persists one collection's records in sqlite.
type Store struct {
	db   *sql.DB
	decl collection.Declaration
}

// New creates a relational store over an opened database.
func New(db *sql.DB, decl collection.Declaration) *Store {
	return &Store{db: db, decl: decl}
}

// InsertMany stores records and their indexed field values in one
// transaction.
func (s *Store) InsertMany(ctx context.Context, recs []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range recs {
		payload, err := encodePayload(rec)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO documents (collection, id, payload) VALUES (?, ?, ?)`,
			s.decl.Name(), rec.Key(), payload)
		if err != nil {
			return fmt.Errorf("insert %s: %w", rec.Key(), err)
		}

		for _, f := range s.decl.IndexedFields() {
			v, ok := rec.Get(f.Name())
			if !ok {
				continue
			}
			var textVal sql.NullString
			var score sql.NullFloat64
			if sc, scorable := v.Score(); scorable {
				score = sql.NullFloat64{Float64: sc, Valid: true}
			} else {
				textVal = sql.NullString{String: v.String(), Valid: true}
			}
			_, err = tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO field_values (collection, field, id, text_value, score)
				 VALUES (?, ?, ?, ?, ?)`,
				s.decl.Name(), f.Name(), rec.Key(), textVal, score)
			if err != nil {
				return fmt.Errorf("index %s.%s: %w", rec.Key(), f.Name(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns one record, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (record.Record, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE collection = ? AND id = ?`,
		s.decl.Name(), id).Scan(&payload)
	if err == sql.ErrNoRows {
		return record.Record{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	return decodePayload(s.decl, payload)
}

// DeleteMany removes records and their field values. Absent ids are a
// no-op.
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND id = ?`,
			s.decl.Name(), id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM field_values WHERE collection = ? AND id = ?`,
			s.decl.Name(), id); err != nil {
			return fmt.Errorf("delete values %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FindIDsBy returns the ids whose field equals v: exact text match for
// text fields, a min=max score match otherwise.
func (s *Store) FindIDsBy(ctx context.Context, fieldName string, v record.Value) ([]string, error) {
	f, ok := s.decl.Field(fieldName)
	if !ok || !f.Indexed() {
		return nil, fmt.Errorf("field %s: %w", fieldName, domain.ErrFieldNotIndexed)
	}
	if v.Kind() != f.Kind() {
		return nil, fmt.Errorf("field %s is %s, queried as %s: %w",
			fieldName, f.Kind(), v.Kind(), domain.ErrKindMismatch)
	}

	if score, scorable := v.Score(); scorable {
		return s.idsByScore(ctx, fieldName, score, score)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM field_values
		 WHERE collection = ? AND field = ? AND text_value = ?
		 ORDER BY id`,
		s.decl.Name(), fieldName, v.String())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", fieldName, err)
	}
	return collectIDs(rows)
}

// FindIDsRangeBy returns the ids whose field score lies in [min, max]
// inclusive, ascending by score.
func (s *Store) FindIDsRangeBy(ctx context.Context, fieldName string, min, max record.Value) ([]string, error) {
	f, ok := s.decl.Field(fieldName)
	if !ok || !f.Indexed() {
		return nil, fmt.Errorf("field %s: %w", fieldName, domain.ErrFieldNotIndexed)
	}
	if f.Kind() == record.KindText {
		return nil, fmt.Errorf("field %s: %w", fieldName, domain.ErrTextRange)
	}

	lo, ok := min.Score()
	if !ok {
		return nil, fmt.Errorf("field %s: min bound: %w", fieldName, domain.ErrKindMismatch)
	}
	hi, ok := max.Score()
	if !ok {
		return nil, fmt.Errorf("field %s: max bound: %w", fieldName, domain.ErrKindMismatch)
	}
	return s.idsByScore(ctx, fieldName, lo, hi)
}

func (s *Store) idsByScore(ctx context.Context, fieldName string, min, max float64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM field_values
		 WHERE collection = ? AND field = ? AND score >= ? AND score <= ?
		 ORDER BY score, id`,
		s.decl.Name(), fieldName, min, max)
	if err != nil {
		return nil, fmt.Errorf("range query %s: %w", fieldName, err)
	}
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

// Payload serialization matches the substrate store: a self-describing
// JSON object with temporal fields as epoch milliseconds.
func encodePayload(r record.Record) (string, error) {
	m := make(map[string]any, r.Len())
	for name, v := range r.Fields() {
		switch v.Kind() {
		case record.KindText:
			m[name] = v.Text()
		case record.KindNumeric:
			m[name] = v.Number()
		case record.KindTime:
			m[name] = v.Time().UnixMilli()
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal record %s: %w", r.Key(), err)
	}
	return string(data), nil
}

func decodePayload(decl collection.Declaration, payload string) (record.Record, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return record.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}

	fields := make(map[string]record.Value, len(m))
	for name, raw := range m {
		kind, declared := decl.Kind(name)
		switch val := raw.(type) {
		case string:
			fields[name] = record.Text(val)
		case float64:
			if declared && kind == record.KindTime {
				fields[name] = record.Time(time.UnixMilli(int64(val)))
			} else {
				fields[name] = record.Number(val)
			}
		default:
			return record.Record{}, fmt.Errorf("field %q: unsupported payload type %T", name, raw)
		}
	}
	return record.Reconstruct(fields), nil
}
