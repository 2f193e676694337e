package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
)

// DocStore implements Store with interview documents in a JSONB column.
// The schema is owned by the migrations package.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db}
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putInterview(ctx context.Context, q execer, rec InterviewRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO interviews (id, status, data, updated_at) VALUES (?, ?, jsonb(?), ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, rec.Status, string(data), rec.UpdatedAt,
	)
	return err
}

func (s *DocStore) CreateInterview(ctx context.Context, rec InterviewRecord) error {
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = nowUTC()
	}
	rec.UpdatedAt = rec.CreatedAt
	if err := putInterview(ctx, s.db, rec); err != nil {
		return fmt.Errorf("creating interview %s: %w", rec.ID, err)
	}
	return nil
}

func (s *DocStore) GetInterview(ctx context.Context, id string) (InterviewRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM interviews WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return InterviewRecord{}, ErrNotFound
	}
	if err != nil {
		return InterviewRecord{}, err
	}
	var rec InterviewRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return InterviewRecord{}, fmt.Errorf("decoding interview %s: %w", id, err)
	}
	return rec, nil
}

// ListInterviews returns interviews most recently updated first. An empty
// status lists all of them.
func (s *DocStore) ListInterviews(ctx context.Context, status string) ([]InterviewSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, COALESCE(json_extract(data, '$.name'), ''),
		        COALESCE(json_extract(data, '$.checkpoint.scene'), ''), updated_at
		 FROM interviews
		 WHERE ? = '' OR status = ?
		 ORDER BY updated_at DESC, id`,
		status, status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []InterviewSummary{}
	for rows.Next() {
		var it InterviewSummary
		if err := rows.Scan(&it.ID, &it.Status, &it.Name, &it.Scene, &it.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// modify loads an interview, applies fn, and saves it in a transaction.
func (s *DocStore) modify(ctx context.Context, id string, fn func(*InterviewRecord) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM interviews WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var rec InterviewRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	rec.UpdatedAt = nowUTC()
	if err := putInterview(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *DocStore) SaveName(ctx context.Context, id, name string) error {
	return s.modify(ctx, id, func(rec *InterviewRecord) error {
		rec.Name = name
		return nil
	})
}

func (s *DocStore) SaveCheckpoint(ctx context.Context, id string, cp scene.Resume) error {
	return s.modify(ctx, id, func(rec *InterviewRecord) error {
		rec.Checkpoint = &cp
		if cp.Name != "" {
			rec.Name = cp.Name
		}
		return nil
	})
}

func (s *DocStore) SaveResponses(ctx context.Context, id string, r interview.Responses) error {
	return s.modify(ctx, id, func(rec *InterviewRecord) error {
		rec.Responses = r.Clone()
		return nil
	})
}

func (s *DocStore) CompleteInterview(ctx context.Context, id string, r interview.Responses) error {
	return s.modify(ctx, id, func(rec *InterviewRecord) error {
		now := nowUTC()
		rec.Status = StatusComplete
		rec.Responses = r.Clone()
		rec.CompletedAt = &now
		return nil
	})
}

func (s *DocStore) RecordConnection(ctx context.Context, id string, c device.ConnectionResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO device_connections (interview_id, provider, device_name, connected_at) VALUES (?, ?, ?, ?)`,
		id, c.Provider, c.DeviceName, c.ConnectedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording connection for %s: %w", id, err)
	}
	return nil
}

func (s *DocStore) ListConnections(ctx context.Context, id string) ([]device.ConnectionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, device_name, connected_at FROM device_connections
		 WHERE interview_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []device.ConnectionResult
	for rows.Next() {
		var (
			c  device.ConnectionResult
			at string
		)
		if err := rows.Scan(&c.Provider, &c.DeviceName, &at); err != nil {
			return nil, err
		}
		if c.ConnectedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parsing connected_at: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
