package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repo can run
// standalone or inside a Store transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store groups the repositories over one database.
type Store struct {
	db  *sql.DB
	now func() time.Time

	Candidates *CandidateRepo
	Interviews *InterviewRepo
	Profiles   *ProfileRepo
}

// Tx exposes the repositories bound to a single transaction.
type Tx struct {
	Candidates *CandidateRepo
	Interviews *InterviewRepo
	Profiles   *ProfileRepo
}

type Option func(*Store)

// WithClock replaces time.Now for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.Candidates = NewCandidateRepo(db, s.now)
	s.Interviews = NewInterviewRepo(db, s.now)
	s.Profiles = NewProfileRepo(db, s.now)
	return s
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn inside one transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	return withTx(ctx, s.db, func(q querier) error {
		return fn(&Tx{
			Candidates: NewCandidateRepo(q, s.now),
			Interviews: NewInterviewRepo(q, s.now),
			Profiles:   NewProfileRepo(q, s.now),
		})
	})
}

// withTx opens a transaction when q is the bare database and reuses q when
// it already is one.
func withTx(ctx context.Context, q querier, fn func(q querier) error) error {
	database, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func touchCandidate(ctx context.Context, q querier, candidateID string, at time.Time) error {
	_, err := q.ExecContext(ctx, "UPDATE candidates SET updated_at = ? WHERE id = ?", at, candidateID)
	if err != nil {
		return fmt.Errorf("failed to touch candidate %s: %w", candidateID, err)
	}
	return nil
}

func stamp(now func() time.Time) time.Time {
	return now().UTC()
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
