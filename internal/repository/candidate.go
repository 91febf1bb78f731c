package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/validation"
)

const candidateColumns = "id, name, tags, overall_hire_signal, primary_profile, secondary_profiles, created_at, updated_at"

type CandidateRepo struct {
	db  querier
	now func() time.Time
}

func NewCandidateRepo(db querier, now func() time.Time) *CandidateRepo {
	if now == nil {
		now = time.Now
	}
	return &CandidateRepo{db: db, now: now}
}

func (r *CandidateRepo) Create(ctx context.Context, in models.CandidateInput) (*models.Candidate, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := stamp(r.now)
	c := &models.Candidate{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Tags:              in.Tags,
		SecondaryProfiles: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.Insert(ctx, c); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, c.ID)
}

// Insert writes c as-is, keeping its id and timestamps.
func (r *CandidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	tags, err := marshalList(c.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	secondary, err := marshalList(c.SecondaryProfiles)
	if err != nil {
		return fmt.Errorf("failed to encode secondary profiles: %w", err)
	}

	var signal sql.NullString
	if c.OverallHireSignal != nil && *c.OverallHireSignal != "" {
		signal = sql.NullString{String: string(*c.OverallHireSignal), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, tags, signal, nullString(c.PrimaryProfile), secondary, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func (r *CandidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id)

	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	return c, nil
}

// GetAll returns every candidate, most recently updated first.
func (r *CandidateRepo) GetAll(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+candidateColumns+" FROM candidates ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// Update writes only the fields named by patch and bumps updated_at.
func (r *CandidateRepo) Update(ctx context.Context, id string, patch models.CandidatePatch) error {
	if patch.IsEmpty() {
		return nil
	}

	set := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return apperror.NewInvalidInput("Name: required", nil)
		}
		set["name"] = name
	}
	if patch.Tags != nil {
		tags, err := marshalList(*patch.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		set["tags"] = tags
	}
	if patch.OverallHireSignal != nil {
		signal := *patch.OverallHireSignal
		if signal != "" && !signal.Valid() {
			return apperror.NewInvalidInput(fmt.Sprintf("OverallHireSignal: unknown value %q", signal), nil)
		}
		if signal == "" {
			set["overall_hire_signal"] = nil
		} else {
			set["overall_hire_signal"] = string(signal)
		}
	}
	if patch.PrimaryProfile != nil {
		set["primary_profile"] = nullString(patch.PrimaryProfile)
	}
	if patch.SecondaryProfiles != nil {
		secondary, err := marshalList(*patch.SecondaryProfiles)
		if err != nil {
			return fmt.Errorf("failed to encode secondary profiles: %w", err)
		}
		set["secondary_profiles"] = secondary
	}
	set["updated_at"] = stamp(r.now)

	query, args, err := psql.Update("candidates").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build candidate update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update candidate %s: %w", id, err)
	}
	return requireAffected(result, "Candidate", id)
}

// Delete removes the candidate together with its interviews.
func (r *CandidateRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(q querier) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM interviews WHERE candidate_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete interviews of candidate %s: %w", id, err)
		}

		result, err := q.ExecContext(ctx, "DELETE FROM candidates WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete candidate %s: %w", id, err)
		}
		return requireAffected(result, "Candidate", id)
	})
}

func (r *CandidateRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM candidates"); err != nil {
		return fmt.Errorf("failed to clear candidates: %w", err)
	}
	return nil
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var tags, secondary string
	var signal, primary sql.NullString

	if err := row.Scan(
		&c.ID, &c.Name, &tags, &signal, &primary, &secondary, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if c.Tags, err = unmarshalList(tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if c.SecondaryProfiles, err = unmarshalList(secondary); err != nil {
		return nil, fmt.Errorf("failed to decode secondary profiles: %w", err)
	}
	if signal.Valid {
		hs := models.HireSignal(signal.String)
		c.OverallHireSignal = &hs
	}
	c.PrimaryProfile = stringPtr(primary)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	return &c, nil
}

func requireAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound(resource, id)
	}
	return nil
}
