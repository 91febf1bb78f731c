package repository

import (
	"context"
	"database/sql"
	"encoding/json"
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

const interviewColumns = "id, candidate_id, interviewer_name, interview_date, interview_type, notes_raw, " +
	"axis_scores, axis_notes, primary_profile, secondary_profiles, hire_signal, created_at"

type InterviewRepo struct {
	db  querier
	now func() time.Time
}

func NewInterviewRepo(db querier, now func() time.Time) *InterviewRepo {
	if now == nil {
		now = time.Now
	}
	return &InterviewRepo{db: db, now: now}
}

// Create stores a new interview and bumps the candidate's updated_at.
func (r *InterviewRepo) Create(ctx context.Context, in models.InterviewInput) (*models.Interview, error) {
	in.InterviewerName = strings.TrimSpace(in.InterviewerName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := stamp(r.now)
	iv := &models.Interview{
		ID:                uuid.NewString(),
		CandidateID:       in.CandidateID,
		InterviewerName:   in.InterviewerName,
		InterviewDate:     in.InterviewDate.UTC(),
		InterviewType:     in.InterviewType,
		NotesRaw:          in.NotesRaw,
		AxisScores:        in.AxisScores,
		AxisNotes:         in.AxisNotes,
		PrimaryProfile:    in.PrimaryProfile,
		SecondaryProfiles: in.SecondaryProfiles,
		HireSignal:        in.HireSignal,
		CreatedAt:         now,
	}
	if iv.AxisNotes == nil {
		iv.AxisNotes = models.EmptyAxisNotes()
	}

	err := withTx(ctx, r.db, func(q querier) error {
		var exists int
		err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates WHERE id = ?", in.CandidateID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check candidate %s: %w", in.CandidateID, err)
		}
		if exists == 0 {
			return apperror.NewNotFound("Candidate", in.CandidateID)
		}

		if err := insertInterview(ctx, q, iv); err != nil {
			return err
		}
		return touchCandidate(ctx, q, iv.CandidateID, now)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, iv.ID)
}

// Insert writes iv as-is without touching its candidate.
func (r *InterviewRepo) Insert(ctx context.Context, iv *models.Interview) error {
	return insertInterview(ctx, r.db, iv)
}

func insertInterview(ctx context.Context, q querier, iv *models.Interview) error {
	scores, notes, err := marshalAxes(iv.AxisScores, iv.AxisNotes)
	if err != nil {
		return err
	}
	secondary, err := marshalList(iv.SecondaryProfiles)
	if err != nil {
		return fmt.Errorf("failed to encode secondary profiles: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO interviews (`+interviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		iv.ID, iv.CandidateID, iv.InterviewerName, iv.InterviewDate.UTC(), string(iv.InterviewType), iv.NotesRaw,
		scores, notes, nullString(iv.PrimaryProfile), secondary, string(iv.HireSignal), iv.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}
	return nil
}

func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+interviewColumns+" FROM interviews WHERE id = ?", id)

	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview %s: %w", id, err)
	}
	return iv, nil
}

// GetByCandidateID returns the candidate's interviews, latest interview first.
func (r *InterviewRepo) GetByCandidateID(ctx context.Context, candidateID string) ([]models.Interview, error) {
	return r.list(ctx, psql.Select(interviewColumns).
		From("interviews").
		Where(sq.Eq{"candidate_id": candidateID}).
		OrderBy("interview_date DESC", "created_at DESC"))
}

// GetAll returns every interview, newest first.
func (r *InterviewRepo) GetAll(ctx context.Context) ([]models.Interview, error) {
	return r.list(ctx, psql.Select(interviewColumns).
		From("interviews").
		OrderBy("created_at DESC"))
}

func (r *InterviewRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]models.Interview, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build interview query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []models.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

func (r *InterviewRepo) CountByCandidate(ctx context.Context, candidateID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interviews WHERE candidate_id = ?", candidateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count interviews: %w", err)
	}
	return count, nil
}

// Update writes the fields named by patch on an interview of candidateID and
// bumps the candidate's updated_at. Axis maps are merged key by key.
func (r *InterviewRepo) Update(ctx context.Context, id, candidateID string, patch models.InterviewPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	return withTx(ctx, r.db, func(q querier) error {
		current, err := getInterviewFor(ctx, q, id, candidateID)
		if err != nil {
			return err
		}

		set, err := interviewSetMap(current, patch)
		if err != nil {
			return err
		}

		query, args, err := psql.Update("interviews").
			SetMap(set).
			Where(sq.Eq{"id": id, "candidate_id": candidateID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build interview update: %w", err)
		}

		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update interview %s: %w", id, err)
		}
		return touchCandidate(ctx, q, candidateID, stamp(r.now))
	})
}

func interviewSetMap(current *models.Interview, patch models.InterviewPatch) (map[string]any, error) {
	set := map[string]any{}

	if patch.InterviewerName != nil {
		name := strings.TrimSpace(*patch.InterviewerName)
		if name == "" {
			return nil, apperror.NewInvalidInput("InterviewerName: required", nil)
		}
		set["interviewer_name"] = name
	}
	if patch.InterviewDate != nil {
		set["interview_date"] = patch.InterviewDate.UTC()
	}
	if patch.InterviewType != nil {
		if !patch.InterviewType.Valid() {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("InterviewType: unknown value %q", *patch.InterviewType), nil)
		}
		set["interview_type"] = string(*patch.InterviewType)
	}
	if patch.NotesRaw != nil {
		set["notes_raw"] = *patch.NotesRaw
	}
	if patch.HireSignal != nil {
		if !patch.HireSignal.Valid() {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("HireSignal: unknown value %q", *patch.HireSignal), nil)
		}
		set["hire_signal"] = string(*patch.HireSignal)
	}
	if patch.PrimaryProfile != nil {
		set["primary_profile"] = nullString(patch.PrimaryProfile)
	}
	if patch.SecondaryProfiles != nil {
		secondary, err := marshalList(*patch.SecondaryProfiles)
		if err != nil {
			return nil, fmt.Errorf("failed to encode secondary profiles: %w", err)
		}
		set["secondary_profiles"] = secondary
	}

	if len(patch.AxisScores) > 0 {
		scores := make(map[models.Axis]int, len(current.AxisScores)+len(patch.AxisScores))
		for axis, score := range current.AxisScores {
			scores[axis] = score
		}
		for axis, score := range patch.AxisScores {
			if !axis.Valid() {
				return nil, apperror.NewInvalidInput(fmt.Sprintf("AxisScores: unknown axis %q", axis), nil)
			}
			switch {
			case score == 0:
				delete(scores, axis)
			case score < models.MinScore || score > models.MaxScore:
				return nil, apperror.NewInvalidInput(fmt.Sprintf("AxisScores: %s out of range", axis), nil)
			default:
				scores[axis] = score
			}
		}
		b, err := json.Marshal(scores)
		if err != nil {
			return nil, fmt.Errorf("failed to encode axis scores: %w", err)
		}
		set["axis_scores"] = string(b)
	}

	if len(patch.AxisNotes) > 0 {
		notes := make(map[models.Axis]string, len(models.Axes))
		for axis, note := range current.AxisNotes {
			notes[axis] = note
		}
		for axis, note := range patch.AxisNotes {
			if !axis.Valid() {
				return nil, apperror.NewInvalidInput(fmt.Sprintf("AxisNotes: unknown axis %q", axis), nil)
			}
			notes[axis] = note
		}
		b, err := json.Marshal(notes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode axis notes: %w", err)
		}
		set["axis_notes"] = string(b)
	}

	return set, nil
}

// Delete removes an interview of candidateID. The last interview of a
// candidate cannot be deleted.
func (r *InterviewRepo) Delete(ctx context.Context, id, candidateID string) error {
	return withTx(ctx, r.db, func(q querier) error {
		if _, err := getInterviewFor(ctx, q, id, candidateID); err != nil {
			return err
		}

		var count int
		err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM interviews WHERE candidate_id = ?", candidateID).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count interviews: %w", err)
		}
		if count <= 1 {
			return apperror.NewConflict("Interview", "cannot delete the last interview of a candidate")
		}

		if _, err := q.ExecContext(ctx, "DELETE FROM interviews WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete interview %s: %w", id, err)
		}
		return touchCandidate(ctx, q, candidateID, stamp(r.now))
	})
}

func (r *InterviewRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM interviews"); err != nil {
		return fmt.Errorf("failed to clear interviews: %w", err)
	}
	return nil
}

// getInterviewFor loads an interview only when it belongs to candidateID.
func getInterviewFor(ctx context.Context, q querier, id, candidateID string) (*models.Interview, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+interviewColumns+" FROM interviews WHERE id = ? AND candidate_id = ?", id, candidateID)

	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Interview", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview %s: %w", id, err)
	}
	return iv, nil
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var iv models.Interview
	var interviewType, signal, scores, notes, secondary string
	var primary sql.NullString

	if err := row.Scan(
		&iv.ID, &iv.CandidateID, &iv.InterviewerName, &iv.InterviewDate, &interviewType, &iv.NotesRaw,
		&scores, &notes, &primary, &secondary, &signal, &iv.CreatedAt,
	); err != nil {
		return nil, err
	}

	iv.InterviewType = models.InterviewType(interviewType)
	iv.HireSignal = models.HireSignal(signal)
	iv.PrimaryProfile = stringPtr(primary)
	iv.InterviewDate = iv.InterviewDate.UTC()
	iv.CreatedAt = iv.CreatedAt.UTC()

	iv.AxisScores = map[models.Axis]int{}
	if err := json.Unmarshal([]byte(scores), &iv.AxisScores); err != nil {
		return nil, fmt.Errorf("failed to decode axis scores: %w", err)
	}
	iv.AxisNotes = map[models.Axis]string{}
	if err := json.Unmarshal([]byte(notes), &iv.AxisNotes); err != nil {
		return nil, fmt.Errorf("failed to decode axis notes: %w", err)
	}

	var err error
	if iv.SecondaryProfiles, err = unmarshalList(secondary); err != nil {
		return nil, fmt.Errorf("failed to decode secondary profiles: %w", err)
	}

	return &iv, nil
}

func marshalAxes(scores map[models.Axis]int, notes map[models.Axis]string) (string, string, error) {
	if scores == nil {
		scores = map[models.Axis]int{}
	}
	if notes == nil {
		notes = map[models.Axis]string{}
	}

	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode axis scores: %w", err)
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode axis notes: %w", err)
	}
	return string(scoresJSON), string(notesJSON), nil
}
