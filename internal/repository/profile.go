package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/slug"
	"github.com/emilianohg/profiler/internal/validation"
)

const profileColumns = "id, slug, name, description, created_at, updated_at"

// DefaultProfiles are seeded into an empty profile table.
var DefaultProfiles = []models.ProfileInput{
	{
		Name:        "Builder",
		Description: "Hands-on engineer who loves creating things from scratch. Strong execution skills, thrives in fast-paced environments with ambiguity.",
	},
	{
		Name:        "Specialist",
		Description: "Deep expert in a specific domain or technology. Goes deep rather than wide, often the go-to person for complex technical problems.",
	},
	{
		Name:        "Leader",
		Description: "Natural people leader who elevates teams. Strong communication, mentorship abilities, and strategic thinking.",
	},
	{
		Name:        "Generalist",
		Description: "Versatile contributor comfortable across the stack. Connects dots between domains, great for cross-functional work.",
	},
	{
		Name:        "Learner",
		Description: "High-potential candidate with strong growth trajectory. May lack experience but shows exceptional curiosity and adaptability.",
	},
}

type ProfileRepo struct {
	db  querier
	now func() time.Time
}

func NewProfileRepo(db querier, now func() time.Time) *ProfileRepo {
	if now == nil {
		now = time.Now
	}
	return &ProfileRepo{db: db, now: now}
}

func (r *ProfileRepo) Create(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created *models.Profile
	err := withTx(ctx, r.db, func(q querier) error {
		s, err := uniqueSlug(ctx, q, in.Name, "")
		if err != nil {
			return err
		}

		now := stamp(r.now)
		p := &models.Profile{
			ID:          uuid.NewString(),
			Slug:        s,
			Name:        in.Name,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := insertProfile(ctx, q, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, created.ID)
}

// Insert writes p as-is, keeping its id, slug and timestamps.
func (r *ProfileRepo) Insert(ctx context.Context, p *models.Profile) error {
	return insertProfile(ctx, r.db, p)
}

func insertProfile(ctx context.Context, q querier, p *models.Profile) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Slug, p.Name, p.Description, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update replaces name and description. A new name regenerates the slug.
func (r *ProfileRepo) Update(ctx context.Context, id string, in models.ProfileInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}

	return withTx(ctx, r.db, func(q querier) error {
		current, err := getProfile(ctx, q, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFound("Profile", id)
		}

		s := current.Slug
		if current.Name != in.Name {
			if s, err = uniqueSlug(ctx, q, in.Name, id); err != nil {
				return err
			}
		}

		_, err = q.ExecContext(ctx,
			"UPDATE profiles SET slug = ?, name = ?, description = ?, updated_at = ? WHERE id = ?",
			s, in.Name, in.Description, stamp(r.now), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile %s: %w", id, err)
		}
		return nil
	})
}

// Delete removes the profile. References held by candidates and interviews
// are left dangling.
func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return requireAffected(result, "Profile", id)
}

func (r *ProfileRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("failed to clear profiles: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return getProfile(ctx, r.db, id)
}

func (r *ProfileRepo) GetBySlug(ctx context.Context, s string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE slug = ?", s)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", s, err)
	}
	return p, nil
}

// GetAll returns every profile ordered by name.
func (r *ProfileRepo) GetAll(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+profileColumns+" FROM profiles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// IsInUse reports whether any candidate or interview references the profile
// as primary or secondary.
func (r *ProfileRepo) IsInUse(ctx context.Context, id string) (bool, error) {
	for _, table := range []string{"candidates", "interviews"} {
		used, err := r.referencedIn(ctx, table, id)
		if err != nil {
			return false, err
		}
		if used {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProfileRepo) referencedIn(ctx context.Context, table, id string) (bool, error) {
	var primaryCount int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE primary_profile = ?", id,
	).Scan(&primaryCount)
	if err != nil {
		return false, fmt.Errorf("failed to check %s primary profiles: %w", table, err)
	}
	if primaryCount > 0 {
		return true, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT secondary_profiles FROM "+table)
	if err != nil {
		return false, fmt.Errorf("failed to read %s secondary profiles: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return false, err
		}
		ids, err := unmarshalList(raw)
		if err != nil {
			return false, fmt.Errorf("failed to decode secondary profiles: %w", err)
		}
		if slices.Contains(ids, id) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// SeedDefaults inserts DefaultProfiles when no profile exists yet and
// returns how many were inserted.
func (r *ProfileRepo) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	err := withTx(ctx, r.db, func(q querier) error {
		var count int
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&count); err != nil {
			return fmt.Errorf("failed to count profiles: %w", err)
		}
		if count > 0 {
			return nil
		}

		now := stamp(r.now)
		for _, def := range DefaultProfiles {
			p := &models.Profile{
				ID:          uuid.NewString(),
				Slug:        slug.Generate(def.Name),
				Name:        def.Name,
				Description: def.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := insertProfile(ctx, q, p); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func getProfile(ctx context.Context, q querier, id string) (*models.Profile, error) {
	row := q.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return p, nil
}

// uniqueSlug derives a slug from name that no other profile (except
// excludeID) is using.
func uniqueSlug(ctx context.Context, q querier, name, excludeID string) (string, error) {
	base := slug.Generate(name)
	if base == "" {
		base = "profile"
	}

	rows, err := q.QueryContext(ctx, "SELECT slug FROM profiles WHERE id <> ?", excludeID)
	if err != nil {
		return "", fmt.Errorf("failed to read profile slugs: %w", err)
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", err
		}
		existing[s] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return slug.Unique(base, existing), nil
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
