// Package transfer exports the whole store to a JSON document and restores it.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/repository"
	"github.com/emilianohg/profiler/internal/validation"
)

const FormatVersion = 1

type Snapshot struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Candidates []models.Candidate `json:"candidates"`
	Interviews []models.Interview `json:"interviews"`
	Profiles   []models.Profile   `json:"profiles"`
}

type Summary struct {
	Candidates int
	Interviews int
	Profiles   int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d candidates, %d interviews, %d profiles", s.Candidates, s.Interviews, s.Profiles)
}

// Export writes every candidate, interview and profile to w.
func Export(ctx context.Context, store *repository.Store, w io.Writer, now time.Time) (*Summary, error) {
	snap := Snapshot{Version: FormatVersion, ExportedAt: now.UTC()}

	var err error
	if snap.Candidates, err = store.Candidates.GetAll(ctx); err != nil {
		return nil, err
	}
	if snap.Interviews, err = store.Interviews.GetAll(ctx); err != nil {
		return nil, err
	}
	if snap.Profiles, err = store.Profiles.GetAll(ctx); err != nil {
		return nil, err
	}
	if snap.Candidates == nil {
		snap.Candidates = []models.Candidate{}
	}
	if snap.Interviews == nil {
		snap.Interviews = []models.Interview{}
	}
	if snap.Profiles == nil {
		snap.Profiles = []models.Profile{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	return &Summary{
		Candidates: len(snap.Candidates),
		Interviews: len(snap.Interviews),
		Profiles:   len(snap.Profiles),
	}, nil
}

// ExportFile writes the export to path, creating parent directories.
func ExportFile(ctx context.Context, store *repository.Store, path string, now time.Time) (*Summary, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}

	summary, err := Export(ctx, store, f, now)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close export file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// DefaultFileName is the name used when exporting into a directory.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("profiler-export-%s.json", now.Format("2006-01-02"))
}

// Import replaces the whole store with the snapshot read from r. Nothing is
// changed unless the snapshot is valid and every row is written.
func Import(ctx context.Context, store *repository.Store, r io.Reader) (*Summary, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, apperror.NewInvalidInput("export file is not valid JSON", err)
	}
	if err := check(snap); err != nil {
		return nil, err
	}

	err := store.InTx(ctx, func(tx *repository.Tx) error {
		if err := tx.Interviews.DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Candidates.DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Profiles.DeleteAll(ctx); err != nil {
			return err
		}

		for i := range snap.Profiles {
			if err := tx.Profiles.Insert(ctx, &snap.Profiles[i]); err != nil {
				return err
			}
		}
		for i := range snap.Candidates {
			if err := tx.Candidates.Insert(ctx, &snap.Candidates[i]); err != nil {
				return err
			}
		}
		for i := range snap.Interviews {
			if err := tx.Interviews.Insert(ctx, &snap.Interviews[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to import data", err)
	}

	return &Summary{
		Candidates: len(snap.Candidates),
		Interviews: len(snap.Interviews),
		Profiles:   len(snap.Profiles),
	}, nil
}

func ImportFile(ctx context.Context, store *repository.Store, path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	return Import(ctx, store, f)
}

func check(snap Snapshot) error {
	if snap.Version != FormatVersion {
		return apperror.NewInvalidInput(fmt.Sprintf("unsupported export version %d", snap.Version), nil)
	}

	candidates := make(map[string]bool, len(snap.Candidates))
	for _, c := range snap.Candidates {
		if c.ID == "" || strings.TrimSpace(c.Name) == "" {
			return apperror.NewInvalidInput("candidate without id or name", nil)
		}
		if c.OverallHireSignal != nil && *c.OverallHireSignal != "" && !c.OverallHireSignal.Valid() {
			return apperror.NewInvalidInput(fmt.Sprintf("candidate %s has unknown hire signal %q", c.ID, *c.OverallHireSignal), nil)
		}
		candidates[c.ID] = true
	}

	slugs := make(map[string]bool, len(snap.Profiles))
	for _, p := range snap.Profiles {
		if p.ID == "" || p.Slug == "" {
			return apperror.NewInvalidInput("profile without id or slug", nil)
		}
		if slugs[p.Slug] {
			return apperror.NewInvalidInput(fmt.Sprintf("duplicate profile slug %q", p.Slug), nil)
		}
		slugs[p.Slug] = true
	}

	v := validation.Validator()
	for _, iv := range snap.Interviews {
		if !candidates[iv.CandidateID] {
			return apperror.NewInvalidInput(fmt.Sprintf("interview %s references unknown candidate %s", iv.ID, iv.CandidateID), nil)
		}
		if !iv.InterviewType.Valid() || !iv.HireSignal.Valid() {
			return apperror.NewInvalidInput(fmt.Sprintf("interview %s has an unknown type or hire signal", iv.ID), nil)
		}
		if err := v.Var(iv.AxisScores, "axis_scores"); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("interview %s has invalid axis scores", iv.ID), err)
		}
		if err := v.Var(iv.AxisNotes, "axis_notes"); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("interview %s has invalid axis notes", iv.ID), err)
		}
	}

	return nil
}
