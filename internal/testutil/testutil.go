// Package testutil builds migrated throwaway stores for tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/profiler/internal/db"
	"github.com/emilianohg/profiler/internal/repository"
)

// NewStore opens a migrated SQLite file under t.TempDir.
func NewStore(t testing.TB, opts ...repository.Option) *repository.Store {
	t.Helper()

	database, err := db.OpenPathAndMigrate(filepath.Join(t.TempDir(), "profiler.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return repository.NewStore(database, opts...)
}

// Clock hands out strictly increasing times, one second apart.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{current: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(time.Second)
	return c.current
}

// Last returns the most recent time handed out.
func (c *Clock) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
