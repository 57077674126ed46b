package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsCorruptionError_Strings(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.False(t, IsCorruptionError(errors.New("no such table")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zen.db")

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(path+"-wal", []byte("wal"), 0o644))

	require.NoError(t, RecoverFromCorruption(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + "-wal")
	assert.True(t, os.IsNotExist(err))

	backups, err := filepath.Glob(filepath.Join(dir, "zen.db.corrupt.*"))
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestRecoverFromCorruption_MissingFile(t *testing.T) {
	require.NoError(t, RecoverFromCorruption(filepath.Join(t.TempDir(), "absent.db")))
}

func TestRetryBusy_PassesThroughOtherErrors(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")

	err := retryBusy(context.Background(), func() error {
		calls++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}
