package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_RunsBasicValidation(t *testing.T) {
	cfg := validConfig(t)
	cfg.Remote.Driver = "mysql"

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote.driver")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file
	cfg.Remote.DSN = filepath.Join(t.TempDir(), "remote.db")

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_SQLiteDSNIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.Remote.DSN = t.TempDir()

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "remote.dsn", fieldErrs[0].Field)
}

func TestValidateDeep_PostgresDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		wantErr string
	}{
		{dsn: "postgres://zen:pw@localhost:5432/zen?sslmode=disable"},
		{dsn: "postgresql://localhost/zen"},
		{dsn: "mysql://localhost/zen", wantErr: "scheme"},
		{dsn: "postgres:///zen", wantErr: "host"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Remote = RemoteConfig{Driver: DriverPostgres, DSN: tt.dsn, Timeout: time.Second}

			err := cfg.ValidateDeep("")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "remote.dsn", fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.wantErr)
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings())

	cfg.Sync.RetryInterval = 0
	cfg.Notifications.Terminal = false
	cfg.Notifications.Bell = false
	cfg.Database.MaxIdleConns = 20

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, "Sync", warnings[0].Category)
	assert.Equal(t, "Notifications", warnings[1].Category)
	assert.Equal(t, "Database", warnings[2].Category)
}
