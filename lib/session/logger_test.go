package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 7, 30, 12, 30, 0, 0, time.UTC)
}

func TestOpenLoggerExpandsBuiltinTemplateVars(t *testing.T) {
	dir := t.TempDir()
	cfg := LoggerConfig{
		PathTemplate:   filepath.Join(dir, "${connection_name}-${protocol}.log"),
		ConnectionName: "prod-db",
		Protocol:       "ssh",
		Now:            fixedNow,
	}
	logger, err := OpenLogger(cfg)
	require.NoError(t, err)
	defer logger.Close()

	require.Equal(t, filepath.Join(dir, "prod-db-ssh.log"), logger.Path())
}

func TestOpenLoggerRejectsUndefinedVariable(t *testing.T) {
	dir := t.TempDir()
	cfg := LoggerConfig{
		PathTemplate: filepath.Join(dir, "${nonexistent}.log"),
		Now:          fixedNow,
	}
	_, err := OpenLogger(cfg)
	require.Error(t, err)
}

func TestOpenLoggerExpandsUserVars(t *testing.T) {
	dir := t.TempDir()
	cfg := LoggerConfig{
		PathTemplate: filepath.Join(dir, "${group}.log"),
		Vars:         map[string]string{"group": "prod"},
		Now:          fixedNow,
	}
	logger, err := OpenLogger(cfg)
	require.NoError(t, err)
	defer logger.Close()
	require.Equal(t, filepath.Join(dir, "prod.log"), logger.Path())
}

func TestLoggerRecordsOnlyEnabledModes(t *testing.T) {
	dir := t.TempDir()
	cfg := LoggerConfig{
		PathTemplate: filepath.Join(dir, "session.log"),
		Modes:        []LogMode{LogModeOutput},
		Now:          fixedNow,
	}
	logger, err := OpenLogger(cfg)
	require.NoError(t, err)

	logger.RecordInput([]byte("should not appear"))
	logger.RecordOutput([]byte("hello"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
	require.NotContains(t, string(data), "should not appear")
}

func TestOpenLoggerRotatesOverSizeCap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o600))

	cfg := LoggerConfig{
		PathTemplate: path,
		MaxSizeBytes: 50,
		Now:          fixedNow,
	}
	logger, err := OpenLogger(cfg)
	require.NoError(t, err)
	defer logger.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2) // the rotated file plus the freshly opened one
}
