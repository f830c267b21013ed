package test

import (
	"path/filepath"
	"testing"

	"resistorkit/pkg/system"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// SetupMockFilesystem installs an in-memory filesystem as system.AppFs for
// the duration of the test and returns it for direct manipulation.
func SetupMockFilesystem(t *testing.T) afero.Fs {
	t.Helper()
	prev := system.AppFs
	fs := afero.NewMemMapFs()
	system.AppFs = fs
	t.Cleanup(func() { system.AppFs = prev })
	return fs
}

// CreateTestFile creates a file with content in the test filesystem.
func CreateTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	err := fs.MkdirAll(filepath.Dir(path), 0755)
	require.NoError(t, err)
	err = afero.WriteFile(fs, path, []byte(content), 0644)
	require.NoError(t, err)
}

// AssertFileExists checks that a file exists and has expected content.
func AssertFileExists(t *testing.T, fs afero.Fs, path, expectedContent string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.True(t, exists, "File %s should exist", path)

	if expectedContent != "" {
		content, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		require.Equal(t, expectedContent, string(content))
	}
}

// AssertFileNotExists checks that a file does not exist.
func AssertFileNotExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.False(t, exists, "File %s should not exist", path)
}

// AssertCommandExecuted checks that a command was executed by the mock executor.
func AssertCommandExecuted(t *testing.T, executor *MockExecutor, command string) {
	t.Helper()
	require.Contains(t, executor.Commands(), command, "Command should have been executed: %s", command)
}

// AssertLogContains checks that the logger captured a message containing the substring.
func AssertLogContains(t *testing.T, logger *MockLogger, substring string) {
	t.Helper()
	require.True(t, logger.HasMessage(substring), "Log should contain: %s", substring)
}
