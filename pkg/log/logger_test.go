package log

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"resistorkit/pkg/system"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedDay = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

// useFs swaps system.AppFs and pins the clock for the duration of the test.
func useFs(t *testing.T, fs afero.Fs) {
	t.Helper()
	prevFs, prevNow := system.AppFs, now
	system.AppFs = fs
	now = func() time.Time { return fixedDay }
	t.Cleanup(func() {
		system.AppFs = prevFs
		now = prevNow
	})
}

func newTestLogger(t *testing.T, level Level) (*FileLogger, *bytes.Buffer) {
	t.Helper()
	useFs(t, afero.NewMemMapFs())
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.AppName = "test"
	opts.Level = level
	opts.Console = &buf
	l, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, &buf
}

func readLog(t *testing.T, l *FileLogger) string {
	t.Helper()
	content, err := afero.ReadFile(system.AppFs, l.Path())
	require.NoError(t, err)
	return string(content)
}

func TestNew(t *testing.T) {
	l, _ := newTestLogger(t, LevelInfo)

	assert.Equal(t, filepath.Join("logs", "log-2024-03-15.log"), l.Path())
	exists, err := afero.Exists(system.AppFs, l.Path())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, LevelInfo, l.Level())
}

func TestFileLogger_Debug(t *testing.T) {
	l, buf := newTestLogger(t, LevelDebug)

	l.Debug("test debug", "key", "value")

	assert.Contains(t, buf.String(), string(ColorDebug))
	assert.Contains(t, buf.String(), "[DEBUG] test debug key=value")
	assert.Contains(t, readLog(t, l), "[DEBUG] test debug key=value")
}

func TestFileLogger_Info(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo)

	l.Info("test info")

	assert.Contains(t, buf.String(), string(ColorInfo))
	assert.Contains(t, readLog(t, l), "[INFO] test info\n")
}

func TestFileLogger_Warn(t *testing.T) {
	l, buf := newTestLogger(t, LevelWarning)

	l.Warn("test warn")

	assert.Contains(t, buf.String(), string(ColorWarning))
	assert.Contains(t, readLog(t, l), "[WARNING] test warn\n")
}

func TestFileLogger_Error(t *testing.T) {
	l, buf := newTestLogger(t, LevelError)

	l.Error("test error", "error", fmt.Errorf("boom"))

	assert.Contains(t, buf.String(), string(ColorError))
	assert.Contains(t, readLog(t, l), "[ERROR] test error error=boom\n")
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	l, buf := newTestLogger(t, LevelWarning)

	l.Debug("debug message")                // should be filtered out
	l.Info("info message")                  // should be filtered out
	l.Custom(ColorSuccess, "custom message") // INFO severity, filtered out
	l.Warn("warn message")                  // should appear
	l.Error("error message")                // should appear

	for _, output := range []string{buf.String(), readLog(t, l)} {
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.NotContains(t, output, "custom message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	}
}

func TestFileLogger_SetLevel(t *testing.T) {
	l, _ := newTestLogger(t, LevelInfo)

	l.Debug("before")
	l.SetLevel(LevelDebug)
	l.Debug("after")

	assert.Equal(t, LevelDebug, l.Level())
	content := readLog(t, l)
	assert.NotContains(t, content, "before")
	assert.Contains(t, content, "after")
}

func TestFileLogger_Custom(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo)

	l.Custom(ColorHeader, "[CMD] echo hi")

	assert.Equal(t, string(ColorHeader), buf.String()[:len(ColorHeader)])
	assert.True(t, strings.HasSuffix(buf.String(), string(ColorReset)+"\n"))
	content := readLog(t, l)
	assert.Contains(t, content, "[INFO] [CMD] echo hi")
	assert.NotContains(t, content, "\033[")
}

func TestFileLogger_Format(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo)

	l.Info("hello")

	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[test -?\d+\.\d{2}s\] \[INFO\] hello\n$`)
	assert.Regexp(t, pattern, readLog(t, l))
	assert.Equal(t, string(ColorInfo)+strings.TrimSuffix(readLog(t, l), "\n")+string(ColorReset)+"\n", buf.String())
}

func TestFileLogger_ElapsedAndTimestamp(t *testing.T) {
	l, _ := newTestLogger(t, LevelInfo)

	r := slog.NewRecord(fixedDay.Add(1500*time.Millisecond), slog.LevelWarn, "slow", 0)
	r.AddAttrs(slog.String("step", "build app"))
	require.NoError(t, l.Slog().Handler().Handle(context.Background(), r))

	assert.Equal(t, "[2024-03-15 09:30:01] [test 1.50s] [WARNING] slow step=\"build app\"\n", readLog(t, l))
}

func TestFileLogger_WithAttrsAndGroup(t *testing.T) {
	l, _ := newTestLogger(t, LevelInfo)

	l.Slog().With("host", "web1").WithGroup("cmd").Info("done", "code", 0)

	assert.Contains(t, readLog(t, l), "[INFO] done host=web1 cmd.code=0\n")
}

func TestFileLogger_AppendsAcrossInstances(t *testing.T) {
	useFs(t, afero.NewMemMapFs())
	opts := DefaultOptions()
	opts.Console = &bytes.Buffer{}

	for i := 0; i < 3; i++ {
		l, err := New(opts)
		require.NoError(t, err)
		l.Info(fmt.Sprintf("run %d", i))
		require.NoError(t, l.Close())
	}

	content, err := afero.ReadFile(system.AppFs, filepath.Join("logs", "log-2024-03-15.log"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(content), "\n"))
	assert.Contains(t, string(content), "run 0")
	assert.Contains(t, string(content), "run 2")
}

func TestFileLogger_Close(t *testing.T) {
	l, buf := newTestLogger(t, LevelInfo)

	l.Info("open")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.NotPanics(t, func() { l.Error("closed") })
	assert.NotContains(t, buf.String(), "closed")
	assert.NotContains(t, readLog(t, l), "closed")
}

func TestNewConsole(t *testing.T) {
	useFs(t, afero.NewMemMapFs())
	var buf bytes.Buffer
	l, err := NewConsole(Options{AppName: "cli", Level: LevelInfo, Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Info("console only")

	assert.Contains(t, buf.String(), "[cli ")
	assert.Contains(t, buf.String(), "[INFO] console only")
	assert.Empty(t, l.Path())
	exists, err := afero.DirExists(system.AppFs, DefaultDir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNew_Rotation(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		maxFiles  int
		remaining []string
	}{
		{
			name:      "deletes oldest when at limit",
			existing:  []string{"log-2024-03-10.log", "log-2024-03-11.log", "log-2024-03-12.log"},
			maxFiles:  3,
			remaining: []string{"log-2024-03-11.log", "log-2024-03-12.log", "log-2024-03-15.log"},
		},
		{
			name:      "deletes many when far over limit",
			existing:  []string{"log-2024-03-01.log", "log-2024-03-02.log", "log-2024-03-03.log", "log-2024-03-04.log", "log-2024-03-05.log"},
			maxFiles:  2,
			remaining: []string{"log-2024-03-05.log", "log-2024-03-15.log"},
		},
		{
			name:      "keeps everything under limit",
			existing:  []string{"log-2024-03-14.log"},
			maxFiles:  5,
			remaining: []string{"log-2024-03-14.log", "log-2024-03-15.log"},
		},
		{
			name:      "keeps todays file when it already exists",
			existing:  []string{"log-2024-03-13.log", "log-2024-03-14.log", "log-2024-03-15.log"},
			maxFiles:  2,
			remaining: []string{"log-2024-03-14.log", "log-2024-03-15.log"},
		},
		{
			name:      "single file retention",
			existing:  []string{"log-2024-03-13.log", "log-2024-03-14.log"},
			maxFiles:  1,
			remaining: []string{"log-2024-03-15.log"},
		},
		{
			name:      "ignores files without the prefix",
			existing:  []string{"other.txt", "log-2024-03-13.log", "log-2024-03-14.log"},
			maxFiles:  2,
			remaining: []string{"log-2024-03-14.log", "log-2024-03-15.log", "other.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			useFs(t, fs)
			for _, name := range tt.existing {
				require.NoError(t, afero.WriteFile(fs, filepath.Join("logs", name), []byte("old\n"), 0644))
			}

			opts := DefaultOptions()
			opts.MaxFiles = tt.maxFiles
			opts.Console = &bytes.Buffer{}
			l, err := New(opts)
			require.NoError(t, err)
			defer l.Close()

			entries, err := afero.ReadDir(fs, "logs")
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, tt.remaining, names)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("invalid max files", func(t *testing.T) {
		useFs(t, afero.NewMemMapFs())
		opts := DefaultOptions()
		opts.MaxFiles = -1
		_, err := New(opts)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("prefix with path separator", func(t *testing.T) {
		useFs(t, afero.NewMemMapFs())
		opts := DefaultOptions()
		opts.FilenamePrefix = "../log-"
		_, err := New(opts)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("directory cannot be created", func(t *testing.T) {
		useFs(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))
		_, err := New(DefaultOptions())
		assert.ErrorIs(t, err, ErrLogDirectory)
	})

	t.Run("old file cannot be removed", func(t *testing.T) {
		base := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(base, "logs/log-2024-03-01.log", nil, 0644))
		err := rotate(afero.NewReadOnlyFs(base), "logs", "log-", "log-2024-03-15.log", 1)
		assert.ErrorIs(t, err, ErrRotation)
	})

	t.Run("log file cannot be opened", func(t *testing.T) {
		useFs(t, afero.NewOsFs())
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "log-2024-03-15.log"), 0755))

		opts := DefaultOptions()
		opts.Dir = dir
		_, err := New(opts)
		assert.ErrorIs(t, err, ErrLogFile)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarning, false},
		{"Warning", LevelWarning, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	assert.True(t, LevelDebug < LevelInfo)
	assert.True(t, LevelInfo < LevelWarning)
	assert.True(t, LevelWarning < LevelError)
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarning, LevelError} {
		assert.Equal(t, l, levelFromSlog(l.SlogLevel()))
	}
}
