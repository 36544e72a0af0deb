package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// fileTimeLayout is the sortable timestamp used in report file names.
const fileTimeLayout = "20060102_150405"

// SaveError is returned when a report cannot be written.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SaverConfig holds configuration for the report saver.
type SaverConfig struct {
	// Fs is the file system to write to (default: the OS file system).
	Fs afero.Fs

	// Dir is the directory reports are written to (default: ".").
	Dir string

	// Now returns the timestamp used in the file name (default: time.Now).
	Now func() time.Time

	// Logger for saver operations.
	Logger zerolog.Logger
}

// Saver writes report text to timestamped files.
type Saver struct {
	fs     afero.Fs
	dir    string
	now    func() time.Time
	logger zerolog.Logger
}

// NewSaver creates a new report saver.
func NewSaver(cfg SaverConfig) *Saver {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Saver{
		fs:     fs,
		dir:    dir,
		now:    now,
		logger: cfg.Logger,
	}
}

// FileName returns the report file name for t.
func FileName(t time.Time) string {
	return "route_" + t.Format(fileTimeLayout) + ".txt"
}

// Save writes text verbatim to route_YYYYMMDD_HHMMSS.txt and returns its path.
func (s *Saver) Save(text string) (string, error) {
	path := filepath.Join(s.dir, FileName(s.now()))

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", &SaveError{Path: path, Err: err}
	}
	if err := afero.WriteFile(s.fs, path, []byte(text), 0o644); err != nil {
		return "", &SaveError{Path: path, Err: err}
	}

	s.logger.Debug().
		Str("path", path).
		Int("bytes", len(text)).
		Msg("saved route report")

	return path, nil
}
