package sketch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opd-ai/go-canvas/internal/config"
)

// writeOutputLocked writes the surface to the configured output.
// s.mu must be held.
func (s *sketchImpl) writeOutputLocked() error {
	if s.closed {
		return ErrClosed
	}
	switch s.cfg.Output {
	case "":
		return nil
	case config.OutputDataURL:
		if _, err := fmt.Fprintln(s.opts.Stdout, s.el.ToDataURLType(s.cfg.OutputFormat(), -1)); err != nil {
			return newError(ErrorCategoryIO, fmt.Errorf("write data url: %w", err))
		}
		s.metrics.recordOutput()
		return nil
	default:
		return newError(ErrorCategoryIO, s.writeFileLocked(s.cfg.Output))
	}
}

// writeFileLocked encodes the surface into a temporary file and renames it
// to path.
func (s *sketchImpl) writeFileLocked(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("create output: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := s.el.Encode(w, s.cfg.OutputFormat(), -1); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.metrics.recordOutput()
	s.logger.Debug("output written", "path", path, "format", s.cfg.OutputFormat())
	return nil
}
