package sketch

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/internal/preview"
)

// Start draws the first frame and runs the loop in a goroutine.
func (s *sketchImpl) Start() error {
	ctx, finish, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	if err := s.Render(); err != nil {
		finish()
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer finish()
		if err := s.loop(ctx); err != nil {
			s.notifyError(err)
		}
	}()
	return nil
}

// Run draws the first frame and runs the loop on the calling goroutine.
func (s *sketchImpl) Run(ctx context.Context) error {
	ctx, finish, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer finish()
	if err := s.Render(); err != nil {
		return err
	}
	return s.loop(ctx)
}

// begin marks the sketch running and returns the loop context and the
// function that ends the run.
func (s *sketchImpl) begin(parent context.Context) (context.Context, func(), error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running.Load() {
		return nil, nil, ErrAlreadyRunning
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, nil, ErrClosed
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.running.Store(true)
	s.metrics.setRunning(true)

	finish := func() {
		cancel()
		s.running.Store(false)
		s.metrics.setRunning(false)
		close(done)
	}
	return ctx, finish, nil
}

// loop runs until ctx is done. It returns at once when the sketch
// neither previews nor watches.
func (s *sketchImpl) loop(ctx context.Context) error {
	cfg := s.Config()
	if !cfg.Preview && !cfg.Watch {
		return nil
	}

	if cfg.Watch {
		w, err := newFileWatcher(cfg.WatchPaths(), s.opts.WatchDebounce, s.reloadAndRender, s.notifyError)
		if err != nil {
			return newError(ErrorCategoryIO, fmt.Errorf("watch %v: %w", cfg.WatchPaths(), err))
		}
		w.Start()
		defer w.Stop()
		s.logger.Info("watching for changes", "files", cfg.WatchPaths())
	}
	defer s.flush()

	if cfg.Preview {
		return s.runPreview(ctx, cfg)
	}
	return s.runTicker(ctx, cfg.FPS)
}

func (s *sketchImpl) runPreview(ctx context.Context, cfg config.Config) error {
	game := preview.New(surfaceView{s: s}, preview.Config{
		Title: "canvas-go: " + cfg.ID,
		TPS:   preview.TPSFromFPS(cfg.FPS),
	})
	game.SetContext(ctx)
	game.SetFrameFunc(func(uint64) error {
		return s.drawFrame()
	})
	game.SetErrorHandler(s.notifyError)

	s.logger.Debug("opening preview", "id", cfg.ID, "tps", game.Config().TPS)
	if err := game.Run(); err != nil {
		return newError(ErrorCategoryRender, fmt.Errorf("preview: %w", err))
	}
	return nil
}

func (s *sketchImpl) runTicker(ctx context.Context, fps float64) error {
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.drawFrame(); err != nil {
				s.notifyError(err)
			}
		}
	}
}

// Stop cancels the loop and waits for it up to the shutdown timeout.
func (s *sketchImpl) Stop() error {
	s.runMu.Lock()
	if !s.running.Load() {
		s.runMu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()

	cancel()

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	select {
	case <-done:
		s.wg.Wait()
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v: loop did not stop", timeout)
		s.notifyError(err)
		return err
	}
}

// Restart stops, reloads and starts again.
func (s *sketchImpl) Restart() error {
	if err := s.Stop(); err != nil {
		wrapped := fmt.Errorf("stop failed: %w", err)
		s.notifyError(wrapped)
		return wrapped
	}
	if err := s.reload(); err != nil {
		wrapped := fmt.Errorf("reload failed: %w", err)
		s.notifyError(wrapped)
		return wrapped
	}
	if err := s.Start(); err != nil {
		wrapped := fmt.Errorf("start failed: %w", err)
		s.notifyError(wrapped)
		return wrapped
	}
	return nil
}

// IsRunning reports whether a loop is active.
func (s *sketchImpl) IsRunning() bool {
	return s.running.Load()
}

// Done is closed when the current loop ends.
func (s *sketchImpl) Done() <-chan struct{} {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.done
}
