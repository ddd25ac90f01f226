package sketch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

type recordLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprint(level, " ", msg, " ", args))
}

func (l *recordLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *recordLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *recordLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *recordLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *recordLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

type sketchFiles struct {
	dir    string
	config string
	script string
	output string
}

// writeSketch writes draw.lua and a config for it. extra is appended to
// the config table.
func writeSketch(t *testing.T, script, extra string) sketchFiles {
	t.Helper()
	dir := t.TempDir()
	f := sketchFiles{
		dir:    dir,
		config: filepath.Join(dir, "sketch.lua"),
		script: filepath.Join(dir, "draw.lua"),
		output: filepath.Join(dir, "out", "frame.png"),
	}
	cfg := fmt.Sprintf(`canvas.config = {
    id = %q,
    width = 40,
    height = 20,
    script = "draw.lua",
    output = [[%s]],
    background = "#0000ff",
    %s
}
`, t.Name(), f.output, extra)
	writeFile(t, f.config, cfg)
	writeFile(t, f.script, script)
	return f
}

func newTestSketch(t *testing.T, files sketchFiles, opts *Options) *sketchImpl {
	t.Helper()
	s, err := New(files.config, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.(*sketchImpl)
}

func readPixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

const redSquare = `ctx:set_fill_style("#ff0000"); ctx:fill_rect(0, 0, 10, 10)`

func TestNewAndRenderTopLevel(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	s := newTestSketch(t, files, nil)

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := readPixel(t, files.output, 5, 5); got != red {
		t.Errorf("drawn pixel = %v, want red", got)
	}
	if got := readPixel(t, files.output, 30, 15); got != blue {
		t.Errorf("background pixel = %v, want blue", got)
	}

	el := s.Canvas()
	if el.ID() != t.Name() || el.Width() != 40 || el.Height() != 20 {
		t.Errorf("surface = %q %gx%g", el.ID(), el.Width(), el.Height())
	}
	if looked, ok := canvas.GetCanvasElementByID(t.Name()); !ok || looked.ID() != el.ID() {
		t.Error("surface is not registered")
	}
	if s.Config().Script != files.script {
		t.Errorf("Script = %q, want %q", s.Config().Script, files.script)
	}
}

func TestDrawHook(t *testing.T) {
	files := writeSketch(t, `
frames = {}
setup_calls = 0
function setup(c)
    setup_calls = setup_calls + 1
    c:set_fill_style("#00ff00")
end
function draw(c, frame)
    frames[#frames + 1] = frame
    c:fill_rect(0, 0, 10 + frame, 10)
end
`, "")
	s := newTestSketch(t, files, nil)

	for range 3 {
		if err := s.Render(); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
	}

	if n, _ := s.runtime.GetGlobal("setup_calls").TryInt(); n != 1 {
		t.Errorf("setup ran %d times, want 1", n)
	}
	out, err := s.runtime.ExecuteString("check", `return table.concat(frames, ",")`)
	if err != nil {
		t.Fatalf("ExecuteString failed: %v", err)
	}
	if got, _ := out.TryString(); got != "0,1,2" {
		t.Errorf("frames = %q, want 0,1,2", got)
	}
	// Frame 2 covers x < 12 and the background is repainted each frame.
	if got := readPixel(t, files.output, 11, 5); got != green {
		t.Errorf("pixel inside frame 2 rect = %v, want green", got)
	}
	if got := readPixel(t, files.output, 12, 5); got != blue {
		t.Errorf("pixel outside frame 2 rect = %v, want blue", got)
	}
}

func TestDataURLOutput(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	var stdout bytes.Buffer
	s := newTestSketch(t, files, &Options{Output: config.OutputDataURL, Stdout: &stdout})

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "data:image/png;base64,") || !strings.HasSuffix(stdout.String(), "\n") {
		t.Errorf("unexpected data url output %q", stdout.String())
	}
	if _, err := os.Stat(files.output); !os.IsNotExist(err) {
		t.Error("the option must replace the configured file output")
	}
}

func TestJPEGOutput(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	out := filepath.Join(files.dir, "frame.jpg")
	s := newTestSketch(t, files, &Options{Output: out})

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	if _, format, err := image.DecodeConfig(f); err != nil || format != "jpeg" {
		t.Errorf("DecodeConfig = %q, %v; want jpeg", format, err)
	}
}

func TestOptionsOverride(t *testing.T) {
	files := writeSketch(t, "", "preview = true, cpu_limit = 5000")
	s := newTestSketch(t, files, &Options{
		Headless:       true,
		Preview:        true,
		Watch:          true,
		LuaCPULimit:    1_000_000,
		LuaMemoryLimit: 1 << 20,
	})

	cfg := s.Config()
	if cfg.Preview {
		t.Error("Headless should disable the preview")
	}
	if !cfg.Watch {
		t.Error("Watch option should enable watching")
	}
	if cfg.CPULimit != 1_000_000 || cfg.MemoryLimit != 1<<20 {
		t.Errorf("limits = %d, %d", cfg.CPULimit, cfg.MemoryLimit)
	}
	if s.runtime.Config().CPULimit != 1_000_000 {
		t.Error("runtime did not receive the CPU limit")
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing.lua"), nil)
		if CategoryOf(err) != ErrorCategoryConfig {
			t.Errorf("expected config error, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		files := writeSketch(t, "", "fps = 0")
		_, err := New(files.config, nil)
		if CategoryOf(err) != ErrorCategoryConfig || !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("expected invalid config error, got %v", err)
		}
	})

	t.Run("script error", func(t *testing.T) {
		files := writeSketch(t, `error("broken sketch")`, "")
		_, err := New(files.config, nil)
		if CategoryOf(err) != ErrorCategoryScript || !strings.Contains(err.Error(), "broken sketch") {
			t.Errorf("expected script error, got %v", err)
		}
		if _, ok := canvas.GetCanvasElementByID(t.Name()); ok {
			t.Error("a failed load must not leave its surface registered")
		}
	})

	t.Run("id taken", func(t *testing.T) {
		files := writeSketch(t, "", "")
		if _, err := canvas.NewCanvas(t.Name(), 1, 1); err != nil {
			t.Fatalf("NewCanvas failed: %v", err)
		}
		defer canvas.RemoveCanvas(t.Name())
		_, err := New(files.config, nil)
		if CategoryOf(err) != ErrorCategoryRender {
			t.Errorf("expected render error, got %v", err)
		}
	})
}

func TestRenderScriptError(t *testing.T) {
	files := writeSketch(t, `
function draw(c, frame)
    if frame == 1 then error("bad frame") end
end
`, "")
	s := newTestSketch(t, files, nil)

	var handled error
	s.SetErrorHandler(func(err error) { handled = err })

	if err := s.Render(); err != nil {
		t.Fatalf("first Render failed: %v", err)
	}
	err := s.Render()
	if CategoryOf(err) != ErrorCategoryScript || !strings.Contains(err.Error(), "bad frame") {
		t.Fatalf("expected script error, got %v", err)
	}
	if s.Err() != err || handled != err {
		t.Errorf("Err() = %v, handler got %v", s.Err(), handled)
	}
}

func TestScriptOutputIsLogged(t *testing.T) {
	files := writeSketch(t, `
print("loaded")
function teardown() print("bye") end
`, "")
	logger := &recordLogger{}
	s, err := New(files.config, &Options{Logger: logger})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !logger.contains("script output [line loaded]") {
		t.Errorf("print output not logged: %v", logger.entries)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !logger.contains("[line bye]") {
		t.Errorf("teardown did not run: %v", logger.entries)
	}
	if _, ok := canvas.GetCanvasElementByID(t.Name()); ok {
		t.Error("Close should unregister the surface")
	}
	if err := s.Render(); !errors.Is(err, ErrClosed) {
		t.Errorf("Render after Close = %v, want ErrClosed", err)
	}
	if err := s.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestStartWithoutLoop(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	s := newTestSketch(t, files, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish")
	}
	if s.IsRunning() {
		t.Error("sketch without preview or watch should not keep running")
	}
	if got := readPixel(t, files.output, 5, 5); got != red {
		t.Errorf("Start did not write the first frame, got %v", got)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop after finish = %v", err)
	}
}

func TestRunUntilCancelled(t *testing.T) {
	files := writeSketch(t, `
count = 0
function draw(c, frame) count = frame end
`, "watch = true, fps = 100")
	s := newTestSketch(t, files, &Options{Headless: true})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	if !s.IsRunning() {
		t.Error("Run should be running")
	}
	if err := s.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	s.mu.Lock()
	frames := s.frame
	s.mu.Unlock()
	if frames < 3 {
		t.Errorf("ticker drew %d frames, want several", frames)
	}
}

func TestWatchReloadsScript(t *testing.T) {
	files := writeSketch(t, redSquare, "watch = true")
	s := newTestSketch(t, files, &Options{Headless: true, WatchDebounce: 50 * time.Millisecond})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}
	// Give the watcher time to start.
	time.Sleep(150 * time.Millisecond)

	writeFile(t, files.script, `ctx:set_fill_style("#00ff00"); ctx:fill_rect(0, 0, 10, 10)`)

	deadline := time.Now().Add(3 * time.Second)
	for readPixel(t, files.output, 5, 5) != green {
		if time.Now().After(deadline) {
			t.Fatal("output was not redrawn after the script changed")
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning after Stop")
	}
}

func TestWatchKeepsSketchOnBrokenReload(t *testing.T) {
	files := writeSketch(t, redSquare, "watch = true")
	s := newTestSketch(t, files, &Options{Headless: true, WatchDebounce: 50 * time.Millisecond})

	errCh := make(chan error, 1)
	s.SetErrorHandler(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()
	time.Sleep(150 * time.Millisecond)

	oldRuntime := s.runtime
	writeFile(t, files.script, `this is not lua`)

	select {
	case err := <-errCh:
		if CategoryOf(err) != ErrorCategoryScript {
			t.Errorf("expected script error, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("broken reload was not reported")
	}
	s.mu.Lock()
	kept := s.runtime == oldRuntime
	s.mu.Unlock()
	if !kept {
		t.Error("a failed reload replaced the running script")
	}

	s.flush()
	if got := readPixel(t, files.output, 5, 5); got != red {
		t.Errorf("pixel after failed reload = %v, want red", got)
	}
}

func TestFailedReloadRestoresSurface(t *testing.T) {
	files := writeSketch(t, `
ctx:set_fill_style("#ff0000")
ctx:fill_rect(0, 0, 10, 10)
ctx:translate(20, 0)
ctx:set_fill_style("#00ff00")
`, "")
	s := newTestSketch(t, files, nil)
	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// The broken config also resizes the surface before the script fails.
	writeFile(t, files.config, strings.Replace(mustRead(t, files.config), "height = 20", "height = 30", 1))
	writeFile(t, files.script, `this is not lua`)
	if err := s.reload(); CategoryOf(err) != ErrorCategoryScript {
		t.Fatalf("reload = %v, want script error", err)
	}

	el := s.Canvas()
	if el.Height() != 20 {
		t.Errorf("height after failed reload = %v, want 20", el.Height())
	}
	if got := el.Context2D().FillStyle(); got != "#00ff00" {
		t.Errorf("fill style after failed reload = %q, want #00ff00", got)
	}
	if got := el.Context2D().GetTransform(); got.M31 != 20 {
		t.Errorf("transform after failed reload = %+v, want translate(20, 0)", got)
	}
	if err := s.Render(); err != nil {
		t.Fatalf("Render after failed reload: %v", err)
	}
	if got := readPixel(t, files.output, 5, 5); got != red {
		t.Errorf("pixel after failed reload = %v, want red", got)
	}
	if got := readPixel(t, files.output, 30, 15); got != blue {
		t.Errorf("background after failed reload = %v, want blue", got)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestRestart(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	s := newTestSketch(t, files, nil)

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	writeFile(t, files.script, `ctx:set_fill_style("#00ff00"); ctx:fill_rect(0, 0, 10, 10)`)
	if err := s.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	<-s.Done()
	if got := readPixel(t, files.output, 5, 5); got != green {
		t.Errorf("after Restart pixel = %v, want green", got)
	}
}

func TestReloadChangesSurface(t *testing.T) {
	files := writeSketch(t, "", "")
	s := newTestSketch(t, files, nil)
	old := s.Canvas()

	cfg := strings.Replace(mustRead(t, files.config), "width = 40", "width = 64", 1)
	writeFile(t, files.config, cfg)
	if err := s.reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if s.Canvas() != old || s.Canvas().Width() != 64 {
		t.Errorf("same id should resize the existing surface, width %g", s.Canvas().Width())
	}

	newID := t.Name() + "-renamed"
	writeFile(t, files.config, strings.Replace(cfg, fmt.Sprintf("%q", t.Name()), fmt.Sprintf("%q", newID), 1))
	if err := s.reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if s.Canvas().ID() != newID {
		t.Errorf("ID = %q, want %q", s.Canvas().ID(), newID)
	}
	if _, ok := canvas.GetCanvasElementByID(t.Name()); ok {
		t.Error("old surface should be unregistered")
	}
}

func TestSurfaceView(t *testing.T) {
	files := writeSketch(t, redSquare, "")
	s := newTestSketch(t, files, nil)
	view := surfaceView{s: s}

	w, h := view.PixelSize()
	if w != 40 || h != 20 {
		t.Fatalf("PixelSize = %dx%d", w, h)
	}
	pix := make([]byte, w*h*4)
	view.CopyPremultiplied(pix)
	if pix[0] != 255 || pix[3] != 255 {
		t.Errorf("first pixel = %v, want opaque red", pix[:4])
	}

	stale := make([]byte, 8)
	view.CopyPremultiplied(stale)
	if stale[0] != 0 {
		t.Error("a buffer of the wrong size must be left alone")
	}
}

func TestFrameInterval(t *testing.T) {
	if got := frameInterval(50); got != 20*time.Millisecond {
		t.Errorf("frameInterval(50) = %v", got)
	}
	if got := frameInterval(0); got != time.Second/config.DefaultFPS {
		t.Errorf("frameInterval(0) = %v", got)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
