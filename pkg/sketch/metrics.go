package sketch

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics counts what a sketch did. It is safe for concurrent use.
//
// Metrics can be published through expvar, which serves them at
// /debug/vars once an HTTP server imports it:
//
//	m := sketch.NewMetrics()
//	m.RegisterExpvar("clock")
//	opts.Metrics = m
type Metrics struct {
	frames     atomic.Int64
	outputs    atomic.Int64
	reloads    atomic.Int64
	scriptErrs atomic.Int64
	errorsAll  atomic.Int64
	running    atomic.Bool

	frameNs    atomic.Int64
	frameCount atomic.Int64

	registered atomic.Bool
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of a Metrics.
type MetricsSnapshot struct {
	Frames       int64
	Outputs      int64
	Reloads      int64
	ScriptErrors int64
	Errors       int64
	Running      bool
	FrameAvg     time.Duration
}

// RegisterExpvar publishes the metrics under canvas_<prefix>_*. Later
// calls on the same Metrics are no-ops; expvar panics if another Metrics
// already used the prefix.
func (m *Metrics) RegisterExpvar(prefix string) {
	if m.registered.Swap(true) {
		return
	}
	name := func(s string) string { return "canvas_" + prefix + "_" + s }
	expvar.Publish(name("frames_total"), expvar.Func(func() any { return m.frames.Load() }))
	expvar.Publish(name("outputs_total"), expvar.Func(func() any { return m.outputs.Load() }))
	expvar.Publish(name("reloads_total"), expvar.Func(func() any { return m.reloads.Load() }))
	expvar.Publish(name("script_errors_total"), expvar.Func(func() any { return m.scriptErrs.Load() }))
	expvar.Publish(name("errors_total"), expvar.Func(func() any { return m.errorsAll.Load() }))
	expvar.Publish(name("running"), expvar.Func(func() any { return m.running.Load() }))
	expvar.Publish(name("frame_avg_ms"), expvar.Func(func() any {
		return float64(m.Snapshot().FrameAvg) / float64(time.Millisecond)
	}))
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avg time.Duration
	if n := m.frameCount.Load(); n > 0 {
		avg = time.Duration(m.frameNs.Load() / n)
	}
	return MetricsSnapshot{
		Frames:       m.frames.Load(),
		Outputs:      m.outputs.Load(),
		Reloads:      m.reloads.Load(),
		ScriptErrors: m.scriptErrs.Load(),
		Errors:       m.errorsAll.Load(),
		Running:      m.running.Load(),
		FrameAvg:     avg,
	}
}

func (m *Metrics) recordFrame(d time.Duration) {
	m.frames.Add(1)
	m.frameNs.Add(d.Nanoseconds())
	m.frameCount.Add(1)
}

func (m *Metrics) recordOutput() { m.outputs.Add(1) }
func (m *Metrics) recordReload() { m.reloads.Add(1) }

func (m *Metrics) recordError(err error) {
	m.errorsAll.Add(1)
	if CategoryOf(err) == ErrorCategoryScript {
		m.scriptErrs.Add(1)
	}
}

func (m *Metrics) setRunning(running bool) { m.running.Store(running) }

// Reset clears all values.
func (m *Metrics) Reset() {
	m.frames.Store(0)
	m.outputs.Store(0)
	m.reloads.Store(0)
	m.scriptErrs.Store(0)
	m.errorsAll.Store(0)
	m.running.Store(false)
	m.frameNs.Store(0)
	m.frameCount.Store(0)
}
