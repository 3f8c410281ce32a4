package revmodel

import (
	"log/slog"

	"github.com/reoring/revmodel/i18n"
)

// Lifecycle is the owning context of managed instances: the clock that stamps
// their mutations, the mutability policy and the error sink. Every instance
// keeps the lifecycle it was created under, and children wrapped into a
// container join the container's lifecycle.
type Lifecycle struct {
	clock *Clock
	cfg   *Config
	sink  *Sink
}

// LifecycleOption configures NewLifecycle.
type LifecycleOption func(*Lifecycle)

// WithClock binds an explicit clock.
func WithClock(c *Clock) LifecycleOption { return func(l *Lifecycle) { l.clock = c } }

// WithConfig pins a config instead of following the process-scoped one.
func WithConfig(cfg Config) LifecycleOption {
	return func(l *Lifecycle) { l.cfg = &cfg }
}

// WithSink binds an explicit sink.
func WithSink(s *Sink) LifecycleOption { return func(l *Lifecycle) { l.sink = s } }

// WithLogger binds a sink that logs through logger.
func WithLogger(logger *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) { l.sink = NewSink(logger) }
}

// NewLifecycle builds a lifecycle. Unset parts fall back to DefaultClock,
// CurrentConfig and DefaultSink.
func NewLifecycle(opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{}
	for _, o := range opts {
		o(l)
	}
	return l
}

var defaultLifecycle = &Lifecycle{}

// DefaultLifecycle returns the process-scoped lifecycle.
func DefaultLifecycle() *Lifecycle { return defaultLifecycle }

// Clock returns the bound clock.
func (l *Lifecycle) Clock() *Clock {
	if l == nil || l.clock == nil {
		return DefaultClock()
	}
	return l.clock
}

// Config returns the effective config.
func (l *Lifecycle) Config() Config {
	if l == nil || l.cfg == nil {
		return CurrentConfig()
	}
	return *l.cfg
}

// Sink returns the bound sink.
func (l *Lifecycle) Sink() *Sink {
	if l == nil || l.sink == nil {
		return DefaultSink()
	}
	return l.sink
}

func (l *Lifecycle) fatal(iss Issues) error      { return l.Sink().Fatal(l.Config(), iss) }
func (l *Lifecycle) lenient(iss Issues) error    { return l.Sink().Lenient(l.Config(), iss) }
func (l *Lifecycle) definition(iss Issues) error { return l.Sink().Definition(l.Config(), iss) }

// ignoreWrite reports op attempted on a facade of type t.
func (l *Lifecycle) ignoreWrite(op string, t Type) {
	l.Sink().Ignored(l.Config(), Issues{RootPath().Issue(CodeReadOnly, i18n.T(CodeReadOnly, nil),
		"op", op, "type", t.Name())})
}

func orDefault(lc *Lifecycle) *Lifecycle {
	if lc == nil {
		return DefaultLifecycle()
	}
	return lc
}
