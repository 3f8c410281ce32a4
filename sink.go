package revmodel

import (
	"context"
	"log/slog"
)

// Sink is the single reporting channel for validation and definition
// failures. Call sites choose the severity; the sink decides, per Config,
// whether a failure is returned or logged.
type Sink struct {
	logger *slog.Logger
}

// NewSink returns a sink that logs through logger. A nil logger uses
// slog.Default() at report time.
func NewSink(logger *slog.Logger) *Sink { return &Sink{logger: logger} }

var defaultSink = NewSink(nil)

// DefaultSink returns the process-wide sink.
func DefaultSink() *Sink { return defaultSink }

func (s *Sink) log() *slog.Logger {
	if s == nil || s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Sink) emit(cfg Config, level slog.Level, msg string, iss Issues) {
	if level < cfg.LogLevel {
		return
	}
	l := s.log()
	for _, it := range iss {
		l.Log(context.Background(), level, msg,
			slog.String("path", it.Path),
			slog.String("code", it.Code),
			slog.String("message", it.Message),
			slog.String("hint", it.Hint),
		)
	}
}

// Fatal reports failures that always propagate: construction, Map.Set and
// List.Push failures. The issues are returned as the error.
func (s *Sink) Fatal(cfg Config, iss Issues) error {
	if len(iss) == 0 {
		return nil
	}
	s.emit(cfg, slog.LevelDebug, "revmodel: rejected", iss)
	return iss
}

// Definition reports schema definition errors. They are logged at error level
// and returned as one aggregated error.
func (s *Sink) Definition(cfg Config, iss Issues) error {
	if len(iss) == 0 {
		return nil
	}
	s.emit(cfg, slog.LevelError, "revmodel: invalid definition", iss)
	return iss
}

// Ignored reports writes dropped because they went through a read-only
// facade. They are logged at debug level and never returned.
func (s *Sink) Ignored(cfg Config, iss Issues) {
	s.emit(cfg, slog.LevelDebug, "revmodel: write ignored", iss)
}

// Lenient reports single-field assignment failures. Unless the config asks to
// raise them, they are logged and swallowed.
func (s *Sink) Lenient(cfg Config, iss Issues) error {
	if len(iss) == 0 {
		return nil
	}
	if cfg.AssignErrors == SinkRaise {
		return iss
	}
	s.emit(cfg, slog.LevelWarn, "revmodel: assignment rejected", iss)
	return nil
}
