package revmodel

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/reoring/revmodel/internal/envconfig"
)

// SinkMode controls what the sink does with lenient (assignment) failures.
type SinkMode int

const (
	SinkLog   SinkMode = iota // Log and ignore; the previous value is retained.
	SinkRaise                 // Return the issues to the caller.
)

func (m SinkMode) String() string {
	switch m {
	case SinkRaise:
		return "raise"
	default:
		return "log"
	}
}

// UnmarshalText parses "log" or "raise".
func (m *SinkMode) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "log":
		*m = SinkLog
	case "raise":
		*m = SinkRaise
	default:
		return fmt.Errorf("unknown sink mode %q", string(b))
	}
	return nil
}

// Config is the process-scoped mutability and reporting policy.
type Config struct {
	// FreezeInstance makes assignments to undeclared fields an error instead
	// of a silent no-op.
	FreezeInstance bool `env:"REVMODEL_FREEZE_INSTANCE" envDefault:"false"`
	// AssignErrors selects how failed single-field assignments are reported.
	AssignErrors SinkMode `env:"REVMODEL_ASSIGN_ERRORS" envDefault:"log"`
	// LogLevel is the minimum level the sink emits.
	LogLevel slog.Level `env:"REVMODEL_LOG_LEVEL" envDefault:"warn"`
}

// DefaultConfig returns the built-in defaults (no freeze, log-and-ignore).
func DefaultConfig() Config {
	return Config{FreezeInstance: false, AssignErrors: SinkLog, LogLevel: slog.LevelWarn}
}

var currentConfig = DefaultConfig()

// CurrentConfig returns the process-scoped configuration.
func CurrentConfig() Config { return currentConfig }

// SetConfig replaces the process-scoped configuration. It affects every
// lifecycle built without an explicit config, including DefaultLifecycle.
func SetConfig(cfg Config) { currentConfig = cfg }

// ResetConfig restores DefaultConfig. Tests call it in cleanup.
func ResetConfig() { currentConfig = DefaultConfig() }

// LoadConfigFromEnv reads REVMODEL_* variables on top of the defaults.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Parse(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("revmodel config: %w", err)
	}
	return cfg, nil
}
