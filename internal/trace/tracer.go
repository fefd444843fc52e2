package trace

import (
	"fmt"
	"io"
	"os"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// Config holds StreamTracer configuration. The zero value traces
// nothing: New(Config{}) returns Nop because LevelOff is the zero
// Level.
type Config struct {
	Level      Level     // tracing level
	Format     Format    // FormatText or FormatNDJSON
	Output     io.Writer // if nil, OutputPath is opened instead
	OutputPath string    // "" or "-" means os.Stderr
}

// New builds a Tracer from cfg. A batch run that wants to watch its own
// progress on stderr passes Config{Level: LevelPhase}; a caller piping
// traces into another tool sets Format: FormatNDJSON and an OutputPath.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return nopTracer{}, nil
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	return NewStreamTracer(w, cfg.Level, cfg.Format), nil
}

// openOutput opens the output writer from config.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("trace: failed to open output: %w", err)
	}

	return f, nil
}
