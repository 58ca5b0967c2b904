package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Flush() error
	Close() error
	Level() Level
}

// Enabled reports whether t records anything.
func Enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// Config selects a tracer for New.
type Config struct {
	Level Level
	// Path is a file to stream to, or "-" for stderr. Empty keeps events in
	// a ring only.
	Path   string
	Format Format
	// Ring keeps the last RingSize events in memory in addition to the
	// stream.
	Ring     bool
	RingSize int
}

// New builds the tracer described by cfg. With LevelOff it returns Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	var tracers []Tracer
	if cfg.Path != "" {
		w, err := open(cfg.Path)
		if err != nil {
			return nil, err
		}
		format := cfg.Format
		if format == FormatAuto {
			format = FormatText
			if strings.HasSuffix(cfg.Path, ".ndjson") || strings.HasSuffix(cfg.Path, ".jsonl") {
				format = FormatNDJSON
			}
		}
		tracers = append(tracers, NewStreamTracer(w, cfg.Level, format))
	}
	if cfg.Ring || cfg.Path == "" {
		tracers = append(tracers, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(tracers) == 1 {
		return tracers[0], nil
	}
	return NewMultiTracer(cfg.Level, tracers...), nil
}

func open(path string) (io.Writer, error) {
	if path == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }
