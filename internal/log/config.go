package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format int

const (
	// FormatJSON outputs logs in JSON format
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format
	FormatText
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	default:
		return "json"
	}
}

// ParseFormat parses a string into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q: must be json or text", s)
	}
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer, stderr when unset
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return os.Stderr
	}
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// Config holds configuration for the logger
type Config struct {
	Level     Level
	Format    Format
	Output    Output
	AddSource bool

	// ServiceName is attached to every entry when set
	ServiceName string
}

// DefaultConfig logs at INFO in JSON to stderr. Stdout is left to
// command output.
func DefaultConfig() Config {
	return Config{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      OutputStderr(),
		ServiceName: "ordinex",
	}
}

// DevelopmentConfig logs at DEBUG in text with source locations
func DevelopmentConfig() Config {
	return Config{
		Level:       LevelDebug,
		Format:      FormatText,
		Output:      OutputStderr(),
		AddSource:   true,
		ServiceName: "ordinex",
	}
}

// ConfigFromStrings builds a Config from textual level and format values
// as found in config files, environment variables and flags.
func ConfigFromStrings(level, format string) (Config, error) {
	cfg := DefaultConfig()

	l, err := ParseLevel(level)
	if err != nil {
		return cfg, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return cfg, err
	}

	cfg.Level = l
	cfg.Format = f
	cfg.AddSource = l == LevelDebug
	return cfg, nil
}
