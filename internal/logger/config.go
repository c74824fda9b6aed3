package logger

import (
	"io"
)

// Options holds the full logger configuration, including file rotation.
type Options struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	Output      io.Writer // explicit output, overrides stdout and file
	ServiceName string

	// File sink; empty disables it.
	File     string
	FileOnly bool // do not also write to stdout

	// Rotation, passed to lumberjack.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions returns stdout JSON logging at info level.
func DefaultOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "json",
		ServiceName: "batchpub",
		MaxSizeMB:   100,
		MaxBackups:  7,
		MaxAgeDays:  30,
		Compress:    true,
	}
}

// Basic drops the file settings.
func (o *Options) Basic() *Config {
	return &Config{
		Level:       o.Level,
		Format:      o.Format,
		Output:      o.Output,
		ServiceName: o.ServiceName,
	}
}
