// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// This interface supports both human-readable command-line output and
// structured JSON lines, so the verifier CLI can switch between the two
// with a flag.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// Errorf formats and prints an error message.
	Errorf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// Errorf prints a message prefixed with "error: ".
func (c *CLILogger) Errorf(format string, v ...any) { c.logger.Printf("error: "+format, v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger with one JSON object per line.
// Every entry carries a level, a message and the static fields given at
// construction.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     *sync.Mutex // shared with loggers derived by With
	writer io.Writer
	silent bool
	fields map[string]any
}

// NewJSONLogger creates a new JSON lines logger.
// A nil writer discards output. When silent is true nothing is written at all,
// which keeps stdout clean for machine-readable results.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		mu:     new(sync.Mutex),
		writer: writer,
		silent: silent,
	}
}

// With returns a logger sharing the output of m that adds key to every entry.
func (m *JSONLogger) With(key string, value any) *JSONLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]any, len(m.fields)+1)
	for k, v := range m.fields {
		fields[k] = v
	}
	fields[key] = value

	return &JSONLogger{
		mu:     m.mu,
		writer: m.writer,
		silent: m.silent,
		fields: fields,
	}
}

func (m *JSONLogger) write(level, msg string) {
	if m.silent {
		return
	}

	logEntry := make(map[string]any, len(m.fields)+2)
	for k, v := range m.fields {
		logEntry[k] = v
	}
	logEntry["level"] = level
	logEntry["message"] = msg

	data, err := json.Marshal(logEntry)
	if err != nil {
		data, _ = json.Marshal(map[string]any{"level": "error", "message": err.Error()})
	}

	m.mu.Lock()
	fmt.Fprintln(m.writer, string(data))
	m.mu.Unlock()
}

// Printf formats and logs an info entry.
func (m *JSONLogger) Printf(format string, v ...any) { m.write("info", fmt.Sprintf(format, v...)) }

// Println logs an info entry built with fmt.Sprint semantics.
func (m *JSONLogger) Println(v ...any) { m.write("info", fmt.Sprint(v...)) }

// Errorf formats and logs an error entry.
func (m *JSONLogger) Errorf(format string, v ...any) { m.write("error", fmt.Sprintf(format, v...)) }

// SetOutput sets the output destination for the JSON logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (m *JSONLogger) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w == nil {
		m.writer = io.Discard
	} else {
		m.writer = w
	}
}
