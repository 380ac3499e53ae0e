// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	actionWidth  = 10 // Width for the action column
	detailWidth  = 15 // Width for detail text
	headerPrefix = "filesync"
)

// 🏷️ FileEvent is what happened to a single input file
type FileEvent int

const (
	EventRelocated FileEvent = iota
	EventSkipped
	EventIgnored
	EventDeleted
	EventNotFound
	EventFailed
)

// String returns the event name used in structured logs
func (e FileEvent) String() string {
	switch e {
	case EventRelocated:
		return "relocated"
	case EventSkipped:
		return "skipped"
	case EventIgnored:
		return "ignored"
	case EventDeleted:
		return "deleted"
	case EventNotFound:
		return "not_found"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 🎯 FileOperation represents a file operation for logging
type FileOperation struct {
	Name   string    // File name inside the input directory
	Event  FileEvent // What happened
	Action string    // Short verb shown in the second column (moved/copied/deleted)
	Detail string    // Free text shown last
	Err    error     // Set for failures and swallowed errors
}

// 📦 JobOperation describes the job a pass belongs to
type JobOperation struct {
	Name    string
	InDir   string
	OutDir  string
	Records string
	Mode    string
}

// 🎯 Logger writes aligned console lines and mirrors them into zerolog
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         *sync.Mutex
	currentJob *JobOperation
	files      int
}

// 🏭 New creates a new logger writing structured events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      &sync.Mutex{},
	}
}

// 🍴 Fork returns a logger with its own job state that shares the console
// lock, so concurrent jobs never interleave within a line.
func (l *Logger) Fork() *Logger {
	return &Logger{
		zlog:    l.zlog,
		console: l.console,
		mu:      l.mu,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a discarding one
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, *zerolog.Ctx(ctx))
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func eventStyle(e FileEvent) (rune, color.Attribute) {
	switch e {
	case EventRelocated:
		return '✓', color.FgGreen
	case EventDeleted:
		return '✗', color.FgRed
	case EventSkipped:
		return '•', color.FgCyan
	case EventIgnored:
		return '-', color.FgYellow
	case EventNotFound:
		return '?', color.FgYellow
	default:
		return '!', color.FgRed
	}
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	symbol, symbolColor := eventStyle(op.Event)

	detail := op.Detail
	if op.Err != nil && detail == "" {
		detail = op.Err.Error()
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Name),
		color.New(color.FgBlue).Sprint(fmt.Sprintf("%-*s", actionWidth, op.Action)),
		fmt.Sprintf("%-*s", detailWidth, detail))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	var ev *zerolog.Event
	switch op.Event {
	case EventFailed:
		ev = l.zlog.Error().Err(op.Err)
	case EventNotFound:
		ev = l.zlog.Warn().Err(op.Err)
	default:
		ev = l.zlog.Info()
	}
	if l.currentJob != nil {
		ev = ev.Str("job", l.currentJob.Name)
	}
	ev.Str("file", op.Name).
		Str("event", op.Event.String()).
		Str("action", op.Action).
		Str("detail", op.Detail).
		Msg("file operation")
}

// 📝 StartJob prints the job header and resets the per-job operation list
func (l *Logger) StartJob(ctx context.Context, job JobOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentJob = &job
	l.files = 0

	fmt.Fprintf(l.console, "[syncing %s]\n",
		color.New(color.FgCyan).Sprint(job.OutDir))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(job.InDir),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(job.Mode))

	l.zlog.Info().
		Str("job", job.Name).
		Str("in", job.InDir).
		Str("out", job.OutDir).
		Str("records", job.Records).
		Str("mode", job.Mode).
		Msg("starting job")
}

// 📝 EndJob closes the current job
func (l *Logger) EndJob(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentJob == nil {
		return
	}

	l.zlog.Info().
		Str("job", l.currentJob.Name).
		Int("files", l.files).
		Msg("job complete")

	l.currentJob = nil
	l.files = 0
}

// Block writes a pre-rendered block such as a table in one piece
func (l *Logger) Block(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, strings.TrimRight(text, "\n"))
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint(headerPrefix)
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
