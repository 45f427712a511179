// Package logging builds the charmbracelet logger used across jsongraph and
// carries it through context.Context.
package logging

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// TimeFormat renders timestamps as "HH:MM:SS.ms", e.g. "14:32:01.45".
const TimeFormat = "15:04:05.00"

// New creates a logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           level,
	})
	logger.SetStyles(styles())
	return logger
}

// NewWithLevelName is New with a level given by name ("debug", "info", ...).
// Unknown names fall back to info.
func NewWithLevelName(w io.Writer, name string) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		level = log.InfoLevel
	}
	return New(w, level)
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBUG").Bold(true).Foreground(lipgloss.Color("63"))
	s.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Bold(true).Foreground(lipgloss.Color("86"))
	s.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(lipgloss.Color("192"))
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(lipgloss.Color("204"))
	s.Key = lipgloss.NewStyle().Faint(true)
	s.Separator = lipgloss.NewStyle().Faint(true)
	return s
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or log.Default() if there is none.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
