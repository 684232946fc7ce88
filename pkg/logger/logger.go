package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

var levelNames = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO ",
	slog.LevelWarn:  "WARN ",
	slog.LevelError: "ERROR",
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgBlue),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

// Handler is a compact slog handler for terminal output.
type Handler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	name := levelNames[r.Level]
	if name == "" {
		name = r.Level.String()
	}
	if c := levelColors[r.Level]; c != nil {
		name = c.Sprint(name)
	}

	fmt.Fprintf(h.w, "%s %s > %s", r.Time.Format("15:04:05.000"), name, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " %s=%v", a.Key, a.Value)
		return true
	})
	fmt.Fprintln(h.w)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h
}

// InitDefaultLogger installs the handler as the global slog default.
func InitDefaultLogger(debug bool, logFilePath string) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var writer io.Writer = os.Stderr

	// only write to file if the user asked for one
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		} else {
			writer = io.MultiWriter(os.Stderr, f)
		}
	}

	slog.SetDefault(slog.New(NewHandler(writer, level)))
}
