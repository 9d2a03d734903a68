package logger

import (
	"io"
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Fields are attached to a single JSON log line as top-level keys.
type Fields map[string]any

// Log is the process-wide logger. It works at info level before Init is called.
var Log = New("info")

// Init replaces the global logger with one at the given level.
// Unknown or empty levels fall back to info.
func Init(level string) {
	Log = New(level)
}

// New builds a JSON console logger that emits levels up to and including level.
func New(level string) *slog.Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter is New writing to w instead of stdout.
func NewWithWriter(level string, w io.Writer) *slog.Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	maxLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= maxLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewIOWriter(w, levels)
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	}))

	return slog.NewWithHandlers(h)
}

func withService(fields Fields) Fields {
	if fields == nil {
		fields = Fields{}
	}
	if _, ok := fields["service"]; !ok {
		if sn := os.Getenv("SERVICE_NAME"); sn != "" {
			fields["service"] = sn
		}
	}
	return fields
}

func Info(msg string, fields Fields) {
	Log.WithFields(slog.M(withService(fields))).Info(msg)
}

func Warn(msg string, fields Fields) {
	Log.WithFields(slog.M(withService(fields))).Warn(msg)
}

func Error(msg string, fields Fields) {
	Log.WithFields(slog.M(withService(fields))).Error(msg)
}

func Debug(msg string, fields Fields) {
	Log.WithFields(slog.M(withService(fields))).Debug(msg)
}
