// Package logging настраивает log/slog для CLI bbtemplar.
//
// Компоненты принимают *slog.Logger; если логгер не нужен, используйте Nop().
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level — уровень логирования.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format — формат вывода.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config — настройки логгера.
type Config struct {
	Level  Level
	Format Format
	// Output по умолчанию os.Stderr: stdout занят результатом рендера
	Output io.Writer
}

// New создаёт логгер по конфигурации.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(handler)
}

// Nop возвращает логгер, который ничего не пишет.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel разбирает "debug", "info", "warn"/"warning", "error" без учёта регистра.
// Нераспознанное значение даёт LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat разбирает "text" или "json"; по умолчанию FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}
