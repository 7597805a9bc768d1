// Package logger es el logger estructurado del catálogo: una línea por
// entrada (text, console o json), campos heredados vía With y un logger
// por request guardado en el context.
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{Debug: "debug", Info: "info", Warn: "warn", Error: "error"}

// ParseLevel no falla: cualquier valor desconocido es Info.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return Warn
	}
	for lvl, name := range levelNames {
		if s == name {
			return Level(lvl)
		}
	}
	return Info
}

func (l Level) String() string {
	if l < Debug || l > Error {
		return levelNames[Info]
	}
	return levelNames[l]
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	// FormatConsole es text con el nivel coloreado, para desarrollo local.
	FormatConsole Format = "console"
)

func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatConsole:
		return f
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output por defecto es os.Stdout.
	Output io.Writer
	// Now por defecto es time.Now; los tests lo fijan.
	Now func() time.Time
}

// sink es compartido por un logger y todos sus derivados de With:
// un solo mutex por writer.
type sink struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	now    func() time.Time
}

// StdLogger implementa Logger sobre un sink compartido.
type StdLogger struct {
	sink   *sink
	fields map[string]any
}

func New(opts Options) Logger {
	s := &sink{
		w:      opts.Output,
		level:  opts.Level,
		format: opts.Format,
		now:    opts.Now,
	}
	if s.w == nil {
		s.w = os.Stdout
	}
	if s.format == "" {
		s.format = FormatText
	}
	if s.now == nil {
		s.now = time.Now
	}

	l := &StdLogger{sink: s}
	if app := strings.TrimSpace(opts.App); app != "" {
		l.fields = map[string]any{"app": app}
	}
	return l
}

// NewFromEnv lee LOG_LEVEL, LOG_FORMAT y APP_NAME.
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// Nop descarta todo.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) With(map[string]any) Logger { return n }

func (nopLogger) Debug(string, map[string]any) {}
func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}

type ctxKey struct{}

// NewContext guarda l en ctx (típicamente el logger con request_id).
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext devuelve el logger guardado por NewContext, o Nop.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	return Nop()
}

func (l *StdLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &StdLogger{sink: l.sink, fields: merge(l.fields, fields)}
}

func (l *StdLogger) Debug(msg string, fields map[string]any) { l.write(Debug, msg, fields) }
func (l *StdLogger) Info(msg string, fields map[string]any)  { l.write(Info, msg, fields) }
func (l *StdLogger) Warn(msg string, fields map[string]any)  { l.write(Warn, msg, fields) }
func (l *StdLogger) Error(msg string, fields map[string]any) { l.write(Error, msg, fields) }

func (l *StdLogger) write(lvl Level, msg string, fields map[string]any) {
	s := l.sink
	if lvl < s.level {
		return
	}

	all := merge(l.fields, fields)
	ts := s.now()

	var buf bytes.Buffer
	switch s.format {
	case FormatJSON:
		entry := make(map[string]any, len(all)+3)
		for k, v := range all {
			entry[k] = v
		}
		entry["ts"] = ts.Format(time.RFC3339Nano)
		entry["level"] = lvl.String()
		entry["msg"] = msg
		b, err := json.Marshal(entry)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"ts": entry["ts"], "level": entry["level"], "msg": msg, "log_error": err.Error()})
		}
		buf.Write(b)
	default:
		level := lvl.String()
		if s.format == FormatConsole {
			level = levelColor(lvl).Sprint(strings.ToUpper(level))
		}
		fmt.Fprintf(&buf, "ts=%s level=%s msg=%q", ts.Format(time.RFC3339), level, msg)
		for _, k := range sortedKeys(all) {
			fmt.Fprintf(&buf, " %s=%v", k, all[k])
		}
	}
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(buf.Bytes())
}

// merge copia base y encima extra, normalizando valores que json no
// serializa bien (error, Duration).
func merge(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		if strings.TrimSpace(k) == "" {
			continue
		}
		switch x := v.(type) {
		case error:
			v = x.Error()
		case time.Duration:
			v = x.String()
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func levelColor(lvl Level) *color.Color {
	switch lvl {
	case Debug:
		return color.New(color.FgHiBlack)
	case Warn:
		return color.New(color.FgYellow)
	case Error:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
