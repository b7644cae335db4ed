package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger es zerolog.Logger; el alias deja espacio para cambiarlo sin tocar call sites.
type Logger = zerolog.Logger

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Options struct {
	Level  string
	Format string
	App    string

	// Writer opcional (tests). Default: stdout.
	Writer io.Writer
}

// New arma el logger raíz. No hay singleton: quien lo crea lo inyecta.
func New(opts Options) *Logger {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}
	if ParseFormat(opts.Format) == FormatText {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opts.Writer != nil}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}
	l := ctx.Logger()
	return &l
}

// Nop descarta todo (tests y defaults).
func Nop() *Logger {
	l := zerolog.Nop()
	return &l
}

// Named devuelve un logger hijo con el campo component.
func Named(l *Logger, component string) *Logger {
	if l == nil {
		l = Nop()
	}
	child := l.With().Str("component", component).Logger()
	return &child
}

// WithContext guarda el logger en ctx (lo usa el middleware de request).
func WithContext(ctx context.Context, l *Logger) context.Context {
	return l.WithContext(ctx)
}

// From recupera el logger de ctx; si no hay, devuelve uno deshabilitado.
func From(ctx context.Context) *Logger {
	return zerolog.Ctx(ctx)
}
