// Package logging defines the leveled logger used across the widget and its
// go-logger backed implementation.
package logging

import (
	"fmt"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract used by the widget. It mirrors the
// subset of github.com/goliatone/go-logger the widget relies on.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithFields(fields map[string]any) Logger
}

// NoOp returns a logger that discards everything.
func NoOp() Logger { return noop{} }

type noop struct{}

func (noop) Trace(string, ...any)               {}
func (noop) Debug(string, ...any)               {}
func (noop) Info(string, ...any)                {}
func (noop) Warn(string, ...any)                {}
func (noop) Error(string, ...any)               {}
func (n noop) WithFields(map[string]any) Logger { return n }

// Config captures the go-logger options exposed to widget configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider hands out named go-logger child loggers.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds a go-logger root logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &Provider{root: glog.NewLogger(options...)}, nil
}

// GetLogger returns the child logger registered under name.
func (p *Provider) GetLogger(name string) Logger {
	if p == nil {
		return NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Wrap(p.root)
	}
	return Wrap(p.root.GetLogger(name))
}

// Wrap adapts a go-logger Logger to Logger.
func Wrap(inner glog.Logger) Logger {
	if inner == nil {
		return NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}

	if with, ok := l.inner.(glog.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		return Wrap(with.WithFields(copied))
	}

	return &prefixed{Logger: l, args: sortedArgs(fields)}
}

// prefixed appends fixed key/value pairs to every call when the underlying
// logger has no native field support.
type prefixed struct {
	Logger
	args []any
}

func (p *prefixed) Trace(msg string, args ...any) { p.Logger.Trace(msg, p.with(args)...) }
func (p *prefixed) Debug(msg string, args ...any) { p.Logger.Debug(msg, p.with(args)...) }
func (p *prefixed) Info(msg string, args ...any)  { p.Logger.Info(msg, p.with(args)...) }
func (p *prefixed) Warn(msg string, args ...any)  { p.Logger.Warn(msg, p.with(args)...) }
func (p *prefixed) Error(msg string, args ...any) { p.Logger.Error(msg, p.with(args)...) }

func (p *prefixed) WithFields(fields map[string]any) Logger {
	return &prefixed{Logger: p.Logger, args: append(append([]any(nil), p.args...), sortedArgs(fields)...)}
}

func (p *prefixed) with(args []any) []any {
	return append(append([]any(nil), args...), p.args...)
}

func sortedArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	default:
		return ""
	}
}
