package app

import (
	"io"
	"log/slog"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/tools"
	"github.com/dshills/blockedit/internal/tools/lua"
)

// Option configures an Editor.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	logOutput    io.Writer
	resolver     config.Resolver
	classes      tools.Classes
	metrics      *Metrics
	constructors map[module.Name]module.Constructor
}

func defaultOptions() options {
	return options{
		classes: tools.DefaultClasses().With(lua.ClassName, lua.Factory()),
	}
}

// WithLogger sets the logger. By default a text logger on the log output
// is created at the configured log level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogOutput sets where the default logger writes. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithResolver sets the document the holder id is looked up in.
func WithResolver(r config.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithToolClass registers a tool implementation under name.
func WithToolClass(name string, f tools.Factory) Option {
	return func(o *options) {
		o.classes = o.classes.With(name, f)
	}
}

// WithMetrics reports editor activity to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConstructor replaces the constructor of one module. A nil c removes
// the module from the editor.
func WithConstructor(name module.Name, c module.Constructor) Option {
	return func(o *options) {
		if o.constructors == nil {
			o.constructors = make(map[module.Name]module.Constructor)
		}
		o.constructors[name] = c
	}
}
