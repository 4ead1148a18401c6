package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/dshills/blockedit/internal/blocks"
	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/events"
	"github.com/dshills/blockedit/internal/i18n"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
	"github.com/dshills/blockedit/internal/observer"
	"github.com/dshills/blockedit/internal/pipeline"
	"github.com/dshills/blockedit/internal/readonly"
	"github.com/dshills/blockedit/internal/sanitizer"
	"github.com/dshills/blockedit/internal/shortcut"
	"github.com/dshills/blockedit/internal/tools"
	"github.com/dshills/blockedit/internal/ui"
)

// startupOrder is the sequence modules are prepared in. Modules not listed
// have nothing to prepare.
var startupOrder = []module.Name{
	module.Tools,
	module.UI,
	module.BlockManager,
	module.I18n,
	module.Shortcuts,
	module.ModificationsObserver,
	module.ReadOnly,
}

// bootstrapper runs editor startup with cleanup on failure.
type bootstrapper struct {
	opts options

	cfg       *config.Config
	log       *slog.Logger
	reg       *module.Registry
	initOrder []module.Name
	warnings  ErrorList
}

func newBootstrapper(opts options) *bootstrapper {
	return &bootstrapper{
		opts:      opts,
		initOrder: make([]module.Name, 0, len(module.All)),
	}
}

// bootstrap takes input from configuration to a rendered editor.
// On failure, it destroys already constructed modules.
func (b *bootstrapper) bootstrap(ctx context.Context, input any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
		}
		if err != nil {
			b.cleanup()
		}
	}()

	// 1. Configuration
	if err = b.initConfig(input); err != nil {
		return err
	}

	// 2. Modules
	if err = b.initModules(); err != nil {
		return err
	}
	b.reg.Wire()

	// 3. Staged preparation
	if err = b.prepare(ctx); err != nil {
		return err
	}

	// 4. Initial document
	if err = b.render(ctx); err != nil {
		return err
	}

	// 5. Finishing touches
	b.finish()
	return nil
}

// initConfig normalizes and validates the configuration and sets up the
// logger.
func (b *bootstrapper) initConfig(input any) error {
	early := b.opts.logger
	if early == nil {
		early = logging.New(logging.ParseLevel(levelOf(input)), b.opts.logOutput)
	}

	cfg, err := config.Normalize(input, config.WithLogger(early))
	if err != nil {
		return &InitError{Stage: "configuration", Err: err}
	}
	b.cfg = cfg

	b.log = b.opts.logger
	if b.log == nil {
		b.log = logging.New(logging.ParseLevel(cfg.LogLevel), b.opts.logOutput)
	}

	if _, err := sanitizer.New(cfg.Sanitizer); err != nil {
		return &InitError{Stage: "sanitizer", Err: err}
	}
	if err := config.Validate(cfg, b.opts.resolver); err != nil {
		return &InitError{Stage: "holder", Err: err}
	}

	b.log.Debug("configuration ready", "config", cfg.String())
	return nil
}

// levelOf returns the log level requested by a raw configuration input.
func levelOf(input any) string {
	switch v := input.(type) {
	case config.Config:
		return v.LogLevel
	case *config.Config:
		if v != nil {
			return v.LogLevel
		}
	}
	return config.DefaultLogLevel
}

// constructors returns the constructor table with option overrides
// applied.
func (b *bootstrapper) constructors() map[module.Name]module.Constructor {
	cfg, log, metrics := b.cfg, b.log, b.opts.metrics

	table := map[module.Name]module.Constructor{
		module.Tools: func() (module.Module, error) {
			return tools.NewModule(cfg, b.opts.classes, log), nil
		},
		module.UI: func() (module.Module, error) {
			return ui.NewModule(cfg, b.opts.resolver, log), nil
		},
		module.Caret: func() (module.Module, error) {
			return ui.NewCaret(log), nil
		},
		module.BlockManager: func() (module.Module, error) {
			return blocks.NewModule(cfg, log), nil
		},
		module.Events: func() (module.Module, error) {
			return events.New(), nil
		},
		module.ModificationsObserver: func() (module.Module, error) {
			return observer.NewModule(cfg, log), nil
		},
		module.Renderer: func() (module.Module, error) {
			r := pipeline.NewRenderer(log)
			if metrics != nil {
				r.OnBlock = metrics.RecordBlock
			}
			return r, nil
		},
		module.Saver: func() (module.Module, error) {
			s := pipeline.NewSaver(cfg, log)
			if metrics != nil {
				s.OnSave = metrics.RecordSave
			}
			return s, nil
		},
		module.Sanitizer: func() (module.Module, error) {
			s, err := sanitizer.NewModule(cfg.Sanitizer)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		module.Shortcuts: func() (module.Module, error) {
			return shortcut.NewModule(cfg.Platform, log), nil
		},
		module.ReadOnly: func() (module.Module, error) {
			return readonly.NewModule(cfg, log), nil
		},
		module.I18n: func() (module.Module, error) {
			return i18n.NewModule(cfg, log), nil
		},
	}
	for name, c := range b.opts.constructors {
		table[name] = c
	}
	return table
}

// initModules constructs one instance per module name. A module whose
// constructor fails is logged and left out.
func (b *bootstrapper) initModules() error {
	b.reg = module.NewRegistry()
	table := b.constructors()

	for _, name := range module.All {
		c := table[name]
		if c == nil {
			b.log.Debug("module not configured", "module", name)
			continue
		}

		m, err := construct(c)
		if err == nil && m == nil {
			err = fmt.Errorf("constructor returned no instance")
		}
		if err == nil && m.Name() != name {
			err = fmt.Errorf("constructor returned module %s", m.Name())
		}
		if err == nil {
			err = b.reg.Add(m)
		}
		if err != nil {
			b.log.Error("module construction failed", "module", name, "error", err)
			b.warnings.Add(&ModuleError{Module: name, Stage: "construct", Err: err})
			continue
		}
		b.initOrder = append(b.initOrder, name)
	}

	if b.reg.Len() == 0 {
		return &InitError{Stage: "modules", Err: ErrModuleUnavailable}
	}
	return nil
}

func construct(c module.Constructor) (m module.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
		}
	}()
	return c()
}

// prepare runs Prepare on every present module in startup order, one at a
// time. A fatal result stops startup.
func (b *bootstrapper) prepare(ctx context.Context) error {
	for _, name := range startupOrder {
		if err := ctx.Err(); err != nil {
			return err
		}

		m, ok := b.reg.Get(name)
		if !ok {
			b.log.Debug("module absent, preparation skipped", "module", name)
			continue
		}
		p, ok := m.(module.Preparer)
		if !ok {
			continue
		}

		start := time.Now()
		res, err := prepareModule(ctx, p)
		if err != nil {
			var pe *RecoveredPanicError
			if errors.As(err, &pe) {
				b.log.Debug("module preparation panic", "module", name, "stack", pe.Stack)
			}
			b.log.Warn("module preparation panicked", "module", name, "error", err)
			b.warnings.Add(&ModuleError{Module: name, Stage: "prepare", Err: err})
			b.opts.metrics.RecordPreparePanic(name)
			continue
		}
		b.opts.metrics.RecordPrepare(name, res)

		switch {
		case res.IsFatal():
			return &module.CriticalError{Module: name, Err: res.Err()}
		case !res.IsOK():
			b.log.Warn("module preparation failed", "module", name, "error", res.Err())
			b.warnings.Add(&ModuleError{Module: name, Stage: "prepare", Err: res.Err()})
		default:
			b.log.Debug("module prepared", "module", name, "elapsed", time.Since(start))
		}
	}
	return nil
}

func prepareModule(ctx context.Context, p module.Preparer) (res module.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
		}
	}()
	return p.Prepare(ctx), nil
}

// render inserts the configured document.
func (b *bootstrapper) render(ctx context.Context) error {
	r, ok := module.Instance[*pipeline.Renderer](b.reg, module.Renderer)
	if !ok {
		return NewOperationError("render", ErrModuleUnavailable)
	}
	stats, err := r.Render(ctx, b.cfg.Data.Blocks)
	if err != nil {
		return NewOperationError("render", err)
	}
	b.log.Debug("document rendered", "blocks", stats.Rendered, "stubs", stats.Stubbed)
	return nil
}

// finish applies autofocus and hides the loader.
func (b *bootstrapper) finish() {
	if b.cfg.Autofocus {
		if c, ok := module.Instance[*ui.Caret](b.reg, module.Caret); ok {
			if err := c.SetToBlock(0, ui.PositionStart); err != nil {
				b.log.Warn("autofocus failed", "error", err)
			}
		}
	}
	if u, ok := module.Instance[*ui.UI](b.reg, module.UI); ok {
		u.RemoveLoader()
	}
}

// cleanup destroys constructed modules in reverse order.
func (b *bootstrapper) cleanup() {
	if b.reg == nil {
		return
	}
	destroyModules(b.reg, b.initOrder, b.log)
	b.reg = nil
}

// destroyModules calls Destroy on every Destroyer in names, last first.
// A panicking Destroy is logged and does not stop the others.
func destroyModules(reg *module.Registry, names []module.Name, log *slog.Logger) {
	for i := len(names) - 1; i >= 0; i-- {
		m, ok := reg.Get(names[i])
		if !ok {
			continue
		}
		d, ok := m.(module.Destroyer)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("module destroy panicked", "module", names[i], "error", r)
				}
			}()
			d.Destroy()
		}()
	}
}
