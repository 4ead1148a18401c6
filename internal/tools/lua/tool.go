package lua

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/tools"
)

// ClassName is the class name Lua tools are configured with.
const ClassName = "lua"

// ReadFileFunc reads a script file.
type ReadFileFunc func(path string) ([]byte, error)

// Option configures the factory.
type Option func(*factoryOptions)

type factoryOptions struct {
	readFile ReadFileFunc
	state    []StateOption
}

// WithReadFile replaces os.ReadFile for script paths.
func WithReadFile(fn ReadFileFunc) Option {
	return func(o *factoryOptions) {
		o.readFile = fn
	}
}

// WithStateOptions passes options to every Lua state created.
func WithStateOptions(opts ...StateOption) Option {
	return func(o *factoryOptions) {
		o.state = append(o.state, opts...)
	}
}

// Factory returns a tools.Factory for Lua tools. A tool's Script is read
// as a file when it is a single line ending in ".lua", and used as source
// otherwise.
func Factory(opts ...Option) tools.Factory {
	o := factoryOptions{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(&o)
	}

	return func(name string, s config.ToolSettings) (tools.Class, error) {
		source, chunk, err := o.source(name, s.Script)
		if err != nil {
			return nil, err
		}
		return Load(context.Background(), chunk, source, o.state...)
	}
}

func (o factoryOptions) source(name, script string) (source, chunk string, err error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return "", "", fmt.Errorf("tool %s: no script", name)
	}
	if !strings.Contains(script, "\n") && strings.HasSuffix(script, ".lua") {
		data, err := o.readFile(script)
		if err != nil {
			return "", "", fmt.Errorf("tool %s: reading script: %w", name, err)
		}
		return string(data), script, nil
	}
	return script, name, nil
}

// Class is a block tool backed by a Lua script.
type Class struct {
	state *State

	toolbox  tools.Toolbox
	sanitize map[string]any
	readOnly bool

	prepare  *lua.LFunction
	save     *lua.LFunction
	validate *lua.LFunction

	mu     sync.RWMutex
	config map[string]any
}

// Load runs a tool script and builds its class.
func Load(ctx context.Context, chunkName, source string, opts ...StateOption) (*Class, error) {
	state := NewState(opts...)
	ret, err := state.Load(ctx, source, chunkName)
	if err != nil {
		state.Close()
		return nil, err
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("%w: got %s", ErrBadScript, ret.Type())
	}

	c := &Class{state: state}
	err = state.WithLock(func(L *lua.LState) error {
		if tb, ok := tbl.RawGetString("toolbox").(*lua.LTable); ok {
			c.toolbox.Title = lua.LVAsString(tb.RawGetString("title"))
			c.toolbox.Icon = lua.LVAsString(tb.RawGetString("icon"))
		}
		if rules, ok := fromLua(tbl.RawGetString("sanitize")).(map[string]any); ok && len(rules) > 0 {
			c.sanitize = rules
		}
		c.readOnly = lua.LVAsBool(tbl.RawGetString("readOnlySupported"))

		var err error
		if c.prepare, err = optionalFunc(tbl, "prepare"); err != nil {
			return err
		}
		if c.save, err = optionalFunc(tbl, "save"); err != nil {
			return err
		}
		c.validate, err = optionalFunc(tbl, "validate")
		return err
	})
	if err != nil {
		state.Close()
		return nil, err
	}
	return c, nil
}

func optionalFunc(tbl *lua.LTable, name string) (*lua.LFunction, error) {
	v := tbl.RawGetString(name)
	if v == lua.LNil {
		return nil, nil
	}
	fn, ok := v.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a function, got %s", ErrBadScript, name, v.Type())
	}
	return fn, nil
}

// Toolbox implements tools.Class.
func (c *Class) Toolbox() tools.Toolbox {
	return c.toolbox
}

// SanitizeRules implements tools.Class.
func (c *Class) SanitizeRules() map[string]any {
	return c.sanitize
}

// ReadOnlySupported implements tools.Class.
func (c *Class) ReadOnlySupported() bool {
	return c.readOnly
}

// Prepare implements tools.Preparer by calling the script's prepare with
// the tool configuration. An error raised by the script makes the tool
// unavailable.
func (c *Class) Prepare(ctx context.Context, s config.ToolSettings) error {
	c.mu.Lock()
	c.config = s.Config
	c.mu.Unlock()

	if c.prepare == nil {
		return nil
	}
	_, err := c.call(ctx, c.prepare, s.Config)
	return err
}

// New implements tools.Class.
func (c *Class) New(p tools.Params) (tools.Instance, error) {
	return &block{class: c, data: p.Data}, nil
}

// Close implements tools.Closer.
func (c *Class) Close() error {
	return c.state.Close()
}

func (c *Class) call(ctx context.Context, fn *lua.LFunction, args ...any) (any, error) {
	var largs []lua.LValue
	if err := c.state.WithLock(func(L *lua.LState) error {
		for _, a := range args {
			largs = append(largs, toLua(L, a))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ret, err := c.state.Call(ctx, fn, largs...)
	if err != nil {
		return nil, err
	}

	var out any
	err = c.state.WithLock(func(*lua.LState) error {
		out = fromLua(ret)
		return nil
	})
	return out, err
}

func (c *Class) toolConfig() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

type block struct {
	class *Class

	mu   sync.Mutex
	data map[string]any
}

func (b *block) current() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]any, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

func (b *block) Save(ctx context.Context) (map[string]any, error) {
	data := b.current()
	if b.class.save == nil {
		return data, nil
	}

	ret, err := b.class.call(ctx, b.class.save, data, b.class.toolConfig())
	if err != nil {
		return nil, fmt.Errorf("lua save: %w", err)
	}
	switch v := ret.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("lua save must return a table, got %T", ret)
	}
}

func (b *block) Validate(data map[string]any) bool {
	if b.class.validate == nil {
		return true
	}
	ret, err := b.class.call(context.Background(), b.class.validate, data, b.class.toolConfig())
	if err != nil {
		return false
	}
	ok, _ := ret.(bool)
	return ok
}

func (b *block) Update(data map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	return nil
}
