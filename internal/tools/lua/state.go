// Package lua runs block tools written in Lua.
//
// A tool script returns a table describing the tool:
//
//	return {
//	  toolbox = { title = "Heading", icon = "H" },
//	  sanitize = { text = { b = true, i = true } },
//	  readOnlySupported = true,
//	  prepare = function(config) end,
//	  save = function(data, config) return data end,
//	  validate = function(data, config) return data.text ~= "" end,
//	}
//
// Every field is optional. save defaults to returning the block data as it
// is and validate to accepting everything. Scripts run in a sandbox without
// io, os, debug or module loading.
package lua

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds a single call into a script.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with a mutex and a sandbox.
//
// gopher-lua's LState is not goroutine-safe; every method takes the
// mutex, so blocks of one tool saving concurrently are serialized here.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for each call into Lua.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})
	openSafeLibraries(L)
	installSandbox(L)

	state.L = L
	return state
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Note: These are intentionally NOT opened:
	// - io (file system access)
	// - os (system calls, execute)
	// - debug (can bypass sandbox)
	// - package (can load arbitrary modules)
}

// installSandbox removes the base functions that load code.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Load compiles and runs a chunk and returns its first result.
func (s *State) Load(ctx context.Context, source, chunkName string) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := s.L.Load(strings.NewReader(source), chunkName)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", chunkName, err)
	}
	results, err := s.pcall(ctx, fn, nil, 1)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Call calls fn with args and returns its first result.
func (s *State) Call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}
	results, err := s.pcall(ctx, fn, args, 1)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// WithLock runs fn while holding the state lock, for building arguments
// and reading results through the bridge.
func (s *State) WithLock(fn func(L *lua.LState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return fn(s.L)
}

// pcall must be called with the lock held.
func (s *State) pcall(ctx context.Context, fn *lua.LFunction, args []lua.LValue, nret int) (results []lua.LValue, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, a := range args {
		s.L.Push(a)
	}
	if err := s.L.PCall(len(args), nret, nil); err != nil {
		s.L.SetTop(top)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
		}
		return nil, err
	}

	results = make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.SetTop(top)
	return results, nil
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
