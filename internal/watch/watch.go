// Package watch reports changes to document and configuration files.
//
// Files are watched through their parent directory so that editors that
// save by writing a temporary file and renaming it are seen. Rapid changes
// to one file are coalesced into a single event.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period before a change is reported.
const DefaultDelay = 100 * time.Millisecond

// ErrClosed is returned when using a closed watcher.
var ErrClosed = errors.New("watcher is closed")

// Op is a set of file operations.
type Op uint32

// Operations.
const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// String returns the operations joined with "|".
func (op Op) String() string {
	var s string
	for _, n := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(n.op) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "NONE"
	}
	return s
}

// Event reports a change to a watched file.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the coalescing delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// Watcher watches a set of files.
type Watcher struct {
	fsw   *fsnotify.Watcher
	delay time.Duration

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	pending map[string]*pending
	closed  bool

	// sendMu keeps Close from closing events while a timer sends.
	sendMu  sync.RWMutex
	events  chan Event
	errors  chan error
	closeCh chan struct{}
	wg      sync.WaitGroup
}

type pending struct {
	event Event
	timer *time.Timer
}

// New creates a watcher with nothing watched.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		delay:   DefaultDelay,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]*pending),
		events:  make(chan Event, 16),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add starts watching path. The file does not need to exist yet but its
// directory does.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Events returns the coalesced change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	w.sendMu.Lock()
	close(w.events)
	close(w.errors)
	w.sendMu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[path] {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.event.Op |= op
		p.event.Timestamp = time.Now()
		p.timer.Reset(w.delay)
		return
	}
	p := &pending{event: Event{Path: path, Op: op, Timestamp: time.Now()}}
	p.timer = time.AfterFunc(w.delay, func() { w.fire(path) })
	w.pending[path] = p
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	select {
	case w.events <- p.event:
	case <-w.closeCh:
	}
}

func convertOp(o fsnotify.Op) Op {
	var op Op
	if o.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if o.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if o.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if o.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
