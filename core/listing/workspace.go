package listing

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrUnknownEntity = errors.New("unknown entity")

// Workspace is the server-side UI state of one browser session: one Board per
// visited entity plus the editor and confirm gate currently open on each.
type Workspace struct {
	ID      string
	Notices *Notices
	Names   *Names

	factory BoardFactory
	opts    Options

	mu       sync.Mutex
	boards   map[string]Board
	editors  map[string]*Editor
	confirms map[string]*Confirm
	lastSeen time.Time
}

func newWorkspace(id string, factory BoardFactory, opts Options) *Workspace {
	w := &Workspace{
		ID:       id,
		Notices:  new(Notices),
		Names:    NewNames(),
		factory:  factory,
		boards:   make(map[string]Board),
		editors:  make(map[string]*Editor),
		confirms: make(map[string]*Confirm),
		lastSeen: time.Now(),
	}
	opts.Notifier = w.Notices
	opts.Names = w.Names
	w.opts = opts
	return w
}

// Board returns the Board of entity key, creating it on first use.
func (w *Workspace) Board(key string) (Board, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.boards[key]; ok {
		return b, nil
	}
	b, ok := w.factory(key, w.opts)
	if !ok {
		return nil, errors.Wrap(ErrUnknownEntity, key)
	}
	w.boards[key] = b
	return b, nil
}

// LoadReferences fills the names index of every entity the columns of `key` refer to.
// Lookup failures only degrade the display to raw ids.
func (w *Workspace) LoadReferences(ctx context.Context, key string) {
	b, err := w.Board(key)
	if err != nil {
		return
	}
	for _, ref := range b.Meta().References {
		if w.Names.Has(ref) {
			continue
		}
		rb, err := w.Board(ref)
		if err != nil {
			continue
		}
		if err := rb.LoadNames(ctx); err != nil && w.opts.Logger != nil {
			w.opts.Logger.Warn("loading reference names failed", err, map[string]interface{}{"entity": key, "ref": ref})
		}
	}
}

// SetEditor makes ed the open editor of entity key, closing the previous one.
func (w *Workspace) SetEditor(key string, ed *Editor) {
	w.mu.Lock()
	prev := w.editors[key]
	w.editors[key] = ed
	w.mu.Unlock()
	if prev != nil && prev != ed {
		prev.Close()
	}
}

// Editor returns the open editor of entity key.
func (w *Workspace) Editor(key string) (*Editor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, ok := w.editors[key]
	if !ok {
		return nil, false
	}
	if !ed.IsOpen() {
		delete(w.editors, key)
		return nil, false
	}
	return ed, true
}

// SetConfirm makes cm the open confirm gate of entity key, cancelling the previous one.
func (w *Workspace) SetConfirm(key string, cm *Confirm) {
	w.mu.Lock()
	prev := w.confirms[key]
	w.confirms[key] = cm
	w.mu.Unlock()
	if prev != nil && prev != cm {
		_ = prev.Cancel()
	}
}

// Confirm returns the open confirm gate of entity key.
func (w *Workspace) Confirm(key string) (*Confirm, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cm, ok := w.confirms[key]
	if !ok {
		return nil, false
	}
	if !cm.IsOpen() {
		delete(w.confirms, key)
		return nil, false
	}
	return cm, true
}

// Close closes every board so that in-flight responses are ignored.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ed := range w.editors {
		ed.mu.Lock()
		ed.open = false
		ed.gen++
		ed.mu.Unlock()
	}
	for _, b := range w.boards {
		b.Close()
	}
	w.boards = make(map[string]Board)
	w.editors = make(map[string]*Editor)
	w.confirms = make(map[string]*Confirm)
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = now
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Workspaces is the registry of session workspaces.
type Workspaces struct {
	factory BoardFactory
	opts    Options
	ttl     time.Duration

	mu sync.Mutex
	m  map[string]*Workspace
}

func NewWorkspaces(factory BoardFactory, opts Options, ttl time.Duration) *Workspaces {
	return &Workspaces{
		factory: factory,
		opts:    opts,
		ttl:     ttl,
		m:       make(map[string]*Workspace),
	}
}

// Get returns the workspace of session id, creating it if needed.
func (ws *Workspaces) Get(id string) *Workspace {
	ws.mu.Lock()
	w, ok := ws.m[id]
	if !ok {
		w = newWorkspace(id, ws.factory, ws.opts)
		ws.m[id] = w
	}
	ws.mu.Unlock()
	w.touch(time.Now())
	return w
}

// Drop closes and forgets the workspace of session id.
func (ws *Workspaces) Drop(id string) {
	ws.mu.Lock()
	w, ok := ws.m[id]
	delete(ws.m, id)
	ws.mu.Unlock()
	if ok {
		w.Close()
	}
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.m)
}

// Sweep drops the workspaces idle for longer than the TTL and returns how many it dropped.
func (ws *Workspaces) Sweep(now time.Time) int {
	if ws.ttl <= 0 {
		return 0
	}
	var stale []*Workspace
	ws.mu.Lock()
	for id, w := range ws.m {
		if w.idleSince(now) > ws.ttl {
			stale = append(stale, w)
			delete(ws.m, id)
		}
	}
	ws.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	return len(stale)
}

// Run sweeps idle workspaces every `every` until ctx is done.
func (ws *Workspaces) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ws.Sweep(now)
		}
	}
}
