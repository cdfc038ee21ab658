package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
)

const (
	DefaultPageSize = 10
	DefaultTimeout  = 15 * time.Second
	namesPageSize   = 100
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseErrored Phase = "errored"
)

// State is a snapshot of a list. Items always hold the last successfully fetched page.
type State[T any] struct {
	Phase       Phase
	Items       []T
	CurrentPage int
	TotalPages  int
	IsLoading   bool
	Err         error
}

type Options struct {
	PageSize int
	Timeout  time.Duration
	Notifier Notifier
	Names    *Names
	Logger   core.Logger
}

// Controller owns the paged collection state of one entity and is the only
// place allowed to call the entity's remote Client.
type Controller[T any] struct {
	entity Entity[T]
	client Client[T]
	opts   Options

	mu      sync.Mutex
	state   State[T]
	seq     uint64 // sequence number of the most recently issued fetch
	pending map[string]bool
	closed  bool

	selection Selection
}

var _ Board = (*Controller[struct{}])(nil)

func NewController[T any](entity Entity[T], client Client[T], opts Options) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Notifier == nil {
		opts.Notifier = new(Notices)
	}
	return &Controller[T]{
		entity:  entity,
		client:  client,
		opts:    opts,
		state:   State[T]{Phase: PhaseIdle, CurrentPage: 1, TotalPages: 1},
		pending: make(map[string]bool),
	}
}

func (c *Controller[T]) Entity() Entity[T] { return c.entity }

func (c *Controller[T]) Meta() Meta { return c.entity.Meta() }

func (c *Controller[T]) Selection() *Selection { return &c.selection }

// State returns a snapshot of the list.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Items = append([]T(nil), c.state.Items...)
	return s
}

// Pending reports whether a mutation of record id is in flight.
func (c *Controller[T]) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, op := range []string{"update", "remove", "toggle"} {
		if c.pending[op+":"+id] {
			return true
		}
	}
	return false
}

// Loaded reports whether the last fetch succeeded.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase == PhaseLoaded
}

// Close abandons interest in every in-flight request: their results never update the list.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// FetchPage loads `page`. Only the response to the most recently issued fetch may
// update the list; a failed fetch keeps the previously shown items.
func (c *Controller[T]) FetchPage(ctx context.Context, page int) error {
	return c.fetch(ctx, page, false)
}

// Refresh reloads the current page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page := c.state.CurrentPage
	c.mu.Unlock()
	return c.FetchPage(ctx, page)
}

func (c *Controller[T]) fetch(ctx context.Context, page int, retried bool) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.seq++
	seq := c.seq
	c.state.IsLoading = true
	c.state.Phase = PhaseLoading
	c.mu.Unlock()

	var res Page[T]
	err := c.call(ctx, "listing "+c.entity.Key, func(ctx context.Context) error {
		var err error
		res, err = c.client.List(ctx, page, c.opts.PageSize)
		return err
	})

	c.mu.Lock()
	if c.closed || seq != c.seq { // superseded by a later fetch
		c.mu.Unlock()
		return nil
	}
	c.state.IsLoading = false
	if err != nil {
		c.state.Err = err
		c.state.Phase = PhaseErrored
		c.mu.Unlock()
		c.log("fetching page failed", err, map[string]interface{}{"entity": c.entity.Key, "page": page})
		return err
	}

	total := res.TotalPages
	if total < 1 {
		total = 1
	}
	if page > total && len(res.Items) == 0 && !retried {
		c.mu.Unlock()
		return c.fetch(ctx, total, true)
	}

	c.state.Items = res.Items
	c.state.TotalPages = total
	c.state.CurrentPage = clamp(page, 1, total)
	c.state.Err = nil
	c.state.Phase = PhaseLoaded
	c.mu.Unlock()

	c.index(res.Items...)
	return nil
}

// LoadNames fills the names index without touching the list state.
func (c *Controller[T]) LoadNames(ctx context.Context) error {
	return c.call(ctx, "loading "+c.entity.Key+" names", func(ctx context.Context) error {
		res, err := c.client.List(ctx, 1, namesPageSize)
		if err != nil {
			return err
		}
		c.index(res.Items...)
		return nil
	})
}

// Create persists draft and merges the created record into the current page.
func (c *Controller[T]) Create(ctx context.Context, draft form.Values) (T, error) {
	var zero T
	if !c.begin("create") {
		return zero, ErrBusy
	}
	defer c.end("create")

	rec, err := c.build(form.Clean(c.entity.Fields, draft))
	if err != nil {
		return zero, err
	}

	var created T
	err = c.call(ctx, "creating "+c.entity.Key, func(ctx context.Context) error {
		var err error
		created, err = c.client.Create(ctx, rec)
		return err
	})
	if err != nil {
		c.failed(ctx, err, fmt.Sprintf("Could not create %s", lower(c.entity.Name)))
		return zero, err
	}

	if c.entity.ID(created) == "" {
		// no record in the response: the new row only shows after a reload
		_ = c.Refresh(ctx)
		c.notify(LevelSuccess, fmt.Sprintf("%s created successfully.", c.entity.Name))
		return rec, nil
	}
	c.apply(func(s *State[T]) {
		if i := c.indexOf(s.Items, c.entity.ID(created)); i >= 0 {
			s.Items[i] = created
		} else {
			s.Items = append(s.Items, created)
		}
	})
	c.index(created)
	c.notify(LevelSuccess, fmt.Sprintf("%s created successfully.", c.entity.Name))
	return created, nil
}

// Update persists draft as record id. A draft identical to the record shown in
// the list is a no-op: ErrNoChanges is returned and the API is not called.
func (c *Controller[T]) Update(ctx context.Context, id string, draft form.Values) (T, error) {
	var zero T
	draft = form.Clean(c.entity.Fields, draft)
	if orig, ok := c.find(id); ok && c.entity.Values(orig).Equal(draft, c.entity.Fields) {
		c.notify(LevelInfo, "No changes made.")
		return orig, ErrNoChanges
	}

	key := "update:" + id
	if !c.begin(key) {
		return zero, ErrBusy
	}
	defer c.end(key)

	rec, err := c.build(draft)
	if err != nil {
		return zero, err
	}

	var updated T
	err = c.call(ctx, "updating "+c.entity.Key, func(ctx context.Context) error {
		var err error
		updated, err = c.client.Update(ctx, id, rec)
		return err
	})
	if err != nil {
		c.failed(ctx, err, fmt.Sprintf("Could not update %s", lower(c.entity.Name)))
		return zero, err
	}

	if c.entity.ID(updated) == "" {
		if c.entity.WithID == nil {
			_ = c.Refresh(ctx)
			c.notify(LevelSuccess, fmt.Sprintf("%s updated successfully.", c.entity.Name))
			return rec, nil
		}
		updated = c.entity.WithID(rec, id)
	}
	c.apply(func(s *State[T]) {
		if i := c.indexOf(s.Items, id); i >= 0 {
			s.Items[i] = updated
		}
	})
	c.index(updated)
	c.notify(LevelSuccess, fmt.Sprintf("%s updated successfully.", c.entity.Name))
	return updated, nil
}

// Remove deletes record id. The row is removed locally only once the API confirmed
// the deletion; TotalPages is left to the next fetch. Callers go through RequestRemove.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	key := "remove:" + id
	if !c.begin(key) {
		return ErrBusy
	}
	defer c.end(key)

	err := c.call(ctx, "deleting "+c.entity.Key, func(ctx context.Context) error {
		return c.client.Delete(ctx, id)
	})
	if err != nil {
		c.failed(ctx, err, fmt.Sprintf("Could not delete %s", lower(c.entity.Name)))
		return err
	}

	c.apply(func(s *State[T]) {
		if i := c.indexOf(s.Items, id); i >= 0 {
			s.Items = append(s.Items[:i:i], s.Items[i+1:]...)
		}
	})
	c.notify(LevelSuccess, fmt.Sprintf("%s deleted successfully.", c.entity.Name))
	return nil
}

// RequestRemove opens the confirmation gate guarding the deletion of record id.
func (c *Controller[T]) RequestRemove(id string) (*Confirm, error) {
	rec, ok := c.find(id)
	if !ok {
		return nil, ErrNotInPage
	}
	c.selection.Select(SelectDelete, id)
	msg := fmt.Sprintf("Are you sure you want to delete %s %q? This cannot be undone.", lower(c.entity.Name), c.title(rec))
	cm := NewConfirm(msg, func(ctx context.Context) error { return c.Remove(ctx, id) }, nil)
	cm.Title = "Delete " + c.entity.Name
	cm.ConfirmLabel = "Delete"
	cm.onClose = func() { c.selection.Release(SelectDelete, id) }
	return cm, nil
}

// ToggleActive flips the isActive flag of record id from `current`. The flag is
// flipped locally right away and reverted if the API call fails.
func (c *Controller[T]) ToggleActive(ctx context.Context, id string, current bool) error {
	if !c.entity.Toggleable() {
		return ErrNotToggleable
	}
	key := "toggle:" + id
	if !c.begin(key) {
		return ErrBusy
	}
	defer c.end(key)

	c.setActive(id, !current)
	err := c.call(ctx, "toggling "+c.entity.Key, func(ctx context.Context) error {
		return c.client.SetActive(ctx, id, !current)
	})
	if err != nil {
		c.setActive(id, current)
		c.failed(ctx, err, fmt.Sprintf("Could not update %s status", lower(c.entity.Name)))
		return err
	}

	verb := "deactivated"
	if !current {
		verb = "activated"
	}
	c.notify(LevelSuccess, fmt.Sprintf("%s %s successfully.", c.entity.Name, verb))
	return nil
}

// Toggle flips record id using its currently displayed isActive value.
func (c *Controller[T]) Toggle(ctx context.Context, id string) error {
	if !c.entity.Toggleable() {
		return ErrNotToggleable
	}
	rec, ok := c.find(id)
	if !ok {
		return ErrNotInPage
	}
	return c.ToggleActive(ctx, id, c.entity.Active(rec))
}

// RequestToggle opens the confirmation gate guarding the status change of record id.
func (c *Controller[T]) RequestToggle(id string) (*Confirm, error) {
	if !c.entity.Toggleable() {
		return nil, ErrNotToggleable
	}
	rec, ok := c.find(id)
	if !ok {
		return nil, ErrNotInPage
	}
	current := c.entity.Active(rec)
	verb := "deactivate"
	if !current {
		verb = "activate"
	}
	c.selection.Select(SelectToggle, id)
	msg := fmt.Sprintf("Are you sure you want to %s %s %q?", verb, lower(c.entity.Name), c.title(rec))
	cm := NewConfirm(msg, func(ctx context.Context) error { return c.ToggleActive(ctx, id, current) }, nil)
	cm.Title = capitalize(verb) + " " + c.entity.Name
	cm.ConfirmLabel = capitalize(verb)
	cm.onClose = func() { c.selection.Release(SelectToggle, id) }
	return cm, nil
}

// OpenEditor opens an editor for record id, or a create editor when id is empty.
func (c *Controller[T]) OpenEditor(engine *form.Engine, id string) (*Editor, error) {
	if id == "" {
		c.selection.Clear()
		ed := newEditor(ModeCreate, "", c.entity.Fields, form.Template(c.entity.Fields), engine, c, c.opts.Notifier)
		ed.Title = "New " + c.entity.Name
		return ed, nil
	}
	rec, ok := c.find(id)
	if !ok {
		return nil, ErrNotInPage
	}
	c.selection.Select(SelectEdit, id)
	ed := newEditor(ModeEdit, id, c.entity.Fields, c.entity.Values(rec), engine, c, c.opts.Notifier)
	ed.Title = "Edit " + c.entity.Name
	ed.onClose = func() { c.selection.Release(SelectEdit, id) }
	return ed, nil
}

func (c *Controller[T]) createDraft(ctx context.Context, draft form.Values) error {
	_, err := c.Create(ctx, draft)
	return err
}

func (c *Controller[T]) updateDraft(ctx context.Context, id string, draft form.Values) error {
	_, err := c.Update(ctx, id, draft)
	return err
}

// View builds the list view model of the current state.
func (c *Controller[T]) View() View {
	lookup := identity
	if c.opts.Names != nil {
		lookup = c.opts.Names.Lookup
	}
	kind, selID, _ := c.selection.Current()
	return NewView(c.entity, c.State(), lookup, c.Pending, func(id string) bool {
		return kind != "" && id == selID
	})
}

// Export returns the headers & rows of the currently loaded page.
func (c *Controller[T]) Export() ([]string, [][]string) {
	v := c.View()
	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, r.Cells)
	}
	return v.Headers, rows
}

// Helpers

// call runs fn with the request timeout and maps its failure onto the error taxonomy.
func (c *Controller[T]) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	switch {
	case core.IsValidation(err), core.IsNotFound(err):
		return err
	case core.IsNetwork(err):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &core.NetworkError{Op: op, Err: err, Timeout: true}
	default:
		return &core.NetworkError{Op: op, Err: err}
	}
}

// failed notifies the user of a failed mutation; a record missing server-side means the page is stale.
func (c *Controller[T]) failed(ctx context.Context, err error, msg string) {
	switch {
	case core.IsNotFound(err):
		c.notify(LevelError, fmt.Sprintf("This %s no longer exists. The list has been refreshed.", lower(c.entity.Name)))
		_ = c.Refresh(ctx)
	case core.IsValidation(err):
		c.notify(LevelError, fmt.Sprintf("%s: %v", msg, err))
	case core.IsNetwork(err):
		c.notify(LevelError, msg+": the server could not be reached. Please try again.")
		c.log(msg, err, map[string]interface{}{"entity": c.entity.Key})
	default:
		c.notify(LevelError, fmt.Sprintf("%s: %v", msg, err))
	}
}

func (c *Controller[T]) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[key] {
		return false
	}
	c.pending[key] = true
	return true
}

func (c *Controller[T]) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, key)
}

// apply mutates the list state unless the controller was closed.
func (c *Controller[T]) apply(fn func(s *State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	fn(&c.state)
}

func (c *Controller[T]) setActive(id string, active bool) {
	c.apply(func(s *State[T]) {
		if i := c.indexOf(s.Items, id); i >= 0 {
			s.Items[i] = c.entity.WithActive(s.Items[i], active)
		}
	})
}

// build turns a draft into a record. Failures are reported as validation errors of the draft.
func (c *Controller[T]) build(draft form.Values) (T, error) {
	rec, err := c.entity.Build(draft)
	if err != nil && !core.IsValidation(err) {
		return rec, core.NewValidationError(err)
	}
	return rec, err
}

func (c *Controller[T]) find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(c.state.Items, id); i >= 0 {
		return c.state.Items[i], true
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) indexOf(items []T, id string) int {
	for i, rec := range items {
		if c.entity.ID(rec) == id {
			return i
		}
	}
	return -1
}

func (c *Controller[T]) index(recs ...T) {
	if c.opts.Names == nil || c.entity.Title == nil {
		return
	}
	for _, rec := range recs {
		c.opts.Names.Put(c.entity.Key, c.entity.ID(rec), c.entity.Title(rec))
	}
}

func (c *Controller[T]) title(rec T) string {
	if c.entity.Title != nil {
		return c.entity.Title(rec)
	}
	return c.entity.ID(rec)
}

func (c *Controller[T]) notify(level Level, msg string) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.opts.Notifier.Notify(Notice{Level: level, Message: msg})
	}
}

func (c *Controller[T]) log(msg string, err error, extras map[string]interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(msg, err, extras)
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
