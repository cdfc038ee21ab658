// Package listing implements the paginated list + CRUD + confirmation workflow
// shared by every dashboard screen: one generic Controller parameterised by an
// Entity configuration, the Editor and Confirm modals, the Paginator and the
// ListView model.
package listing

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrBusy          = errors.New("request already in progress")
	ErrNoChanges     = errors.New("no changes made")
	ErrModalClosed   = errors.New("modal is closed")
	ErrClosed        = errors.New("list is closed")
	ErrNotToggleable = errors.New("records cannot be activated or deactivated")
	ErrNotInPage     = errors.New("record is not on the current page")
)

// Page is one page of the remote collection, as returned by the school API.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// Client is the remote collection of one entity.
type Client[T any] interface {
	List(ctx context.Context, page, limit int) (Page[T], error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, rec T) (T, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is a user facing toast.
type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

// Notices is a Notifier queueing toasts until the next render drains them.
type Notices struct {
	mu   sync.Mutex
	list []Notice
}

var _ Notifier = (*Notices)(nil)

func (n *Notices) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, notice)
}

// Drain returns the queued notices and empties the queue.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.list
	n.list = nil
	return list
}

// Names is the display name index used for single-level foreign key lookups.
type Names struct {
	mu sync.RWMutex
	m  map[string]map[string]string // {entity: {id: name}}
}

func NewNames() *Names {
	return &Names{m: make(map[string]map[string]string)}
}

func (n *Names) Put(entity, id, name string) {
	if id == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	ids, ok := n.m[entity]
	if !ok {
		ids = make(map[string]string)
		n.m[entity] = ids
	}
	ids[id] = name
}

func (n *Names) Has(entity string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.m[entity]) > 0
}

// Lookup returns the display name of entity `id`, or the id itself when unknown.
func (n *Names) Lookup(entity, id string) string {
	if n == nil {
		return id
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if name, ok := n.m[entity][id]; ok && name != "" {
		return name
	}
	return id
}

// Lookup resolves an opaque foreign key to a display name.
type Lookup func(entity, id string) string

func identity(_, id string) string { return id }
