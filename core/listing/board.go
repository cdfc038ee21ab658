package listing

import (
	"context"

	"github.com/trezcool/masomo-portal/core/form"
)

// Board is the type-erased list workflow of one entity, as driven by the web handlers.
type Board interface {
	Meta() Meta
	FetchPage(ctx context.Context, page int) error
	Refresh(ctx context.Context) error
	Loaded() bool
	LoadNames(ctx context.Context) error
	View() View
	Detail(id string) (Detail, error)
	OpenEditor(engine *form.Engine, id string) (*Editor, error)
	RequestRemove(id string) (*Confirm, error)
	RequestToggle(id string) (*Confirm, error)
	Toggle(ctx context.Context, id string) error
	Export() (headers []string, rows [][]string)
	Selection() *Selection
	Pending(id string) bool
	Close()
}

// BoardFactory builds the Board of entity `key`. ok is false for unknown entities.
type BoardFactory func(key string, opts Options) (b Board, ok bool)
