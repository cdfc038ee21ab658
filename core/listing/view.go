package listing

import (
	"fmt"
	"strings"
)

// Row is one table row. Active is nil when the entity has no isActive flag.
type Row struct {
	ID       string
	Cells    []string
	Active   *bool
	Pending  bool
	Selected bool
}

// View is the render model of a list: rows of the current page or the empty
// state, the loading indicator and the stale-data error banner.
type View struct {
	Key         string
	Title       string
	EntityName  string
	Headers     []string
	Rows        []Row
	ShowLoading bool
	ShowEmpty   bool
	ShowTable   bool
	EmptyText   string
	Error       string // non-blocking banner shown over stale rows
	Toggleable  bool
	Paginator   Paginator
}

func NewView[T any](e Entity[T], s State[T], lookup Lookup, pending, selected func(id string) bool) View {
	if lookup == nil {
		lookup = identity
	}
	v := View{
		Key:         e.Key,
		Title:       e.Plural,
		EntityName:  e.Name,
		ShowLoading: s.IsLoading,
		Toggleable:  e.Toggleable(),
		Paginator:   NewPaginator(s.CurrentPage, s.TotalPages),
	}
	for _, col := range e.Columns {
		v.Headers = append(v.Headers, col.Header)
	}

	if len(s.Items) == 0 {
		v.ShowEmpty = !s.IsLoading
		v.EmptyText = fmt.Sprintf("No %s found.", lower(e.Plural))
		if s.Err != nil {
			v.EmptyText = fmt.Sprintf("Could not load %s: %v", lower(e.Plural), s.Err)
		}
		return v
	}

	v.ShowTable = true
	if s.Err != nil {
		v.Error = fmt.Sprintf("Could not refresh %s: %v. Showing the last loaded page.", lower(e.Plural), s.Err)
	}
	for _, rec := range s.Items {
		id := e.ID(rec)
		row := Row{ID: id}
		for _, col := range e.Columns {
			row.Cells = append(row.Cells, col.Value(rec, lookup))
		}
		if v.Toggleable {
			active := e.Active(rec)
			row.Active = &active
		}
		if pending != nil {
			row.Pending = pending(id)
		}
		if selected != nil {
			row.Selected = selected(id)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func lower(s string) string { return strings.ToLower(s) }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
