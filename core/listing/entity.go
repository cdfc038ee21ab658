package listing

import (
	"github.com/trezcool/masomo-portal/core/form"
)

// ToggleStyle is how the school API flips an entity's isActive flag.
type ToggleStyle int

const (
	ToggleNone     ToggleStyle = iota // entity has no isActive flag
	ToggleEndpoint                    // PUT /{entity}/toggle-status/{id}
	ToggleUpdate                      // PUT /{entity}/{id} with {"isActive": v}
)

// Column is a table column of the list view.
type Column[T any] struct {
	Header string
	Value  func(rec T, lookup Lookup) string
}

// Entity configures the generic workflow for one record type.
type Entity[T any] struct {
	Key    string // URL segment & names index key, eg. "subjects"
	Name   string // singular display name, eg. "Subject"
	Plural string
	Path   string // REST collection path, eg. "/subjects"

	Fields  []form.Field
	Columns []Column[T]

	// References lists the entity keys Columns resolve names of.
	References []string

	ID     func(T) string
	WithID func(T, string) T // sets the id of a record built from a draft
	Title  func(T) string
	Values func(T) form.Values
	Build  func(form.Values) (T, error)

	Toggle        ToggleStyle
	ConfirmToggle bool
	Active        func(T) bool
	WithActive    func(T, bool) T
}

// Toggleable reports whether records of e carry an isActive flag.
func (e Entity[T]) Toggleable() bool {
	return e.Toggle != ToggleNone && e.Active != nil && e.WithActive != nil
}

// Meta is the type-erased description of an Entity.
type Meta struct {
	Key           string
	Name          string
	Plural        string
	Path          string
	Fields        []form.Field
	Headers       []string
	References    []string
	Toggleable    bool
	ConfirmToggle bool
}

func (e Entity[T]) Meta() Meta {
	headers := make([]string, 0, len(e.Columns))
	for _, col := range e.Columns {
		headers = append(headers, col.Header)
	}
	return Meta{
		Key:           e.Key,
		Name:          e.Name,
		Plural:        e.Plural,
		Path:          e.Path,
		Fields:        e.Fields,
		Headers:       headers,
		References:    e.References,
		Toggleable:    e.Toggleable(),
		ConfirmToggle: e.ConfirmToggle,
	}
}
