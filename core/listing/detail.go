package listing

import (
	"strings"

	"github.com/trezcool/masomo-portal/core/form"
)

// DetailItem is one labelled value of a record's detail view.
type DetailItem struct {
	Label string
	Value string
}

// Detail is the read-only view of a single record of the loaded page.
type Detail struct {
	Title string
	ID    string
	Items []DetailItem
}

// Detail shows the record `id` of the loaded page: its table columns, then the
// form fields the table does not show. Long texts are shown in full.
func (c *Controller[T]) Detail(id string) (Detail, error) {
	rec, ok := c.find(id)
	if !ok {
		return Detail{}, ErrNotInPage
	}
	lookup := identity
	if c.opts.Names != nil {
		lookup = c.opts.Names.Lookup
	}

	d := Detail{Title: c.title(rec), ID: id}
	shown := make(map[string]int, len(c.entity.Columns))
	for i, col := range c.entity.Columns {
		d.Items = append(d.Items, DetailItem{Label: col.Header, Value: col.Value(rec, lookup)})
		shown[strings.ToLower(col.Header)] = i
	}
	if c.entity.Values == nil {
		return d, nil
	}
	values := c.entity.Values(rec)
	for _, f := range c.entity.Fields {
		if i, ok := shown[strings.ToLower(f.Label)]; ok {
			if f.IsMultiline() {
				d.Items[i].Value = values.Get(f.Name)
			}
			continue
		}
		if f.Type == form.Checkbox {
			continue
		}
		d.Items = append(d.Items, DetailItem{Label: f.Label, Value: optionLabel(f, values.Get(f.Name))})
	}
	return d, nil
}

func optionLabel(f form.Field, value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
