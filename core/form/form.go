// Package form holds the declarative field schema of the portal's editors
// and the single engine validating drafts against it.
package form

import (
	"regexp"
	"sort"
	"strings"

	"github.com/trezcool/masomo-portal/core"
)

// DateLayout is the wire & input format of date fields.
const DateLayout = "2006-01-02"

type InputType string

const (
	Text     InputType = "text"
	TextArea InputType = "textarea"
	Number   InputType = "number"
	Date     InputType = "date"
	Email    InputType = "email"
	Select   InputType = "select"
	Checkbox InputType = "checkbox"
)

type Option struct {
	Value string
	Label string
}

// Range is an inclusive numeric range.
type Range struct {
	Min float64
	Max float64
}

// Rules is the rule table of a single field. Zero values disable a rule.
type Rules struct {
	Required    bool
	MinLen      int
	MaxLen      int
	Pattern     *regexp.Regexp
	PatternText string // message used when Pattern does not match; {0} is the label
	Range       *Range
	Integer     bool // whole numbers only
	NotInPast   bool

	// Custom returns an error message, or "" when value is valid.
	Custom func(value string, draft Values) string
}

type Field struct {
	Name        string
	Label       string
	Type        InputType
	Placeholder string
	Default     string
	Options     []Option
	Rules       Rules
	Help        string
}

// IsMultiline reports whether the field is rendered as a textarea.
func (f Field) IsMultiline() bool { return f.Type == TextArea }

// Values is a draft: field name -> raw input value.
type Values map[string]string

func (v Values) Get(name string) string { return v[name] }

func (v Values) Set(name, value string) { v[name] = value }

func (v Values) Clone() Values {
	c := make(Values, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Equal reports whether v and other hold the same value for every one of fields.
// Missing values compare equal to "".
func (v Values) Equal(other Values, fields []Field) bool {
	for _, f := range fields {
		if normalize(f, v[f.Name]) != normalize(f, other[f.Name]) {
			return false
		}
	}
	return true
}

// Changed returns the names of fields whose values differ between v and other.
func (v Values) Changed(other Values, fields []Field) []string {
	var names []string
	for _, f := range fields {
		if normalize(f, v[f.Name]) != normalize(f, other[f.Name]) {
			names = append(names, f.Name)
		}
	}
	return names
}

func normalize(f Field, s string) string {
	s = core.CleanString(s)
	if f.Type == Checkbox {
		switch strings.ToLower(s) {
		case "on", "true", "1", "yes":
			return "true"
		default:
			return "false"
		}
	}
	return s
}

// Template returns a create-mode draft built from the fields' defaults.
func Template(fields []Field) Values {
	v := make(Values, len(fields))
	for _, f := range fields {
		v[f.Name] = f.Default
	}
	return v
}

// Clean trims the values of fields and drops unknown keys.
func Clean(fields []Field, v Values) Values {
	c := make(Values, len(fields))
	for _, f := range fields {
		c[f.Name] = normalize(f, v[f.Name])
	}
	return c
}

// Errors maps field names to their first validation message.
// The empty key holds a form level error.
type Errors map[string]string

func (e Errors) Has(name string) bool { _, ok := e[name]; return ok }

func (e Errors) Empty() bool { return len(e) == 0 }

// FieldErrors converts e to core field errors, sorted by field name.
func (e Errors) FieldErrors() []core.FieldError {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	flds := make([]core.FieldError, 0, len(names))
	for _, name := range names {
		flds = append(flds, core.FieldError{Field: name, Error: e[name]})
	}
	return flds
}

// ErrorsFrom converts a validation error to Errors. Unknown fields become the form level error.
func ErrorsFrom(err error, fields []Field) Errors {
	errs := make(Errors)
	verr, ok := core.AsValidation(err)
	if !ok {
		if err != nil {
			errs[""] = err.Error()
		}
		return errs
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	for _, fe := range verr.Fields {
		name := fe.Field
		if !known[name] {
			name = ""
		}
		if _, exists := errs[name]; !exists {
			errs[name] = fe.Error
		}
	}
	if len(verr.Fields) == 0 {
		errs[""] = verr.Error()
	}
	return errs
}
