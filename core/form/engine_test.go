package form

import (
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-portal/core"
)

func newEngine() *Engine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return NewEngine(validate, translator)
}

func TestEngine_Field(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local) }
	defer func() { nowFunc = time.Now }()

	engine := newEngine()
	name := Field{Name: "name", Label: "Name", Type: Text, Rules: Rules{
		Required:    true,
		MinLen:      2,
		MaxLen:      5,
		Pattern:     regexp.MustCompile(`^[A-Za-z ]+$`),
		PatternText: "{0} may only contain letters and spaces",
	}}
	years := Field{Name: "years", Label: "Experience", Type: Number, Rules: Rules{Range: &Range{Min: 0, Max: 50}}}
	wholeYears := Field{Name: "years", Label: "Experience", Type: Number, Rules: Rules{Integer: true, Range: &Range{Min: 0, Max: 50}}}
	deadline := Field{Name: "deadline", Label: "Deadline", Type: Date, Rules: Rules{Required: true, NotInPast: true}}
	email := Field{Name: "email", Label: "Email", Type: Email}
	status := Field{Name: "status", Label: "Status", Type: Select, Options: []Option{{Value: "present"}, {Value: "absent"}}}
	confirm := Field{Name: "confirm", Label: "Confirm", Type: Text, Rules: Rules{
		Custom: func(value string, draft Values) string {
			if value != draft["name"] {
				return "Confirm must match Name"
			}
			return ""
		},
	}}

	tests := []struct {
		name  string
		field Field
		draft Values
		want  string
	}{
		{name: "required", field: name, draft: Values{"name": "  "}, want: "Name is required"},
		{name: "min length", field: name, draft: Values{"name": "a"}, want: "Name must be at least 2 characters"},
		{name: "max length", field: name, draft: Values{"name": "abcdef"}, want: "Name must be at most 5 characters"},
		{name: "pattern", field: name, draft: Values{"name": "ab1"}, want: "Name may only contain letters and spaces"},
		{name: "valid name", field: name, draft: Values{"name": "Abc"}},
		{name: "optional empty", field: years, draft: Values{}},
		{name: "not a number", field: years, draft: Values{"years": "ten"}, want: "Experience must be a number"},
		{name: "below range", field: years, draft: Values{"years": "-1"}, want: "Experience must be at least 0"},
		{name: "above range", field: years, draft: Values{"years": "51"}, want: "Experience must be at most 50"},
		{name: "in range", field: years, draft: Values{"years": "50"}},
		{name: "fraction", field: wholeYears, draft: Values{"years": "1.5"}, want: "Experience must be a whole number"},
		{name: "whole number", field: wholeYears, draft: Values{"years": "12"}},
		{name: "bad date", field: deadline, draft: Values{"deadline": "10/03/2026"}, want: "Deadline must be a valid date (YYYY-MM-DD)"},
		{name: "past date", field: deadline, draft: Values{"deadline": "2026-03-09"}, want: "Deadline cannot be in the past"},
		{name: "today", field: deadline, draft: Values{"deadline": "2026-03-10"}},
		{name: "bad email", field: email, draft: Values{"email": "nope"}, want: "Email must be a valid email address"},
		{name: "email", field: email, draft: Values{"email": "a@b.co"}},
		{name: "unknown option", field: status, draft: Values{"status": "late"}, want: "Status must be one of: present, absent"},
		{name: "custom", field: confirm, draft: Values{"name": "a", "confirm": "b"}, want: "Confirm must match Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Field(tt.field, tt.draft))
		})
	}
}

func TestEngine_Validate(t *testing.T) {
	fields := []Field{
		{Name: "question", Label: "Question", Type: Text, Rules: Rules{Required: true, MinLen: 5}},
		{Name: "answer", Label: "Answer", Type: TextArea, Rules: Rules{Required: true}},
	}
	errs := newEngine().Validate(fields, Values{"question": "Why?"})
	assert.Equal(t, Errors{
		"question": "Question must be at least 5 characters",
		"answer":   "Answer is required",
	}, errs)
	assert.Equal(t, []core.FieldError{
		{Field: "answer", Error: "Answer is required"},
		{Field: "question", Error: "Question must be at least 5 characters"},
	}, errs.FieldErrors())
}

func TestValues_Equal(t *testing.T) {
	fields := []Field{
		{Name: "title", Type: Text},
		{Name: "active", Type: Checkbox},
	}
	tests := []struct {
		name string
		a, b Values
		want bool
	}{
		{name: "identical", a: Values{"title": "x", "active": "true"}, b: Values{"title": "x", "active": "true"}, want: true},
		{name: "whitespace", a: Values{"title": " x "}, b: Values{"title": "x"}, want: true},
		{name: "checkbox on", a: Values{"active": "on"}, b: Values{"active": "true"}, want: true},
		{name: "missing is empty", a: Values{}, b: Values{"title": ""}, want: true},
		{name: "unknown keys ignored", a: Values{"x": "1"}, b: Values{}, want: true},
		{name: "changed", a: Values{"title": "x"}, b: Values{"title": "y"}},
		{name: "unchecked", a: Values{"active": "true"}, b: Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b, fields))
		})
	}
}

func TestErrorsFrom(t *testing.T) {
	fields := []Field{{Name: "name"}}
	err := core.NewServerValidationError(nil,
		core.FieldError{Field: "name", Error: "Name already exists"},
		core.FieldError{Field: "slug", Error: "Slug is taken"},
	)
	assert.Equal(t, Errors{"name": "Name already exists", "": "Slug is taken"}, ErrorsFrom(err, fields))
	assert.Equal(t, Errors{"": "boom: request failed"}, ErrorsFrom(core.NewNetworkError("boom", 0, nil), fields))
}
