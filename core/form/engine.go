package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

var (
	nowFunc = time.Now // mockable

	notInPastTag  = "notinpast"
	notInPastText = "{0} cannot be in the past"

	dateTag  = "date"
	dateText = "{0} must be a valid date (YYYY-MM-DD)"

	patternTag  = "pattern"
	patternText = "{0} contains invalid characters"
)

// InitValidators registers the form engine's custom validators & texts.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(notInPastTag, notInPastValidation)
	core.RegisterCustomTranslation(validate, translator, notInPastTag, notInPastText)
	core.RegisterCustomTranslation(validate, translator, dateTag, dateText)
	core.RegisterCustomTranslation(validate, translator, patternTag, patternText)
}

// notInPastValidation checks that a YYYY-MM-DD date is today or later.
func notInPastValidation(fl validator.FieldLevel) bool {
	d, err := time.ParseInLocation(DateLayout, fl.Field().String(), time.Local)
	if err != nil {
		return false
	}
	now := nowFunc()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return !d.Before(today)
}

// Engine evaluates field rule tables. One Engine serves every entity.
type Engine struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewEngine(validate *validator.Validate, translator ut.Translator) *Engine {
	return &Engine{validate: validate, translator: translator}
}

// Validate checks every field of draft and returns the first error of each invalid field.
func (e *Engine) Validate(fields []Field, draft Values) Errors {
	errs := make(Errors)
	for _, f := range fields {
		if msg := e.Field(f, draft); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

// Field checks a single field (used on blur) and returns its error message, or "".
func (e *Engine) Field(f Field, draft Values) string {
	value := strings.TrimSpace(draft[f.Name])
	r := f.Rules

	if value == "" {
		if r.Required && f.Type != Checkbox {
			return e.msg("required", f.Label)
		}
		return ""
	}

	if f.Type == Email && e.validate.Var(value, "email") != nil {
		return e.msg("email", f.Label)
	}
	if r.MinLen > 0 && e.validate.Var(value, fmt.Sprintf("min=%d", r.MinLen)) != nil {
		return e.msg("min", f.Label, strconv.Itoa(r.MinLen))
	}
	if r.MaxLen > 0 && e.validate.Var(value, fmt.Sprintf("max=%d", r.MaxLen)) != nil {
		return e.msg("max", f.Label, strconv.Itoa(r.MaxLen))
	}

	if f.Type == Number || r.Range != nil || r.Integer {
		if e.validate.Var(value, "numeric") != nil {
			return e.msg("numeric", f.Label)
		}
		if r.Integer && e.validate.Var(value, "number") != nil {
			return e.msg("number", f.Label)
		}
		if r.Range != nil {
			num, _ := strconv.ParseFloat(value, 64)
			if e.validate.Var(num, "gte="+formatNum(r.Range.Min)) != nil {
				return e.msg("gte", f.Label, formatNum(r.Range.Min))
			}
			if e.validate.Var(num, "lte="+formatNum(r.Range.Max)) != nil {
				return e.msg("lte", f.Label, formatNum(r.Range.Max))
			}
		}
	}

	if f.Type == Date {
		if _, err := time.Parse(DateLayout, value); err != nil {
			return e.msg(dateTag, f.Label)
		}
		if r.NotInPast && e.validate.Var(value, notInPastTag) != nil {
			return e.msg(notInPastTag, f.Label)
		}
	}

	if len(f.Options) > 0 && f.Type != Checkbox {
		values := make([]string, 0, len(f.Options))
		for _, opt := range f.Options {
			values = append(values, opt.Value)
		}
		if e.validate.Var(value, "oneof="+strings.Join(values, " ")) != nil {
			return e.msg("oneof", f.Label, strings.Join(values, ", "))
		}
	}

	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		if r.PatternText != "" {
			return strings.ReplaceAll(r.PatternText, "{0}", f.Label)
		}
		return e.msg(patternTag, f.Label)
	}

	if r.Custom != nil {
		return r.Custom(value, draft)
	}
	return ""
}

func (e *Engine) msg(tag string, params ...string) string {
	s, err := e.translator.T(tag, params...)
	if err != nil || s == "" {
		return fmt.Sprintf("%s is invalid", params[0])
	}
	return s
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
