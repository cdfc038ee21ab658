package listing

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// submitter is what an Editor hands valid drafts to.
type submitter interface {
	createDraft(ctx context.Context, draft form.Values) error
	updateDraft(ctx context.Context, id string, draft form.Values) error
}

// Editor is the create/update modal of a single record. Its draft lives only
// while the editor is open.
type Editor struct {
	Title string

	mu         sync.Mutex
	mode       Mode
	id         string
	fields     []form.Field
	original   form.Values
	draft      form.Values
	errs       form.Errors
	open       bool
	submitting bool
	gen        uint64

	engine   *form.Engine
	sub      submitter
	notifier Notifier
	onClose  func()
}

func newEditor(mode Mode, id string, fields []form.Field, values form.Values, engine *form.Engine, sub submitter, notifier Notifier) *Editor {
	return &Editor{
		mode:     mode,
		id:       id,
		fields:   fields,
		original: values.Clone(),
		draft:    values.Clone(),
		errs:     make(form.Errors),
		open:     true,
		engine:   engine,
		sub:      sub,
		notifier: notifier,
	}
}

func (e *Editor) Mode() Mode { return e.mode }

// RecordID is the id of the edited record ("" in create mode).
func (e *Editor) RecordID() string { return e.id }

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Set updates a draft value.
func (e *Editor) Set(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open {
		e.draft[name] = value
	}
}

// Fill replaces the draft values of every editor field with the ones in values.
// Fields missing from values are reset to "" (unchecked checkboxes are never submitted).
func (e *Editor) Fill(values form.Values) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return
	}
	for _, f := range e.fields {
		e.draft[f.Name] = values[f.Name]
	}
}

// Blur validates a single field and records its error.
func (e *Editor) Blur(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range e.fields {
		if f.Name != name {
			continue
		}
		msg := e.engine.Field(f, e.draft)
		if msg == "" {
			delete(e.errs, name)
		} else {
			e.errs[name] = msg
		}
		return msg
	}
	return ""
}

// Submit validates the draft and hands it to the list. The editor closes on
// success (or when an edit changed nothing) and stays open with inline errors otherwise.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return ErrModalClosed
	}
	if e.submitting {
		e.mu.Unlock()
		return ErrBusy
	}

	draft := form.Clean(e.fields, e.draft)
	if errs := e.engine.Validate(e.fields, draft); !errs.Empty() {
		e.errs = errs
		e.mu.Unlock()
		return core.NewValidationError(nil, errs.FieldErrors()...)
	}
	if e.mode == ModeEdit && draft.Equal(e.original, e.fields) {
		e.mu.Unlock()
		e.notifier.Notify(Notice{Level: LevelInfo, Message: "No changes made."})
		e.Close()
		return nil
	}

	e.submitting = true
	e.errs = make(form.Errors)
	gen := e.gen
	mode, id := e.mode, e.id
	e.mu.Unlock()

	var err error
	if mode == ModeCreate {
		err = e.sub.createDraft(ctx, draft)
	} else {
		err = e.sub.updateDraft(ctx, id, draft)
	}

	e.mu.Lock()
	e.submitting = false
	if !e.open || gen != e.gen { // closed while the request was in flight
		e.mu.Unlock()
		return ErrModalClosed
	}
	if err != nil && !errors.Is(err, ErrNoChanges) {
		e.errs = form.ErrorsFrom(err, e.fields)
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	e.Close()
	return nil
}

// Close discards the draft.
func (e *Editor) Close() {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return
	}
	e.open = false
	e.gen++
	e.draft = nil
	e.errs = nil
	onClose := e.onClose
	e.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// FieldView is a form field with its current value and error.
type FieldView struct {
	form.Field
	Value   string
	Error   string
	Checked bool
}

type EditorView struct {
	Title      string
	Mode       Mode
	RecordID   string
	Fields     []FieldView
	FormError  string
	Submitting bool
	Open       bool
}

func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := EditorView{
		Title:      e.Title,
		Mode:       e.mode,
		RecordID:   e.id,
		FormError:  e.errs[""],
		Submitting: e.submitting,
		Open:       e.open,
	}
	for _, f := range e.fields {
		fv := FieldView{Field: f, Value: e.draft[f.Name], Error: e.errs[f.Name]}
		if f.Type == form.Checkbox {
			fv.Checked = form.Clean([]form.Field{f}, e.draft)[f.Name] == "true"
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
