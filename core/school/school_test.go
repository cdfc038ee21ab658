package school

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/listing"
)

type call struct {
	method string
	path   string
	id     string
	body   string
}

// fakeAPI answers List with canned JSON pages and records every call.
type fakeAPI struct {
	mu    sync.Mutex
	pages map[string]string // path -> JSON page
	calls []call
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func encode(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func (f *fakeAPI) List(_ context.Context, path string, _, _ int, out interface{}) error {
	f.record(call{method: "GET", path: path})
	return json.Unmarshal([]byte(f.pages[path]), out)
}

func (f *fakeAPI) Create(_ context.Context, path string, in, out interface{}) error {
	body := encode(in)
	f.record(call{method: "POST", path: path, body: body})
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) Update(_ context.Context, path, id string, in, out interface{}) error {
	body := encode(in)
	f.record(call{method: "PUT", path: path, id: id, body: body})
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeAPI) Delete(_ context.Context, path, id string) error {
	f.record(call{method: "DELETE", path: path, id: id})
	return nil
}

func (f *fakeAPI) ToggleStatus(_ context.Context, path, id string, _ bool) error {
	f.record(call{method: "TOGGLE", path: path, id: id})
	return nil
}

func newEngine() *form.Engine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)
	return form.NewEngine(validate, translator)
}

func newBoard(t *testing.T, api *fakeAPI, key string) (listing.Board, *listing.Notices) {
	t.Helper()
	notices := new(listing.Notices)
	b, ok := Boards(api)(key, listing.Options{Notifier: notices, Names: listing.NewNames()})
	require.True(t, ok)
	return b, notices
}

func TestNotifications_firstPage(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{
		"/notifications": `{"items": [{"_id": "n1", "title": "Exam", "message": "..."}], "totalPages": 3, "currentPage": 1}`,
	}}
	b, _ := newBoard(t, api, "notifications")
	require.NoError(t, b.FetchPage(context.Background(), 1))

	v := b.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "Exam", v.Rows[0].Cells[0])
	assert.Equal(t, "Page 1 of 3", v.Paginator.Label())
	assert.True(t, v.Paginator.PrevDisabled())
	assert.False(t, v.Paginator.NextDisabled())
}

func TestSubjects_createEmptyName(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{"/subjects": `{"items": [], "totalPages": 1, "currentPage": 1}`}}
	b, _ := newBoard(t, api, "subjects")
	require.NoError(t, b.FetchPage(context.Background(), 1))

	ed, err := b.OpenEditor(newEngine(), "")
	require.NoError(t, err)
	ed.Set("name", "")
	err = ed.Submit(context.Background())

	assert.True(t, core.IsValidation(err))
	assert.True(t, ed.IsOpen())
	assert.Equal(t, "Name is required", ed.View().Fields[0].Error)
	assert.Equal(t, 0, api.count("POST"))
}

func TestJobPostings_fractionalExperience(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{"/job-postings": `{"items": [], "totalPages": 1, "currentPage": 1}`}}
	b, notices := newBoard(t, api, "job-postings")
	require.NoError(t, b.FetchPage(context.Background(), 1))

	ed, err := b.OpenEditor(newEngine(), "")
	require.NoError(t, err)
	ed.Fill(form.Values{
		"title":       "Mathematics teacher",
		"experience":  "1.5",
		"deadline":    "2099-01-01",
		"description": "Teach mathematics to forms 1 to 4.",
	})
	err = ed.Submit(context.Background())

	assert.True(t, core.IsValidation(err))
	assert.True(t, ed.IsOpen())
	for _, f := range ed.View().Fields {
		if f.Name == "experience" {
			assert.Equal(t, "Experience (years) must be a whole number", f.Error)
		}
	}
	assert.Zero(t, api.count("POST"))
	assert.Empty(t, notices.Drain())

	_, err = JobPostings.Build(form.Values{"experience": "ten"})
	verr, ok := core.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Experience (years) must be a whole number", verr.FieldMap()["experience"])
}

func TestFAQs_submitUnchanged(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{
		"/faqs": `{"items": [{"_id": "f1", "question": "When does term start?", "answer": "In September.", "isActive": true}], "totalPages": 1, "currentPage": 1}`,
	}}
	b, notices := newBoard(t, api, "faqs")
	require.NoError(t, b.FetchPage(context.Background(), 1))

	ed, err := b.OpenEditor(newEngine(), "f1")
	require.NoError(t, err)
	ed.Set("question", "When does term start?")
	ed.Set("answer", "In September.")
	require.NoError(t, ed.Submit(context.Background()))

	assert.False(t, ed.IsOpen())
	assert.Equal(t, 0, api.count("PUT"))
	assert.Equal(t, []listing.Notice{{Level: listing.LevelInfo, Message: "No changes made."}}, notices.Drain())
}

func TestClasses_deleteConfirmed(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{
		"/classes": `{"items": [{"_id": "c1", "name": "Form 1"}, {"_id": "c2", "name": "Form 2"}], "totalPages": 2, "currentPage": 1}`,
	}}
	b, _ := newBoard(t, api, "classes")
	require.NoError(t, b.FetchPage(context.Background(), 1))

	cm, err := b.RequestRemove("c1")
	require.NoError(t, err)
	require.NoError(t, cm.Confirm(context.Background()))

	v := b.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "c2", v.Rows[0].ID)
	assert.Equal(t, 2, v.Paginator.Total)
	assert.Equal(t, 1, api.count("GET"))
	assert.Equal(t, call{method: "DELETE", path: "/classes", id: "c1"}, api.last())
}

func TestToggleShapes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		page string
		id   string
		want call
	}{
		{
			name: "toggle endpoint",
			key:  "subjects",
			page: `{"items": [{"_id": "s1", "name": "Maths", "isActive": true}], "totalPages": 1, "currentPage": 1}`,
			id:   "s1",
			want: call{method: "TOGGLE", path: "/subjects", id: "s1"},
		},
		{
			name: "partial update",
			key:  "students",
			page: `{"items": [{"_id": "st1", "name": "Amani", "class": "c1", "isActive": true}], "totalPages": 1, "currentPage": 1}`,
			id:   "st1",
			want: call{method: "PUT", path: "/students", id: "st1", body: `{"isActive":false}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, _ := LookupEntity(tt.key)
			api := &fakeAPI{pages: map[string]string{meta.Path: tt.page}}
			b, _ := newBoard(t, api, tt.key)
			require.NoError(t, b.FetchPage(context.Background(), 1))

			require.NoError(t, b.Toggle(context.Background(), tt.id))
			assert.Equal(t, tt.want, api.last())
			assert.Equal(t, "Inactive", b.View().Rows[0].Cells[len(meta.Headers)-1])
		})
	}
}

func TestStudents_classNames(t *testing.T) {
	api := &fakeAPI{pages: map[string]string{
		"/students": `{"items": [{"_id": "st1", "name": "Amani", "class": "c1"}], "totalPages": 1, "currentPage": 1}`,
		"/classes":  `{"items": [{"_id": "c1", "name": "Form 1"}], "totalPages": 1, "currentPage": 1}`,
	}}
	ws := listing.NewWorkspaces(Boards(api), listing.Options{}, 0)
	w := ws.Get("s1")
	w.LoadReferences(context.Background(), "students")

	b, err := w.Board("students")
	require.NoError(t, err)
	require.NoError(t, b.FetchPage(context.Background(), 1))
	assert.Equal(t, "Form 1", b.View().Rows[0].Cells[2])
}

func TestDashboard(t *testing.T) {
	assert.Len(t, Dashboard(core.RoleAdmin), len(Entities()))

	tests := []struct {
		role       core.Role
		key        string
		wantOK     bool
		wantAccess Access
	}{
		{role: core.RoleAdmin, key: "faqs", wantOK: true, wantAccess: ReadWrite},
		{role: core.RoleTeacher, key: "attendance", wantOK: true, wantAccess: ReadWrite},
		{role: core.RoleTeacher, key: "classes", wantOK: true, wantAccess: ReadOnly},
		{role: core.RoleTeacher, key: "faqs"},
		{role: core.RoleStudent, key: "subjects", wantOK: true, wantAccess: ReadOnly},
		{role: core.RoleStudent, key: "students"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.key, func(t *testing.T) {
			s, ok := ScreenOf(tt.role, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAccess, s.Access)
		})
	}
}

func TestJobPostings_rules(t *testing.T) {
	engine := newEngine()
	errs := engine.Validate(JobPostings.Fields, form.Values{
		"title":       "Maths teacher",
		"experience":  "51",
		"deadline":    "2001-01-01",
		"description": "Teach mathematics to forms 1 to 4.",
	})
	assert.Equal(t, form.Errors{
		"experience": "Experience (years) must be at most 50",
		"deadline":   "Deadline cannot be in the past",
	}, errs)
}
