package listing

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPaginator(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		total     int
		wantLabel string
		wantPrev  bool // disabled
		wantNext  bool // disabled
	}{
		{name: "single page", current: 1, total: 1, wantLabel: "Page 1 of 1", wantPrev: true, wantNext: true},
		{name: "no pages", current: 1, total: 0, wantLabel: "Page 1 of 1", wantPrev: true, wantNext: true},
		{name: "first", current: 1, total: 3, wantLabel: "Page 1 of 3", wantPrev: true},
		{name: "middle", current: 2, total: 3, wantLabel: "Page 2 of 3"},
		{name: "last", current: 3, total: 3, wantLabel: "Page 3 of 3", wantNext: true},
		{name: "past the end", current: 9, total: 3, wantLabel: "Page 3 of 3", wantNext: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator(tt.current, tt.total)
			assert.Equal(t, tt.wantLabel, p.Label())
			assert.Equal(t, tt.wantPrev, p.PrevDisabled())
			assert.Equal(t, tt.wantNext, p.NextDisabled())
		})
	}
}

func TestPaginator_navigation(t *testing.T) {
	var got []int
	record := func(page int) { got = append(got, page) }

	p := NewPaginator(1, 3)
	p.Prev(record)
	p.Next(record)
	p.GoTo(8, record)
	p.GoTo(-1, record)
	NewPaginator(3, 3).Next(record)

	assert.Equal(t, []int{2, 3, 1}, got)
}

func TestNewView(t *testing.T) {
	items := []rec{{ID: "c1", Name: "Form 1", Active: true}, {ID: "c2", Name: "Form 2"}}

	t.Run("loading", func(t *testing.T) {
		v := NewView(recEntity, State[rec]{IsLoading: true, CurrentPage: 1, TotalPages: 1}, nil, nil, nil)
		assert.True(t, v.ShowLoading)
		assert.False(t, v.ShowEmpty)
		assert.False(t, v.ShowTable)
	})

	t.Run("empty", func(t *testing.T) {
		v := NewView(recEntity, State[rec]{CurrentPage: 1, TotalPages: 1}, nil, nil, nil)
		assert.True(t, v.ShowEmpty)
		assert.Equal(t, "No classes found.", v.EmptyText)
	})

	t.Run("empty after failure", func(t *testing.T) {
		v := NewView(recEntity, State[rec]{Err: errors.New("boom")}, nil, nil, nil)
		assert.True(t, v.ShowEmpty)
		assert.Equal(t, "Could not load classes: boom", v.EmptyText)
	})

	t.Run("rows", func(t *testing.T) {
		s := State[rec]{Items: items, CurrentPage: 2, TotalPages: 2, Err: errors.New("boom")}
		v := NewView(recEntity, s, nil, func(id string) bool { return id == "c2" }, func(id string) bool { return id == "c1" })
		assert.True(t, v.ShowTable)
		assert.NotEmpty(t, v.Error)
		assert.Equal(t, []string{"Name"}, v.Headers)
		if assert.Len(t, v.Rows, 2) {
			assert.Equal(t, []string{"Form 1"}, v.Rows[0].Cells)
			assert.True(t, *v.Rows[0].Active)
			assert.True(t, v.Rows[0].Selected)
			assert.True(t, v.Rows[1].Pending)
			assert.False(t, *v.Rows[1].Active)
		}
		assert.Equal(t, "Page 2 of 2", v.Paginator.Label())
	})
}

func TestNames_Lookup(t *testing.T) {
	names := NewNames()
	names.Put("classes", "c1", "Form 1")
	names.Put("classes", "", "ignored")

	assert.True(t, names.Has("classes"))
	assert.False(t, names.Has("subjects"))
	assert.Equal(t, "Form 1", names.Lookup("classes", "c1"))
	assert.Equal(t, "c9", names.Lookup("classes", "c9"))

	var nilNames *Names
	assert.Equal(t, "c1", nilNames.Lookup("classes", "c1"))
}

func TestWorkspaces(t *testing.T) {
	client := newFakeClient(1, nil)
	factory := func(key string, opts Options) (Board, bool) {
		if key != "classes" {
			return nil, false
		}
		return NewController(recEntity, client, opts), true
	}
	ws := NewWorkspaces(factory, Options{}, time.Minute)

	w := ws.Get("s1")
	assert.Same(t, w, ws.Get("s1"))

	b, err := w.Board("classes")
	assert.NoError(t, err)
	b2, _ := w.Board("classes")
	assert.Same(t, b, b2)

	_, err = w.Board("lol")
	assert.True(t, errors.Is(err, ErrUnknownEntity))

	assert.Equal(t, 0, ws.Sweep(time.Now()))
	assert.Equal(t, 1, ws.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, ws.Len())
	assert.Equal(t, ErrClosed, b.FetchPage(context.Background(), 1))
}
