package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/storage/stubapi"
	"github.com/trezcool/masomo-portal/tests"
)

const token = "s3cr3t"

func setup(t *testing.T) (*Client, *stubapi.DB, *stubapi.Server) {
	t.Helper()
	db, srv, url := testutil.StubAPI(t, stubapi.Options{Token: token}, false)
	return New(Options{BaseURL: url, Token: token}), db, srv
}

func TestClient_List(t *testing.T) {
	client, db, _ := setup(t)
	for i := 0; i < 25; i++ {
		_, err := db.Seed("subjects", school.Subject{Name: "Subject", IsActive: true})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		page      int
		wantItems int
	}{
		{name: "first page", page: 1, wantItems: 10},
		{name: "last page", page: 3, wantItems: 5},
		{name: "past the end", page: 4, wantItems: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p listing.Page[school.Subject]
			require.NoError(t, client.List(context.Background(), "/subjects", tt.page, 10, &p))
			assert.Len(t, p.Items, tt.wantItems)
			assert.Equal(t, 3, p.TotalPages)
			assert.Equal(t, tt.page, p.CurrentPage)
		})
	}
}

func TestClient_mutations(t *testing.T) {
	client, db, _ := setup(t)
	ctx := context.Background()

	var created school.FAQ
	err := client.Create(ctx, "/faqs", school.FAQ{Question: "Any uniform?", Answer: "Yes, blue.", IsActive: true}, &created)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, db.Len("faqs"))

	var updated school.FAQ
	created.Answer = "Yes, navy blue."
	require.NoError(t, client.Update(ctx, "/faqs", created.ID, created, &updated))
	assert.Equal(t, created, updated)

	require.NoError(t, client.ToggleStatus(ctx, "/faqs", created.ID, false))
	var p listing.Page[school.FAQ]
	require.NoError(t, client.List(ctx, "/faqs", 1, 10, &p))
	assert.False(t, p.Items[0].IsActive)

	require.NoError(t, client.Delete(ctx, "/faqs", created.ID))
	assert.Equal(t, 0, db.Len("faqs"))
}

func TestClient_errors(t *testing.T) {
	client, db, srv := setup(t)
	ctx := context.Background()
	ids, err := db.Seed("classes", school.Class{Name: "Form 1"})
	require.NoError(t, err)

	t.Run("missing required field", func(t *testing.T) {
		err := client.Create(ctx, "/subjects", school.Subject{}, nil)
		verr, ok := core.AsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.True(t, verr.Server)
		assert.Equal(t, []core.FieldError{{Field: "name", Error: "Name is required"}}, verr.Fields)
	})

	t.Run("unknown record", func(t *testing.T) {
		err := client.Delete(ctx, "/classes", "nope")
		var nferr *core.NotFoundError
		require.True(t, errors.As(err, &nferr), "got %v", err)
		assert.Equal(t, &core.NotFoundError{Entity: "classes", ID: "nope"}, nferr)
	})

	t.Run("server error", func(t *testing.T) {
		srv.FailNext(http.StatusInternalServerError)
		err := client.Update(ctx, "/classes", ids[0], map[string]bool{"isActive": true}, nil)
		var nerr *core.NetworkError
		require.True(t, errors.As(err, &nerr), "got %v", err)
		assert.Equal(t, http.StatusInternalServerError, nerr.Status)
	})

	t.Run("bad token", func(t *testing.T) {
		c := New(Options{BaseURL: client.base, Token: "lol"})
		err := c.List(ctx, "/classes", 1, 10, &listing.Page[school.Class]{})
		var nerr *core.NetworkError
		require.True(t, errors.As(err, &nerr), "got %v", err)
		assert.Equal(t, http.StatusUnauthorized, nerr.Status)
	})

	t.Run("unreachable", func(t *testing.T) {
		c := New(Options{BaseURL: "http://127.0.0.1:1"})
		assert.True(t, core.IsNetwork(c.Ping(ctx)))
	})
}

func TestClient_timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	client := New(Options{BaseURL: ts.URL, Timeout: 20 * time.Millisecond})
	err := client.Ping(context.Background())
	var nerr *core.NetworkError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.True(t, nerr.Timeout)
}

func Test_decodeValidationError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMsg    string
		wantFields []core.FieldError
	}{
		{name: "message", body: `{"error": "duplicate subject"}`, wantMsg: "duplicate subject"},
		{
			name:       "fields",
			body:       `{"title": "Title is required", "date": "Date is invalid"}`,
			wantMsg:    "Date is invalid; Title is required",
			wantFields: []core.FieldError{{Field: "date", Error: "Date is invalid"}, {Field: "title", Error: "Title is required"}},
		},
		{
			name:       "nested",
			body:       `{"message": "invalid payload", "errors": {"name": "Name is taken"}}`,
			wantMsg:    "invalid payload",
			wantFields: []core.FieldError{{Field: "name", Error: "Name is taken"}},
		},
		{name: "garbage", body: `<html>`, wantMsg: "the server rejected the request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeValidationError(strings.NewReader(tt.body))
			verr, ok := core.AsValidation(err)
			require.True(t, ok)
			assert.True(t, verr.Server)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}
