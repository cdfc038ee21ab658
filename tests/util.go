// Package testutil holds the fixtures shared by the tests talking to the school API.
package testutil

import (
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/school"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/storage/stubapi"
)

// StubAPI serves an in-memory school API for the duration of the test and returns its base URL.
// The demo school is loaded when seed is true.
func StubAPI(t *testing.T, opts stubapi.Options, seed bool) (*stubapi.DB, *stubapi.Server, string) {
	t.Helper()
	db := stubapi.Open(school.Entities())
	if seed {
		if err := stubapi.SeedDemo(db); err != nil {
			t.Fatalf("StubAPI() failed: %v", err)
		}
	}
	opts.DisableReqLogs = true
	srv := stubapi.NewServer(db, opts)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return db, srv, ts.URL
}

func NewEngine() *form.Engine {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	form.InitValidators(validate, translator)
	return form.NewEngine(validate, translator)
}

// Logger returns a logger printing nowhere.
func Logger() core.Logger {
	return logsvc.NewStdLogger(log.New(io.Discard, "", 0))
}
