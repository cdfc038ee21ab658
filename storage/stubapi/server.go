package stubapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

const defaultLimit = 10

// binder reads request bodies only: path params must not leak into records.
var binder = new(echo.DefaultBinder)

// Server serves the collections of a DB with the school API's REST shape.
type Server struct {
	*echo.Echo
	db    *DB
	token string

	mu       sync.Mutex
	failNext []int
}

type Options struct {
	Token          string // required bearer token, if set
	DisableReqLogs bool
}

func NewServer(db *DB, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{Echo: e, db: db, token: opts.Token}

	e.Pre(middleware.RemoveTrailingSlash())
	if !opts.DisableReqLogs {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover(), s.faults)
	if s.token != "" {
		e.Use(s.auth)
	}

	e.GET("/health", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"status": "ok"}) })
	e.GET("/:entity", s.list)
	e.POST("/:entity", s.create)
	e.PUT("/:entity/toggle-status/:id", s.toggle)
	e.PUT("/:entity/:id", s.update)
	e.DELETE("/:entity/:id", s.delete)
	return s
}

// FailNext makes the next request fail with status code.
func (s *Server) FailNext(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, code)
}

func (s *Server) faults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		var code int
		if len(s.failNext) > 0 {
			code, s.failNext = s.failNext[0], s.failNext[1:]
		}
		s.mu.Unlock()
		if code != 0 {
			return c.JSON(code, echo.Map{"error": http.StatusText(code)})
		}
		return next(c)
	}
}

func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/health" {
			return next(c)
		}
		if c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer "+s.token {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		return next(c)
	}
}

func (s *Server) table(c echo.Context) (*table, bool) {
	return s.db.table(c.Param("entity"))
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

func (s *Server) list(c echo.Context) error {
	t, ok := s.table(c)
	if !ok {
		return notFound(c)
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultLimit)
	items, total := t.page(page, limit)
	return c.JSON(http.StatusOK, echo.Map{"items": items, "totalPages": total, "currentPage": page})
}

func (s *Server) create(c echo.Context) error {
	t, ok := s.table(c)
	if !ok {
		return notFound(c)
	}
	var rec record
	if err := binder.BindBody(c, &rec); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if rec == nil {
		rec = make(record)
	}
	if flds := missing(t, rec); len(flds) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, flds)
	}
	delete(rec, "_id")
	return c.JSON(http.StatusCreated, t.insert(rec))
}

func (s *Server) update(c echo.Context) error {
	t, ok := s.table(c)
	if !ok {
		return notFound(c)
	}
	var patch record
	if err := binder.BindBody(c, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON body"})
	}
	if flds := blanked(t, patch); len(flds) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, flds)
	}
	rec, err := t.update(c.Param("id"), patch)
	if err != nil {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) toggle(c echo.Context) error {
	t, ok := s.table(c)
	if !ok {
		return notFound(c)
	}
	if !t.meta.Toggleable {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": t.meta.Plural + " cannot be toggled"})
	}
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	_ = binder.BindBody(c, &body)
	rec, err := t.toggle(c.Param("id"), body.IsActive)
	if err != nil {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) delete(c echo.Context) error {
	t, ok := s.table(c)
	if !ok {
		return notFound(c)
	}
	if err := t.delete(c.Param("id")); err != nil {
		if errors.Is(err, errNotFound) {
			return notFound(c)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// missing returns the required fields absent from rec, keyed by field name.
func missing(t *table, rec record) map[string]string {
	flds := make(map[string]string)
	for _, f := range t.meta.Fields {
		if f.Rules.Required && isBlank(rec[f.Name]) {
			flds[f.Name] = f.Label + " is required"
		}
	}
	return flds
}

// blanked returns the required fields patch sets to a blank value.
func blanked(t *table, patch record) map[string]string {
	flds := make(map[string]string)
	for _, f := range t.meta.Fields {
		if v, ok := patch[f.Name]; ok && f.Rules.Required && isBlank(v) {
			flds[f.Name] = f.Label + " is required"
		}
	}
	return flds
}

func isBlank(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return core.CleanString(v) == ""
	}
	return false
}

func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil || n < 1 {
		return def
	}
	return n
}
