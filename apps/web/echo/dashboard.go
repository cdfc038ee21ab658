package echoweb

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/services/export"
)

const contextScreenKey = "screen"

type (
	dashboardApi struct {
		s *Server
	}

	// screenCtx is the entity screen a request targets.
	screenCtx struct {
		school.Screen
		key   string
		base  string // URL of the screen
		ws    *listing.Workspace
		board listing.Board
	}

	editorData struct {
		listing.EditorView
		Action       string
		CancelAction string
	}

	confirmData struct {
		Title        string
		Message      string
		ConfirmLabel string
		Action       string
	}

	listData struct {
		Base     string
		Meta     listing.Meta
		View     listing.View
		Writable bool
		Prev     string
		Next     string
		Editor   *editorData
		Confirm  *confirmData
	}

	detailData struct {
		Base   string
		Meta   listing.Meta
		Detail listing.Detail
	}
)

func registerDashboards(g *echo.Group, s *Server) {
	api := dashboardApi{s: s}

	g.GET("", api.index)

	eg := g.Group("/:entity", api.screenMiddleware)
	eg.GET("", api.list)
	eg.GET("/export", api.export)
	eg.GET("/:id", api.detail)

	// write endpoints
	eg.POST("/new", api.openCreate, writeMiddleware)
	eg.POST("/editor", api.submit, writeMiddleware)
	eg.POST("/editor/cancel", api.cancel, writeMiddleware)
	eg.POST("/editor/validate", api.validateField, writeMiddleware)
	eg.POST("/confirm", api.resolve, writeMiddleware)
	eg.POST("/:id/edit", api.openEdit, writeMiddleware)
	eg.POST("/:id/delete", api.requestDelete, writeMiddleware)
	eg.POST("/:id/toggle", api.toggle, writeMiddleware)
}

// Middlewares

// screenMiddleware resolves the :entity screen of the session's dashboard and its board.
func (api *dashboardApi) screenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, ok := getContextSession(ctx)
		if !ok {
			return ctx.Redirect(http.StatusSeeOther, "/signin")
		}
		key := ctx.Param("entity")
		screen, ok := school.ScreenOf(sess.Role, key)
		if !ok {
			return errHttpNotFound
		}

		ws := api.s.deps.Workspaces.Get(sess.ID)
		board, err := ws.Board(key)
		if err != nil {
			return errors.Wrap(err, "getting board")
		}
		ctx.Set(contextScreenKey, &screenCtx{
			Screen: screen,
			key:    key,
			base:   fmt.Sprintf("/%s/%s", sess.Role, key),
			ws:     ws,
			board:  board,
		})
		return next(ctx)
	}
}

func writeMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getScreen(ctx).Access.CanWrite() {
			return errHttpReadOnly
		}
		return next(ctx)
	}
}

func getScreen(ctx echo.Context) *screenCtx {
	sc, _ := ctx.Get(contextScreenKey).(*screenCtx)
	return sc
}

// Handlers

func (api *dashboardApi) index(ctx echo.Context) error {
	sess, _ := getContextSession(ctx)
	return api.s.render(ctx, http.StatusOK, "dashboard", sess.Role.Name()+" dashboard", nil)
}

// list renders the current page of the screen. A `page` query param fetches that
// page; without it the list is only fetched on the first visit (or after a failed fetch).
func (api *dashboardApi) list(ctx echo.Context) error {
	sc := getScreen(ctx)
	reqCtx := ctx.Request().Context()

	sc.ws.LoadReferences(reqCtx, sc.key)
	if p := ctx.QueryParam("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			page = 1
		}
		_ = sc.board.FetchPage(reqCtx, page) // failures are shown by the view
	} else if !sc.board.Loaded() {
		_ = sc.board.Refresh(reqCtx)
	}

	view := sc.board.View()
	data := listData{
		Base:     sc.base,
		Meta:     sc.board.Meta(),
		View:     view,
		Writable: sc.Access.CanWrite(),
	}
	data.Prev, data.Next = view.Paginator.Hrefs(func(page int) string {
		return fmt.Sprintf("%s?page=%d", sc.base, page)
	})
	if data.Writable {
		if ed, ok := sc.ws.Editor(sc.key); ok {
			data.Editor = &editorData{
				EditorView:   ed.View(),
				Action:       sc.base + "/editor",
				CancelAction: sc.base + "/editor/cancel",
			}
		}
		if cm, ok := sc.ws.Confirm(sc.key); ok {
			data.Confirm = &confirmData{
				Title:        cm.Title,
				Message:      cm.Message(),
				ConfirmLabel: cm.ConfirmLabel,
				Action:       sc.base + "/confirm",
			}
		}
	}
	return api.s.render(ctx, http.StatusOK, "list", view.Title, data)
}

// detail shows one record of the loaded page.
func (api *dashboardApi) detail(ctx echo.Context) error {
	sc := getScreen(ctx)
	d, err := sc.board.Detail(ctx.Param("id"))
	if err != nil {
		return api.done(ctx, err)
	}
	data := detailData{Base: sc.base, Meta: sc.board.Meta(), Detail: d}
	return api.s.render(ctx, http.StatusOK, "detail", d.Title, data)
}

func (api *dashboardApi) export(ctx echo.Context) error {
	sc := getScreen(ctx)
	reqCtx := ctx.Request().Context()

	f, err := export.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !sc.board.Loaded() {
		sc.ws.LoadReferences(reqCtx, sc.key)
		if err := sc.board.Refresh(reqCtx); err != nil {
			return errors.Wrap(err, "loading page to export")
		}
	}

	headers, rows := sc.board.Export()
	view := sc.board.View()
	doc := export.Document{
		Title:    view.Title,
		Subtitle: view.Paginator.Label(),
		Headers:  headers,
		Rows:     rows,
	}
	var buf bytes.Buffer
	if err := api.s.deps.Exporter.Export(&buf, f, doc); err != nil {
		return errors.Wrapf(err, "exporting %s", sc.key)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Filename(view.Title)))
	return ctx.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}

func (api *dashboardApi) openCreate(ctx echo.Context) error {
	sc := getScreen(ctx)
	ed, err := sc.board.OpenEditor(api.s.deps.Engine, "")
	if err != nil {
		return api.done(ctx, err)
	}
	sc.ws.SetEditor(sc.key, ed)
	return api.done(ctx, nil)
}

func (api *dashboardApi) openEdit(ctx echo.Context) error {
	sc := getScreen(ctx)
	ed, err := sc.board.OpenEditor(api.s.deps.Engine, ctx.Param("id"))
	if err != nil {
		return api.done(ctx, err)
	}
	sc.ws.SetEditor(sc.key, ed)
	return api.done(ctx, nil)
}

// submit saves the open editor. Invalid drafts keep the editor open with its errors.
func (api *dashboardApi) submit(ctx echo.Context) error {
	sc := getScreen(ctx)
	ed, ok := sc.ws.Editor(sc.key)
	if !ok {
		return api.done(ctx, listing.ErrModalClosed)
	}
	ed.Fill(formValues(ctx, sc.board.Meta().Fields))
	return api.done(ctx, ed.Submit(ctx.Request().Context()))
}

func (api *dashboardApi) cancel(ctx echo.Context) error {
	sc := getScreen(ctx)
	if ed, ok := sc.ws.Editor(sc.key); ok {
		ed.Close()
	}
	return api.done(ctx, nil)
}

// validateField validates a single field of the open editor, on blur.
func (api *dashboardApi) validateField(ctx echo.Context) error {
	sc := getScreen(ctx)
	ed, ok := sc.ws.Editor(sc.key)
	if !ok {
		return errHttpNoEditor
	}
	name := ctx.QueryParam("field")
	ed.Fill(formValues(ctx, sc.board.Meta().Fields))
	return ctx.JSON(http.StatusOK, echo.Map{"field": name, "error": ed.Blur(name)})
}

func (api *dashboardApi) requestDelete(ctx echo.Context) error {
	sc := getScreen(ctx)
	cm, err := sc.board.RequestRemove(ctx.Param("id"))
	if err != nil {
		return api.done(ctx, err)
	}
	sc.ws.SetConfirm(sc.key, cm)
	return api.done(ctx, nil)
}

// toggle flips the status of a record, behind a confirmation for the entities that ask for one.
func (api *dashboardApi) toggle(ctx echo.Context) error {
	sc := getScreen(ctx)
	id := ctx.Param("id")
	if !sc.board.Meta().ConfirmToggle {
		return api.done(ctx, sc.board.Toggle(ctx.Request().Context(), id))
	}
	cm, err := sc.board.RequestToggle(id)
	if err != nil {
		return api.done(ctx, err)
	}
	sc.ws.SetConfirm(sc.key, cm)
	return api.done(ctx, nil)
}

func (api *dashboardApi) resolve(ctx echo.Context) error {
	sc := getScreen(ctx)
	cm, ok := sc.ws.Confirm(sc.key)
	if !ok {
		return api.done(ctx, listing.ErrModalClosed)
	}
	yes := ctx.FormValue("answer") == "yes"
	return api.done(ctx, cm.Resolve(ctx.Request().Context(), yes))
}

// done redirects back to the list once an action ran. The list already notified
// the outcome of remote calls; only the local refusals are reported here.
func (api *dashboardApi) done(ctx echo.Context, err error) error {
	sc := getScreen(ctx)
	switch {
	case err == nil:
	case errors.Is(err, listing.ErrNotToggleable):
		return errHttpNotToggled
	case errors.Is(err, listing.ErrNotInPage):
		sc.ws.Notices.Notify(listing.Notice{Level: listing.LevelError, Message: "That record is no longer on this page."})
	case errors.Is(err, listing.ErrBusy):
		sc.ws.Notices.Notify(listing.Notice{Level: listing.LevelInfo, Message: "Please wait, the previous request is still running."})
	case errors.Is(err, listing.ErrModalClosed), errors.Is(err, listing.ErrClosed):
	case core.IsValidation(err), core.IsNetwork(err), core.IsNotFound(err):
	default:
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, sc.base)
}

// formValues reads the posted values of fields. Unchecked checkboxes are not posted and read as "".
func formValues(ctx echo.Context, fields []form.Field) form.Values {
	values := make(form.Values, len(fields))
	for _, f := range fields {
		values[f.Name] = ctx.FormValue(f.Name)
	}
	return values
}

// Helpers

func (s *Server) render(ctx echo.Context, code int, name, title string, data interface{}) error {
	sess, signed := getContextSession(ctx)
	page := pageData{
		AppName: s.deps.Conf.AppName,
		Title:   title,
		Session: sess,
		Signed:  signed,
		Data:    data,
	}
	if signed {
		current := ctx.Param("entity")
		for _, sc := range school.Dashboard(sess.Role) {
			page.Nav = append(page.Nav, navLink{
				Title:    sc.Entity.Plural,
				Href:     fmt.Sprintf("/%s/%s", sess.Role, sc.Entity.Key),
				Current:  sc.Entity.Key == current,
				Writable: sc.Access.CanWrite(),
			})
		}
		page.Notices = s.deps.Workspaces.Get(sess.ID).Notices.Drain()
	}
	return ctx.Render(code, name, page)
}
