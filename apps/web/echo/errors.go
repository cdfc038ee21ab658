package echoweb

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/listing"
)

var (
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpReadOnly   = echo.NewHTTPError(http.StatusForbidden, "this screen is read only")
	errHttpNoEditor   = echo.NewHTTPError(http.StatusConflict, "no form is open")
	errHttpNotToggled = echo.NewHTTPError(http.StatusBadRequest, "records cannot be activated or deactivated")
)

type errorData struct {
	Code    int
	Status  string
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(appName string, logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var nferr *core.NotFoundError
		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case errors.Is(err, listing.ErrUnknownEntity), errors.As(err, &nferr):
				code = http.StatusNotFound
				message = err.Error()
			case core.IsNetwork(err):
				code = http.StatusBadGateway
				message = "The school API could not be reached. Please try again."
				logger.Warn("school API unavailable", logArgs(ctx, err)...)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, logArgs(ctx, errors.Wrap(err, msg))...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		req := ctx.Request()
		switch {
		case req.Method == http.MethodHead:
			err = ctx.NoContent(code)
		case wantsJSON(req):
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		default:
			err = renderError(ctx, appName, code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func renderError(ctx echo.Context, appName string, code int, message interface{}) error {
	data := errorData{Code: code, Status: http.StatusText(code)}
	switch m := message.(type) {
	case string:
		data.Message = m
	case map[string]string:
		msgs := make([]string, 0, len(m))
		for _, msg := range m {
			msgs = append(msgs, msg)
		}
		sort.Strings(msgs)
		data.Message = strings.Join(msgs, "; ")
	default:
		data.Message = data.Status
	}

	sess, signed := getContextSession(ctx)
	err := ctx.Render(code, "error", pageData{
		AppName: appName,
		Title:   data.Status,
		Session: sess,
		Signed:  signed,
		Data:    data,
	})
	if err != nil {
		return ctx.String(code, data.Message)
	}
	return nil
}

func wantsJSON(req *http.Request) bool {
	accept := req.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// logArgs attaches the session of the request, if any, to a log entry about err.
func logArgs(ctx echo.Context, err error) []interface{} {
	args := []interface{}{err, map[string]interface{}{"method": ctx.Request().Method, "path": ctx.Path()}}
	if sess, ok := getContextSession(ctx); ok {
		args = append(args, sess)
	}
	return args
}
