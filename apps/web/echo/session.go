package echoweb

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

const (
	sessionCookie     = "masomo_session"
	contextSessionKey = "session"
)

var errInvalidSession = errors.New("invalid session token")

// Claims represents the session transmitted via the signed session cookie.
// StandardClaims.Id holds the session id.
type Claims struct {
	jwt.StandardClaims
	Role core.Role `json:"role"`
}

func (s *Server) newClaims(role core.Role) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    s.deps.Conf.AppName,
			ExpiresAt: now.Add(s.sessionTTL()).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: role,
	}
}

// GenerateToken signs claims with the app secret key.
func GenerateToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// ParseToken verifies a session token and returns its claims.
func ParseToken(raw, secret string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(errInvalidSession, err.Error())
	}
	if !token.Valid || claims.Id == "" {
		return nil, errInvalidSession
	}
	if _, ok := core.ParseRole(string(claims.Role)); !ok {
		return nil, errInvalidSession
	}
	return claims, nil
}

func (s *Server) setSessionCookie(ctx echo.Context, token string, expires time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.deps.Conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.Conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMiddleware loads the session of the request cookie, if it is valid and not revoked.
// Requests without a session go on anonymously; roleMiddleware guards the dashboards.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			return next(ctx)
		}
		claims, err := ParseToken(cookie.Value, s.deps.Conf.SecretKey)
		if err != nil {
			s.clearSessionCookie(ctx)
			return next(ctx)
		}

		req := ctx.Request()
		revoked, err := s.deps.Revocations.IsRevoked(req.Context(), claims.Id)
		if err != nil {
			return errors.Wrap(err, "checking session revocation")
		}
		if revoked {
			s.clearSessionCookie(ctx)
			return next(ctx)
		}

		sess := core.Session{ID: claims.Id, Role: claims.Role}
		ctx.Set(contextSessionKey, claims)
		ctx.SetRequest(req.WithContext(core.WithSession(req.Context(), sess)))
		return next(ctx)
	}
}

func getContextClaims(ctx echo.Context) (*Claims, bool) {
	claims, ok := ctx.Get(contextSessionKey).(*Claims)
	return claims, ok
}

func getContextSession(ctx echo.Context) (core.Session, bool) {
	return core.SessionFromContext(ctx.Request().Context())
}

// roleMiddleware lets through the sessions signed into the portal named by the :role path param.
func (s *Server) roleMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		role, ok := core.ParseRole(ctx.Param("role"))
		if !ok {
			return errHttpNotFound
		}
		current, signed := core.ContextSessions{}.CurrentRole(ctx.Request().Context())
		if !signed {
			return ctx.Redirect(http.StatusSeeOther, "/signin")
		}
		if current != role {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// Handlers

func (s *Server) home(ctx echo.Context) error {
	if sess, ok := getContextSession(ctx); ok {
		return ctx.Redirect(http.StatusSeeOther, "/"+sess.Role.String())
	}
	return ctx.Redirect(http.StatusSeeOther, "/signin")
}

type signInData struct {
	Roles []core.Role
	Error string
}

func (s *Server) signInPage(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "signin", "Sign in", signInData{Roles: core.AllRoles})
}

// signIn starts a session in the picked portal. There is no authentication: the
// school API owns the accounts.
func (s *Server) signIn(ctx echo.Context) error {
	role, ok := core.ParseRole(ctx.FormValue("role"))
	if !ok {
		return s.render(ctx, http.StatusBadRequest, "signin", "Sign in", signInData{
			Roles: core.AllRoles,
			Error: "Please pick a portal.",
		})
	}

	claims := s.newClaims(role)
	token, err := GenerateToken(claims, s.deps.Conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating session token")
	}
	s.setSessionCookie(ctx, token, time.Unix(claims.ExpiresAt, 0))
	return ctx.Redirect(http.StatusSeeOther, "/"+role.String())
}

// signOut revokes the session until its cookie would have expired and drops its workspace.
func (s *Server) signOut(ctx echo.Context) error {
	if claims, ok := getContextClaims(ctx); ok {
		ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
		if ttl > 0 {
			if err := s.deps.Revocations.Revoke(ctx.Request().Context(), claims.Id, ttl); err != nil {
				return errors.Wrap(err, "revoking session")
			}
		}
		s.deps.Workspaces.Drop(claims.Id)
	}
	s.clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/signin")
}
