package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educonnectt/web/core/session"
)

const (
	// visitorCookie carries the anonymous browsing-session ID that scopes
	// all stored state (credentials, registration drafts).
	visitorCookie   = "ec_visitor"
	visitorCtxKey   = "visitor"
	visitorTokenKey = "visitorToken"
)

var errVisitorNotInCtx = errors.New("visitor ID not found in echo.Context")

// visitorMiddleware assigns every browser a stable anonymous ID on first
// contact and exposes it to handlers.
func (s *Server) visitorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(visitorCookie)
			if err != nil || cookie.Value == "" {
				cookie = &http.Cookie{
					Name:     visitorCookie,
					Value:    uuid.New().String(),
					Path:     "/",
					Expires:  time.Now().AddDate(1, 0, 0),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				ctx.SetCookie(cookie)
			}
			ctx.Set(visitorCtxKey, cookie.Value)
			return next(ctx)
		}
	}
}

func getVisitorID(ctx echo.Context) (string, error) {
	if id, ok := ctx.Get(visitorCtxKey).(string); ok && id != "" {
		return id, nil
	}
	return "", errVisitorNotInCtx
}

// guardMiddleware gates a route group behind a namespace's credential check.
// Denial always lands on the role's login entry point; the handler is never
// reached without a verified credential in hand.
func guardMiddleware(ns session.Namespace, deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			visitorID, err := getVisitorID(ctx)
			if err != nil {
				return err
			}

			guard := session.NewGuard(ns, visitorID, session.GuardDeps{
				Store:    deps.Store,
				Verifier: deps.Backend,
				Logger:   deps.Logger,
				Timeout:  deps.Conf.VerifyTimeout,
			})
			if res := guard.Check(ctx.Request().Context()); res.State != session.StateAuthorized {
				return ctx.Redirect(http.StatusFound, res.Redirect)
			}

			// the guard just validated it; hand it to the handler
			token, err := deps.Store.Get(ctx.Request().Context(), visitorID, ns.TokenKey())
			if err != nil {
				return errors.Wrap(err, "reading verified credential")
			}
			ctx.Set(visitorTokenKey, token)
			return next(ctx)
		}
	}
}

func getContextToken(ctx echo.Context) string {
	token, _ := ctx.Get(visitorTokenKey).(string)
	return token
}
