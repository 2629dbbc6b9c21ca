package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
	"github.com/educonnectt/web/core/signup"
)

type authAPI struct {
	deps ServerDeps
	svc  *signup.Service
}

func registerAuthAPI(app *echo.Echo, deps ServerDeps) {
	api := authAPI{
		deps: deps,
		svc:  signup.NewService(deps.Store, deps.Backend, deps.Logger),
	}

	app.GET("/auth-form/:role", api.signupForm)
	app.POST("/auth-form/:role", api.signupSubmit)

	app.POST("/login", api.login)
	app.POST("/admin-login", api.adminLogin)
	app.POST("/qao/access", api.qaoAccess)

	app.POST("/logout", api.logout(session.GeneralNamespace))
	app.POST("/admin/logout", api.logout(session.AdminNamespace))
	app.POST("/qao/logout", api.logout(session.QAONamespace))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *loginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

type qaoAccessRequest struct {
	Code string `json:"qaoCode" validate:"required"`
}

func (qr *qaoAccessRequest) Validate() error {
	qr.Code = core.CleanString(qr.Code)
	return core.Validate.Struct(qr)
}

// signupForm renders the signup screen's data: the draft carried over from
// course selection. A visitor with no draft is sent back to pick a course.
func (api *authAPI) signupForm(ctx echo.Context) error {
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return err
	}

	draft, err := api.svc.RecoverDraft(ctx.Request().Context(), visitorID)
	if err != nil {
		if errors.Cause(err) == registration.ErrNoDraft {
			return ctx.Redirect(http.StatusFound, "/register-course/"+ctx.Param("role"))
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"role":  session.DisplayLabel(ctx.Param("role")),
		"draft": draft,
	})
}

// signupSubmit creates the account from the entered identity plus the
// registration draft, then signs the new user straight in.
func (api *authAPI) signupSubmit(ctx echo.Context) error {
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return err
	}

	var data signup.NewSignup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSignup")
	}

	creds, err := api.svc.Complete(ctx.Request().Context(), visitorID, ctx.Param("role"), data, nil)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, creds)
}

func (api *authAPI) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return err
	}

	creds, err := api.deps.Backend.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	ns := session.GeneralNamespace
	if err := api.deps.Store.Set(rctx, visitorID, ns.TokenKey(), creds.Token); err != nil {
		return errors.Wrap(err, "storing credential")
	}
	if creds.UserID != "" {
		if err := api.deps.Store.Set(rctx, visitorID, session.UserIDKey, creds.UserID); err != nil {
			return errors.Wrap(err, "storing user id")
		}
	}
	return ctx.JSON(http.StatusOK, creds)
}

func (api *authAPI) adminLogin(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return err
	}

	token, err := api.deps.Backend.AdminLogin(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	ns := session.AdminNamespace
	if err := api.deps.Store.Set(ctx.Request().Context(), visitorID, ns.TokenKey(), token); err != nil {
		return errors.Wrap(err, "storing admin credential")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"redirect": "/admin/dashboard"})
}

func (api *authAPI) qaoAccess(ctx echo.Context) error {
	var data qaoAccessRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to qaoAccessRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return err
	}

	token, err := api.deps.Backend.QAOAccess(ctx.Request().Context(), data.Code)
	if err != nil {
		return err
	}

	ns := session.QAONamespace
	if err := api.deps.Store.Set(ctx.Request().Context(), visitorID, ns.TokenKey(), token); err != nil {
		return errors.Wrap(err, "storing qao credential")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"redirect": "/qao/dashboard"})
}

// logout drops the namespace's whole credential slot; other namespaces held
// by the same visitor are untouched.
func (api *authAPI) logout(ns session.Namespace) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		visitorID, err := getVisitorID(ctx)
		if err != nil {
			return err
		}
		if err := api.deps.Store.Delete(ctx.Request().Context(), visitorID, ns.Keys()...); err != nil {
			return errors.Wrap(err, "clearing "+ns.Name()+" namespace")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"redirect": ns.LoginPath()})
	}
}
