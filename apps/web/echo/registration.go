package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
)

type registrationAPI struct {
	deps ServerDeps
}

func registerRegistrationAPI(app *echo.Echo, deps ServerDeps) {
	api := registrationAPI{deps: deps}

	rg := app.Group("/register-course/:role")
	rg.GET("", api.start)
	rg.POST("/curriculum", api.selectCurriculum)
	rg.POST("/package", api.selectPackage)
}

type (
	curriculumRequest struct {
		Curriculum string `json:"curriculum" validate:"required"`
	}

	packageRequest struct {
		Curriculum string `json:"curriculum" validate:"required"`
		Package    string `json:"package" validate:"required"`
	}

	flowResponse struct {
		State    registration.FlowState    `json:"state"`
		Role     string                    `json:"role"`
		Packages []registration.Package    `json:"packages,omitempty"`
		Draft    *registration.Draft       `json:"draft,omitempty"`
		NextPath string                    `json:"nextPath,omitempty"`
		Catalog  []registration.Curriculum `json:"curricula,omitempty"`
	}
)

func (cr *curriculumRequest) Validate() error {
	cr.Curriculum = core.CleanString(cr.Curriculum)
	return core.Validate.Struct(cr)
}

func (pr *packageRequest) Validate() error {
	pr.Curriculum = core.CleanString(pr.Curriculum)
	pr.Package = core.CleanString(pr.Package)
	return core.Validate.Struct(pr)
}

func (api *registrationAPI) newFlow(ctx echo.Context) (*registration.Flow, error) {
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return nil, err
	}
	return registration.NewFlow(api.deps.Catalog, api.deps.Store, visitorID, ctx.Param("role")), nil
}

// start opens the course-selection screen: the curriculum grid, headed by the
// visitor's declared role.
func (api *registrationAPI) start(ctx echo.Context) error {
	flow, err := api.newFlow(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, flowResponse{
		State:   flow.State(),
		Role:    flow.RoleLabel(),
		Catalog: api.deps.Catalog.Curricula,
	})
}

// selectCurriculum advances the flow. Students get the package grid back;
// every other role completes here and is pointed at the signup form.
func (api *registrationAPI) selectCurriculum(ctx echo.Context) error {
	var data curriculumRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to curriculumRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	flow, err := api.newFlow(ctx)
	if err != nil {
		return err
	}
	outcome, err := flow.SelectCurriculum(ctx.Request().Context(), data.Curriculum)
	if err != nil {
		return err
	}

	res := flowResponse{State: flow.State(), Role: flow.RoleLabel()}
	if outcome != nil {
		res.Draft = &outcome.Draft
		res.NextPath = outcome.NextPath
	} else {
		res.Packages = flow.Packages()
	}
	return ctx.JSON(http.StatusOK, res)
}

// selectPackage completes a student registration. The screen walk is
// stateless over HTTP, so the curriculum pick travels with the request and
// the flow is replayed before the package step.
func (api *registrationAPI) selectPackage(ctx echo.Context) error {
	var data packageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to packageRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	flow, err := api.newFlow(ctx)
	if err != nil {
		return err
	}
	// SelectPackage would reject a non-student too, but only after the
	// curriculum replay below has persisted a draft for the wrong role; bail
	// before any state is written.
	if flow.Role() != session.RoleStudent {
		return registration.ErrBadTransition
	}
	if _, err := flow.SelectCurriculum(ctx.Request().Context(), data.Curriculum); err != nil {
		return err
	}
	outcome, err := flow.SelectPackage(ctx.Request().Context(), data.Package)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, flowResponse{
		State:    flow.State(),
		Role:     flow.RoleLabel(),
		Draft:    &outcome.Draft,
		NextPath: outcome.NextPath,
	})
}
