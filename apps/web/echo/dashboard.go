package echoapi

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/session"
	backendsvc "github.com/educonnectt/web/services/backend"
)

type dashboardAPI struct {
	deps ServerDeps
}

func registerDashboardAPI(app *echo.Echo, deps ServerDeps) {
	api := dashboardAPI{deps: deps}

	general := guardMiddleware(session.GeneralNamespace, deps)
	app.GET("/student/dashboard", api.studentDashboard, general)
	app.GET("/teacher/dashboard", api.teacherDashboard, general)
	app.POST("/teacher/broadcast", api.teacherBroadcast, general)
	app.POST("/teacher/messages/:id/reply", api.replyMessage, general)

	qg := app.Group("/qao", guardMiddleware(session.QAONamespace, deps))
	qg.GET("/dashboard", api.qaoDashboard)
	qg.PUT("/resources/:id", api.reviewResource)

	ag := app.Group("/admin", guardMiddleware(session.AdminNamespace, deps))
	ag.GET("/dashboard", api.adminDashboard)
	ag.PUT("/payments/:id/approve", api.approvePayment)
	ag.POST("/broadcasts", api.sendBroadcast)
	ag.POST("/assign-subject", api.assignSubject)
	ag.POST("/users", api.createAccount)
	ag.GET("/classes", api.classes)
	ag.POST("/classes", api.createClass)
}

// accountID is the backend user ID stored next to the credential at sign-in.
func (api *dashboardAPI) accountID(ctx echo.Context) (string, error) {
	visitorID, err := getVisitorID(ctx)
	if err != nil {
		return "", err
	}
	userID, err := api.deps.Store.Get(ctx.Request().Context(), visitorID, session.UserIDKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return "", echo.NewHTTPError(http.StatusNotFound, "account id missing, sign in again")
		}
		return "", err
	}
	return userID, nil
}

// studentDashboard assembles the student's record, enrolled subjects,
// broadcasts, payment history and assignments in one shot.
func (api *dashboardAPI) studentDashboard(ctx echo.Context) error {
	userID, err := api.accountID(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	token := getContextToken(ctx)

	res := echo.Map{}
	for name, path := range map[string]string{
		"me":          "/api/students/me",
		"subjects":    "/api/students/" + userID + "/subjects",
		"broadcasts":  "/api/students/broadcasts/" + userID,
		"payments":    "/api/students/payments/" + userID,
		"assignments": "/api/students/assignments/" + userID,
	} {
		data, err := api.deps.Backend.Fetch(rctx, token, path)
		if err != nil {
			return errors.Wrap(err, "fetching "+name)
		}
		res[name] = data
	}
	return ctx.JSON(http.StatusOK, res)
}

// teacherDashboard assembles the teacher's subjects, past broadcasts, inbox
// and notifications, looked up by the account ID stored next to the
// credential.
func (api *dashboardAPI) teacherDashboard(ctx echo.Context) error {
	userID, err := api.accountID(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()
	token := getContextToken(ctx)

	res := echo.Map{}
	for name, path := range map[string]string{
		"subjects":      "/api/teacher/" + userID + "/subjects",
		"broadcasts":    "/api/teacher/" + userID + "/broadcasts",
		"messages":      "/api/messages/teacher/" + userID,
		"notifications": "/api/teacher/notifications",
	} {
		data, err := api.deps.Backend.Fetch(rctx, token, path)
		if err != nil {
			return errors.Wrap(err, "fetching "+name)
		}
		res[name] = data
	}
	return ctx.JSON(http.StatusOK, res)
}

type teacherBroadcastRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

func (tr *teacherBroadcastRequest) Validate() error {
	tr.SubjectID = core.CleanString(tr.SubjectID)
	tr.Message = core.CleanString(tr.Message)
	return core.Validate.Struct(tr)
}

// teacherBroadcast announces to everyone enrolled in one of the teacher's
// subjects.
func (api *dashboardAPI) teacherBroadcast(ctx echo.Context) error {
	var data teacherBroadcastRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to teacherBroadcastRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	userID, err := api.accountID(ctx)
	if err != nil {
		return err
	}

	err = api.deps.Backend.SendTeacherBroadcast(ctx.Request().Context(), getContextToken(ctx), userID, data.SubjectID, data.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Broadcast sent."})
}

type replyMessageRequest struct {
	Reply string `json:"reply" validate:"required"`
}

func (rr *replyMessageRequest) Validate() error {
	rr.Reply = core.CleanString(rr.Reply)
	return core.Validate.Struct(rr)
}

func (api *dashboardAPI) replyMessage(ctx echo.Context) error {
	var data replyMessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to replyMessageRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	userID, err := api.accountID(ctx)
	if err != nil {
		return err
	}

	err = api.deps.Backend.ReplyMessage(ctx.Request().Context(), getContextToken(ctx), ctx.Param("id"), userID, data.Reply)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Reply sent."})
}

// qaoDashboard assembles the quality-assurance overview from its backend
// feeds.
func (api *dashboardAPI) qaoDashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	token := getContextToken(ctx)

	res := echo.Map{}
	for name, path := range map[string]string{
		"teachers":      "/api/qao/teachers",
		"resources":     "/api/qao/resources",
		"kpis":          "/api/qao/kpis",
		"inbox":         "/api/qao/inbox",
		"notifications": "/api/qao/notifications",
	} {
		data, err := api.deps.Backend.Fetch(rctx, token, path)
		if err != nil {
			return errors.Wrap(err, "fetching "+name)
		}
		res[name] = data
	}
	return ctx.JSON(http.StatusOK, res)
}

type reviewResourceRequest struct {
	Approved bool `json:"approved"`
}

func (api *dashboardAPI) reviewResource(ctx echo.Context) error {
	var data reviewResourceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to reviewResourceRequest")
	}
	err := api.deps.Backend.ReviewResource(ctx.Request().Context(), getContextToken(ctx), ctx.Param("id"), data.Approved)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Resource reviewed."})
}

// adminDashboard assembles the admin overview, payment queue and subject
// list in one shot.
func (api *dashboardAPI) adminDashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	token := getContextToken(ctx)

	res := echo.Map{}
	for name, path := range map[string]string{
		"overview": "/admin/dashboard",
		"payments": "/admin/payments",
		"subjects": "/admin/subjects",
	} {
		data, err := api.deps.Backend.Fetch(rctx, token, path)
		if err != nil {
			return errors.Wrap(err, "fetching "+name)
		}
		res[name] = data
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *dashboardAPI) approvePayment(ctx echo.Context) error {
	err := api.deps.Backend.ApprovePayment(ctx.Request().Context(), getContextToken(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Payment approved."})
}

// sendBroadcast relays an announcement as-is; the backend owns its shape.
func (api *dashboardAPI) sendBroadcast(ctx echo.Context) error {
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading broadcast body")
	}
	if !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed broadcast")
	}

	if err := api.deps.Backend.SendBroadcast(ctx.Request().Context(), getContextToken(ctx), body); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Broadcast sent."})
}

type assignSubjectRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
}

func (ar *assignSubjectRequest) Validate() error {
	ar.TeacherID = core.CleanString(ar.TeacherID)
	ar.SubjectID = core.CleanString(ar.SubjectID)
	return core.Validate.Struct(ar)
}

func (api *dashboardAPI) assignSubject(ctx echo.Context) error {
	var data assignSubjectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to assignSubjectRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	err := api.deps.Backend.AssignSubject(ctx.Request().Context(), getContextToken(ctx), data.TeacherID, data.SubjectID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Subject assigned."})
}

type createAccountRequest struct {
	Role     string `json:"role" validate:"required,oneof=student teacher qao admin"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (cr *createAccountRequest) Validate() error {
	cr.Role = core.CleanString(cr.Role, true /* lower */)
	cr.Name = core.CleanString(cr.Name)
	cr.Email = core.CleanString(cr.Email, true /* lower */)
	return core.Validate.Struct(cr)
}

// createAccount provisions a user of any role on behalf of an administrator.
func (api *dashboardAPI) createAccount(ctx echo.Context) error {
	var data createAccountRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to createAccountRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	err := api.deps.Backend.CreateAccount(ctx.Request().Context(), getContextToken(ctx), backendsvc.NewAccount{
		Role:     data.Role,
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Account created."})
}

// classes assembles the scheduling page: every teacher to pick from plus the
// classes already on the books.
func (api *dashboardAPI) classes(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	token := getContextToken(ctx)

	res := echo.Map{}
	for name, path := range map[string]string{
		"teachers": "/api/teachers",
		"classes":  "/api/classes",
	} {
		data, err := api.deps.Backend.Fetch(rctx, token, path)
		if err != nil {
			return errors.Wrap(err, "fetching "+name)
		}
		res[name] = data
	}
	return ctx.JSON(http.StatusOK, res)
}

// createClass relays the schedule as-is; the backend owns its shape.
func (api *dashboardAPI) createClass(ctx echo.Context) error {
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading class body")
	}
	if !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed class")
	}

	if err := api.deps.Backend.CreateClass(ctx.Request().Context(), getContextToken(ctx), body); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Class created."})
}
