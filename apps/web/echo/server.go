package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
	"github.com/educonnectt/web/core/signup"
	backendsvc "github.com/educonnectt/web/services/backend"
)

type (
	// Backend is everything the handlers need from the EduConnectt REST API.
	Backend interface {
		session.Verifier
		signup.Registrar
		Login(ctx context.Context, email, password string) (signup.Credentials, error)
		AdminLogin(ctx context.Context, email, password string) (string, error)
		QAOAccess(ctx context.Context, code string) (string, error)
		Fetch(ctx context.Context, token, path string) (json.RawMessage, error)
		ApprovePayment(ctx context.Context, token, paymentID string) error
		ReviewResource(ctx context.Context, token, resourceID string, approved bool) error
		SendBroadcast(ctx context.Context, token string, broadcast json.RawMessage) error
		AssignSubject(ctx context.Context, token, teacherID, subjectID string) error
		SendTeacherBroadcast(ctx context.Context, token, teacherID, subjectID, message string) error
		ReplyMessage(ctx context.Context, token, messageID, teacherID, reply string) error
		CreateAccount(ctx context.Context, token string, account backendsvc.NewAccount) error
		CreateClass(ctx context.Context, token string, class json.RawMessage) error
	}

	ServerDeps struct {
		Conf    *core.Config
		Logger  core.Logger
		Store   core.Store
		Backend Backend
		Email   core.EmailService
		Catalog registration.Catalog
	}

	Server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Backend = (*backendsvc.Client)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, func() {
		s.shutdownChan <- syscall.SIGTERM
	})
	s.app.Debug = conf.Debug

	s.app.Use(s.visitorMiddleware())

	s.app.GET("/", s.home)
	s.app.POST("/contact", s.contact)

	registerRegistrationAPI(s.app, s.deps)
	registerAuthAPI(s.app, s.deps)
	registerDashboardAPI(s.app, s.deps)
}

func (s *Server) Start() {
	signal.Notify(s.shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s.errChan <- s.app.Start(s.deps.Conf.Server.Addr)
	}()
}

func (s *Server) Errors() <-chan error { return s.errChan }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdownChan }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"app":   s.deps.Conf.AppName,
		"env":   s.deps.Conf.Env,
		"build": s.deps.Conf.Build,
	})
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func (cr *contactRequest) Validate() error {
	cr.Name = core.CleanString(cr.Name)
	cr.Email = core.CleanString(cr.Email, true /* lower */)
	cr.Message = core.CleanString(cr.Message)
	return core.Validate.Struct(cr)
}

// contact forwards a landing-page enquiry to the support inbox.
func (s *Server) contact(ctx echo.Context) error {
	var data contactRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s.deps.Email.SendMessages(&core.EmailMessage{
		To:      []mail.Address{s.deps.Conf.ContactEmail},
		ReplyTo: &mail.Address{Name: data.Name, Address: data.Email},
		Subject: "Contact request from " + data.Name,
		Body:    data.Message,
	})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Thanks for reaching out! We will get back to you shortly."})
}

type SuccessResponse struct {
	Success string `json:"success"`
}
