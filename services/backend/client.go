package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/session"
	"github.com/educonnectt/web/core/signup"
)

// Error is a non-2xx reply from the backend, carrying whatever message the
// backend put in its body.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (HTTP %d)", e.Message, e.StatusCode)
}

// Client talks to the EduConnectt backend REST API. It is the production
// implementation of both session.Verifier and signup.Registrar.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ session.Verifier = (*Client)(nil)
	_ signup.Registrar = (*Client)(nil)
)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.BackendBaseURL, "/"),
		http:    new(http.Client),
	}
}

// each namespace verifies against its own endpoint; a namespace missing here
// cannot be verified remotely at all.
var verifyPaths = map[string]string{
	session.GeneralNamespace.Name(): "/api/auth/verify",
	session.AdminNamespace.Name():   "/admin/verify",
	session.QAONamespace.Name():     "/api/qao/verify",
}

// Verify asks the backend whether token is still good for the given
// namespace. Any error, transport included, means the credential must not be
// trusted.
func (c *Client) Verify(ctx context.Context, ns session.Namespace, token string) error {
	path, ok := verifyPaths[ns.Name()]
	if !ok {
		return errors.Errorf("no verification endpoint for %q credentials", ns.Name())
	}
	return c.do(ctx, http.MethodGet, path, token, nil, nil)
}

// Signup creates the account and returns the issued credential.
func (c *Client) Signup(ctx context.Context, req signup.Request) (signup.Credentials, error) {
	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &payload); err != nil {
		return signup.Credentials{}, err
	}
	return signup.Credentials{Token: payload.Token, UserID: payload.User.ID}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges general-user credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (signup.Credentials, error) {
	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return signup.Credentials{}, err
	}
	return signup.Credentials{Token: payload.Token, UserID: payload.User.ID}, nil
}

// AdminLogin authenticates a platform administrator.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (string, error) {
	var payload struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/admin/login", "", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return "", err
	}
	return payload.Token, nil
}

// QAOAccess exchanges a quality-assurance access code for a token. The
// backend replies 200 even on a bad code, flagging it in the body instead.
func (c *Client) QAOAccess(ctx context.Context, code string) (string, error) {
	var payload struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	body := struct {
		QAOCode string `json:"qaoCode"`
	}{QAOCode: code}
	if err := c.do(ctx, http.MethodPost, "/api/qao/access", "", body, &payload); err != nil {
		return "", err
	}
	if !payload.Success {
		msg := payload.Message
		if msg == "" {
			msg = "access denied"
		}
		return "", &Error{StatusCode: http.StatusForbidden, Message: msg}
	}
	return payload.Token, nil
}

// Fetch proxies an authenticated GET and hands the body through untouched;
// the dashboards render backend data without reshaping it.
func (c *Client) Fetch(ctx context.Context, token, path string) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ApprovePayment marks a pending payment as settled.
func (c *Client) ApprovePayment(ctx context.Context, token, paymentID string) error {
	return c.do(ctx, http.MethodPut, "/api/payments/approve/"+paymentID, token, struct{}{}, nil)
}

// ReviewResource records a QAO approval or rejection of a teaching resource.
func (c *Client) ReviewResource(ctx context.Context, token, resourceID string, approved bool) error {
	body := struct {
		Approved bool `json:"approved"`
	}{Approved: approved}
	return c.do(ctx, http.MethodPut, "/api/qao/resources/"+resourceID, token, body, nil)
}

// SendBroadcast publishes an announcement on behalf of an administrator.
func (c *Client) SendBroadcast(ctx context.Context, token string, broadcast json.RawMessage) error {
	return c.do(ctx, http.MethodPost, "/admin/broadcasts", token, broadcast, nil)
}

// SendTeacherBroadcast announces to everyone enrolled in one of the
// teacher's subjects.
func (c *Client) SendTeacherBroadcast(ctx context.Context, token, teacherID, subjectID, message string) error {
	body := struct {
		TeacherID string `json:"teacherId"`
		SubjectID string `json:"subjectId"`
		Message   string `json:"message"`
	}{TeacherID: teacherID, SubjectID: subjectID, Message: message}
	return c.do(ctx, http.MethodPost, "/api/teacher/broadcast", token, body, nil)
}

// ReplyMessage answers a student message from the teacher's inbox.
func (c *Client) ReplyMessage(ctx context.Context, token, messageID, teacherID, reply string) error {
	body := struct {
		Reply     string `json:"reply"`
		TeacherID string `json:"teacherId"`
	}{Reply: reply, TeacherID: teacherID}
	return c.do(ctx, http.MethodPost, "/api/messages/reply/"+messageID, token, body, nil)
}

// NewAccount is an administrator-created user of any role.
type NewAccount struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount provisions a user on behalf of an administrator.
func (c *Client) CreateAccount(ctx context.Context, token string, account NewAccount) error {
	return c.do(ctx, http.MethodPost, "/admin/users", token, account, nil)
}

// CreateClass schedules a class as-is; the backend owns its shape.
func (c *Client) CreateClass(ctx context.Context, token string, class json.RawMessage) error {
	return c.do(ctx, http.MethodPost, "/api/classes/create", token, class, nil)
}

// AssignSubject pairs a teacher with a subject.
func (c *Client) AssignSubject(ctx context.Context, token, teacherID, subjectID string) error {
	body := struct {
		TeacherID string `json:"teacherId"`
		SubjectID string `json:"subjectId"`
	}{TeacherID: teacherID, SubjectID: subjectID}
	return c.do(ctx, http.MethodPost, "/admin/assign-subject", token, body, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling backend")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = http.StatusText(res.StatusCode)
		}
		return &Error{StatusCode: res.StatusCode, Message: payload.Message}
	}

	if out != nil {
		return errors.Wrap(json.NewDecoder(res.Body).Decode(out), "decoding backend response")
	}
	_, _ = io.Copy(ioutil.Discard, res.Body)
	return nil
}
