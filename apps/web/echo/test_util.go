package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/session"
	"github.com/educonnectt/web/core/signup"
	backendsvc "github.com/educonnectt/web/services/backend"
	emailsvc "github.com/educonnectt/web/services/email"
	inmemstore "github.com/educonnectt/web/storage/keyval/inmem"
)

const testVisitorID = "visitor-1"

type fakeBackend struct {
	verifyErr  error
	verifies   int
	lastNS     session.Namespace
	creds      signup.Credentials
	signupErr  error
	lastSignup signup.Request
	adminToken string
	qaoToken   string
	loginErr   error
	data       map[string]json.RawMessage
	fetchErr   error
	fetched    []string
	approved   []string
	reviewed   []string
	broadcasts []json.RawMessage
	assigned   [][2]string
	teacherMsg [3]string
	replies    [3]string
	accounts   []backendsvc.NewAccount
	classes    []json.RawMessage
}

func (b *fakeBackend) Verify(_ context.Context, ns session.Namespace, _ string) error {
	b.verifies++
	b.lastNS = ns
	return b.verifyErr
}

func (b *fakeBackend) Signup(_ context.Context, req signup.Request) (signup.Credentials, error) {
	b.lastSignup = req
	if b.signupErr != nil {
		return signup.Credentials{}, b.signupErr
	}
	return b.creds, nil
}

func (b *fakeBackend) Login(context.Context, string, string) (signup.Credentials, error) {
	if b.loginErr != nil {
		return signup.Credentials{}, b.loginErr
	}
	return b.creds, nil
}

func (b *fakeBackend) AdminLogin(context.Context, string, string) (string, error) {
	if b.loginErr != nil {
		return "", b.loginErr
	}
	return b.adminToken, nil
}

func (b *fakeBackend) QAOAccess(context.Context, string) (string, error) {
	if b.loginErr != nil {
		return "", b.loginErr
	}
	return b.qaoToken, nil
}

func (b *fakeBackend) Fetch(_ context.Context, _, path string) (json.RawMessage, error) {
	b.fetched = append(b.fetched, path)
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	if data, ok := b.data[path]; ok {
		return data, nil
	}
	return json.RawMessage(`{}`), nil
}

func (b *fakeBackend) ApprovePayment(_ context.Context, _, paymentID string) error {
	b.approved = append(b.approved, paymentID)
	return nil
}

func (b *fakeBackend) ReviewResource(_ context.Context, _, resourceID string, _ bool) error {
	b.reviewed = append(b.reviewed, resourceID)
	return nil
}

func (b *fakeBackend) SendBroadcast(_ context.Context, _ string, broadcast json.RawMessage) error {
	b.broadcasts = append(b.broadcasts, broadcast)
	return nil
}

func (b *fakeBackend) AssignSubject(_ context.Context, _, teacherID, subjectID string) error {
	b.assigned = append(b.assigned, [2]string{teacherID, subjectID})
	return nil
}

func (b *fakeBackend) SendTeacherBroadcast(_ context.Context, _, teacherID, subjectID, message string) error {
	b.teacherMsg = [3]string{teacherID, subjectID, message}
	return nil
}

func (b *fakeBackend) ReplyMessage(_ context.Context, _, messageID, teacherID, reply string) error {
	b.replies = [3]string{messageID, teacherID, reply}
	return nil
}

func (b *fakeBackend) CreateAccount(_ context.Context, _ string, account backendsvc.NewAccount) error {
	b.accounts = append(b.accounts, account)
	return nil
}

func (b *fakeBackend) CreateClass(_ context.Context, _ string, class json.RawMessage) error {
	b.classes = append(b.classes, class)
	return nil
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func testConfig() *core.Config {
	conf := &core.Config{
		TestMode:       true,
		Env:            "TEST",
		AppName:        "EduConnectt",
		BackendBaseURL: "http://backend.test",
		VerifyTimeout:  time.Second,
	}
	conf.ContactEmail.Name = "EduConnectt Support"
	conf.ContactEmail.Address = "support@educonnectt.com"
	conf.DefaultFromEmail.Address = "noreply@educonnectt.com"
	return conf
}

func initApp(t *testing.T) (*Server, core.Store, *fakeBackend) {
	t.Helper()
	conf := testConfig()
	store := inmemstore.New()
	backend := &fakeBackend{}
	server := NewServer(ServerDeps{
		Conf:    conf,
		Logger:  testLogger{t: t},
		Store:   store,
		Backend: backend,
		Email:   emailsvc.NewConsoleServiceMock(conf),
		Catalog: registration.DefaultCatalog(),
	})
	return server, store, backend
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: visitorCookie, Value: testVisitorID})
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}
