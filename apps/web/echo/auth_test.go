package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educonnectt/web/core"
	"github.com/educonnectt/web/core/registration"
	"github.com/educonnectt/web/core/signup"
)

func saveStudentDraft(t *testing.T, store core.Store) registration.Draft {
	t.Helper()
	catalog := registration.DefaultCatalog()
	ges, _ := catalog.Get("GES")
	pkg, _ := ges.Package("EC")
	draft := registration.NewStudentDraft(ges, pkg)
	if err := draft.Save(context.Background(), store, testVisitorID); err != nil {
		t.Fatalf("saveStudentDraft() failed: %v", err)
	}
	return draft
}

func Test_authAPI_signupForm(t *testing.T) {
	t.Run("renders recovered draft", func(t *testing.T) {
		server, store, _ := initApp(t)
		saveStudentDraft(t, store)

		req, rec := newRequest(http.MethodGet, "/auth-form/student")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			Role  string             `json:"role"`
			Draft registration.Draft `json:"draft"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "Student", res.Role)
		assert.Equal(t, "GES-EC", res.Draft.PackageKey)
	})

	t.Run("no draft sends visitor back to course selection", func(t *testing.T) {
		server, _, _ := initApp(t)

		req, rec := newRequest(http.MethodGet, "/auth-form/student")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/register-course/student", rec.Header().Get("Location"))
	})
}

func Test_authAPI_signupSubmit(t *testing.T) {
	server, store, backend := initApp(t)
	backend.creds = signup.Credentials{Token: "tok-123", UserID: "u-9"}
	saveStudentDraft(t, store)

	body := marchallObj(t, signup.NewSignup{
		Name:            "Ama Mensah",
		Email:           "ama@test.gh",
		Password:        "S3cret!pass",
		PasswordConfirm: "S3cret!pass",
	})
	req, rec := newRequest(http.MethodPost, "/auth-form/student", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "student", backend.lastSignup.Role)
	assert.Equal(t, "GES-EC", backend.lastSignup.Package)

	// new user is signed straight in
	ctx := context.Background()
	token, err := store.Get(ctx, testVisitorID, "token")
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	userID, err := store.Get(ctx, testVisitorID, "userId")
	assert.NoError(t, err)
	assert.Equal(t, "u-9", userID)

	// consumed draft is gone
	_, err = registration.LoadDraft(ctx, store, testVisitorID)
	assert.Equal(t, registration.ErrNoDraft, err)
}

func Test_authAPI_signupSubmit_invalidPayload(t *testing.T) {
	server, store, backend := initApp(t)
	saveStudentDraft(t, store)

	body := marchallObj(t, signup.NewSignup{
		Name:            "Ama Mensah",
		Email:           "not-an-email",
		Password:        "S3cret!pass",
		PasswordConfirm: "S3cret!pass",
	})
	req, rec := newRequest(http.MethodPost, "/auth-form/student", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, backend.lastSignup.Email)
}

func Test_authAPI_login(t *testing.T) {
	server, store, backend := initApp(t)
	backend.creds = signup.Credentials{Token: "tok-123", UserID: "u-9"}

	body := marchallObj(t, loginRequest{Email: "ama@test.gh", Password: "S3cret!pass"})
	req, rec := newRequest(http.MethodPost, "/login", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	ctx := context.Background()
	token, err := store.Get(ctx, testVisitorID, "token")
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	userID, err := store.Get(ctx, testVisitorID, "userId")
	assert.NoError(t, err)
	assert.Equal(t, "u-9", userID)
}

func Test_authAPI_adminLogin(t *testing.T) {
	server, store, backend := initApp(t)
	backend.adminToken = "adm-tok"

	body := marchallObj(t, loginRequest{Email: "root@test.gh", Password: "S3cret!pass"})
	req, rec := newRequest(http.MethodPost, "/admin-login", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	token, err := store.Get(context.Background(), testVisitorID, "adminToken")
	assert.NoError(t, err)
	assert.Equal(t, "adm-tok", token)

	// the general-user slot is untouched
	_, err = store.Get(context.Background(), testVisitorID, "token")
	assert.Equal(t, core.ErrKeyNotFound, err)
}

func Test_authAPI_qaoAccess(t *testing.T) {
	server, store, backend := initApp(t)
	backend.qaoToken = "qao-tok"

	body := marchallObj(t, qaoAccessRequest{Code: "code-7"})
	req, rec := newRequest(http.MethodPost, "/qao/access", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	token, err := store.Get(context.Background(), testVisitorID, "qaoToken")
	assert.NoError(t, err)
	assert.Equal(t, "qao-tok", token)
}

func Test_authAPI_logout(t *testing.T) {
	server, store, _ := initApp(t)
	ctx := context.Background()
	assert.NoError(t, store.Set(ctx, testVisitorID, "token", "tok-123"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "userId", "u-9"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "adminToken", "adm-tok"))

	req, rec := newRequest(http.MethodPost, "/logout")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := store.Get(ctx, testVisitorID, "token")
	assert.Equal(t, core.ErrKeyNotFound, err)
	_, err = store.Get(ctx, testVisitorID, "userId")
	assert.Equal(t, core.ErrKeyNotFound, err)

	// the admin slot survives a general logout
	token, err := store.Get(ctx, testVisitorID, "adminToken")
	assert.NoError(t, err)
	assert.Equal(t, "adm-tok", token)
}
