package echoapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educonnectt/web/core"
)

func Test_dashboard_requiresCredential(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantRedirect string
	}{
		{name: "student", path: "/student/dashboard", wantRedirect: "/login"},
		{name: "teacher", path: "/teacher/dashboard", wantRedirect: "/login"},
		{name: "qao", path: "/qao/dashboard", wantRedirect: "/qao/access"},
		{name: "admin", path: "/admin/dashboard", wantRedirect: "/admin-login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, backend := initApp(t)

			req, rec := newRequest(http.MethodGet, tt.path)
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantRedirect, rec.Header().Get("Location"))
			assert.Equal(t, 0, backend.verifies)
		})
	}
}

func Test_dashboard_rejectedCredentialClearsNamespace(t *testing.T) {
	server, store, backend := initApp(t)
	backend.verifyErr = errors.New("token revoked")
	ctx := context.Background()
	assert.NoError(t, store.Set(ctx, testVisitorID, "token", "stale-tok"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "userId", "u-9"))

	req, rec := newRequest(http.MethodGet, "/student/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the whole slot is wiped, credential and account id both
	_, err := store.Get(ctx, testVisitorID, "token")
	assert.Equal(t, core.ErrKeyNotFound, err)
	_, err = store.Get(ctx, testVisitorID, "userId")
	assert.Equal(t, core.ErrKeyNotFound, err)
}

func Test_dashboard_student(t *testing.T) {
	server, store, backend := initApp(t)
	backend.data = map[string]json.RawMessage{
		"/api/students/me":              json.RawMessage(`{"name":"Ama Mensah","package":"GES-EC"}`),
		"/api/students/payments/u-9":    json.RawMessage(`[{"id":"p1","status":"paid"}]`),
		"/api/students/assignments/u-9": json.RawMessage(`[{"title":"Fractions"}]`),
	}
	ctx := context.Background()
	assert.NoError(t, store.Set(ctx, testVisitorID, "token", "tok-123"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "userId", "u-9"))

	req, rec := newRequest(http.MethodGet, "/student/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, backend.verifies)
	var res map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res, "me")
	assert.Contains(t, res, "subjects")
	assert.Contains(t, res, "broadcasts")
	assert.JSONEq(t, `{"name":"Ama Mensah","package":"GES-EC"}`, string(res["me"]))
	assert.JSONEq(t, `[{"id":"p1","status":"paid"}]`, string(res["payments"]))
	assert.JSONEq(t, `[{"title":"Fractions"}]`, string(res["assignments"]))
	assert.Contains(t, backend.fetched, "/api/students/u-9/subjects")
	assert.Contains(t, backend.fetched, "/api/students/broadcasts/u-9")
}

func Test_dashboard_teacher(t *testing.T) {
	server, store, backend := initApp(t)
	backend.data = map[string]json.RawMessage{
		"/api/teacher/u-9/subjects":   json.RawMessage(`[{"name":"Maths"}]`),
		"/api/messages/teacher/u-9":   json.RawMessage(`[{"from":"Ama","body":"Help with homework?"}]`),
		"/api/teacher/u-9/broadcasts": json.RawMessage(`[{"message":"Class moved"}]`),
	}
	ctx := context.Background()
	assert.NoError(t, store.Set(ctx, testVisitorID, "token", "tok-123"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "userId", "u-9"))

	req, rec := newRequest(http.MethodGet, "/teacher/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res, "notifications")
	assert.JSONEq(t, `[{"name":"Maths"}]`, string(res["subjects"]))
	assert.JSONEq(t, `[{"from":"Ama","body":"Help with homework?"}]`, string(res["messages"]))
	assert.JSONEq(t, `[{"message":"Class moved"}]`, string(res["broadcasts"]))
}

func Test_dashboard_studentMissingAccountID(t *testing.T) {
	server, store, _ := initApp(t)
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "token", "tok-123"))

	req, rec := newRequest(http.MethodGet, "/student/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_dashboard_teacherActions(t *testing.T) {
	server, store, backend := initApp(t)
	ctx := context.Background()
	assert.NoError(t, store.Set(ctx, testVisitorID, "token", "tok-123"))
	assert.NoError(t, store.Set(ctx, testVisitorID, "userId", "u-9"))

	t.Run("broadcast to subject", func(t *testing.T) {
		body := marchallObj(t, teacherBroadcastRequest{SubjectID: "s-2", Message: "Class moved to 4pm"})
		req, rec := newRequest(http.MethodPost, "/teacher/broadcast", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [3]string{"u-9", "s-2", "Class moved to 4pm"}, backend.teacherMsg)
	})

	t.Run("broadcast missing message", func(t *testing.T) {
		body := marchallObj(t, teacherBroadcastRequest{SubjectID: "s-2"})
		req, rec := newRequest(http.MethodPost, "/teacher/broadcast", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reply to message", func(t *testing.T) {
		body := marchallObj(t, replyMessageRequest{Reply: "See Monday's notes"})
		req, rec := newRequest(http.MethodPost, "/teacher/messages/m-1/reply", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [3]string{"m-1", "u-9", "See Monday's notes"}, backend.replies)
	})
}

func Test_dashboard_qao(t *testing.T) {
	server, store, backend := initApp(t)
	backend.data = map[string]json.RawMessage{
		"/api/qao/teachers": json.RawMessage(`[{"name":"Kofi"}]`),
		"/api/qao/kpis":     json.RawMessage(`{"approvalRate":0.9}`),
	}
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "qaoToken", "qao-tok"))

	req, rec := newRequest(http.MethodGet, "/qao/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res, "teachers")
	assert.Contains(t, res, "resources")
	assert.Contains(t, res, "kpis")
	assert.Contains(t, res, "inbox")
	assert.Contains(t, res, "notifications")
	assert.JSONEq(t, `{"approvalRate":0.9}`, string(res["kpis"]))
}

func Test_dashboard_admin(t *testing.T) {
	server, store, backend := initApp(t)
	backend.data = map[string]json.RawMessage{
		"/admin/payments": json.RawMessage(`[{"id":"p1","status":"pending"}]`),
	}
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "adminToken", "adm-tok"))

	req, rec := newRequest(http.MethodGet, "/admin/dashboard")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res, "overview")
	assert.Contains(t, res, "subjects")
	assert.JSONEq(t, `[{"id":"p1","status":"pending"}]`, string(res["payments"]))
}

func Test_dashboard_adminActions(t *testing.T) {
	server, store, backend := initApp(t)
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "adminToken", "adm-tok"))

	t.Run("approve payment", func(t *testing.T) {
		req, rec := newRequest(http.MethodPut, "/admin/payments/p1/approve")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"p1"}, backend.approved)
	})

	t.Run("assign subject", func(t *testing.T) {
		body := marchallObj(t, assignSubjectRequest{TeacherID: "t-1", SubjectID: "s-2"})
		req, rec := newRequest(http.MethodPost, "/admin/assign-subject", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, [][2]string{{"t-1", "s-2"}}, backend.assigned)
	})

	t.Run("broadcast passes through as-is", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/admin/broadcasts", []byte(`{"title":"Exams","audience":"students"}`))
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		if assert.Len(t, backend.broadcasts, 1) {
			assert.JSONEq(t, `{"title":"Exams","audience":"students"}`, string(backend.broadcasts[0]))
		}
	})

	t.Run("malformed broadcast", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/admin/broadcasts", []byte(`{not json`))
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create account", func(t *testing.T) {
		body := marchallObj(t, createAccountRequest{
			Role:     "teacher",
			Name:     "Kofi Asante",
			Email:    "kofi@test.gh",
			Password: "s3cret-pw",
		})
		req, rec := newRequest(http.MethodPost, "/admin/users", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		if assert.Len(t, backend.accounts, 1) {
			assert.Equal(t, "teacher", backend.accounts[0].Role)
			assert.Equal(t, "kofi@test.gh", backend.accounts[0].Email)
		}
	})

	t.Run("create account bad role", func(t *testing.T) {
		body := marchallObj(t, createAccountRequest{
			Role:     "superuser",
			Name:     "Kofi Asante",
			Email:    "kofi@test.gh",
			Password: "s3cret-pw",
		})
		req, rec := newRequest(http.MethodPost, "/admin/users", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create class passes through as-is", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/admin/classes", []byte(`{"teacherId":"t-1","day":"Monday","time":"16:00"}`))
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		if assert.Len(t, backend.classes, 1) {
			assert.JSONEq(t, `{"teacherId":"t-1","day":"Monday","time":"16:00"}`, string(backend.classes[0]))
		}
	})
}

func Test_dashboard_adminClasses(t *testing.T) {
	server, store, backend := initApp(t)
	backend.data = map[string]json.RawMessage{
		"/api/teachers": json.RawMessage(`[{"name":"Kofi"}]`),
		"/api/classes":  json.RawMessage(`[{"day":"Monday"}]`),
	}
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "adminToken", "adm-tok"))

	req, rec := newRequest(http.MethodGet, "/admin/classes")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.JSONEq(t, `[{"name":"Kofi"}]`, string(res["teachers"]))
	assert.JSONEq(t, `[{"day":"Monday"}]`, string(res["classes"]))
}

func Test_dashboard_qaoReviewResource(t *testing.T) {
	server, store, backend := initApp(t)
	assert.NoError(t, store.Set(context.Background(), testVisitorID, "qaoToken", "qao-tok"))

	body := marchallObj(t, reviewResourceRequest{Approved: true})
	req, rec := newRequest(http.MethodPut, "/qao/resources/r-1", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"r-1"}, backend.reviewed)
}
