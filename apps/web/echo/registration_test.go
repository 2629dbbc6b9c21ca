package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educonnectt/web/core/registration"
)

func Test_registrationAPI_start(t *testing.T) {
	server, _, _ := initApp(t)

	req, rec := newRequest(http.MethodGet, "/register-course/student")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res flowResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, registration.StateSelectingCurriculum, res.State)
	assert.Equal(t, "Student", res.Role)
	assert.Len(t, res.Catalog, 2)
}

func Test_registrationAPI_selectCurriculum(t *testing.T) {
	t.Run("student gets package grid", func(t *testing.T) {
		server, store, _ := initApp(t)

		body := marchallObj(t, curriculumRequest{Curriculum: "GES"})
		req, rec := newRequest(http.MethodPost, "/register-course/student/curriculum", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res flowResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, registration.StateSelectingPackage, res.State)
		assert.Len(t, res.Packages, 7)
		assert.Empty(t, res.NextPath)

		// nothing persisted yet
		_, err := registration.LoadDraft(context.Background(), store, testVisitorID)
		assert.Equal(t, registration.ErrNoDraft, err)
	})

	t.Run("teacher completes immediately", func(t *testing.T) {
		server, store, _ := initApp(t)

		body := marchallObj(t, curriculumRequest{Curriculum: "Cambridge"})
		req, rec := newRequest(http.MethodPost, "/register-course/teacher/curriculum", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res flowResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, registration.StateComplete, res.State)
		assert.Equal(t, "/auth-form/teacher", res.NextPath)

		// persisted before the response went out
		draft, err := registration.LoadDraft(context.Background(), store, testVisitorID)
		assert.NoError(t, err)
		assert.Equal(t, "Cambridge", draft.Curriculum)
		assert.Empty(t, draft.PackageKey)
	})

	t.Run("unknown curriculum", func(t *testing.T) {
		server, _, _ := initApp(t)

		body := marchallObj(t, curriculumRequest{Curriculum: "IB"})
		req, rec := newRequest(http.MethodPost, "/register-course/student/curriculum", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_registrationAPI_selectPackage(t *testing.T) {
	t.Run("student completes", func(t *testing.T) {
		server, store, _ := initApp(t)

		body := marchallObj(t, packageRequest{Curriculum: "GES", Package: "EC"})
		req, rec := newRequest(http.MethodPost, "/register-course/student/package", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res flowResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, registration.StateComplete, res.State)
		assert.Equal(t, "/auth-form/student", res.NextPath)
		if assert.NotNil(t, res.Draft) {
			assert.Equal(t, "GES-EC", res.Draft.PackageKey)
			assert.Equal(t, "4", res.Draft.Grade)
			assert.Equal(t, "3 months", res.Draft.Duration)
		}

		draft, err := registration.LoadDraft(context.Background(), store, testVisitorID)
		assert.NoError(t, err)
		assert.Equal(t, "GES-EC", draft.PackageKey)
	})

	t.Run("only students pick packages", func(t *testing.T) {
		server, store, _ := initApp(t)

		body := marchallObj(t, packageRequest{Curriculum: "GES", Package: "EC"})
		req, rec := newRequest(http.MethodPost, "/register-course/teacher/package", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		_, err := registration.LoadDraft(context.Background(), store, testVisitorID)
		assert.Equal(t, registration.ErrNoDraft, err)
	})

	t.Run("unknown package", func(t *testing.T) {
		server, _, _ := initApp(t)

		body := marchallObj(t, packageRequest{Curriculum: "Cambridge", Package: "HS"})
		req, rec := newRequest(http.MethodPost, "/register-course/student/package", body)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
