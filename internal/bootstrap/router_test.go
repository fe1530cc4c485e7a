package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/repositories/memory"
	"github.com/ucu/innovators-hub/internal/config"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
	"github.com/ucu/innovators-hub/internal/seed"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Database.Driver = "memory"
	cfg.Database.Seed = true
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "innovators-hub.test"
	cfg.Mail.Transport = "log"
	cfg.Mail.FrontendURL = "http://hub.test"
	cfg.Upload.MaxSizeMB = 1
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	lgr := logger.Nop()
	deps, err := BuildDependencies(context.Background(), cfg, memory.NewRepositories(memory.Open()), lgr)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	SeedDefaultData(context.Background(), cfg, deps)
	return SetupRouter(cfg, deps, lgr)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c client) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (c client) json(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token)
}

func (c client) multipart(method, path, token string, fields map[string]string, fileField, fileName string, content []byte) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(c.t, err)
		_, err = fw.Write(content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, token)
}

func (c client) login(identifier string) string {
	c.t.Helper()
	w, env := c.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   seed.DemoPassword,
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(c.t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthEndpoints(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, testConfig(t))}

	for _, path := range []string{"/", "/api/health"} {
		w, env := c.json(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var health struct {
			Status string `json:"status"`
		}
		decode(t, env, &health)
		assert.Equal(t, "ok", health.Status)
	}
}

func TestOrgDirectory(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, testConfig(t))}

	w, env := c.json(http.MethodGet, "/api/v1/faculties", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var faculties []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Departments []struct {
			Name string `json:"name"`
		} `json:"departments"`
	}
	decode(t, env, &faculties)
	require.Len(t, faculties, len(seed.Faculties))
	assert.Equal(t, "Faculty of Agricultural Sciences", faculties[0].Name)
	assert.Len(t, faculties[0].Departments, 5)

	w, env = c.json(http.MethodGet, fmt.Sprintf("/api/v1/departments?facultyId=%d", faculties[0].ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var departments []struct {
		FacultyID int64 `json:"facultyId"`
	}
	decode(t, env, &departments)
	assert.Len(t, departments, 5)

	w, env = c.json(http.MethodGet, "/api/v1/faculties/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RES_001", env.Error.Code)

	w, _ = c.json(http.MethodGet, "/api/v1/faculties/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, testConfig(t))}

	w, env := c.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "admin@ucu.ac.ug",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", env.Error.Code)

	w, env = c.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"identifier": "admin@ucu.ac.ug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", env.Error.Code)

	student := c.login(seed.DemoStudentAccessNumber)

	w, _ = c.json(http.MethodGet, "/api/v1/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = c.json(http.MethodGet, "/api/v1/users/profile", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Email        string `json:"email"`
		AccessNumber string `json:"accessNumber"`
		Nationality  string `json:"nationality"`
	}
	decode(t, env, &profile)
	assert.Equal(t, "student@ucu.ac.ug", profile.Email)
	assert.Equal(t, seed.DemoStudentAccessNumber, profile.AccessNumber)
	assert.Equal(t, "Ugandan", profile.Nationality)

	w, _ = c.json(http.MethodPost, "/api/v1/auth/change-password", student, map[string]string{
		"currentPassword": seed.DemoPassword,
		"newPassword":     "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": seed.DemoStudentAccessNumber,
		"password":   "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = c.json(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"accessNumber": "B000000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = c.json(http.MethodPost, "/api/v1/auth/reset-password/not-a-token", "", map[string]string{"password": "another1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", env.Error.Code)
}

func TestProvisioningAndAdministration(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, testConfig(t))}
	admin := c.login("admin@ucu.ac.ug")
	facultyAdmin := c.login("faculty@ucu.ac.ug")
	student := c.login(seed.DemoStudentAccessNumber)

	w, env := c.json(http.MethodPost, "/api/v1/auth/register", student, map[string]string{
		"name":  "Someone",
		"email": "someone@ucu.ac.ug",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_009", env.Error.Code)

	w, env = c.json(http.MethodPost, "/api/v1/auth/register", facultyAdmin, map[string]string{
		"name":  "New Student",
		"email": "new.student@ucu.ac.ug",
		"role":  "student",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		User struct {
			ID           int64  `json:"id"`
			Role         string `json:"role"`
			AccessNumber string `json:"accessNumber"`
		} `json:"user"`
		EmailSent bool `json:"emailSent"`
	}
	decode(t, env, &registered)
	assert.Equal(t, "student", registered.User.Role)
	assert.Regexp(t, `^B\d{6}$`, registered.User.AccessNumber)
	assert.True(t, registered.EmailSent)

	w, _ = c.json(http.MethodPost, "/api/v1/auth/register", facultyAdmin, map[string]string{
		"name":  "Another",
		"email": "new.student@ucu.ac.ug",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = c.json(http.MethodGet, "/api/v1/users?role=student", facultyAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []struct {
		Email string `json:"email"`
	}
	decode(t, env, &users)
	assert.Len(t, users, 2)

	path := fmt.Sprintf("/api/v1/users/%d", registered.User.ID)
	w, _ = c.json(http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = c.json(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user already deactivated", env.Error.Message)

	w, _ = c.json(http.MethodPatch, path+"/reactivate", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodGet, "/api/v1/users", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	cfg := testConfig(t)
	c := client{t: t, router: newTestRouter(t, cfg)}
	student := c.login(seed.DemoStudentAccessNumber)
	supervisor := c.login("supervisor@ucu.ac.ug")

	fields := map[string]string{
		"title":        "Smart Irrigation",
		"description":  "Soil moisture sensors driving irrigation valves",
		"category":     "IoT",
		"technologies": "Go, React",
	}

	w, _ := c.multipart(http.MethodPost, "/api/v1/projects", "", fields, "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := c.multipart(http.MethodPost, "/api/v1/projects", student, fields, "document", "report.exe", pngHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", env.Error.Code)

	w, env = c.multipart(http.MethodPost, "/api/v1/projects", supervisor, fields, "", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = c.multipart(http.MethodPost, "/api/v1/projects", student, fields, "document", "poster.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project struct {
		ID          int64  `json:"id"`
		Status      string `json:"status"`
		DocumentURL string `json:"documentUrl"`
		ViewCount   *int64 `json:"viewCount"`
	}
	decode(t, env, &project)
	assert.Equal(t, "pending", project.Status)
	require.True(t, strings.HasPrefix(project.DocumentURL, "/uploads/documents/"), project.DocumentURL)

	w, _ = c.do(httptest.NewRequest(http.MethodGet, project.DocumentURL, nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngHeader, w.Body.Bytes())

	var gallery []struct {
		ID int64 `json:"id"`
	}
	_, env = c.json(http.MethodGet, "/api/v1/projects", "", nil)
	decode(t, env, &gallery)
	assert.Empty(t, gallery)

	_, env = c.json(http.MethodGet, "/api/v1/projects/my-projects", student, nil)
	decode(t, env, &gallery)
	assert.Len(t, gallery, 1)

	_, env = c.json(http.MethodGet, "/api/v1/projects/faculty/my-projects", supervisor, nil)
	decode(t, env, &gallery)
	assert.Len(t, gallery, 1)

	reviewPath := fmt.Sprintf("/api/v1/projects/%d/review", project.ID)
	w, _ = c.json(http.MethodPatch, reviewPath, student, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = c.json(http.MethodPatch, reviewPath, supervisor, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = c.json(http.MethodPatch, reviewPath, supervisor, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, env, &project)
	assert.Equal(t, "approved", project.Status)

	_, env = c.json(http.MethodGet, "/api/v1/projects?technology=react", "", nil)
	decode(t, env, &gallery)
	assert.Len(t, gallery, 1)
	_, env = c.json(http.MethodGet, "/api/v1/projects?category=Robotics", "", nil)
	decode(t, env, &gallery)
	assert.Empty(t, gallery)

	projectPath := fmt.Sprintf("/api/v1/projects/%d", project.ID)
	w, env = c.json(http.MethodGet, projectPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &project)
	require.NotNil(t, project.ViewCount)
	assert.Equal(t, int64(1), *project.ViewCount)

	w, _ = c.json(http.MethodGet, "/api/v1/projects/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = c.json(http.MethodPost, projectPath+"/comments", supervisor, map[string]string{"content": "Great work"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = c.json(http.MethodPost, projectPath+"/comments", supervisor, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = c.json(http.MethodGet, projectPath+"/comments", "", nil)
	var comments []struct {
		Content string `json:"content"`
		User    struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	decode(t, env, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great work", comments[0].Content)
	assert.Equal(t, "supervisor", comments[0].User.Role)

	w, env = c.multipart(http.MethodPut, projectPath, student, map[string]string{"title": "Smarter Irrigation"}, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, env, &project)
	assert.Equal(t, "pending", project.Status)

	w, env = c.json(http.MethodGet, "/api/v1/dashboard/stats", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalProjects int64 `json:"totalProjects"`
		TotalViews    int64 `json:"totalViews"`
	}
	decode(t, env, &stats)
	assert.Equal(t, int64(1), stats.TotalProjects)
	assert.Equal(t, int64(1), stats.TotalViews)

	w, _ = c.json(http.MethodDelete, projectPath, supervisor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = c.json(http.MethodDelete, projectPath, student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodGet, projectPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfilePhotoUpload(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, testConfig(t))}
	student := c.login(seed.DemoStudentAccessNumber)

	w, _ := c.multipart(http.MethodPut, "/api/v1/users/profile/photo", student, nil, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = c.multipart(http.MethodPut, "/api/v1/users/profile/photo", student, nil, "photo", "cv.pdf", []byte("%PDF-1.4\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := c.multipart(http.MethodPut, "/api/v1/users/profile/photo", student, nil, "photo", "me.png", pngHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var photo struct {
		ProfilePhotoURL string `json:"profilePhotoUrl"`
	}
	decode(t, env, &photo)
	assert.True(t, strings.HasPrefix(photo.ProfilePhotoURL, "/uploads/"))
}

func TestRateLimitedAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 2
	cfg.RateLimit.Burst = 2
	cfg.RateLimit.Period = "1h"
	c := client{t: t, router: newTestRouter(t, cfg)}

	for i := 0; i < 2; i++ {
		w, _ := c.json(http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, env := c.json(http.MethodGet, "/api/v1/faculties", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_001", env.Error.Code)

	w, _ = c.json(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "root health is outside /api")
}
