package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newTokens() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "innovators-hub.test",
	})
}

func authRouter(tokens auth.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(tokens).JWTAuth(), func(c *gin.Context) {
		id, ok := UserID(c)
		role, _ := c.Get(ContextRoleType)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "role": role})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	tokens := newTokens()
	valid, _, err := tokens.Issue(7, "supervisor")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	forged, _, err := other.Issue(7, "admin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{name: "bearer token", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "raw token", header: valid, wantCode: http.StatusOK},
		{name: "query token", query: "?token=" + valid, wantCode: http.StatusOK},
		{name: "missing", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		{name: "bad scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		{name: "wrong key", header: "Bearer " + forged, wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeInvalidToken},
	}
	r := authRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Error.Code)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(7), body["id"])
			assert.Equal(t, true, body["ok"])
			assert.Equal(t, "supervisor", body["role"])
		})
	}
}

type expiredTokens struct{}

func (expiredTokens) Issue(int64, string) (string, int64, error) { return "", 0, nil }
func (expiredTokens) ValidateToken(string) (*auth.Claims, error) {
	return nil, auth.ErrExpiredToken
}

func TestJWTAuth_Expired(t *testing.T) {
	r := authRouter(expiredTokens{})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"validation", apperrors.NewValidationError("title is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "title is required"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
		{"unauthenticated", apperrors.NewUnauthenticatedError("user not found"), http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "user not found"},
		{"forbidden", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "account is deactivated"},
		{"wrapped forbidden", fmt.Errorf("review: %w", apperrors.ErrPermissionDenied), http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
		{"not found", apperrors.ErrProjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "project not found"},
		{"conflict", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "user with this email already exists"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestHandleAPIError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	err := apperrors.NewValidationError("invalid status").WithDetails(map[string]interface{}{"status": "archived"})
	HandleAPIError(c, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"archived"`)
}

type bindTarget struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOK    bool
		wantField string
	}{
		{name: "valid", body: `{"email":"a@ucu.ac.ug","password":"secret1"}`, wantOK: true},
		{name: "bad email", body: `{"email":"nope","password":"secret1"}`, wantField: "email"},
		{name: "short password", body: `{"email":"a@ucu.ac.ug","password":"abc"}`, wantField: "password"},
		{name: "malformed", body: `{"email":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			ok := BindJSON(c, &target)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, "a@ucu.ac.ug", target.Email)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, resp.Error.Field)
			}
		})
	}
}

func TestRateLimiter_Local(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: Window(2, 2, time.Hour)})
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := do("10.0.0.1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	limited := do("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrorCodeTooManyRequests, decodeError(t, limited).Error.Code)

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code, "other clients keep their own budget")
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), CORS())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
