package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/auth"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (response.Response, map[string]any) {
	t.Helper()
	var body struct {
		response.Response
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Response, body.Error
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		c.Error(apperror.InvalidState("Company required").WithReason("company_required"))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("pq: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	resp, errBody := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid_state", errBody["kind"])
	assert.Equal(t, "company_required", errBody["reason"])
	assert.NotEmpty(t, resp.RequestID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLocalRateLimit(t *testing.T) {
	limiter := NewRateLimiter(nil)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(limiter.Middleware(RateLimitConfig{Limit: 2, Window: time.Minute, KeyPrefix: "t:", WritesOnly: true}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
			_, errBody := decode(t, w)
			assert.Equal(t, "rate_limited", errBody["kind"])
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// reads are exempt
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// the bucket refills over the window
	now = now.Add(31 * time.Second)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type stubVerifier map[string]*auth.Identity

func (s stubVerifier) Verify(token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidToken
}

func TestAuthResolvesRoleFromLocalUser(t *testing.T) {
	store := memory.NewStore()
	users := store.Users()
	require.NoError(t, users.Create(t.Context(), &domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleEmployer}))

	verifier := stubVerifier{
		"known":   {Subject: "u1", Email: "u1@example.com"},
		"unknown": {Subject: "u2", Email: "u2@example.com"},
	}

	var seen *domain.Principal
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/private", AuthMiddleware(verifier, users), func(c *gin.Context) {
		seen = domain.PrincipalFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/public", OptionalAuth(verifier, users), func(c *gin.Context) {
		seen = domain.PrincipalFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	call := func(path, token string) int {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call("/private", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/private", "forged"))

	require.Equal(t, http.StatusOK, call("/private", "known"))
	assert.Equal(t, domain.RoleEmployer, seen.Role)

	require.Equal(t, http.StatusOK, call("/private", "unknown"))
	assert.Empty(t, seen.Role)
	assert.Equal(t, "u2", seen.UserID)

	require.Equal(t, http.StatusOK, call("/public", ""))
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusUnauthorized, call("/public", "forged"))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://jobs.example.com"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://jobs.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFOnlyGuardsCookieAuth(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), CSRFMiddleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(mutate func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		mutate(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(func(req *http.Request) { req.Header.Set("Authorization", "Bearer x") })
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "x"})
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, errBody := decode(t, w)
	assert.Equal(t, "csrf", errBody["reason"])

	w = send(func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "x"})
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(CSRFTokenHeaderName, "abc")
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
