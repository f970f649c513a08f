package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret     = "test-secret"
	testWebhookSecret = "whsec_test"
)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, map[string]any) {}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	repos    *domain.Repositories
	webhooks *payment.Verifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memory.NewStore().Repositories()
	var n nopNotifier
	jobUC := usecase.NewJobUsecase(repos.Jobs, repos.Companies, repos.Users, n, "http://frontend")
	companyUC := usecase.NewCompanyUsecase(repos.Companies, repos.Users, repos.Jobs)
	appUC := usecase.NewApplicationUsecase(repos.Applications, repos.Jobs, repos.Users, repos.Companies, n, "http://frontend")
	webhooks := payment.NewVerifier(testWebhookSecret, 5*time.Minute)

	router := NewRouter(RouterDeps{
		UserUC:        usecase.NewUserUsecase(repos.Users),
		CompanyUC:     companyUC,
		JobUC:         jobUC,
		ApplicationUC: appUC,
		SavedJobUC:    usecase.NewSavedJobUsecase(repos.SavedJobs, repos.Jobs),
		JobAlertUC:    usecase.NewJobAlertUsecase(repos.JobAlerts, repos.Jobs),
		PaymentUC:     usecase.NewPaymentUsecase(repos.PaymentEvents, repos.Jobs, repos.Users, repos.Companies, n, "http://frontend"),
		AdminUC:       usecase.NewAdminUsecase(repos.Stats, jobUC, companyUC),
		HealthUC:      usecase.NewHealthUsecase(nil),
		Users:         repos.Users,
		Verifier:      auth.NewTokenVerifier(testJWTSecret, nil),
		Webhooks:      webhooks,
		FrontendURL:   "http://frontend",
	})

	require.NoError(t, repos.Users.Create(t.Context(), &domain.User{ID: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}))
	return &testServer{t: t, router: router, repos: repos, webhooks: webhooks}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string   `json:"kind"`
		Reason  string   `json:"reason"`
		Details []string `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(method, path, user string, body any) (*httptest.ResponseRecorder, apiResponse) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(s.t, user))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func data[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

// hiringSetup registers an employer with a verified company and a seeker and
// returns an active job id.
func (s *testServer) hiringSetup() int64 {
	t := s.t
	w, _ := s.do(http.MethodPost, "/users/me", "emp", gin.H{"name": "Erin", "role": "employer"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodPost, "/users/me", "seeker", gin.H{"name": "Sam", "role": "seeker"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.do(http.MethodPost, "/companies", "emp", gin.H{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	company := data[domain.Company](t, resp)

	w, resp = s.do(http.MethodPost, "/jobs", "emp", newJobBody())
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "company_unverified", resp.Error.Reason)

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/admin/companies/%d", company.ID), "admin", gin.H{"action": "verify"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(http.MethodPost, "/jobs", "emp", newJobBody())
	require.Equal(t, http.StatusCreated, w.Code)
	job := data[domain.Job](t, resp)
	assert.Equal(t, domain.JobStatusPending, job.Status)

	w, resp = s.do(http.MethodPatch, fmt.Sprintf("/jobs/%d", job.ID), "admin", gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.JobStatusActive, data[domain.Job](t, resp).Status)
	return job.ID
}

func newJobBody() gin.H {
	return gin.H{
		"title":       "Backend Engineer",
		"description": "Build APIs",
		"location":    "Remote",
		"type":        "full-time",
		"salary":      gin.H{"min": 100, "max": 150, "currency": "USD"},
		"skills":      []string{"go", "postgres"},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	w, resp := s.do(http.MethodGet, "/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", resp.Error.Kind)

	// verified identity, not registered yet
	w, resp = s.do(http.MethodGet, "/users/me", "newcomer", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, resp = s.do(http.MethodPost, "/users/me", "newcomer", gin.H{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", resp.Error.Kind)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestJobVisibility(t *testing.T) {
	s := newTestServer(t)
	jobID := s.hiringSetup()

	w, resp := s.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := data[domain.Page[domain.Job]](t, resp)
	assert.EqualValues(t, 1, page.TotalCount)

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/jobs/%d", jobID), "emp", gin.H{"status": "active"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = s.do(http.MethodDelete, fmt.Sprintf("/jobs/%d", jobID), "emp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.JobStatusClosed, data[domain.Job](t, resp).Status)

	// closed jobs disappear for the public but not for their company
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/jobs/%d", jobID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/jobs/%d", jobID), "emp", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(http.MethodGet, "/employer/jobs?status=closed", "emp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, data[domain.Page[domain.Job]](t, resp).TotalCount)
}

func TestApplicationPipeline(t *testing.T) {
	s := newTestServer(t)
	jobID := s.hiringSetup()

	apply := gin.H{"job_id": jobID, "resume": "https://cv.example.com/sam.pdf"}
	w, resp := s.do(http.MethodPost, "/applications", "seeker", apply)
	require.Equal(t, http.StatusCreated, w.Code)
	app := data[domain.Application](t, resp)

	w, resp = s.do(http.MethodPost, "/applications", "seeker", apply)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_applied", resp.Error.Reason)

	w, resp = s.do(http.MethodGet, fmt.Sprintf("/applications/check?job_id=%d", jobID), "seeker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, data[domain.ApplicationCheck](t, resp).HasApplied)

	w, resp = s.do(http.MethodPatch, fmt.Sprintf("/applications/%d", app.ID), "emp", gin.H{"status": "reviewing", "notes": "strong"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ApplicationStatusReviewing, data[domain.Application](t, resp).Status)

	// the applicant never sees employer notes
	w, resp = s.do(http.MethodGet, fmt.Sprintf("/applications/%d", app.ID), "seeker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, data[domain.Application](t, resp).Notes)

	// strangers get not found, not forbidden
	w, _ = s.do(http.MethodPost, "/users/me", "other", gin.H{"role": "seeker"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/applications/%d", app.ID), "other", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(http.MethodGet, fmt.Sprintf("/employer/jobs/%d/applications/export?format=csv", jobID), "emp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "seeker@example.com")

	w, resp = s.do(http.MethodPost, "/applications/bulk", "emp", gin.H{
		"action": "status", "ids": []int64{app.ID, app.ID + 100}, "status": "shortlisted",
	})
	require.Equal(t, http.StatusOK, w.Code)
	result := data[domain.BulkResult](t, resp)
	assert.Equal(t, 1, result.Affected)
	assert.Equal(t, 1, result.Skipped)

	// shortlisted applications can no longer be withdrawn
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/applications/%d", app.ID), "seeker", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = s.do(http.MethodGet, "/applications/stats", "seeker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := data[domain.ApplicationStats](t, resp)
	assert.EqualValues(t, 1, stats.Shortlisted)
	assert.Equal(t, 100, stats.ResponseRate)
}

func TestPaymentWebhook(t *testing.T) {
	s := newTestServer(t)
	s.hiringSetup()

	w, resp := s.do(http.MethodPost, "/jobs", "emp", newJobBody())
	require.Equal(t, http.StatusCreated, w.Code)
	job := data[domain.Job](t, resp)

	body := []byte(fmt.Sprintf(`{"id":"evt_1","type":"checkout.session.completed","data":{"job_id":%d,"plan":"featured"}}`, job.ID))
	post := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", bytes.NewReader(body))
		req.Header.Set(payment.SignatureHeader, signature)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, post("t=1,v1=deadbeef"))
	assert.Equal(t, http.StatusOK, post(s.webhooks.Sign(body, time.Now())))
	// redelivery is acknowledged
	assert.Equal(t, http.StatusOK, post(s.webhooks.Sign(body, time.Now())))

	stored, err := s.repos.Jobs.GetByID(t.Context(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, stored.Status)
	assert.True(t, stored.Featured)
}

func TestSavedJobsAndAlerts(t *testing.T) {
	s := newTestServer(t)
	jobID := s.hiringSetup()

	w, _ := s.do(http.MethodPost, fmt.Sprintf("/saved-jobs/%d", jobID), "seeker", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w, resp := s.do(http.MethodPost, fmt.Sprintf("/saved-jobs/%d", jobID), "seeker", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_exists", resp.Error.Kind)

	w, resp = s.do(http.MethodGet, "/saved-jobs", "seeker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, data[domain.Page[domain.SavedJob]](t, resp).TotalCount)

	w, _ = s.do(http.MethodPost, "/job-alerts", "seeker", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, resp = s.do(http.MethodPost, "/job-alerts", "seeker", gin.H{"keywords": "golang", "frequency": "weekly"})
	require.Equal(t, http.StatusCreated, w.Code)
	alert := data[domain.JobAlert](t, resp)
	assert.True(t, alert.Active)

	w, resp = s.do(http.MethodGet, fmt.Sprintf("/job-alerts/%d/jobs", alert.ID), "seeker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, data[domain.Page[domain.Job]](t, resp).Items)
	w, _ = s.do(http.MethodPost, "/job-alerts", "seeker", gin.H{"keywords": "golang", "min_salary": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/job-alerts/%d", alert.ID), "emp", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	s.hiringSetup()

	w, _ := s.do(http.MethodGet, "/admin/stats", "emp", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.do(http.MethodGet, "/admin/stats", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := data[domain.AdminStats](t, resp)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.ActiveJobs)
}
