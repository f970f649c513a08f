package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const frontendURL = "https://jobs.example.com"

type MockNotifier struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockNotifier) Notify(ctx context.Context, templateID, recipient string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(templateID, recipient)
}

// sent counts notifications of one template.
func (m *MockNotifier) sent(templateID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Arguments.String(0) == templateID {
			n++
		}
	}
	return n
}

// flakyJobs injects failures into selected job repository operations.
type flakyJobs struct {
	domain.JobRepository
	failCounter bool
	failStatus  bool
}

var errInjected = errors.New("connection reset by peer")

func (f *flakyJobs) IncrementApplicationCount(ctx context.Context, id int64, delta int) error {
	if f.failCounter {
		return errInjected
	}
	return f.JobRepository.IncrementApplicationCount(ctx, id, delta)
}

func (f *flakyJobs) UpdateStatusIf(ctx context.Context, id int64, from []domain.JobStatus, to domain.JobStatus, featured bool) (bool, error) {
	if f.failStatus {
		return false, errInjected
	}
	return f.JobRepository.UpdateStatusIf(ctx, id, from, to, featured)
}

type fixture struct {
	store    *memory.Store
	jobsRepo *flakyJobs
	notifier *MockNotifier

	companies    domain.CompanyUsecase
	jobs         domain.JobUsecase
	applications domain.ApplicationUsecase
	payments     domain.PaymentUsecase
	saved        domain.SavedJobUsecase
	alerts       domain.JobAlertUsecase
	admin        domain.AdminUsecase
	reconciler   *usecase.Reconciler

	adminP, seekerP, seeker2P, employerP, employer2P, loneEmployerP *domain.Principal
	company, company2                                               *domain.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()

	f := &fixture{
		store:    store,
		jobsRepo: &flakyJobs{JobRepository: store.Jobs()},
		notifier: notifier,
	}
	users, companies := store.Users(), store.Companies()

	f.companies = usecase.NewCompanyUsecase(companies, users, f.jobsRepo)
	f.jobs = usecase.NewJobUsecase(f.jobsRepo, companies, users, notifier, frontendURL)
	f.applications = usecase.NewApplicationUsecase(store.Applications(), f.jobsRepo, users, companies, notifier, frontendURL)
	f.payments = usecase.NewPaymentUsecase(store.PaymentEvents(), f.jobsRepo, users, companies, notifier, frontendURL)
	f.saved = usecase.NewSavedJobUsecase(store.SavedJobs(), f.jobsRepo)
	f.alerts = usecase.NewJobAlertUsecase(store.JobAlerts(), f.jobsRepo)
	f.admin = usecase.NewAdminUsecase(store.Stats(), f.jobs, f.companies)
	f.reconciler = usecase.NewReconciler(f.jobsRepo)

	mkUser := func(id string, role domain.Role) *domain.User {
		u := &domain.User{ID: id, Email: id + "@example.com", Name: id, Role: role}
		require.NoError(t, users.Create(ctx, u))
		return u
	}
	mkCompany := func(name string, owner *domain.User, verified bool) *domain.Company {
		c := &domain.Company{Name: name, Owners: []string{owner.ID}, IsVerified: verified}
		require.NoError(t, companies.Create(ctx, c))
		owner.CompanyID = &c.ID
		return c
	}

	f.adminP = mkUser("admin", domain.RoleAdmin).Principal()
	f.seekerP = mkUser("seeker", domain.RoleSeeker).Principal()
	f.seeker2P = mkUser("seeker2", domain.RoleSeeker).Principal()
	f.loneEmployerP = mkUser("lonely", domain.RoleEmployer).Principal()

	empA, empB := mkUser("emp-a", domain.RoleEmployer), mkUser("emp-b", domain.RoleEmployer)
	f.company = mkCompany("Acme", empA, true)
	f.company2 = mkCompany("Globex", empB, true)
	f.employerP, f.employer2P = empA.Principal(), empB.Principal()
	return f
}

func as(p *domain.Principal) context.Context {
	if p == nil {
		return context.Background()
	}
	return domain.WithPrincipal(context.Background(), p)
}

// pendingJob posts a job for the first company.
func (f *fixture) pendingJob(t *testing.T, title string) *domain.Job {
	t.Helper()
	job, err := f.jobs.Create(as(f.employerP), &domain.Job{
		Title:       title,
		Description: "Build and run services",
		Location:    "Remote",
		Type:        domain.JobTypeFullTime,
		Skills:      []string{"go", "postgres"},
		Salary:      domain.Salary{Min: 1000, Max: 2000, Currency: "USD"},
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) activeJob(t *testing.T, title string) *domain.Job {
	t.Helper()
	job, err := f.jobs.Transition(as(f.adminP), f.pendingJob(t, title).ID, domain.JobApprove{})
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusActive, job.Status)
	return job
}

func (f *fixture) jobCount(t *testing.T, id int64) int64 {
	t.Helper()
	job, err := f.store.Jobs().GetByID(context.Background(), id)
	require.NoError(t, err)
	return job.ApplicationCount
}

func kindOf(err error) apperror.Kind {
	if err == nil {
		return ""
	}
	return apperror.KindOf(err)
}

func reasonOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
