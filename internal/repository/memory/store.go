// Package memory is an in-process implementation of the persistence gateway.
// It enforces the same unique constraints, conditional updates and atomic
// counters as the PostgreSQL repositories and backs STORAGE_DRIVER=memory.
package memory

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go-jobboard-backend/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	seq          int64
	now          func() time.Time
	users        map[string]*domain.User
	companies    map[int64]*domain.Company
	jobs         map[int64]*domain.Job
	applications map[int64]*domain.Application
	savedJobs    map[int64]*domain.SavedJob
	alerts       map[int64]*domain.JobAlert
	payments     map[string]*domain.PaymentEvent
}

func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[string]*domain.User),
		companies:    make(map[int64]*domain.Company),
		jobs:         make(map[int64]*domain.Job),
		applications: make(map[int64]*domain.Application),
		savedJobs:    make(map[int64]*domain.SavedJob),
		alerts:       make(map[int64]*domain.JobAlert),
		payments:     make(map[string]*domain.PaymentEvent),
	}
}

func (s *Store) Users() domain.UserRepository                 { return &userRepo{s} }
func (s *Store) Companies() domain.CompanyRepository          { return &companyRepo{s} }
func (s *Store) Jobs() domain.JobRepository                   { return &jobRepo{s} }
func (s *Store) Applications() domain.ApplicationRepository   { return &applicationRepo{s} }
func (s *Store) SavedJobs() domain.SavedJobRepository         { return &savedJobRepo{s} }
func (s *Store) JobAlerts() domain.JobAlertRepository         { return &jobAlertRepo{s} }
func (s *Store) PaymentEvents() domain.PaymentEventRepository { return &paymentEventRepo{s} }
func (s *Store) Stats() domain.StatsRepository                { return &statsRepo{s} }

func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{
		Users:         s.Users(),
		Companies:     s.Companies(),
		Jobs:          s.Jobs(),
		Applications:  s.Applications(),
		SavedJobs:     s.SavedJobs(),
		JobAlerts:     s.JobAlerts(),
		PaymentEvents: s.PaymentEvents(),
		Stats:         s.Stats(),
	}
}

// nextID must be called with mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// linkable returns the user when it may be linked to companyID: it has no
// company yet or already belongs to that one. Must be called with mu held.
func (s *Store) linkable(userID string, companyID int64) (*domain.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.CompanyID != nil && *u.CompanyID != companyID {
		return nil, domain.ErrOwnerTaken
	}
	return u, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	page = page.Normalize()
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+page.PageSize, len(items))
	return items[start:end]
}

// newestFirst orders by created_at desc, id desc like the SQL listings.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func copyJob(j *domain.Job) domain.Job {
	cp := *j
	cp.Skills = slices.Clone(j.Skills)
	return cp
}

func copyCompany(c *domain.Company) domain.Company {
	cp := *c
	cp.Owners = slices.Clone(c.Owners)
	return cp
}
