package memory

import (
	"context"
	"slices"
	"time"

	"go-jobboard-backend/internal/domain"
)

type jobRepo struct{ s *Store }

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[job.CompanyID]; !ok {
		return domain.ErrNotFound
	}
	now := r.s.now()
	job.ID = r.s.nextID()
	job.CreatedAt, job.UpdatedAt = now, now
	cp := copyJob(job)
	r.s.jobs[job.ID] = &cp
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := r.withCompany(j)
	return &cp, nil
}

// withCompany must be called with mu held.
func (r *jobRepo) withCompany(j *domain.Job) domain.Job {
	cp := copyJob(j)
	if c, ok := r.s.companies[j.CompanyID]; ok {
		name := c.Name
		cp.CompanyName = &name
	}
	return cp
}

func (r *jobRepo) Update(ctx context.Context, id int64, upd domain.JobUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	setIf(&j.Title, upd.Title)
	setIf(&j.Description, upd.Description)
	setIf(&j.Requirements, upd.Requirements)
	setIf(&j.Location, upd.Location)
	setIf(&j.Salary, upd.Salary)
	setIf(&j.Type, upd.Type)
	setIf(&j.ExperienceLevel, upd.ExperienceLevel)
	setIf(&j.Category, upd.Category)
	if upd.Benefits != nil {
		v := *upd.Benefits
		j.Benefits = &v
	}
	if upd.Skills != nil {
		j.Skills = slices.Clone(upd.Skills)
	}
	if upd.ExpiresAt != nil {
		v := *upd.ExpiresAt
		j.ExpiresAt = &v
	}
	j.UpdatedAt = r.s.now()
	return nil
}

func (r *jobRepo) UpdateStatusIf(ctx context.Context, id int64, from []domain.JobStatus, to domain.JobStatus, featured bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !slices.Contains(from, j.Status) {
		return false, nil
	}
	j.Status = to
	j.Featured = j.Featured || featured
	j.UpdatedAt = r.s.now()
	return true, nil
}

func (r *jobRepo) IncrementApplicationCount(ctx context.Context, id int64, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.ApplicationCount = max(0, j.ApplicationCount+int64(delta))
	return nil
}

func (r *jobRepo) IncrementViews(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Views++
	return nil
}

func (r *jobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Job
	for _, j := range r.s.jobs {
		if matchJob(j, f) {
			matched = append(matched, r.withCompany(j))
		}
	}
	newestFirst(matched, func(j domain.Job) time.Time { return j.CreatedAt }, func(j domain.Job) int64 { return j.ID })
	return paginate(matched, f.PageRequest), int64(len(matched)), nil
}

// matchJob is the single predicate used for both the page and the count.
func matchJob(j *domain.Job, f domain.JobFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, j.Status) {
		return false
	}
	if f.CompanyID != nil && j.CompanyID != *f.CompanyID {
		return false
	}
	if f.Type != "" && j.Type != f.Type {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.Featured != nil && j.Featured != *f.Featured {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.MinSalary > 0 && j.Salary.Min < f.MinSalary {
		return false
	}
	if f.Search != "" {
		hit := containsFold(j.Title, f.Search) || containsFold(j.Description, f.Search)
		for _, skill := range j.Skills {
			hit = hit || containsFold(skill, f.Search)
		}
		if !hit {
			return false
		}
	}
	return true
}

func (r *jobRepo) liveApplicationCounts() map[int64]int64 {
	live := make(map[int64]int64)
	for _, a := range r.s.applications {
		live[a.JobID]++
	}
	return live
}

func (r *jobRepo) ApplicationCountDrift(ctx context.Context) (map[int64]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	live := r.liveApplicationCounts()
	drift := make(map[int64]int64)
	for id, j := range r.s.jobs {
		if d := live[id] - j.ApplicationCount; d != 0 {
			drift[id] = d
		}
	}
	return drift, nil
}

func (r *jobRepo) RepairApplicationCounts(ctx context.Context, expected map[int64]int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	live := r.liveApplicationCounts()
	var fixed int64
	for id, want := range expected {
		j, ok := r.s.jobs[id]
		if !ok || want == 0 || live[id]-j.ApplicationCount != want {
			continue
		}
		j.ApplicationCount = live[id]
		fixed++
	}
	return fixed, nil
}
