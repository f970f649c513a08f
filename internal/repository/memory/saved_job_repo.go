package memory

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"
)

type savedJobRepo struct{ s *Store }

func (r *savedJobRepo) Create(ctx context.Context, sj *domain.SavedJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[sj.JobID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.savedJobs {
		if existing.UserID == sj.UserID && existing.JobID == sj.JobID {
			return domain.ErrAlreadyExists
		}
	}
	sj.ID = r.s.nextID()
	sj.CreatedAt = r.s.now()
	cp := *sj
	cp.Job = nil
	r.s.savedJobs[sj.ID] = &cp
	return nil
}

func (r *savedJobRepo) Delete(ctx context.Context, userID string, jobID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sj := range r.s.savedJobs {
		if sj.UserID == userID && sj.JobID == jobID {
			delete(r.s.savedJobs, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *savedJobRepo) ListByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.SavedJob, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	jobs := &jobRepo{r.s}
	var matched []domain.SavedJob
	for _, sj := range r.s.savedJobs {
		if sj.UserID != userID {
			continue
		}
		cp := *sj
		if j, ok := r.s.jobs[sj.JobID]; ok {
			joined := jobs.withCompany(j)
			cp.Job = &joined
		}
		matched = append(matched, cp)
	}
	newestFirst(matched, func(s domain.SavedJob) time.Time { return s.CreatedAt }, func(s domain.SavedJob) int64 { return s.ID })
	return paginate(matched, page), int64(len(matched)), nil
}
