package usecase

import (
	"context"
	"errors"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/policy"
	"go-jobboard-backend/pkg/apperror"
)

type savedJobUsecase struct {
	saved domain.SavedJobRepository
	jobs  domain.JobRepository
}

func NewSavedJobUsecase(saved domain.SavedJobRepository, jobs domain.JobRepository) domain.SavedJobUsecase {
	return &savedJobUsecase{saved: saved, jobs: jobs}
}

func (u *savedJobUsecase) Save(ctx context.Context, jobID int64) (*domain.SavedJob, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.SavedJobManage, policy.Resource{}); err != nil {
		return nil, err
	}
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, storeErr(err, "Job not found")
	}
	if !visible(p, job) {
		return nil, apperror.NotFound("Job not found")
	}

	s := &domain.SavedJob{UserID: p.UserID, JobID: jobID}
	if err := u.saved.Create(ctx, s); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.AlreadyExists("Job is already saved")
		}
		return nil, storeErr(err, "Job not found")
	}
	s.Job = job
	return s, nil
}

func (u *savedJobUsecase) Remove(ctx context.Context, jobID int64) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.SavedJobManage, policy.Resource{}); err != nil {
		return err
	}
	removed, err := u.saved.Delete(ctx, p.UserID, jobID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !removed {
		return apperror.NotFound("Saved job not found")
	}
	return nil
}

func (u *savedJobUsecase) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.SavedJob], error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.SavedJobManage, policy.Resource{}); err != nil {
		return nil, err
	}
	page = page.Normalize()
	items, total, err := u.saved.ListByUser(ctx, p.UserID, page)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPage(items, total, page), nil
}
