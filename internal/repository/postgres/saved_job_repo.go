package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type savedJobRepo struct {
	db *pgxpool.Pool
}

func NewSavedJobRepository(db *pgxpool.Pool) domain.SavedJobRepository {
	return &savedJobRepo{db: db}
}

func (r *savedJobRepo) Create(ctx context.Context, s *domain.SavedJob) error {
	query := `INSERT INTO saved_jobs (user_id, job_id) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, s.UserID, s.JobID).Scan(&s.ID, &s.CreatedAt)
	return translate(err, "insert saved job")
}

func (r *savedJobRepo) Delete(ctx context.Context, userID string, jobID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return false, translate(err, "delete saved job")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *savedJobRepo) ListByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.SavedJob, int64, error) {
	page = page.Normalize()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM saved_jobs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, translate(err, "count saved jobs")
	}

	query := `SELECT s.id, s.user_id, s.job_id, s.created_at, ` + jobColumns + jobFrom + `
              JOIN saved_jobs s ON s.job_id = j.id
              WHERE s.user_id = $1
              ORDER BY s.created_at DESC, s.id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, translate(err, "list saved jobs")
	}
	defer rows.Close()

	var saved []domain.SavedJob
	for rows.Next() {
		var s domain.SavedJob
		job, err := scanJob(prefixedRow{rows, []any{&s.ID, &s.UserID, &s.JobID, &s.CreatedAt}})
		if err != nil {
			return nil, 0, translate(err, "scan saved job")
		}
		s.Job = job
		saved = append(saved, s)
	}
	return saved, total, translate(rows.Err(), "iterate saved jobs")
}
