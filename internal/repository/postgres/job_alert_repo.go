package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type jobAlertRepo struct {
	db *pgxpool.Pool
}

func NewJobAlertRepository(db *pgxpool.Pool) domain.JobAlertRepository {
	return &jobAlertRepo{db: db}
}

const jobAlertColumns = `id, user_id, keywords, location, job_type, min_salary, frequency, active, created_at, updated_at`

func scanJobAlert(row pgx.Row) (*domain.JobAlert, error) {
	var a domain.JobAlert
	if err := row.Scan(&a.ID, &a.UserID, &a.Keywords, &a.Location, &a.Type, &a.MinSalary, &a.Frequency, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *jobAlertRepo) Create(ctx context.Context, a *domain.JobAlert) error {
	query := `INSERT INTO job_alerts (user_id, keywords, location, job_type, min_salary, frequency, active)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, a.UserID, a.Keywords, a.Location, string(a.Type), a.MinSalary, string(a.Frequency), a.Active).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err, "insert job alert")
}

func (r *jobAlertRepo) GetByID(ctx context.Context, id int64) (*domain.JobAlert, error) {
	a, err := scanJobAlert(r.db.QueryRow(ctx, `SELECT `+jobAlertColumns+` FROM job_alerts WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get job alert")
	}
	return a, nil
}

func (r *jobAlertRepo) Update(ctx context.Context, id int64, upd domain.JobAlertUpdate) error {
	a := &args{}
	s := newSetList(a)
	if upd.Keywords != nil {
		s.set("keywords", *upd.Keywords)
	}
	if upd.Location != nil {
		s.set("location", *upd.Location)
	}
	if upd.Type != nil {
		s.set("job_type", string(*upd.Type))
	}
	if upd.MinSalary != nil {
		s.set("min_salary", *upd.MinSalary)
	}
	if upd.Frequency != nil {
		s.set("frequency", string(*upd.Frequency))
	}
	if upd.Active != nil {
		s.set("active", *upd.Active)
	}
	tag, err := r.db.Exec(ctx, `UPDATE job_alerts SET `+s.String()+` WHERE id = `+a.add(id), a.values...)
	if err != nil {
		return translate(err, "update job alert")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobAlertRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_alerts WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete job alert")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobAlertRepo) ListByUser(ctx context.Context, userID string) ([]domain.JobAlert, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobAlertColumns+` FROM job_alerts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, translate(err, "list job alerts")
	}
	defer rows.Close()

	alerts := []domain.JobAlert{}
	for rows.Next() {
		a, err := scanJobAlert(rows)
		if err != nil {
			return nil, translate(err, "scan job alert")
		}
		alerts = append(alerts, *a)
	}
	return alerts, translate(rows.Err(), "iterate job alerts")
}
