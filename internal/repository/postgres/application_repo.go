package postgres

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationSelect = `SELECT a.id, a.job_id, a.applicant_id, a.resume, a.cover_letter, a.status, a.notes, a.viewed,
       a.created_at, a.updated_at, j.title, j.company_id, u.email
FROM applications a
JOIN jobs j ON j.id = a.job_id
LEFT JOIN users u ON u.id = a.applicant_id`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.Resume, &a.CoverLetter, &a.Status, &a.Notes, &a.Viewed,
		&a.CreatedAt, &a.UpdatedAt, &a.JobTitle, &a.CompanyID, &a.ApplicantEmail,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `INSERT INTO applications (job_id, applicant_id, resume, cover_letter, status)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, app.JobID, app.ApplicantID, app.Resume, app.CoverLetter, string(app.Status)).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	return translate(err, "insert application")
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate(err, "get application")
	}
	return app, nil
}

func (r *applicationRepo) GetByJobAndApplicant(ctx context.Context, jobID int64, applicantID string) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.job_id = $1 AND a.applicant_id = $2`, jobID, applicantID))
	if err != nil {
		return nil, translate(err, "get application by job")
	}
	return app, nil
}

func applicationWhere(f domain.ApplicationFilter) *where {
	w := &where{}
	if f.JobID != nil {
		w.and("a.job_id = " + w.add(*f.JobID))
	}
	if f.ApplicantID != "" {
		w.and("a.applicant_id = " + w.add(f.ApplicantID))
	}
	if f.CompanyID != nil {
		w.and("j.company_id = " + w.add(*f.CompanyID))
	}
	if len(f.Statuses) > 0 {
		w.and("a.status = ANY(" + w.add(pq.Array(toStrings(f.Statuses))) + ")")
	}
	return w
}

func (r *applicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, int64, error) {
	w := applicationWhere(f)
	page := f.PageRequest.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id` + w.String()
	if err := r.db.QueryRow(ctx, countQuery, w.values...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count applications")
	}

	query := applicationSelect + w.String() +
		` ORDER BY a.created_at DESC, a.id DESC LIMIT ` + w.add(page.PageSize) + ` OFFSET ` + w.add(page.Offset())
	rows, err := r.db.Query(ctx, query, w.values...)
	if err != nil {
		return nil, 0, translate(err, "list applications")
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, translate(err, "scan application")
		}
		apps = append(apps, *app)
	}
	return apps, total, translate(rows.Err(), "iterate applications")
}

// existsFor reports ErrNotFound unless the application exists (and belongs to
// applicantID when one is given).
func (r *applicationRepo) existsFor(ctx context.Context, id int64, applicantID string) error {
	var found bool
	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1 AND ($2 = '' OR applicant_id = $2))`
	if err := r.db.QueryRow(ctx, query, id, applicantID).Scan(&found); err != nil {
		return translate(err, "application exists")
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) UpdateStatusIf(ctx context.Context, id int64, from domain.ApplicationStatus, upd domain.ApplicationStatusUpdate) (bool, error) {
	query := `UPDATE applications SET status = $3, notes = COALESCE($4, notes), updated_at = NOW()
              WHERE id = $1 AND status = $2`
	tag, err := r.db.Exec(ctx, query, id, string(from), string(upd.Status), upd.Notes)
	if err != nil {
		return false, translate(err, "update application status")
	}
	if tag.RowsAffected() == 0 {
		return false, r.existsFor(ctx, id, "")
	}
	return true, nil
}

func (r *applicationRepo) UpdateNotes(ctx context.Context, id int64, notes *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE applications SET notes = COALESCE($2, notes), updated_at = NOW() WHERE id = $1`, id, notes)
	if err != nil {
		return translate(err, "update application notes")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) UpdateByApplicantIf(ctx context.Context, id int64, applicantID string, statuses []domain.ApplicationStatus, upd domain.ApplicantUpdate) (bool, error) {
	query := `UPDATE applications SET resume = COALESCE($4, resume), cover_letter = COALESCE($5, cover_letter), updated_at = NOW()
              WHERE id = $1 AND applicant_id = $2 AND status = ANY($3)`
	tag, err := r.db.Exec(ctx, query, id, applicantID, pq.Array(toStrings(statuses)), upd.Resume, upd.CoverLetter)
	if err != nil {
		return false, translate(err, "update application by applicant")
	}
	if tag.RowsAffected() == 0 {
		return false, r.existsFor(ctx, id, applicantID)
	}
	return true, nil
}

func (r *applicationRepo) MarkViewed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE applications SET viewed = TRUE WHERE id = $1 AND viewed = FALSE`, id)
	return translate(err, "mark application viewed")
}

func (r *applicationRepo) DeleteIf(ctx context.Context, id int64, applicantID string, statuses []domain.ApplicationStatus) (*domain.Application, error) {
	query := `DELETE FROM applications WHERE id = $1 AND applicant_id = $2 AND status = ANY($3)
              RETURNING id, job_id, applicant_id, resume, cover_letter, status, notes, viewed, created_at, updated_at`
	var a domain.Application
	err := r.db.QueryRow(ctx, query, id, applicantID, pq.Array(toStrings(statuses))).Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.Resume, &a.CoverLetter, &a.Status, &a.Notes, &a.Viewed, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "delete application")
	}
	return &a, nil
}

func (r *applicationRepo) CountByStatus(ctx context.Context, applicantID string, since time.Time) (map[domain.ApplicationStatus]int64, int64, error) {
	query := `SELECT status, COUNT(*), COUNT(*) FILTER (WHERE created_at >= $2)
              FROM applications WHERE applicant_id = $1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, applicantID, since)
	if err != nil {
		return nil, 0, translate(err, "count applications by status")
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int64)
	var recent int64
	for rows.Next() {
		var status string
		var n, newer int64
		if err := rows.Scan(&status, &n, &newer); err != nil {
			return nil, 0, translate(err, "scan application counts")
		}
		counts[domain.ApplicationStatus(status)] = n
		recent += newer
	}
	return counts, recent, translate(rows.Err(), "iterate application counts")
}
