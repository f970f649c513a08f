package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const (
	jobColumns = `j.id, j.company_id, j.title, j.description, j.requirements, j.benefits, j.location,
       j.salary_min, j.salary_max, j.salary_currency, j.job_type, j.experience_level, j.category, j.skills,
       j.status, j.featured, j.views, j.application_count, j.expires_at, j.created_at, j.updated_at,
       c.name`
	jobFrom   = ` FROM jobs j JOIN companies c ON c.id = j.company_id`
	jobSelect = `SELECT ` + jobColumns + jobFrom
)

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Requirements, &j.Benefits, &j.Location,
		&j.Salary.Min, &j.Salary.Max, &j.Salary.Currency, &j.Type, &j.ExperienceLevel, &j.Category, pq.Array(&j.Skills),
		&j.Status, &j.Featured, &j.Views, &j.ApplicationCount, &j.ExpiresAt, &j.CreatedAt, &j.UpdatedAt,
		&j.CompanyName,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (company_id, title, description, requirements, benefits, location,
                  salary_min, salary_max, salary_currency, job_type, experience_level, category, skills,
                  status, featured, expires_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		job.CompanyID, job.Title, job.Description, job.Requirements, job.Benefits, job.Location,
		job.Salary.Min, job.Salary.Max, job.Salary.Currency, string(job.Type), job.ExperienceLevel, job.Category,
		pq.Array(job.Skills), string(job.Status), job.Featured, job.ExpiresAt,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	return translate(err, "insert job")
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		return nil, translate(err, "get job")
	}
	return job, nil
}

func (r *jobRepo) Update(ctx context.Context, id int64, upd domain.JobUpdate) error {
	a := &args{}
	s := newSetList(a)
	if upd.Title != nil {
		s.set("title", *upd.Title)
	}
	if upd.Description != nil {
		s.set("description", *upd.Description)
	}
	if upd.Requirements != nil {
		s.set("requirements", *upd.Requirements)
	}
	if upd.Benefits != nil {
		s.set("benefits", *upd.Benefits)
	}
	if upd.Location != nil {
		s.set("location", *upd.Location)
	}
	if upd.Salary != nil {
		s.set("salary_min", upd.Salary.Min)
		s.set("salary_max", upd.Salary.Max)
		s.set("salary_currency", upd.Salary.Currency)
	}
	if upd.Type != nil {
		s.set("job_type", string(*upd.Type))
	}
	if upd.ExperienceLevel != nil {
		s.set("experience_level", *upd.ExperienceLevel)
	}
	if upd.Category != nil {
		s.set("category", *upd.Category)
	}
	if upd.Skills != nil {
		s.set("skills", pq.Array(upd.Skills))
	}
	if upd.ExpiresAt != nil {
		s.set("expires_at", *upd.ExpiresAt)
	}
	query := `UPDATE jobs SET ` + s.String() + ` WHERE id = ` + a.add(id)
	tag, err := r.db.Exec(ctx, query, a.values...)
	if err != nil {
		return translate(err, "update job")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) exists(ctx context.Context, id int64) error {
	var found bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&found); err != nil {
		return translate(err, "job exists")
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) UpdateStatusIf(ctx context.Context, id int64, from []domain.JobStatus, to domain.JobStatus, featured bool) (bool, error) {
	query := `UPDATE jobs SET status = $3, featured = featured OR $4, updated_at = NOW()
              WHERE id = $1 AND status = ANY($2)`
	tag, err := r.db.Exec(ctx, query, id, pq.Array(toStrings(from)), string(to), featured)
	if err != nil {
		return false, translate(err, "update job status")
	}
	if tag.RowsAffected() == 0 {
		return false, r.exists(ctx, id)
	}
	return true, nil
}

func (r *jobRepo) IncrementApplicationCount(ctx context.Context, id int64, delta int) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET application_count = GREATEST(application_count + $2, 0) WHERE id = $1`, id, delta)
	if err != nil {
		return translate(err, "increment application count")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) IncrementViews(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE jobs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return translate(err, "increment job views")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// jobWhere is the single predicate behind both the listing and its count.
func jobWhere(f domain.JobFilter) *where {
	w := &where{}
	if len(f.Statuses) > 0 {
		w.and("j.status = ANY(" + w.add(pq.Array(toStrings(f.Statuses))) + ")")
	}
	if f.CompanyID != nil {
		w.and("j.company_id = " + w.add(*f.CompanyID))
	}
	if f.Type != "" {
		w.and("j.job_type = " + w.add(string(f.Type)))
	}
	if f.ExperienceLevel != "" {
		w.and("j.experience_level = " + w.add(f.ExperienceLevel))
	}
	if f.Category != "" {
		w.and("j.category = " + w.add(f.Category))
	}
	if f.Featured != nil {
		w.and("j.featured = " + w.add(*f.Featured))
	}
	if f.Location != "" {
		w.and("j.location ILIKE " + w.add(likePattern(f.Location)))
	}
	if f.MinSalary > 0 {
		w.and("j.salary_min >= " + w.add(f.MinSalary))
	}
	if f.Search != "" {
		p := w.add(likePattern(f.Search))
		// skills match one at a time, never across a joined string
		w.and("(j.title ILIKE " + p + " OR j.description ILIKE " + p +
			" OR EXISTS (SELECT 1 FROM unnest(j.skills) AS s(skill) WHERE s.skill ILIKE " + p + "))")
	}
	return w
}

func (r *jobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	w := jobWhere(f)
	page := f.PageRequest.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*)` + jobFrom + w.String()
	if err := r.db.QueryRow(ctx, countQuery, w.values...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count jobs")
	}

	query := jobSelect + w.String() +
		` ORDER BY j.created_at DESC, j.id DESC LIMIT ` + w.add(page.PageSize) + ` OFFSET ` + w.add(page.Offset())
	rows, err := r.db.Query(ctx, query, w.values...)
	if err != nil {
		return nil, 0, translate(err, "list jobs")
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, translate(err, "scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, translate(rows.Err(), "iterate jobs")
}

func (r *jobRepo) ApplicationCountDrift(ctx context.Context) (map[int64]int64, error) {
	query := `SELECT j.id, COUNT(a.id) - j.application_count
              FROM jobs j LEFT JOIN applications a ON a.job_id = j.id
              GROUP BY j.id
              HAVING COUNT(a.id) <> j.application_count`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translate(err, "application count drift")
	}
	defer rows.Close()

	drift := make(map[int64]int64)
	for rows.Next() {
		var id, d int64
		if err := rows.Scan(&id, &d); err != nil {
			return nil, translate(err, "scan application count drift")
		}
		drift[id] = d
	}
	return drift, translate(rows.Err(), "iterate application count drift")
}

func (r *jobRepo) RepairApplicationCounts(ctx context.Context, expected map[int64]int64) (int64, error) {
	if len(expected) == 0 {
		return 0, nil
	}
	ids := make([]int64, 0, len(expected))
	drifts := make([]int64, 0, len(expected))
	for id, d := range expected {
		ids = append(ids, id)
		drifts = append(drifts, d)
	}
	// The drift is re-checked against the locked row, so a counter op that
	// landed since it was observed leaves the job alone.
	query := `UPDATE jobs j SET application_count = live.n
              FROM unnest($1::bigint[], $2::bigint[]) AS want(id, drift),
                   LATERAL (SELECT COUNT(*) AS n FROM applications a WHERE a.job_id = want.id) live
              WHERE j.id = want.id AND live.n - j.application_count = want.drift AND want.drift <> 0`
	tag, err := r.db.Exec(ctx, query, pq.Array(ids), pq.Array(drifts))
	if err != nil {
		return 0, translate(err, "repair application counts")
	}
	return tag.RowsAffected(), nil
}
