package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, name, description, logo, website, location, size, industry, owners, is_verified, created_at, updated_at`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Logo, &c.Website, &c.Location, &c.Size, &c.Industry,
		pq.Array(&c.Owners), &c.IsVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) Create(ctx context.Context, c *domain.Company) error {
	if len(c.Owners) == 0 {
		return errors.New("insert company: no owner")
	}
	query := `INSERT INTO companies (name, description, logo, website, location, size, industry, owners, is_verified)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			c.Name, c.Description, c.Logo, c.Website, c.Location, c.Size, c.Industry, pq.Array(c.Owners), c.IsVerified,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return translate(err, "insert company")
		}
		return linkUserCompany(ctx, tx, c.Owners[0], c.ID)
	})
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get company")
	}
	return c, nil
}

func (r *companyRepo) Update(ctx context.Context, id int64, upd domain.CompanyUpdate) error {
	a := &args{}
	s := newSetList(a)
	if upd.Name != nil {
		s.set("name", *upd.Name)
	}
	if upd.Description != nil {
		s.set("description", *upd.Description)
	}
	if upd.Logo != nil {
		s.set("logo", *upd.Logo)
	}
	if upd.Website != nil {
		s.set("website", *upd.Website)
	}
	if upd.Location != nil {
		s.set("location", *upd.Location)
	}
	if upd.Size != nil {
		s.set("size", *upd.Size)
	}
	if upd.Industry != nil {
		s.set("industry", *upd.Industry)
	}
	query := `UPDATE companies SET ` + s.String() + ` WHERE id = ` + a.add(id)
	tag, err := r.db.Exec(ctx, query, a.values...)
	if err != nil {
		return translate(err, "update company")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *companyRepo) exists(ctx context.Context, id int64) error {
	var found bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, id).Scan(&found); err != nil {
		return translate(err, "company exists")
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *companyRepo) AddOwner(ctx context.Context, id int64, userID string) error {
	query := `UPDATE companies SET owners = array_append(owners, $2), updated_at = NOW()
              WHERE id = $1 AND NOT ($2 = ANY(owners))`
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, id, userID)
		if err != nil {
			return translate(err, "add company owner")
		}
		if tag.RowsAffected() == 0 {
			// either already an owner or no such company
			var found bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, id).Scan(&found); err != nil {
				return translate(err, "company exists")
			}
			if !found {
				return domain.ErrNotFound
			}
		}
		return linkUserCompany(ctx, tx, userID, id)
	})
}

func (r *companyRepo) RemoveOwner(ctx context.Context, id int64, userID string) (bool, error) {
	query := `UPDATE companies SET owners = array_remove(owners, $2), updated_at = NOW()
              WHERE id = $1 AND $2 = ANY(owners) AND cardinality(owners) > 1`
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, translate(err, "remove company owner")
	}
	if tag.RowsAffected() == 0 {
		return false, r.exists(ctx, id)
	}
	return true, nil
}

func (r *companyRepo) VerifyIfUnverified(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE companies SET is_verified = TRUE, updated_at = NOW() WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return false, translate(err, "verify company")
	}
	if tag.RowsAffected() == 0 {
		return false, r.exists(ctx, id)
	}
	return true, nil
}

func companyWhere(f domain.CompanyFilter) *where {
	w := &where{}
	if f.Verified != nil {
		w.and("is_verified = " + w.add(*f.Verified))
	}
	if f.Search != "" {
		p := w.add(likePattern(f.Search))
		w.and("(name ILIKE " + p + " OR industry ILIKE " + p + ")")
	}
	return w
}

func (r *companyRepo) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int64, error) {
	w := companyWhere(f)
	page := f.PageRequest.Normalize()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+w.String(), w.values...).Scan(&total); err != nil {
		return nil, 0, translate(err, "count companies")
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + w.String() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + w.add(page.PageSize) + ` OFFSET ` + w.add(page.Offset())
	rows, err := r.db.Query(ctx, query, w.values...)
	if err != nil {
		return nil, 0, translate(err, "list companies")
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, translate(err, "scan company")
		}
		companies = append(companies, *c)
	}
	return companies, total, translate(rows.Err(), "iterate companies")
}

func (r *companyRepo) CountActiveJobs(ctx context.Context, companyIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(companyIDs))
	if len(companyIDs) == 0 {
		return counts, nil
	}
	query := `SELECT company_id, COUNT(*) FROM jobs
              WHERE status = 'active' AND company_id = ANY($1)
              GROUP BY company_id`
	rows, err := r.db.Query(ctx, query, pq.Array(companyIDs))
	if err != nil {
		return nil, translate(err, "count active jobs")
	}
	defer rows.Close()

	for _, id := range companyIDs {
		counts[id] = 0
	}
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, translate(err, "scan active job count")
		}
		counts[id] = n
	}
	return counts, translate(rows.Err(), "iterate active job counts")
}
