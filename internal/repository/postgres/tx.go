package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// withTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic; panics are rethrown after the rollback.
//
//	err := withTx(ctx, db, func(tx pgx.Tx) error {
//	    _, err := tx.Exec(ctx, "UPDATE ...")
//	    return err
//	})
func withTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return translate(err, "begin tx")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = translate(tx.Commit(ctx), "commit tx")
	}()

	return fn(tx)
}

// linkUserCompany points a user at companyID unless the user already belongs
// to another company. The row lock taken by the UPDATE serialises concurrent
// links of the same user.
func linkUserCompany(ctx context.Context, tx pgx.Tx, userID string, companyID int64) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET company_id = $2, updated_at = NOW()
              WHERE id = $1 AND (company_id IS NULL OR company_id = $2)`, userID, companyID)
	if err != nil {
		return translate(err, "link user company")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var found bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&found); err != nil {
		return translate(err, "user exists")
	}
	if !found {
		return domain.ErrNotFound
	}
	return domain.ErrOwnerTaken
}
