package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type paymentEventRepo struct {
	db *pgxpool.Pool
}

func NewPaymentEventRepository(db *pgxpool.Pool) domain.PaymentEventRepository {
	return &paymentEventRepo{db: db}
}

func (r *paymentEventRepo) Record(ctx context.Context, e *domain.PaymentEvent) error {
	query := `INSERT INTO payment_events (id, type, job_id, plan, outcome) VALUES ($1, $2, $3, $4, $5) RETURNING received_at`
	err := r.db.QueryRow(ctx, query, e.ID, e.Type, e.JobID, e.Plan, e.Outcome).Scan(&e.ReceivedAt)
	return translate(err, "record payment event")
}

func (r *paymentEventRepo) Forget(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM payment_events WHERE id = $1`, id)
	return translate(err, "forget payment event")
}
