package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, reservation_id, hostel_fee, admin_commission, total_amount, payment_reference, paid_at, refunded_at`

type PGTransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PGTransactionRepository{db: db}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := row.Scan(&t.ID, &t.ReservationID, &t.HostelFee, &t.AdminCommission, &t.TotalAmount, &t.PaymentReference, &t.PaidAt, &t.RefundedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTransactionRepository) GetByReservation(ctx context.Context, reservationID int64) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE reservation_id=$1`, reservationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "transaction for reservation", ID: reservationID}
	}
	return t, err
}

// List returns ledger records in insertion order.
func (r *PGTransactionRepository) List(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

var _ TransactionRepository = (*PGTransactionRepository)(nil)
