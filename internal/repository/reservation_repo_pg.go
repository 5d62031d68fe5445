package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const reservationColumns = `id, listing_id, room_type_id, room_type, student_id, semester,
	contact_name, contact_email, contact_phone, status, payment_status,
	hostel_fee, admin_commission, total_amount, COALESCE(payment_reference, ''), paid_at,
	COALESCE(access_code, ''), approved_at, is_archived,
	has_dispute, dispute_status, dispute_reason, dispute_details, dispute_resolution,
	dispute_opened_by, dispute_opened_at, dispute_resolved_by, dispute_resolved_at,
	admin_override, override_reason, override_by, override_timestamp,
	refund_status, refund_amount, refund_reason, refunded_by, refunded_at,
	version, created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var r domain.Reservation
	err := row.Scan(
		&r.ID, &r.ListingID, &r.RoomTypeID, &r.RoomType, &r.StudentID, &r.Semester,
		&r.Contact.Name, &r.Contact.Email, &r.Contact.Phone, &r.Status, &r.PaymentStatus,
		&r.Fees.HostelFee, &r.Fees.AdminCommission, &r.Fees.TotalAmount, &r.PaymentReference, &r.PaidAt,
		&r.AccessCode, &r.ApprovedAt, &r.IsArchived,
		&r.Dispute.HasDispute, &r.Dispute.Status, &r.Dispute.Reason, &r.Dispute.Details, &r.Dispute.Resolution,
		&r.Dispute.OpenedBy, &r.Dispute.OpenedAt, &r.Dispute.ResolvedBy, &r.Dispute.ResolvedAt,
		&r.Override.Applied, &r.Override.Reason, &r.Override.By, &r.Override.Timestamp,
		&r.Refund.Status, &r.Refund.Amount, &r.Refund.Reason, &r.Refund.RefundedBy, &r.Refund.RefundedAt,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.QueryRow(ctx, `INSERT INTO reservations
		(listing_id, room_type_id, room_type, student_id, semester, contact_name, contact_email, contact_phone,
		 status, payment_status, hostel_fee, admin_commission, total_amount, refund_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, version, created_at, updated_at`,
		res.ListingID, res.RoomTypeID, res.RoomType, res.StudentID, res.Semester,
		res.Contact.Name, res.Contact.Email, res.Contact.Phone,
		res.Status, res.PaymentStatus, res.Fees.HostelFee, res.Fees.AdminCommission, res.Fees.TotalAmount, res.Refund.Status).
		Scan(&res.ID, &res.Version, &res.CreatedAt, &res.UpdatedAt)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "reservation", ID: id}
	}
	return res, err
}

func (r *PGReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.ListingID != 0 {
		args = append(args, filter.ListingID)
		where = append(where, fmt.Sprintf("listing_id = $%d", len(args)))
	}
	if !filter.IncludeArchived {
		where = append(where, "NOT is_archived")
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return r.query(ctx, query, args...)
}

func (r *PGReservationRepository) ListRepriceable(ctx context.Context, roomTypeID int64) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE room_type_id=$1 AND status IN ($2, $3) AND payment_status=$4 ORDER BY id`,
		roomTypeID, domain.StatusPending, domain.StatusApprovedForPayment, domain.PaymentPending)
}

func (r *PGReservationRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *PGReservationRepository) Apply(ctx context.Context, m Mutation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res := m.Reservation
	if err := applyCapacityDelta(ctx, tx, res.RoomTypeID, m.CapacityDelta); err != nil {
		return err
	}

	if m.Delete {
		cmd, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id=$1 AND status=$2 AND payment_status=$3 AND version=$4`,
			res.ID, m.Expected, m.ExpectedPayment, m.ExpectedVersion)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrStaleWrite
		}
	} else if err := updateReservation(ctx, tx, m); err != nil {
		return err
	}

	if m.Payment != nil {
		err := tx.QueryRow(ctx, `INSERT INTO transactions
			(reservation_id, hostel_fee, admin_commission, total_amount, payment_reference, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			m.Payment.ReservationID, m.Payment.HostelFee, m.Payment.AdminCommission, m.Payment.TotalAmount,
			m.Payment.PaymentReference, m.Payment.PaidAt).Scan(&m.Payment.ID)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &domain.ValidationError{Field: "payment_reference", Message: "already used by another reservation"}
		}
		if err != nil {
			return err
		}
	}

	if m.RefundedAt != nil {
		if _, err := tx.Exec(ctx, `UPDATE transactions SET refunded_at=$2 WHERE reservation_id=$1 AND refunded_at IS NULL`,
			res.ID, *m.RefundedAt); err != nil {
			return err
		}
	}

	if m.Audit != nil {
		if err := insertAudit(ctx, tx, m.Audit); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func updateReservation(ctx context.Context, q querier, m Mutation) error {
	res := m.Reservation
	err := q.QueryRow(ctx, `UPDATE reservations SET
		status=$4, payment_status=$5, hostel_fee=$6, admin_commission=$7, total_amount=$8,
		payment_reference=NULLIF($9, ''), paid_at=$10, access_code=NULLIF($11, ''), approved_at=$12, is_archived=$13,
		has_dispute=$14, dispute_status=$15, dispute_reason=$16, dispute_details=$17, dispute_resolution=$18,
		dispute_opened_by=$19, dispute_opened_at=$20, dispute_resolved_by=$21, dispute_resolved_at=$22,
		admin_override=$23, override_reason=$24, override_by=$25, override_timestamp=$26,
		refund_status=$27, refund_amount=$28, refund_reason=$29, refunded_by=$30, refunded_at=$31,
		version=version+1, updated_at=now()
		WHERE id=$1 AND status=$2 AND payment_status=$3 AND version=$32
		RETURNING version, updated_at`,
		res.ID, m.Expected, m.ExpectedPayment,
		res.Status, res.PaymentStatus, res.Fees.HostelFee, res.Fees.AdminCommission, res.Fees.TotalAmount,
		res.PaymentReference, res.PaidAt, res.AccessCode, res.ApprovedAt, res.IsArchived,
		res.Dispute.HasDispute, res.Dispute.Status, res.Dispute.Reason, res.Dispute.Details, res.Dispute.Resolution,
		res.Dispute.OpenedBy, res.Dispute.OpenedAt, res.Dispute.ResolvedBy, res.Dispute.ResolvedAt,
		res.Override.Applied, res.Override.Reason, res.Override.By, res.Override.Timestamp,
		res.Refund.Status, res.Refund.Amount, res.Refund.Reason, res.Refund.RefundedBy, res.Refund.RefundedAt,
		m.ExpectedVersion,
	).Scan(&res.Version, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrStaleWrite
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &domain.ValidationError{Field: pgErr.ConstraintName, Message: "already in use"}
	}
	return err
}

func insertAudit(ctx context.Context, q querier, entry *domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	return q.QueryRow(ctx, `INSERT INTO audit_log (actor_id, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		entry.ActorID, entry.Action, entry.TargetType, entry.TargetID, details).Scan(&entry.ID, &entry.CreatedAt)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
