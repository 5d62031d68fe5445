package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGListingRepository struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) ListingRepository {
	return &PGListingRepository{db: db}
}

func (r *PGListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO listings (operator_id, name) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		listing.OperatorID, listing.Name).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt); err != nil {
		return err
	}

	for i := range listing.RoomTypes {
		rt := &listing.RoomTypes[i]
		rt.ListingID = listing.ID
		if err := tx.QueryRow(ctx, `INSERT INTO room_types (listing_id, tag, price, total_capacity, occupied_capacity)
			VALUES ($1, $2, $3, $4, $5) RETURNING id, updated_at`,
			rt.ListingID, rt.Tag, rt.Price, rt.TotalCapacity, rt.OccupiedCapacity).Scan(&rt.ID, &rt.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.QueryRow(ctx, `SELECT id, operator_id, name, deleted_at, created_at, updated_at FROM listings WHERE id=$1`, id).
		Scan(&l.ID, &l.OperatorID, &l.Name, &l.DeletedAt, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "listing", ID: id}
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE listing_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		l.RoomTypes = append(l.RoomTypes, *rt)
	}
	return &l, rows.Err()
}

func (r *PGListingRepository) GetRoomType(ctx context.Context, id int64) (*domain.RoomType, error) {
	rt, err := scanRoomType(r.db.QueryRow(ctx, `SELECT `+roomTypeColumns+` FROM room_types WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "room type", ID: id}
	}
	return rt, err
}

func (r *PGListingRepository) UpdatePrice(ctx context.Context, roomTypeID int64, price int64) (*domain.RoomType, error) {
	rt, err := scanRoomType(r.db.QueryRow(ctx, `UPDATE room_types SET price=$2, updated_at=now() WHERE id=$1 RETURNING `+roomTypeColumns, roomTypeID, price))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "room type", ID: roomTypeID}
	}
	return rt, err
}

func (r *PGListingRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE listings SET deleted_at=now(), updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "listing", ID: id}
	}
	return nil
}

func (r *PGListingRepository) TryIncrement(ctx context.Context, roomTypeID int64) (*domain.RoomType, error) {
	return tryIncrement(ctx, r.db, roomTypeID)
}

func (r *PGListingRepository) Decrement(ctx context.Context, roomTypeID int64) (*domain.RoomType, error) {
	return decrement(ctx, r.db, roomTypeID)
}

var _ ListingRepository = (*PGListingRepository)(nil)
