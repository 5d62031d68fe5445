package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const roomTypeColumns = `id, listing_id, tag, price, total_capacity, occupied_capacity, updated_at`

func scanRoomType(row pgx.Row) (*domain.RoomType, error) {
	var rt domain.RoomType
	if err := row.Scan(&rt.ID, &rt.ListingID, &rt.Tag, &rt.Price, &rt.TotalCapacity, &rt.OccupiedCapacity, &rt.UpdatedAt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// tryIncrement takes one slot only if occupied < total, evaluated and applied
// by the database in the same statement.
func tryIncrement(ctx context.Context, q querier, roomTypeID int64) (*domain.RoomType, error) {
	rt, err := scanRoomType(q.QueryRow(ctx, `UPDATE room_types
		SET occupied_capacity = occupied_capacity + 1, updated_at = now()
		WHERE id = $1 AND occupied_capacity < total_capacity
		RETURNING `+roomTypeColumns, roomTypeID))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM room_types WHERE id = $1)`, roomTypeID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, &domain.NotFoundError{Kind: "room type", ID: roomTypeID}
		}
		return nil, &domain.CapacityError{RoomTypeID: roomTypeID}
	}
	return rt, err
}

func decrement(ctx context.Context, q querier, roomTypeID int64) (*domain.RoomType, error) {
	rt, err := scanRoomType(q.QueryRow(ctx, `UPDATE room_types
		SET occupied_capacity = GREATEST(occupied_capacity - 1, 0), updated_at = now()
		WHERE id = $1
		RETURNING `+roomTypeColumns, roomTypeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "room type", ID: roomTypeID}
	}
	return rt, err
}

func applyCapacityDelta(ctx context.Context, q querier, roomTypeID int64, delta int) error {
	var err error
	switch {
	case delta > 0:
		_, err = tryIncrement(ctx, q, roomTypeID)
	case delta < 0:
		_, err = decrement(ctx, q, roomTypeID)
	}
	return err
}
