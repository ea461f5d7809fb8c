package repository

import (
	"context"
	"time"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityRepository is the inventory ledger for hotel room-nights.
type AvailabilityRepository interface {
	CheckRange(ctx context.Context, roomTypeID int64, start, end time.Time) (bool, error)
	DecrementRange(ctx context.Context, roomTypeID int64, start, end time.Time) error
	IncrementRange(ctx context.Context, roomTypeID int64, start, end time.Time) error
}

type PGAvailabilityRepository struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) AvailabilityRepository {
	return &PGAvailabilityRepository{db: db}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CheckRange reports whether every night in [start, end) has a row with
// available_rooms > 0. A missing row for any night fails closed.
func (r *PGAvailabilityRepository) CheckRange(ctx context.Context, roomTypeID int64, start, end time.Time) (bool, error) {
	nights := domain.NightsOf(start, end)
	if len(nights) == 0 {
		return false, nil
	}
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM room_availability WHERE room_type_id=$1 AND date >= $2 AND date < $3 AND available_rooms > 0`, roomTypeID, start, end).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(nights), nil
}

// DecrementRange takes one room per night for [start, end) in a single
// transaction. If any night cannot be taken nothing is applied.
func (r *PGAvailabilityRepository) DecrementRange(ctx context.Context, roomTypeID int64, start, end time.Time) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := decrementNights(ctx, tx, roomTypeID, start, end); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IncrementRange gives back one room per night, used when a stay is
// cancelled.
func (r *PGAvailabilityRepository) IncrementRange(ctx context.Context, roomTypeID int64, start, end time.Time) error {
	return incrementNights(ctx, r.db, roomTypeID, start, end)
}

// decrementNights runs the conditional per-night decrement against db, which
// may be a pool or an open transaction. The available_rooms > 0 guard plus
// the affected-row check is what closes the oversell race.
func decrementNights(ctx context.Context, db execer, roomTypeID int64, start, end time.Time) error {
	for _, night := range domain.NightsOf(start, end) {
		res, err := db.Exec(ctx, `UPDATE room_availability SET available_rooms = available_rooms - 1 WHERE room_type_id=$1 AND date=$2 AND available_rooms > 0`, roomTypeID, night)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return domain.ErrNoRoomAvailable
		}
	}
	return nil
}

func incrementNights(ctx context.Context, db execer, roomTypeID int64, start, end time.Time) error {
	for _, night := range domain.NightsOf(start, end) {
		if _, err := db.Exec(ctx, `UPDATE room_availability SET available_rooms = available_rooms + 1 WHERE room_type_id=$1 AND date=$2`, roomTypeID, night); err != nil {
			return err
		}
	}
	return nil
}

var _ AvailabilityRepository = (*PGAvailabilityRepository)(nil)
