package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	CreateWithItems(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetItem(ctx context.Context, itemID int64) (*domain.BookingItem, error)
	ConfirmAll(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteItem(ctx context.Context, item *domain.BookingItem) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateWithItems persists the booking and its items in one transaction and
// decrements room availability for every HOTEL item inside the same
// transaction, so a stay is either fully written and fully taken from the
// ledger or not at all.
func (r *PGBookingRepository) CreateWithItems(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := range booking.Items {
		item := &booking.Items[i]
		if item.Type != domain.ItemTypeHotel {
			continue
		}
		if err := decrementNights(ctx, tx, item.RoomTypeID, item.StartDate, item.EndDate); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (user_id, status, total_price, payment_details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`, booking.UserID, booking.Status, booking.TotalPrice, booking.PaymentDetails).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range booking.Items {
		item := &booking.Items[i]
		item.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO booking_items (booking_id, type, reference_id, hotel_id, room_type_id, start_date, end_date, price, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			item.BookingID, item.Type, nullString(item.ReferenceID), nullInt64(item.HotelID), nullInt64(item.RoomTypeID),
			nullTime(item.StartDate), nullTime(item.EndDate), item.Price, item.Status).
			Scan(&item.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, status, total_price, payment_details, created_at, updated_at FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.Status, &b.TotalPrice, &b.PaymentDetails, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return &b, nil
}

func (r *PGBookingRepository) GetItem(ctx context.Context, itemID int64) (*domain.BookingItem, error) {
	row := r.db.QueryRow(ctx, `SELECT id, booking_id, type, reference_id, hotel_id, room_type_id, start_date, end_date, price, status FROM booking_items WHERE id=$1`, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ConfirmAll sets the booking and all of its items to CONFIRMED.
func (r *PGBookingRepository) ConfirmAll(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, domain.BookingStatusConfirmed, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE booking_items SET status=$1 WHERE booking_id=$2`, domain.BookingStatusConfirmed, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes the booking and its items and returns the hotel nights to
// the ledger, all in one transaction. Cancellation is destructive.
func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id, booking_id, type, reference_id, hotel_id, room_type_id, start_date, end_date, price, status FROM booking_items WHERE booking_id=$1`, id)
	if err != nil {
		return err
	}
	items, err := collectItems(rows)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Type != domain.ItemTypeHotel || item.RoomTypeID == 0 {
			continue
		}
		if err := incrementNights(ctx, tx, item.RoomTypeID, item.StartDate, item.EndDate); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_items WHERE booking_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return tx.Commit(ctx)
}

// DeleteItem removes a single item, returning its hotel nights to the ledger
// when it is a HOTEL item. The parent booking stays as it is.
func (r *PGBookingRepository) DeleteItem(ctx context.Context, item *domain.BookingItem) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if item.Type == domain.ItemTypeHotel && item.RoomTypeID != 0 {
		if err := incrementNights(ctx, tx, item.RoomTypeID, item.StartDate, item.EndDate); err != nil {
			return err
		}
	}

	res, err := tx.Exec(ctx, `DELETE FROM booking_items WHERE id=$1`, item.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGBookingRepository) loadItems(ctx context.Context, bookingID int64) ([]domain.BookingItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, type, reference_id, hotel_id, room_type_id, start_date, end_date, price, status FROM booking_items WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]domain.BookingItem, error) {
	defer rows.Close()
	var items []domain.BookingItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.BookingItem, error) {
	var item domain.BookingItem
	var ref *string
	var hotelID, roomTypeID *int64
	var start, end *time.Time
	if err := row.Scan(&item.ID, &item.BookingID, &item.Type, &ref, &hotelID, &roomTypeID, &start, &end, &item.Price, &item.Status); err != nil {
		return nil, err
	}
	if ref != nil {
		item.ReferenceID = *ref
	}
	if hotelID != nil {
		item.HotelID = *hotelID
	}
	if roomTypeID != nil {
		item.RoomTypeID = *roomTypeID
	}
	if start != nil {
		item.StartDate = *start
	}
	if end != nil {
		item.EndDate = *end
	}
	return &item, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ BookingRepository = (*PGBookingRepository)(nil)
