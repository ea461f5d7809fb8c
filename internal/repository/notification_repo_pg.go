package repository

import (
	"context"
	"time"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.QueryRow(ctx, `INSERT INTO notifications (user_id, booking_id, message, is_read)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at`, n.UserID, nullInt64(n.BookingID), n.Message).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *PGNotificationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, booking_id, message, is_read, created_at FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var bookingID *int64
		if err := rows.Scan(&n.ID, &n.UserID, &bookingID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if bookingID != nil {
			n.BookingID = *bookingID
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PGNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id=$1 AND is_read=false`, userID).Scan(&count)
	return count, err
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read=true WHERE id=$1`, id)
	return err
}

// DeleteReadBefore trims read notifications older than cutoff, used by the
// worker's retention sweep.
func (r *PGNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE is_read=true AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
