package domain

import "time"

type Notification struct {
	ID        int64
	UserID    int64
	BookingID int64 // zero when the notification is not tied to a booking
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
