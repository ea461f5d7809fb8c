package domain

import (
	"errors"
	"time"
)

var (
	ErrNoRoomAvailable = errors.New("no room available")
	ErrBookingNotFound = errors.New("booking does not exist")
	ErrItemNotFound    = errors.New("booking item does not exist")
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type ItemType string

const (
	ItemTypeFlight ItemType = "FLIGHT"
	ItemTypeHotel  ItemType = "HOTEL"
)

type Booking struct {
	ID             int64
	UserID         int64
	Status         BookingStatus
	TotalPrice     float64
	PaymentDetails string
	Items          []BookingItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingItem is one flight leg-group or one hotel room-stay. ReferenceID is
// the AFS booking reference for FLIGHT items and empty for HOTEL items;
// HotelID/RoomTypeID and the date range are zero for FLIGHT items.
type BookingItem struct {
	ID          int64
	BookingID   int64
	Type        ItemType
	ReferenceID string
	HotelID     int64
	RoomTypeID  int64
	StartDate   time.Time
	EndDate     time.Time
	Price       float64
	Status      BookingStatus
}

// FlightReferences returns the distinct non-empty AFS references of the
// booking's FLIGHT items, in item order.
func (b *Booking) FlightReferences() []string {
	seen := make(map[string]bool)
	refs := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Type != ItemTypeFlight || item.ReferenceID == "" {
			continue
		}
		if seen[item.ReferenceID] {
			continue
		}
		seen[item.ReferenceID] = true
		refs = append(refs, item.ReferenceID)
	}
	return refs
}

func (b *Booking) HasFlightItems() bool {
	for _, item := range b.Items {
		if item.Type == ItemTypeFlight {
			return true
		}
	}
	return false
}

// User is the authenticated identity carried by the request token. The
// booking core never writes users; AFS needs the names and email.
type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}
