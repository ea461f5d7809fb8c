package invoice

import (
	"bytes"
	"testing"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	booking := &domain.Booking{
		ID:         5,
		UserID:     42,
		Status:     domain.BookingStatusConfirmed,
		TotalPrice: 550,
		Items: []domain.BookingItem{
			{ID: 1, Type: domain.ItemTypeFlight, ReferenceID: "REF-9", Price: 250, Status: domain.BookingStatusConfirmed},
			{ID: 2, Type: domain.ItemTypeHotel, RoomTypeID: 7, Price: 300, Status: domain.BookingStatusConfirmed},
		},
	}

	pdf, err := Render(booking)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Greater(t, len(pdf), 500)
}

func TestRender_NoItems(t *testing.T) {
	pdf, err := Render(&domain.Booking{ID: 5, UserID: 42, Status: domain.BookingStatusConfirmed})
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
