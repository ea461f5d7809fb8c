package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Julius14h/FlyNext/internal/afs"
	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/Julius14h/FlyNext/internal/invoice"
	"github.com/Julius14h/FlyNext/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/bookings/:id", h.get)
	router.GET("/bookings/:id/verify", h.verify)
	router.GET("/bookings/:id/invoice", h.invoice)
	router.DELETE("/bookings/:id", h.cancel)
	router.DELETE("/bookings/items/:itemId", h.cancelItem)
	router.POST("/hotels/bookings", h.createHotelBooking)
}

type bookingItemRequest struct {
	Type        string  `json:"type"`
	ReferenceID string  `json:"referenceId"`
	HotelID     int64   `json:"hotelId"`
	RoomTypeID  int64   `json:"roomTypeId"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

type createBookingRequest struct {
	PassportNumber string               `json:"passportNumber"`
	BookingItems   []bookingItemRequest `json:"bookingItems"`
	TotalPrice     float64              `json:"totalPrice"`
	PaymentDetails string               `json:"paymentDetails"`
}

type hotelBookingRequest struct {
	HotelID        int64   `json:"hotelId"`
	RoomTypeID     int64   `json:"roomTypeId"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	Price          float64 `json:"price"`
	PassportNumber string  `json:"passportNumber"`
	PaymentDetails string  `json:"paymentDetails"`
}

type bookingItemResponse struct {
	ID          int64   `json:"id"`
	BookingID   int64   `json:"bookingId"`
	Type        string  `json:"type"`
	ReferenceID string  `json:"referenceId,omitempty"`
	HotelID     int64   `json:"hotelId,omitempty"`
	RoomTypeID  int64   `json:"roomTypeId,omitempty"`
	StartDate   string  `json:"startDate,omitempty"`
	EndDate     string  `json:"endDate,omitempty"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

type bookingResponse struct {
	ID             int64                 `json:"id"`
	UserID         int64                 `json:"userId"`
	Status         string                `json:"status"`
	TotalPrice     float64               `json:"totalPrice"`
	PaymentDetails string                `json:"paymentDetails,omitempty"`
	CreatedAt      string                `json:"createdAt,omitempty"`
	UpdatedAt      string                `json:"updatedAt,omitempty"`
	BookingItems   []bookingItemResponse `json:"bookingItems"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := toCreateInput(currentUser(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		status, message := createErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":               toBookingResponse(result.Booking),
		"flight_info":           result.FlightInfo,
		"afs_booking_reference": result.BookingReference,
	})
}

// createHotelBooking is the hotel-only shortcut; it builds a single-item
// draft and runs the same checkout as the generic path.
func (h *BookingHandler) createHotelBooking(c *gin.Context) {
	var req hotelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := toCreateInput(currentUser(c), createBookingRequest{
		PassportNumber: req.PassportNumber,
		TotalPrice:     req.Price,
		PaymentDetails: req.PaymentDetails,
		BookingItems: []bookingItemRequest{{
			Type:       string(domain.ItemTypeHotel),
			HotelID:    req.HotelID,
			RoomTypeID: req.RoomTypeID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			Price:      req.Price,
			Status:     string(domain.BookingStatusConfirmed),
		}},
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrNoRoomAvailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room not available for the selected dates"})
			return
		}
		if errors.Is(err, booking.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hotel booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":          toBookingResponse(result.Booking),
		"bookingReference": fmt.Sprintf("HOTEL-%d", result.Booking.ID),
		"message":          "Hotel booking confirmed successfully",
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	details, err := h.service.GetBooking(c.Request.Context(), id, currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	// Absent bookings read as an empty object, not a failure.
	if details == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	resp := toBookingResponse(details.Booking)
	c.JSON(http.StatusOK, gin.H{
		"id":             resp.ID,
		"userId":         resp.UserID,
		"status":         resp.Status,
		"totalPrice":     resp.TotalPrice,
		"paymentDetails": resp.PaymentDetails,
		"createdAt":      resp.CreatedAt,
		"updatedAt":      resp.UpdatedAt,
		"bookingItems":   resp.BookingItems,
		"flights":        details.Flights,
	})
}

func (h *BookingHandler) verify(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	result, err := h.service.VerifyBooking(c.Request.Context(), id, currentUser(c))
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error verifying booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_info": result.BookingInfo})
}

func (h *BookingHandler) invoice(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	record, err := h.service.GetBookingRecord(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	if record == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking does not exist."})
		return
	}

	pdf, err := invoice.Render(record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="document.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), id, currentUser(c)); err != nil {
		// Absent bookings and failed cancels both read as a generic 400.
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking does not exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *BookingHandler) cancelItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking item ID."})
		return
	}

	if err := h.service.CancelBookingItem(c.Request.Context(), itemID, currentUser(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking item does not exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID."})
		return 0, false
	}
	return id, true
}

func createErrorResponse(err error) (int, string) {
	var remoteErr *afs.RemoteBookingError
	switch {
	case errors.Is(err, domain.ErrNoRoomAvailable):
		return http.StatusBadRequest, "no room available"
	case errors.As(err, &remoteErr):
		return http.StatusBadRequest, remoteErr.Message
	case errors.Is(err, booking.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "booking failed"
	}
}

func toCreateInput(user domain.User, req createBookingRequest) (booking.CreateBookingInput, error) {
	input := booking.CreateBookingInput{
		User:           user,
		PassportNumber: req.PassportNumber,
		TotalPrice:     req.TotalPrice,
		PaymentDetails: req.PaymentDetails,
		Items:          make([]booking.ItemDraft, 0, len(req.BookingItems)),
	}
	for _, item := range req.BookingItems {
		draft := booking.ItemDraft{
			Type:       domain.ItemType(item.Type),
			FlightID:   item.ReferenceID,
			HotelID:    item.HotelID,
			RoomTypeID: item.RoomTypeID,
			Price:      item.Price,
			Status:     domain.BookingStatus(item.Status),
		}
		if item.StartDate != "" {
			start, err := parseDate(item.StartDate)
			if err != nil {
				return input, fmt.Errorf("invalid startDate %q", item.StartDate)
			}
			draft.StartDate = start
		}
		if item.EndDate != "" {
			end, err := parseDate(item.EndDate)
			if err != nil {
				return input, fmt.Errorf("invalid endDate %q", item.EndDate)
			}
			draft.EndDate = end
		}
		input.Items = append(input.Items, draft)
	}
	return input, nil
}

// parseDate accepts both plain calendar dates and full timestamps; only the
// day matters for room-nights.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		Status:         string(b.Status),
		TotalPrice:     b.TotalPrice,
		PaymentDetails: b.PaymentDetails,
		BookingItems:   make([]bookingItemResponse, 0, len(b.Items)),
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	for _, item := range b.Items {
		itemResp := bookingItemResponse{
			ID:          item.ID,
			BookingID:   item.BookingID,
			Type:        string(item.Type),
			ReferenceID: item.ReferenceID,
			HotelID:     item.HotelID,
			RoomTypeID:  item.RoomTypeID,
			Price:       item.Price,
			Status:      string(item.Status),
		}
		if !item.StartDate.IsZero() {
			itemResp.StartDate = item.StartDate.Format("2006-01-02")
		}
		if !item.EndDate.IsZero() {
			itemResp.EndDate = item.EndDate.Format("2006-01-02")
		}
		resp.BookingItems = append(resp.BookingItems, itemResp)
	}
	return resp
}
