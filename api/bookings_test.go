package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Julius14h/FlyNext/internal/afs"
	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/Julius14h/FlyNext/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64, user domain.User) (*booking.BookingDetails, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) GetBookingRecord(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) VerifyBooking(ctx context.Context, id int64, user domain.User) (*booking.VerifyResult, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.VerifyResult), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64, user domain.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockBookingUseCase) CancelBookingItem(ctx context.Context, itemID int64, user domain.User) error {
	args := m.Called(ctx, itemID, user)
	return args.Error(0)
}

func testRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api", func(c *gin.Context) {
		c.Set(currentUserKey, domain.User{ID: 42, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	})
	NewBookingHandler(service).Register(group)
	return router
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBookingHandler_Create(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Return(&booking.CreateBookingResult{
			Booking: &domain.Booking{
				ID:     5,
				UserID: 42,
				Status: domain.BookingStatusPending,
				Items:  []domain.BookingItem{{ID: 1, BookingID: 5, Type: domain.ItemTypeFlight, ReferenceID: "REF-9", Status: domain.BookingStatusConfirmed}},
			},
			FlightInfo:       json.RawMessage(`{"bookingReference":"REF-9"}`),
			BookingReference: "REF-9",
		}, nil).Once()

	payload := `{"passportNumber":"A1234567","totalPrice":250,"bookingItems":[{"type":"FLIGHT","referenceId":"AC123","price":250}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "REF-9", body["afs_booking_reference"])
	assert.NotNil(t, body["booking"])
	service.AssertExpectations(t)
}

func TestBookingHandler_Create_PassesUserAndDates(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	var captured booking.CreateBookingInput
	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(booking.CreateBookingInput)
		}).
		Return(&booking.CreateBookingResult{Booking: &domain.Booking{ID: 1, UserID: 42, Status: domain.BookingStatusConfirmed}}, nil).Once()

	payload := `{"bookingItems":[{"type":"HOTEL","hotelId":3,"roomTypeId":7,"startDate":"2025-04-01","endDate":"2025-04-03","price":300}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), captured.User.ID)
	assert.Equal(t, "Lovelace", captured.User.LastName)
	assert.Len(t, captured.Items, 1)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), captured.Items[0].StartDate)
	assert.Equal(t, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), captured.Items[0].EndDate)
}

func TestBookingHandler_Create_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "no room available",
			err:        domain.ErrNoRoomAvailable,
			wantStatus: http.StatusBadRequest,
			wantError:  "no room available",
		},
		{
			name:       "remote booking error surfaces upstream message",
			err:        &afs.RemoteBookingError{StatusCode: http.StatusNotFound, Message: "flight not found"},
			wantStatus: http.StatusBadRequest,
			wantError:  "flight not found",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "booking failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := &MockBookingUseCase{}
			router := testRouter(service)
			service.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			payload := `{"bookingItems":[{"type":"FLIGHT","referenceId":"AC123"}]}`
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantError, decodeBody(t, rec)["error"])
		})
	}
}

func TestBookingHandler_Create_BadDate(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	payload := `{"bookingItems":[{"type":"HOTEL","roomTypeId":7,"startDate":"yesterday","endDate":"2025-04-03"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_CreateHotelBooking(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	var captured booking.CreateBookingInput
	service.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(booking.CreateBookingInput)
		}).
		Return(&booking.CreateBookingResult{Booking: &domain.Booking{ID: 12, UserID: 42, Status: domain.BookingStatusConfirmed}}, nil).Once()

	payload := `{"hotelId":3,"roomTypeId":7,"startDate":"2025-04-01","endDate":"2025-04-03","price":300}`
	req := httptest.NewRequest(http.MethodPost, "/api/hotels/bookings", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "HOTEL-12", body["bookingReference"])
	assert.Equal(t, "Hotel booking confirmed successfully", body["message"])
	assert.Len(t, captured.Items, 1)
	assert.Equal(t, domain.ItemTypeHotel, captured.Items[0].Type)
}

func TestBookingHandler_CreateHotelBooking_NoAvailability(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, domain.ErrNoRoomAvailable).Once()

	payload := `{"hotelId":3,"roomTypeId":7,"startDate":"2025-04-01","endDate":"2025-04-03","price":300}`
	req := httptest.NewRequest(http.MethodPost, "/api/hotels/bookings", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Room not available for the selected dates", decodeBody(t, rec)["error"])
}

func TestBookingHandler_Get(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("GetBooking", mock.Anything, int64(5), mock.AnythingOfType("domain.User")).
		Return(&booking.BookingDetails{
			Booking: &domain.Booking{ID: 5, UserID: 42, Status: domain.BookingStatusPending},
			Flights: []json.RawMessage{json.RawMessage(`{"status":"CONFIRMED"}`)},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(5), body["id"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Len(t, body["flights"], 1)
}

func TestBookingHandler_Get_AbsentReadsAsEmptyObject(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("GetBooking", mock.Anything, int64(99), mock.AnythingOfType("domain.User")).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
}

func TestBookingHandler_Get_InvalidID(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "GetBooking")
}

func TestBookingHandler_Verify(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("VerifyBooking", mock.Anything, int64(5), mock.AnythingOfType("domain.User")).
		Return(&booking.VerifyResult{
			BookingInfo: []json.RawMessage{json.RawMessage(`{"status":"CONFIRMED"}`)},
			Confirmed:   true,
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/5/verify", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["booking_info"], 1)
}

func TestBookingHandler_Verify_NotFound(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("VerifyBooking", mock.Anything, int64(5), mock.AnythingOfType("domain.User")).
		Return(nil, domain.ErrBookingNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/5/verify", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Booking does not exist", decodeBody(t, rec)["error"])
}

func TestBookingHandler_Invoice(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("GetBookingRecord", mock.Anything, int64(5)).
		Return(&domain.Booking{
			ID:         5,
			UserID:     42,
			Status:     domain.BookingStatusConfirmed,
			TotalPrice: 300,
			Items:      []domain.BookingItem{{ID: 1, Type: domain.ItemTypeHotel, RoomTypeID: 7, Price: 300, Status: domain.BookingStatusConfirmed}},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/5/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="document.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestBookingHandler_Invoice_NotFound(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("GetBookingRecord", mock.Anything, int64(5)).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/5/invoice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Booking does not exist.", decodeBody(t, rec)["error"])
}

func TestBookingHandler_Cancel(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CancelBooking", mock.Anything, int64(5), mock.AnythingOfType("domain.User")).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
	service.AssertExpectations(t)
}

func TestBookingHandler_Cancel_Failure(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CancelBooking", mock.Anything, int64(5), mock.AnythingOfType("domain.User")).
		Return(domain.ErrBookingNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "booking does not exist", decodeBody(t, rec)["error"])
}

func TestBookingHandler_CancelItem(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CancelBookingItem", mock.Anything, int64(9), mock.AnythingOfType("domain.User")).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/items/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestBookingHandler_CancelItem_Failure(t *testing.T) {
	service := &MockBookingUseCase{}
	router := testRouter(service)

	service.On("CancelBookingItem", mock.Anything, int64(9), mock.AnythingOfType("domain.User")).
		Return(domain.ErrItemNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/bookings/items/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "booking item does not exist", decodeBody(t, rec)["error"])
}

func TestParseDate(t *testing.T) {
	plain, err := parseDate("2025-04-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), plain)

	// Timestamps are truncated to the day.
	stamped, err := parseDate("2025-04-01T15:04:05Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), stamped)

	_, err = parseDate("April first")
	assert.Error(t, err)
}
