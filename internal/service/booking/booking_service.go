package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Julius14h/FlyNext/internal/afs"
	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/Julius14h/FlyNext/internal/kafka"
	"github.com/Julius14h/FlyNext/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidInput marks request-shape problems found before any remote call
// or local write.
var ErrInvalidInput = errors.New("invalid booking request")

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	GetBooking(ctx context.Context, id int64, user domain.User) (*BookingDetails, error)
	GetBookingRecord(ctx context.Context, id int64) (*domain.Booking, error)
	VerifyBooking(ctx context.Context, id int64, user domain.User) (*VerifyResult, error)
	CancelBooking(ctx context.Context, id int64, user domain.User) error
	CancelBookingItem(ctx context.Context, itemID int64, user domain.User) error
}

// FlightClient is the slice of the AFS client the booking core needs.
type FlightClient interface {
	CreateReservation(ctx context.Context, req afs.CreateReservationRequest) (*afs.Reservation, error)
	RetrieveReservation(ctx context.Context, lastName, bookingReference string) (*afs.RetrievedReservation, error)
	CancelReservation(ctx context.Context, lastName, bookingReference string) error
}

type Cache interface {
	AcquireRoomHold(ctx context.Context, roomTypeID int64, date time.Time, ttl time.Duration) (bool, error)
	ReleaseRoomHold(ctx context.Context, roomTypeID int64, date time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	availability       repository.AvailabilityRepository
	notifications      repository.NotificationRepository
	flights            FlightClient
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	log                *logrus.Logger
}

type ItemDraft struct {
	Type       domain.ItemType      `json:"type"`
	FlightID   string               `json:"referenceId,omitempty"`
	HotelID    int64                `json:"hotelId,omitempty"`
	RoomTypeID int64                `json:"roomTypeId,omitempty"`
	StartDate  time.Time            `json:"startDate,omitempty"`
	EndDate    time.Time            `json:"endDate,omitempty"`
	Price      float64              `json:"price,omitempty"`
	Status     domain.BookingStatus `json:"status,omitempty"`
}

type CreateBookingInput struct {
	User           domain.User
	PassportNumber string
	Items          []ItemDraft
	TotalPrice     float64
	PaymentDetails string
}

type CreateBookingResult struct {
	Booking          *domain.Booking
	FlightInfo       json.RawMessage
	BookingReference string
}

type BookingDetails struct {
	Booking *domain.Booking
	Flights []json.RawMessage
}

type VerifyResult struct {
	BookingInfo []json.RawMessage
	Confirmed   bool
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log *logrus.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	availability repository.AvailabilityRepository,
	notifications repository.NotificationRepository,
	flights FlightClient,
	cache Cache,
	producer Producer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		availability:  availability,
		notifications: notifications,
		flights:       flights,
		cache:         cache,
		producer:      producer,
		bookingTopic:  bookingTopic,
		holdTTL:       holdTTL,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking runs the whole checkout: availability checks for every hotel
// item, one AFS reservation covering all flight items, then a single local
// transaction that decrements the ledger and writes the booking with its
// items. A booking that still needs external confirmation (any flight item)
// starts PENDING; a hotel-only booking is CONFIRMED at creation.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: booking items are required", ErrInvalidInput)
	}

	var flightIDs []string
	var hotelItems []ItemDraft
	for _, draft := range input.Items {
		switch draft.Type {
		case domain.ItemTypeFlight:
			if draft.FlightID == "" {
				return nil, fmt.Errorf("%w: flight item is missing a flight id", ErrInvalidInput)
			}
			flightIDs = append(flightIDs, draft.FlightID)
		case domain.ItemTypeHotel:
			if draft.RoomTypeID == 0 {
				return nil, fmt.Errorf("%w: hotel item is missing a room type", ErrInvalidInput)
			}
			if !draft.StartDate.Before(draft.EndDate) {
				return nil, fmt.Errorf("%w: check-out must be after check-in", ErrInvalidInput)
			}
			hotelItems = append(hotelItems, draft)
		default:
			return nil, fmt.Errorf("%w: unknown booking item type", ErrInvalidInput)
		}
	}

	held, err := s.acquireHolds(ctx, hotelItems)
	if err != nil {
		s.releaseHolds(ctx, held)
		return nil, err
	}
	defer s.releaseHolds(ctx, held)

	for _, item := range hotelItems {
		ok, err := s.availability.CheckRange(ctx, item.RoomTypeID, item.StartDate, item.EndDate)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNoRoomAvailable
		}
	}

	var reservation *afs.Reservation
	if len(flightIDs) > 0 {
		reservation, err = s.flights.CreateReservation(ctx, afs.CreateReservationRequest{
			Email:          input.User.Email,
			FirstName:      input.User.FirstName,
			LastName:       input.User.LastName,
			FlightIDs:      flightIDs,
			PassportNumber: input.PassportNumber,
		})
		if err != nil {
			return nil, err
		}
	}

	status := domain.BookingStatusConfirmed
	if len(flightIDs) > 0 {
		status = domain.BookingStatusPending
	}

	booking := &domain.Booking{
		UserID:         input.User.ID,
		Status:         status,
		TotalPrice:     input.TotalPrice,
		PaymentDetails: input.PaymentDetails,
		Items:          make([]domain.BookingItem, 0, len(input.Items)),
	}
	for _, draft := range input.Items {
		itemStatus := draft.Status
		if itemStatus == "" {
			itemStatus = domain.BookingStatusConfirmed
		}
		item := domain.BookingItem{
			Type:   draft.Type,
			Price:  draft.Price,
			Status: itemStatus,
		}
		if draft.Type == domain.ItemTypeFlight {
			item.ReferenceID = reservation.BookingReference
		} else {
			item.HotelID = draft.HotelID
			item.RoomTypeID = draft.RoomTypeID
			item.StartDate = draft.StartDate
			item.EndDate = draft.EndDate
		}
		booking.Items = append(booking.Items, item)
	}

	if err := s.bookings.CreateWithItems(ctx, booking); err != nil {
		return nil, err
	}

	message := "Booking confirmed!"
	if len(flightIDs) == 0 {
		message = "Hotel booking confirmed!"
	}
	s.notify(ctx, input.User.ID, message, booking.ID)
	s.publish(ctx, "booking_created", booking, input.User.Email)

	result := &CreateBookingResult{Booking: booking}
	if reservation != nil {
		result.FlightInfo = reservation.Raw
		result.BookingReference = reservation.BookingReference
	}
	return result, nil
}

// GetBooking returns the booking with a live AFS lookup for every flight
// item. A nil result without an error means the booking does not exist;
// callers render that as an empty object, not a failure.
func (s *BookingService) GetBooking(ctx context.Context, id int64, user domain.User) (*BookingDetails, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}

	details := &BookingDetails{Booking: booking, Flights: make([]json.RawMessage, 0)}
	for _, ref := range booking.FlightReferences() {
		retrieved, err := s.flights.RetrieveReservation(ctx, user.LastName, ref)
		if err != nil {
			return nil, err
		}
		details.Flights = append(details.Flights, retrieved.Raw)
	}
	return details, nil
}

// GetBookingRecord returns the booking and its items without touching AFS,
// for callers like the invoice renderer that only need local state. A nil
// result without an error means the booking does not exist.
func (s *BookingService) GetBookingRecord(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// VerifyBooking re-fetches every flight reservation from AFS and confirms the
// booking only when every lookup succeeds and none of them reports a
// cancelled reservation.
func (s *BookingService) VerifyBooking(ctx context.Context, id int64, user domain.User) (*VerifyResult, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}

	result := &VerifyResult{BookingInfo: make([]json.RawMessage, 0)}
	remoteOK := true
	for _, ref := range booking.FlightReferences() {
		retrieved, err := s.flights.RetrieveReservation(ctx, user.LastName, ref)
		if err != nil {
			return nil, err
		}
		result.BookingInfo = append(result.BookingInfo, retrieved.Raw)
		if retrieved.Status == string(domain.BookingStatusCancelled) {
			remoteOK = false
		}
	}

	if !remoteOK {
		return result, nil
	}

	if err := s.bookings.ConfirmAll(ctx, id); err != nil {
		return nil, err
	}
	booking.Status = domain.BookingStatusConfirmed
	result.Confirmed = true
	s.publish(ctx, "booking_confirmed", booking, user.Email)
	return result, nil
}

// CancelBooking cancels every flight reservation at AFS best-effort, then
// destroys the booking and its items locally, returning hotel nights to the
// ledger. Local state is the source of truth for the user-visible outcome,
// so a failed remote cancellation is logged and does not block.
func (s *BookingService) CancelBooking(ctx context.Context, id int64, user domain.User) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return domain.ErrBookingNotFound
	}

	for _, ref := range booking.FlightReferences() {
		if err := s.flights.CancelReservation(ctx, user.LastName, ref); err != nil {
			s.log.WithError(err).WithField("booking_reference", ref).Warn("remote cancellation failed, proceeding with local cancel")
		}
	}

	s.notify(ctx, booking.UserID, "Your booking has been cancelled.", booking.ID)

	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusCancelled
	s.publish(ctx, "booking_cancelled", booking, user.Email)
	return nil
}

// CancelBookingItem removes a single item. Hotel nights go back to the
// ledger; a flight item's remote reservation is cancelled best-effort. No
// notification is emitted for a partial cancel.
func (s *BookingService) CancelBookingItem(ctx context.Context, itemID int64, user domain.User) error {
	item, err := s.bookings.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	if item.Type == domain.ItemTypeFlight && item.ReferenceID != "" {
		if err := s.flights.CancelReservation(ctx, user.LastName, item.ReferenceID); err != nil {
			s.log.WithError(err).WithField("booking_reference", item.ReferenceID).Warn("remote cancellation failed, proceeding with local item cancel")
		}
	}

	return s.bookings.DeleteItem(ctx, item)
}

type roomHold struct {
	roomTypeID int64
	date       time.Time
}

func (s *BookingService) acquireHolds(ctx context.Context, hotelItems []ItemDraft) ([]roomHold, error) {
	if s.cache == nil {
		return nil, nil
	}
	var held []roomHold
	for _, item := range hotelItems {
		for _, night := range domain.NightsOf(item.StartDate, item.EndDate) {
			ok, err := s.cache.AcquireRoomHold(ctx, item.RoomTypeID, night, s.holdTTL)
			if err != nil {
				return held, err
			}
			if !ok {
				return held, domain.ErrNoRoomAvailable
			}
			held = append(held, roomHold{roomTypeID: item.RoomTypeID, date: night})
		}
	}
	return held, nil
}

func (s *BookingService) releaseHolds(ctx context.Context, held []roomHold) {
	if s.cache == nil {
		return
	}
	for _, h := range held {
		_ = s.cache.ReleaseRoomHold(ctx, h.roomTypeID, h.date)
	}
}

func (s *BookingService) notify(ctx context.Context, userID int64, message string, bookingID int64) {
	if s.notifications == nil {
		return
	}
	n := &domain.Notification{UserID: userID, BookingID: bookingID, Message: message}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.WithError(err).WithField("booking_id", bookingID).Warn("failed to write notification")
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, email string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		Email:      email,
		Status:     string(booking.Status),
		TotalPrice: booking.TotalPrice,
		OccurredAt: time.Now(),
	}
	key := strconv.FormatInt(booking.ID, 10)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Warnf("failed to publish %s event", eventType)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.WithError(err).WithField("booking_id", booking.ID).Warnf("failed to publish %s notification", eventType)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
