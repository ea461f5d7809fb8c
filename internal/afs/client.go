package afs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// RemoteBookingError carries the upstream message from the Advanced Flights
// System. Callers must not persist a local booking when they receive one.
type RemoteBookingError struct {
	StatusCode int
	Message    string
}

func (e *RemoteBookingError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("afs request failed with status %d", e.StatusCode)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client wraps the AFS HTTP API. It owns no state beyond the connection; a
// failed call surfaces immediately, nothing is retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "afs",
	})
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		breaker:    breaker,
	}
}

type CreateReservationRequest struct {
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	FlightIDs      []string `json:"flightIds"`
	PassportNumber string   `json:"passportNumber"`
}

type Reservation struct {
	BookingReference string `json:"bookingReference"`
	TicketNumber     string `json:"ticketNumber,omitempty"`
	Status           string `json:"status,omitempty"`

	// Raw is the untouched upstream payload, served back to clients as
	// flight_info.
	Raw json.RawMessage `json:"-"`
}

// RetrievedReservation keeps the upstream payload intact for display while
// exposing the fields verification needs.
type RetrievedReservation struct {
	Raw    json.RawMessage
	Status string
}

func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	if len(req.FlightIDs) == 0 {
		return nil, &RemoteBookingError{Message: "flightIds must not be empty"}
	}
	body, err := c.do(ctx, http.MethodPost, "/bookings", nil, req)
	if err != nil {
		return nil, err
	}
	var res Reservation
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode afs reservation: %w", err)
	}
	if res.BookingReference == "" {
		return nil, &RemoteBookingError{Message: "afs returned no booking reference"}
	}
	res.Raw = body
	return &res, nil
}

func (c *Client) RetrieveReservation(ctx context.Context, lastName, bookingReference string) (*RetrievedReservation, error) {
	query := url.Values{}
	query.Set("lastName", lastName)
	query.Set("bookingReference", bookingReference)
	body, err := c.do(ctx, http.MethodGet, "/bookings/retrieve", query, nil)
	if err != nil {
		return nil, err
	}
	var meta struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &meta)
	return &RetrievedReservation{Raw: body, Status: meta.Status}, nil
}

func (c *Client) CancelReservation(ctx context.Context, lastName, bookingReference string) error {
	payload := map[string]string{
		"bookingReference": bookingReference,
		"lastName":         lastName,
	}
	_, err := c.do(ctx, http.MethodPost, "/bookings/cancel", nil, payload)
	return err
}

// Search proxies the AFS lookup endpoints (/flights, /airports, /cities,
// /airlines) with the query forwarded untouched.
func (c *Client) Search(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, query, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, payload interface{}) (json.RawMessage, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal afs request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		// AFS reports failures either as non-2xx or as an "error" field in
		// an otherwise successful response.
		var probe struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &probe)
		if probe.Error != "" {
			return nil, &RemoteBookingError{StatusCode: resp.StatusCode, Message: probe.Error}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &RemoteBookingError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}
