package flights

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
)

// SearchKind names one of the AFS lookup endpoints the service proxies.
type SearchKind string

const (
	SearchFlights  SearchKind = "flights"
	SearchAirports SearchKind = "airports"
	SearchCities   SearchKind = "cities"
	SearchAirlines SearchKind = "airlines"
)

var ErrUnknownSearchKind = errors.New("unknown search kind")

type SearchUseCase interface {
	Search(ctx context.Context, kind SearchKind, query url.Values) (json.RawMessage, error)
}

type SearchClient interface {
	Search(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error)
}

type SearchCache interface {
	GetSearch(ctx context.Context, key string) (json.RawMessage, error)
	SetSearch(ctx context.Context, key string, payload json.RawMessage) error
}

// FlightService proxies AFS search lookups with a cache in front. These
// endpoints carry no business logic; they only share the AFS client.
type FlightService struct {
	client SearchClient
	cache  SearchCache
}

func NewFlightService(client SearchClient, cache SearchCache) *FlightService {
	return &FlightService{client: client, cache: cache}
}

func (s *FlightService) Search(ctx context.Context, kind SearchKind, query url.Values) (json.RawMessage, error) {
	switch kind {
	case SearchFlights, SearchAirports, SearchCities, SearchAirlines:
	default:
		return nil, ErrUnknownSearchKind
	}

	key := string(kind)
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	payload, err := s.client.Search(ctx, "/"+string(kind), query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, key, payload)
	}
	return payload, nil
}

var _ SearchUseCase = (*FlightService)(nil)
