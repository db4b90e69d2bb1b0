// Package geocoding turns coordinates into Korean addresses through
// Nominatim, with a bounded in-memory cache and per-session history.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bin-finder/internal/cache"
	"bin-finder/internal/geocoding/nominatim"
	"bin-finder/internal/metrics"
	"bin-finder/internal/models"

	"github.com/rs/zerolog"
)

const (
	DefaultCacheSize   = 100
	DefaultHistorySize = 20

	NoLocationLabel      = "위치 정보 없음"
	UnknownLocationLabel = "알 수 없는 위치"
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrUnavailable       = errors.New("geocoding is not configured")
	ErrGeocodingFailed   = errors.New("geocoding failed")
)

// Reverser is the upstream lookup. *nominatim.Client satisfies it.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (*nominatim.ReverseResult, error)
}

// Address is a resolved location broken into Korean administrative parts.
type Address struct {
	Full       string    `json:"fullAddress"`
	Short      string    `json:"shortAddress"`
	Road       string    `json:"roadAddress,omitempty"`
	LandLot    string    `json:"jibunAddress,omitempty"`
	Sido       string    `json:"sido,omitempty"`
	Sigungu    string    `json:"sigungu,omitempty"`
	Dong       string    `json:"dong,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Service resolves coordinates and caches results. Safe for concurrent use.
type Service struct {
	client Reverser
	cache  *cache.FIFO[string, Address]
	logger zerolog.Logger
	now    func() time.Time
}

// NewService builds a Service. A nil client yields a service whose lookups
// fail with ErrUnavailable.
func NewService(client Reverser, cacheSize int, logger zerolog.Logger) *Service {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Service{
		client: client,
		cache:  cache.NewFIFO[string, Address](cacheSize),
		logger: logger.With().Str("component", "geocoding").Logger(),
		now:    time.Now,
	}
}

// Available reports whether an upstream client is configured.
func (s *Service) Available() bool { return s.client != nil }

// CacheKey rounds to four decimals, roughly 11m.
func CacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}

// Reverse resolves lat/lng. cached reports whether the result came from the
// cache; useCache false bypasses the cache on both read and write.
func (s *Service) Reverse(ctx context.Context, lat, lng float64, useCache bool) (addr Address, cached bool, err error) {
	if !(models.Coordinate{Lat: lat, Lng: lng}).Valid() {
		return Address{}, false, ErrInvalidCoordinate
	}
	if s.client == nil {
		return Address{}, false, ErrUnavailable
	}

	key := CacheKey(lat, lng)
	if useCache {
		if a, ok := s.cache.Get(key); ok {
			metrics.GeocodingCacheHitsTotal.Inc()
			s.logger.Debug().Str("key", key).Str("address", a.Short).Msg("geocoding cache hit")
			return a, true, nil
		}
		metrics.GeocodingCacheMissesTotal.Inc()
	}

	res, err := s.client.Reverse(ctx, lat, lng)
	if err != nil {
		metrics.GeocodingFailuresTotal.Inc()
		s.logger.Error().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("reverse geocoding failed")
		return Address{}, false, fmt.Errorf("%w: %w", ErrGeocodingFailed, err)
	}

	addr = fromNominatim(res, lat, lng, s.now())
	if useCache {
		s.cache.Put(key, addr)
	}
	s.logger.Debug().Str("key", key).Str("address", addr.Short).Msg("reverse geocoded")
	return addr, false, nil
}

func (s *Service) CacheLen() int { return s.cache.Len() }

func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("geocoding cache cleared")
}

func fromNominatim(res *nominatim.ReverseResult, lat, lng float64, now time.Time) Address {
	a := res.Address

	sido := firstNonEmpty(a.Province, a.State, a.City)
	sigungu := firstNonEmpty(a.Borough, a.County, a.Town)
	if sigungu == "" && a.City != sido {
		sigungu = a.City
	}
	dong := firstNonEmpty(a.Quarter, a.Suburb, a.CityDistrict)

	addr := Address{
		Full:       res.DisplayName,
		Short:      joinNonEmpty(sido, sigungu, dong),
		Sido:       sido,
		Sigungu:    sigungu,
		Dong:       dong,
		Lat:        lat,
		Lng:        lng,
		ResolvedAt: now,
	}
	if a.Road != "" {
		addr.Road = joinNonEmpty(sido, sigungu, a.Road, a.HouseNumber)
	} else if dong != "" {
		addr.LandLot = joinNonEmpty(sido, sigungu, dong, a.HouseNumber)
	}
	return addr
}

// Valid reports whether the address has a printable form and at least one
// administrative area.
func Valid(a *Address) bool {
	return a != nil && (a.Full != "" || a.Short != "") && (a.Sido != "" || a.Sigungu != "")
}

// Simple is the short form used in headers.
func Simple(a *Address) string {
	if a == nil {
		return NoLocationLabel
	}
	return firstNonEmpty(a.Short, a.Sigungu, a.Sido, UnknownLocationLabel)
}

// Detailed is the longest available form.
func Detailed(a *Address) string {
	if a == nil {
		return NoLocationLabel
	}
	if d := firstNonEmpty(a.Full, a.Road, a.LandLot); d != "" {
		return d
	}
	return Simple(a)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
