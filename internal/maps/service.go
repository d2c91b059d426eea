// Package maps resolves free-text addresses to coordinates so admins can
// place geofence locations without copying numbers from a map.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crm_backend/platform/config"
	"crm_backend/platform/geo"
	"crm_backend/platform/logger"
)

const (
	lookupLimit = "5"
	userAgent   = "crm-backend/1.0"
)

// ErrUpstream is returned when the geocoder cannot be reached or answers badly.
var ErrUpstream = errors.New("geocoder unavailable")

// Service queries a Nominatim-compatible geocoder.
type Service struct {
	client    *http.Client
	baseURL   string
	countries string
	log       *logger.Logger
}

func NewService(cfg config.MapsConfig, log *logger.Logger) *Service {
	return &Service{
		client:    &http.Client{Timeout: 5 * time.Second},
		baseURL:   cfg.GetGeocoderURL(),
		countries: cfg.GetGeocoderCountryCodes(),
		log:       log,
	}
}

// SearchAddress returns up to five street-level suggestions with valid coordinates.
func (s *Service) SearchAddress(ctx context.Context, query string) ([]AddressSuggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", lookupLimit)
	if s.countries != "" {
		params.Set("countrycodes", s.countries)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("geocoder request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("geocoder upstream error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.log.Error("failed to decode geocoder payload", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	suggestions := make([]AddressSuggestion, 0, len(raw))
	for _, r := range raw {
		if suggestion, ok := buildSuggestion(r); ok {
			suggestions = append(suggestions, suggestion)
		}
	}
	return suggestions, nil
}

func buildSuggestion(raw nominatimResult) (AddressSuggestion, bool) {
	city := pickCity(raw.Address)
	if raw.Address.Road == "" || city == "" {
		return AddressSuggestion{}, false
	}

	lat, latErr := strconv.ParseFloat(raw.Lat, 64)
	lng, lngErr := strconv.ParseFloat(raw.Lon, 64)
	if latErr != nil || lngErr != nil || !(geo.Point{Latitude: lat, Longitude: lng}).Valid() {
		return AddressSuggestion{}, false
	}

	suggestion := AddressSuggestion{
		Street:       raw.Address.Road,
		HouseNumber:  raw.Address.HouseNumber,
		Neighborhood: raw.Address.Suburb,
		ZipCode:      raw.Address.Postcode,
		City:         city,
		Latitude:     lat,
		Longitude:    lng,
	}
	suggestion.Label = buildLabel(suggestion)
	return suggestion, true
}

func pickCity(a nominatimAddress) string {
	for _, candidate := range []string{a.City, a.Town, a.Municipality, a.Village} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// buildLabel renders "Street, 123 - Neighborhood, City - ZIP".
func buildLabel(s AddressSuggestion) string {
	var b strings.Builder
	b.WriteString(s.Street)
	if s.HouseNumber != "" {
		b.WriteString(", " + s.HouseNumber)
	}
	if s.Neighborhood != "" {
		b.WriteString(" - " + s.Neighborhood)
	}
	b.WriteString(", " + s.City)
	if s.ZipCode != "" {
		b.WriteString(" - " + s.ZipCode)
	}
	return b.String()
}
