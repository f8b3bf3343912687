package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"googlemaps.github.io/maps"
)

// ErrResolutionFailed is returned when a panorama reference cannot be
// turned into coordinates and a country. Location creation treats it as a
// warning, not a failure.
var ErrResolutionFailed = errors.New("failed to resolve panorama location")

const geocoderCacheSize = 512

// coordsPattern matches the @lat,lng fragment of an expanded street-view
// URL.
var coordsPattern = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)

// ResolvedPlace is the result of resolving a panorama reference.
type ResolvedPlace struct {
	Lat     float64
	Lng     float64
	Country string
}

// Geocoder resolves a street-view panorama reference into coordinates and
// a country name. Called exactly once per location, at creation.
type Geocoder interface {
	Resolve(ctx context.Context, streetViewURL string) (*ResolvedPlace, error)
}

// GoogleGeocoder follows the panorama URL's redirects to extract the
// embedded coordinates, then reverse-geocodes the country through the
// Google Maps API. Resolutions are memoized in an LRU cache keyed by URL.
type GoogleGeocoder struct {
	httpClient *http.Client
	mapsClient *maps.Client
	cache      *lru.Cache
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	mapsClient, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	cache, _ := lru.New(geocoderCacheSize)
	return &GoogleGeocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		mapsClient: mapsClient,
		cache:      cache,
	}, nil
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, streetViewURL string) (*ResolvedPlace, error) {
	if cached, ok := g.cache.Get(streetViewURL); ok {
		return cached.(*ResolvedPlace), nil
	}

	lat, lng, err := g.extractCoordinates(ctx, streetViewURL)
	if err != nil {
		return nil, err
	}

	country, err := g.lookupCountry(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	place := &ResolvedPlace{Lat: lat, Lng: lng, Country: country}
	g.cache.Add(streetViewURL, place)
	return place, nil
}

// extractCoordinates follows redirects to the expanded URL and pulls the
// @lat,lng fragment out of it.
func (g *GoogleGeocoder) extractCoordinates(ctx context.Context, streetViewURL string) (float64, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, streetViewURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	match := coordsPattern.FindStringSubmatch(finalURL)
	if match == nil {
		slog.Warn("No coordinates found in expanded panorama URL",
			slog.String("type", "game"),
			slog.String("url", streetViewURL))
		return 0, 0, fmt.Errorf("%w: no coordinates in %q", ErrResolutionFailed, finalURL)
	}

	lat, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	lng, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	return lat, lng, nil
}

func (g *GoogleGeocoder) lookupCountry(ctx context.Context, lat, lng float64) (string, error) {
	results, err := g.mapsClient.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	for _, result := range results {
		for _, component := range result.AddressComponents {
			for _, t := range component.Types {
				if t == "country" {
					return component.LongName, nil
				}
			}
		}
	}

	slog.Warn("Country not found for coordinates",
		slog.String("type", "game"),
		slog.Float64("lat", lat),
		slog.Float64("lng", lng))
	return "", fmt.Errorf("%w: country not found", ErrResolutionFailed)
}
