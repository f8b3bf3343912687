package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
)

// noviceGamesThreshold gates inexperienced players to easy locations.
const noviceGamesThreshold = 5

// ErrInvalidComplexity is returned when a location is created with an
// unknown difficulty tier.
var ErrInvalidComplexity = errors.New("invalid location complexity")

type LocationService struct {
	locationRepo repositories.LocationRepository
	geocoder     Geocoder
}

func NewLocationService(locationRepo repositories.LocationRepository, geocoder Geocoder) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		geocoder:     geocoder,
	}
}

// NextLocation picks an unplayed location for the player. Players with five
// or fewer games only see easy locations. Returns
// repositories.ErrNotFound when no candidate remains.
func (s *LocationService) NextLocation(ctx context.Context, user *models.User) (*models.Location, error) {
	easyOnly := user.Games <= noviceGamesThreshold
	return s.locationRepo.GetRandomUnplayed(ctx, user.ID, easyOnly)
}

// CreateLocation registers a new panorama supplied by an administrator.
// Coordinates and country resolve exactly once, here. A failed resolution
// is logged and the location is persisted unresolved rather than failing
// the creation; unresolved locations are never served for play.
func (s *LocationService) CreateLocation(ctx context.Context, streetViewURL, complexity string) (*models.Location, error) {
	switch complexity {
	case models.ComplexityEasy, models.ComplexityNormal, models.ComplexityHard:
	case "":
		complexity = models.ComplexityNormal
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidComplexity, complexity)
	}

	location := &models.Location{
		StreetViewURL: streetViewURL,
		Complexity:    complexity,
	}

	place, err := s.geocoder.Resolve(ctx, streetViewURL)
	if err != nil {
		slog.Warn("Location created with unresolved coordinates",
			slog.String("type", "game"),
			slog.String("street_view_url", streetViewURL),
			slog.Any("error", err))
	} else {
		location.Lat = &place.Lat
		location.Lng = &place.Lng
		location.Country = place.Country
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	slog.Info("New location registered",
		slog.String("type", "game"),
		slog.Int64("location_id", location.ID),
		slog.String("country", location.Country),
		slog.String("complexity", location.Complexity),
		slog.Bool("resolved", location.Resolved()))

	return location, nil
}

// SearchByCountry fuzzy-matches locations by country for administrative
// listings.
func (s *LocationService) SearchByCountry(ctx context.Context, query string) ([]*models.Location, error) {
	return s.locationRepo.SearchByCountry(ctx, query)
}
