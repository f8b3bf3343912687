package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/sahilm/fuzzy"
	"github.com/uptrace/bun"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	GetAll(ctx context.Context) ([]*models.Location, error)
	GetRandomUnplayed(ctx context.Context, userID int64, easyOnly bool) (*models.Location, error)
	SearchByCountry(ctx context.Context, query string) ([]*models.Location, error)
}

type locationRepository struct {
	db *bun.DB
}

func NewLocationRepository(db *bun.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	location.CreatedAt = time.Now()
	location.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(location).Exec(ctx)
	return err
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	location := new(models.Location)
	err := r.db.NewSelect().
		Model(location).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepository) GetAll(ctx context.Context) ([]*models.Location, error) {
	var locations []*models.Location
	err := r.db.NewSelect().
		Model(&locations).
		Order("id DESC").
		Scan(ctx)
	return locations, err
}

// GetRandomUnplayed picks a playable location the player has not guessed
// yet. Only locations with resolved coordinates are candidates; easyOnly
// restricts novice players to the easy tier.
func (r *locationRepository) GetRandomUnplayed(ctx context.Context, userID int64, easyOnly bool) (*models.Location, error) {
	location := new(models.Location)
	err := r.randomUnplayedQuery(location, userID, easyOnly).Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		slog.Warn("No playable locations left for player",
			slog.String("type", "game"),
			slog.Int64("user_id", userID),
			slog.Bool("easy_only", easyOnly))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return location, nil
}

// randomUnplayedQuery builds the candidate selection: resolved coordinates
// only, never a location the player has already guessed, easy tier when
// requested, one uniformly random pick.
func (r *locationRepository) randomUnplayedQuery(location *models.Location, userID int64, easyOnly bool) *bun.SelectQuery {
	played := r.db.NewSelect().
		Model((*models.Guess)(nil)).
		Column("location_id").
		Where("user_id = ?", userID)

	query := r.db.NewSelect().
		Model(location).
		Where("l.lat IS NOT NULL AND l.lng IS NOT NULL").
		Where("l.id NOT IN (?)", played)

	if easyOnly {
		query = query.Where("l.complexity = ?", models.ComplexityEasy)
	}

	return query.
		OrderExpr("RANDOM()").
		Limit(1)
}

// countrySource adapts locations for fuzzy matching on country names.
type countrySource []*models.Location

func (s countrySource) String(i int) string { return s[i].Country }
func (s countrySource) Len() int            { return len(s) }

// SearchByCountry fuzzy-matches locations by country name, best match
// first. Used by administrative listings.
func (r *locationRepository) SearchByCountry(ctx context.Context, query string) ([]*models.Location, error) {
	locations, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	source := countrySource(locations)
	matches := fuzzy.FindFrom(query, source)

	results := make([]*models.Location, len(matches))
	for i, match := range matches {
		results[i] = locations[match.Index]
	}
	return results, nil
}
