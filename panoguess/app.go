package panoguess

import (
	"github.com/panoguess/bot/panoguess/database"
	"github.com/panoguess/bot/panoguess/database/repositories"
	"github.com/panoguess/bot/panoguess/services"
)

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App holds everything the request-routing layer needs: the repositories
// and the services that implement the game's exposed operations.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB *database.DB

	UserRepository     repositories.UserRepository
	LocationRepository repositories.LocationRepository
	GuessRepository    repositories.GuessRepository
	RatingRepository   repositories.RatingRepository
	FeedbackRepository repositories.FeedbackRepository

	UserService     *services.UserService
	GuessService    *services.GuessService
	LocationService *services.LocationService
	RatingService   *services.RatingService
	FeedbackService *services.FeedbackService

	Messenger services.Messenger
	Geocoder  services.Geocoder
}
