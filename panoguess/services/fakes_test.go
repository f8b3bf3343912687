package services

import (
	"context"
	"errors"
	"sync"

	"github.com/panoguess/bot/panoguess/database/models"
	"github.com/panoguess/bot/panoguess/database/repositories"
)

type fakeUserRepo struct {
	users         map[int64]*models.User
	qualifying    []*models.User
	qualifyingErr error
	resetCount    int64
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.users == nil {
		f.users = map[int64]*models.User{}
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID string) (*models.User, error) {
	for _, user := range f.users {
		if user.TelegramID == telegramID {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, telegramID, username string, dailyMovesLimit int) (*models.User, error) {
	if user, err := f.GetByTelegramID(ctx, telegramID); err == nil {
		return user, nil
	}
	user := &models.User{
		TelegramID:          telegramID,
		Username:            username,
		DailyMovesRemaining: dailyMovesLimit,
	}
	if err := f.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetQualifying(_ context.Context, _ int) ([]*models.User, error) {
	if f.qualifyingErr != nil {
		return nil, f.qualifyingErr
	}
	return f.qualifying, nil
}

func (f *fakeUserRepo) ResetDailyMoves(_ context.Context, _ int) (int64, error) {
	return f.resetCount, nil
}

type fakeRatingRepo struct {
	stored      *models.Rating
	createCalls int
	updateCalls int
}

func (f *fakeRatingRepo) Get(_ context.Context) (*models.Rating, error) {
	if f.stored == nil {
		return nil, repositories.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeRatingRepo) Create(_ context.Context, rating *models.Rating) error {
	f.createCalls++
	rating.ID = 1
	f.stored = rating
	return nil
}

func (f *fakeRatingRepo) Update(_ context.Context, rating *models.Rating) error {
	f.updateCalls++
	f.stored = rating
	return nil
}

type fakeLocationRepo struct {
	next        *models.Location
	nextErr     error
	created     []*models.Location
	all         []*models.Location
	lastUserID  int64
	lastEasy    bool
	searchCalls int
}

func (f *fakeLocationRepo) Create(_ context.Context, location *models.Location) error {
	location.ID = int64(len(f.created) + 1)
	f.created = append(f.created, location)
	return nil
}

func (f *fakeLocationRepo) GetByID(_ context.Context, id int64) (*models.Location, error) {
	for _, location := range f.created {
		if location.ID == id {
			return location, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeLocationRepo) GetAll(_ context.Context) ([]*models.Location, error) {
	return f.all, nil
}

func (f *fakeLocationRepo) GetRandomUnplayed(_ context.Context, userID int64, easyOnly bool) (*models.Location, error) {
	f.lastUserID = userID
	f.lastEasy = easyOnly
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.next, nil
}

func (f *fakeLocationRepo) SearchByCountry(_ context.Context, _ string) ([]*models.Location, error) {
	f.searchCalls++
	return f.all, nil
}

type fakeGuessRepo struct {
	guess       *models.Guess
	err         error
	createCalls int
	deleteCalls int
}

func (f *fakeGuessRepo) CreateWithStats(_ context.Context, userID, locationID int64, guessedLat, guessedLng float64, duration, movesUsed int) (*models.Guess, error) {
	f.createCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.guess, nil
}

func (f *fakeGuessRepo) DeleteWithStats(_ context.Context, _ int64) error {
	f.deleteCalls++
	return f.err
}

func (f *fakeGuessRepo) GetByID(_ context.Context, _ int64) (*models.Guess, error) {
	if f.guess == nil {
		return nil, repositories.ErrNotFound
	}
	return f.guess, nil
}

func (f *fakeGuessRepo) GetUserGuesses(_ context.Context, _ int64) ([]*models.Guess, error) {
	if f.guess == nil {
		return nil, nil
	}
	return []*models.Guess{f.guess}, nil
}

func (f *fakeGuessRepo) HasGuessed(_ context.Context, _, _ int64) (bool, error) {
	return f.guess != nil, nil
}

type fakeFeedbackRepo struct {
	mu      sync.Mutex
	byID    map[int64]*models.Feedback
	pending []*models.Feedback
	sent    []int64
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *models.Feedback) error {
	if f.byID == nil {
		f.byID = map[int64]*models.Feedback{}
	}
	feedback.ID = int64(len(f.byID) + 1)
	f.byID[feedback.ID] = feedback
	return nil
}

func (f *fakeFeedbackRepo) GetByID(_ context.Context, id int64) (*models.Feedback, error) {
	if feedback, ok := f.byID[id]; ok {
		return feedback, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeFeedbackRepo) Update(_ context.Context, feedback *models.Feedback) error {
	f.byID[feedback.ID] = feedback
	return nil
}

func (f *fakeFeedbackRepo) GetUnsentAnswered(_ context.Context) ([]*models.Feedback, error) {
	return f.pending, nil
}

func (f *fakeFeedbackRepo) MarkSent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

type fakeGeocoder struct {
	place *ResolvedPlace
	err   error
}

func (f *fakeGeocoder) Resolve(_ context.Context, _ string) (*ResolvedPlace, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.place, nil
}

type sentMessage struct {
	chatID string
	text   string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (f *fakeMessenger) Send(chatID string, text string) error {
	if f.failFor[chatID] {
		return errors.New("delivery failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
