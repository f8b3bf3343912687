package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Guess is one scored attempt by a player at one location. Distance error
// and score are always derived server-side; a guess is immutable once
// scored except for deletion.
type Guess struct {
	bun.BaseModel `bun:"table:guesses,alias:g"`

	ID         int64 `bun:"id,pk,autoincrement"`
	UserID     int64 `bun:"user_id,notnull"`
	LocationID int64 `bun:"location_id,notnull"`

	GuessedLat float64 `bun:"guessed_lat,notnull"`
	GuessedLng float64 `bun:"guessed_lng,notnull"`
	MovesUsed  int     `bun:"moves_used,notnull,default:0"`
	Duration   int     `bun:"duration,notnull"`

	DistanceError float64 `bun:"distance_error,notnull"`
	Score         float64 `bun:"score,notnull"`

	GuessedAt time.Time `bun:"guessed_at,notnull,default:current_timestamp"`

	User     *User     `bun:"rel:belongs-to,join:user_id=id"`
	Location *Location `bun:"rel:belongs-to,join:location_id=id"`
}
