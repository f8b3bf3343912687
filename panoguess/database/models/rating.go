package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rating is the cached leaderboard snapshot. At most one logical row exists;
// it is created lazily on first read and recomputed at most once per
// debounce window.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID        int64         `bun:"id,pk,autoincrement"`
	Data      []RatingEntry `bun:"data,type:jsonb"`
	UpdatedAt time.Time     `bun:"updated_at,notnull"`
}

type RatingEntry struct {
	Username     string  `json:"username"`
	Games        int     `json:"games"`
	Score        float64 `json:"score"`
	ScoreForGame float64 `json:"score_for_game"`
}
