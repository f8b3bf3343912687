package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Feedback struct {
	bun.BaseModel `bun:"table:feedback,alias:f"`

	ID     int64 `bun:"id,pk,autoincrement"`
	UserID int64 `bun:"user_id,notnull"`

	FeedbackText string `bun:"feedback_text,notnull"`
	Answer       string `bun:"answer"`

	Answered   bool       `bun:"answered,notnull,default:false"`
	AnsweredAt *time.Time `bun:"answered_at"`
	SentAt     *time.Time `bun:"sent_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

// SetAnswer records the administrative response and marks the feedback
// answered. Delivery happens later, in the feedback sweep.
func (f *Feedback) SetAnswer(answer string) {
	f.Answer = answer
	if !f.Answered {
		f.Answered = true
		now := time.Now().UTC()
		f.AnsweredAt = &now
	}
}
