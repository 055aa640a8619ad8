package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"medprep-quiz-service/internal/domain"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID               string    `bun:"id,pk"`
	UserID           string    `bun:"user_id"`
	Mode             string    `bun:"mode"`
	SelectionKey     string    `bun:"selection_key"`
	TimeTakenSeconds int64     `bun:"time_taken_seconds"`
	Answers          []byte    `bun:"answers,type:jsonb"`
	Score            int       `bun:"score"`
	MaxScore         int       `bun:"max_score"`
	CreatedAt        time.Time `bun:"created_at"`
}

// AttemptRecorder persists graded attempts so results survive the in-memory
// session being discarded.
type AttemptRecorder struct {
	db *bun.DB
}

func NewAttemptRecorder(db *bun.DB) *AttemptRecorder {
	return &AttemptRecorder{db: db}
}

// Record upserts the graded attempt. A retried submission for the same
// attempt id overwrites the earlier row rather than duplicating it.
func (r *AttemptRecorder) Record(ctx context.Context, submission domain.Submission, result domain.Result) error {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	row := &attemptRow{
		ID:               submission.AttemptID,
		UserID:           submission.UserID,
		Mode:             string(submission.Selection.Mode),
		SelectionKey:     submission.Selection.Key(),
		TimeTakenSeconds: submission.TimeTakenSeconds,
		Answers:          answers,
		Score:            result.Score,
		MaxScore:         result.MaxScore,
		CreatedAt:        time.Now(),
	}
	_, err = r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("time_taken_seconds = EXCLUDED.time_taken_seconds").
		Set("answers = EXCLUDED.answers").
		Set("score = EXCLUDED.score").
		Set("max_score = EXCLUDED.max_score").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}
