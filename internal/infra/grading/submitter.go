package grading

import (
	"context"
	"fmt"
	"log"

	"medprep-quiz-service/internal/app"
	"medprep-quiz-service/internal/domain"
)

// Recorder persists a graded attempt. Recording is best-effort for the
// client: a persistence failure is logged, never surfaced as a submission
// failure, because the result has already been computed.
type Recorder interface {
	Record(ctx context.Context, submission domain.Submission, result domain.Result) error
}

// Submitter grades submissions locally against the question set's correct
// keys. It is used when no remote results API is configured.
type Submitter struct {
	questions app.QuestionSource
	recorder  Recorder // optional
}

func NewSubmitter(questions app.QuestionSource, recorder Recorder) *Submitter {
	return &Submitter{questions: questions, recorder: recorder}
}

func (s *Submitter) Submit(ctx context.Context, submission domain.Submission) (domain.Result, error) {
	questions, err := s.questions.Questions(ctx, submission.Selection)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	result := grade(submission, questions)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, submission, result); err != nil {
			log.Printf("record attempt %s: %v", submission.AttemptID, err)
		}
	}
	return result, nil
}

func grade(submission domain.Submission, questions []domain.Question) domain.Result {
	selected := make(map[string]string, len(submission.Answers))
	for _, record := range submission.Answers {
		selected[record.QuestionID] = record.SelectedKey
	}

	result := domain.Result{
		AttemptID:      submission.AttemptID,
		TotalQuestions: len(questions),
	}
	for _, q := range questions {
		points := q.Points
		if points == 0 {
			points = 1
		}
		result.MaxScore += points

		key, answered := selected[q.ID]
		if !answered {
			result.Unanswered++
			continue
		}
		if key == q.CorrectKey {
			result.Correct++
			result.Score += points
		} else {
			result.Incorrect++
		}
	}
	return result
}
