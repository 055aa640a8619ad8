package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"medprep-quiz-service/internal/domain"
)

// AttemptRepository abstracts how live attempts are stored (in-memory, Redis
// liveness, etc).
type AttemptRepository interface {
	Put(session *Session)
	Get(attemptID string) (*Session, bool)
	Delete(attemptID string)
}

// QuestionSource loads the question list for a selection (from cache/backing
// store).
type QuestionSource interface {
	Questions(ctx context.Context, selection domain.Selection) ([]domain.Question, error)
}

// Submitter hands a finished attempt to the grading collaborator and returns
// its result.
type Submitter interface {
	Submit(ctx context.Context, submission domain.Submission) (domain.Result, error)
}

// QuizService contains the quiz-attempt use cases.
type QuizService struct {
	attempts  AttemptRepository
	questions QuestionSource
	submitter Submitter
}

func NewQuizService(attempts AttemptRepository, questions QuestionSource, submitter Submitter) *QuizService {
	return &QuizService{attempts: attempts, questions: questions, submitter: submitter}
}

// StartOutcome is what a client needs to render the first question.
type StartOutcome struct {
	AttemptID string `json:"attempt_id"`
	View      View   `json:"view"`
}

// NextOutcome reports either the next question or, when Next ran off the end
// of the list, the submission result.
type NextOutcome struct {
	View      View          `json:"view"`
	Submitted bool          `json:"submitted"`
	Result    domain.Result `json:"result,omitempty"`
}

// Start fetches questions for the selection, mints an attempt id, and
// registers a fresh session. Fetch failures and empty question lists leave no
// attempt behind; the caller re-enters the whole flow to retry.
func (s *QuizService) Start(ctx context.Context, userID string, selection domain.Selection) (StartOutcome, error) {
	questions, err := s.questions.Questions(ctx, selection)
	if err != nil {
		return StartOutcome{}, fmt.Errorf("start quiz: %w", err)
	}

	session := NewSession(userID, selection)
	if err := session.Start(questions, newAttemptID()); err != nil {
		return StartOutcome{}, err
	}
	s.attempts.Put(session)

	view, err := session.Current()
	if err != nil {
		return StartOutcome{}, err
	}
	return StartOutcome{AttemptID: session.AttemptID(), View: view}, nil
}

// Select records an option for the attempt's current question.
func (s *QuizService) Select(_ context.Context, attemptID, optionKey string) (View, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return View{}, domain.ErrAttemptNotFound
	}
	return session.SelectOption(optionKey)
}

// Next advances the attempt; on the last question it submits instead.
func (s *QuizService) Next(ctx context.Context, attemptID string) (NextOutcome, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return NextOutcome{}, domain.ErrAttemptNotFound
	}

	view, submit, err := session.GoNext()
	if err != nil {
		return NextOutcome{}, err
	}
	if !submit {
		return NextOutcome{View: view}, nil
	}

	result, err := s.submit(ctx, session)
	if err != nil {
		return NextOutcome{}, err
	}
	return NextOutcome{View: view, Submitted: true, Result: result}, nil
}

// Previous steps the attempt back one question.
func (s *QuizService) Previous(_ context.Context, attemptID string) (View, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return View{}, domain.ErrAttemptNotFound
	}
	return session.GoPrevious()
}

// Submit grades the attempt via the submitter. On failure the attempt stays
// retryable with its answers intact; on success it is completed and removed
// from the repository.
func (s *QuizService) Submit(ctx context.Context, attemptID string) (domain.Result, error) {
	session, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.Result{}, domain.ErrAttemptNotFound
	}
	return s.submit(ctx, session)
}

// Abandon discards an attempt, e.g. when the client disconnects mid-quiz.
// Nothing is persisted for an abandoned attempt.
func (s *QuizService) Abandon(attemptID string) {
	s.attempts.Delete(attemptID)
}

func (s *QuizService) submit(ctx context.Context, session *Session) (domain.Result, error) {
	payload, epoch, err := session.BeginSubmit()
	if err != nil {
		return domain.Result{}, err
	}

	result, err := s.submitter.Submit(ctx, payload)
	session.CompleteSubmit(epoch, result, err)
	if err != nil {
		return domain.Result{}, err
	}
	s.attempts.Delete(session.AttemptID())
	return result, nil
}

func newAttemptID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}
