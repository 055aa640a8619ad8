package domain

import "errors"

var (
	// ErrNoQuestions is returned when a start request yields an empty
	// question list; the attempt is unusable and must be re-entered.
	ErrNoQuestions = errors.New("no questions available")
	// ErrAnswerRequired is returned when the user tries to advance past an
	// unanswered question.
	ErrAnswerRequired = errors.New("answer required before advancing")
	// ErrAttemptNotFound is returned when an operation references an
	// unknown or already-discarded attempt.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionSetNotFound indicates the backing store has no question
	// set for the requested selection.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrOptionNotFound indicates a submitted option key is not part of
	// the current question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSubmitInFlight is returned when a submit arrives while another is
	// awaiting the collaborator; the duplicate is dropped, never queued.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrSubmissionFailed wraps collaborator failures (transport errors or
	// success:false bodies). The attempt stays retryable.
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrSessionClosed is returned for mutations on a completed attempt.
	ErrSessionClosed = errors.New("attempt already completed")
	// ErrNotStarted is returned for operations on an attempt whose
	// questions were never loaded.
	ErrNotStarted = errors.New("attempt not started")
)
