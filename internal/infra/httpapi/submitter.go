package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"medprep-quiz-service/internal/domain"
)

// Submitter posts finished attempts to the remote results API. The API uses
// slightly different endpoints and field names per quiz mode; that
// translation lives entirely in this adapter so the rest of the service sees
// one Submission shape. The mode carried on the submission decides the route;
// nothing is inferred from course names.
type Submitter struct {
	baseURL string
	client  *http.Client
}

func NewSubmitter(baseURL string, timeout time.Duration) *Submitter {
	return &Submitter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type wireAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// mockSubmission is the mock-test endpoint's historical shape.
type mockSubmission struct {
	UserID        string       `json:"user_id"`
	MockAttemptID string       `json:"mock_attempt_id"`
	TimeTaken     int64        `json:"time_taken"`
	Answers       []wireAnswer `json:"answers"`
}

// quizSubmission covers the chapter, topic, subject, and AMC endpoints.
type quizSubmission struct {
	UserID           string       `json:"user_id"`
	AttemptID        string       `json:"attempt_id"`
	TimeTakenSeconds int64        `json:"time_taken_seconds"`
	Answers          []wireAnswer `json:"answers"`
}

type resultResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Score          int    `json:"score"`
	MaxScore       int    `json:"max_score"`
	Correct        int    `json:"correct"`
	Incorrect      int    `json:"incorrect"`
	Unanswered     int    `json:"unanswered"`
	TotalQuestions int    `json:"total_questions"`
}

func (s *Submitter) Submit(ctx context.Context, submission domain.Submission) (domain.Result, error) {
	path, body := encode(submission)

	data, err := json.Marshal(body)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: marshal: %v", domain.ErrSubmissionFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Result{}, fmt.Errorf("%w: status %d", domain.ErrSubmissionFailed, resp.StatusCode)
	}

	var decoded resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Result{}, fmt.Errorf("%w: decode: %v", domain.ErrSubmissionFailed, err)
	}
	if !decoded.Success {
		return domain.Result{}, fmt.Errorf("%w: %s", domain.ErrSubmissionFailed, decoded.Message)
	}

	return domain.Result{
		AttemptID:      submission.AttemptID,
		Score:          decoded.Score,
		MaxScore:       decoded.MaxScore,
		Correct:        decoded.Correct,
		Incorrect:      decoded.Incorrect,
		Unanswered:     decoded.Unanswered,
		TotalQuestions: decoded.TotalQuestions,
	}, nil
}

func encode(submission domain.Submission) (string, any) {
	answers := make([]wireAnswer, 0, len(submission.Answers))
	for _, record := range submission.Answers {
		answers = append(answers, wireAnswer{
			QuestionID:     record.QuestionID,
			SelectedOption: record.SelectedKey,
		})
	}

	switch submission.Selection.Mode {
	case domain.ModeMock:
		return "/mock-tests/submit", mockSubmission{
			UserID:        submission.UserID,
			MockAttemptID: submission.AttemptID,
			TimeTaken:     submission.TimeTakenSeconds,
			Answers:       answers,
		}
	case domain.ModeAMC:
		return "/amc/quiz/submit", quizSubmission{
			UserID:           submission.UserID,
			AttemptID:        submission.AttemptID,
			TimeTakenSeconds: submission.TimeTakenSeconds,
			Answers:          answers,
		}
	default:
		return "/quiz/submit", quizSubmission{
			UserID:           submission.UserID,
			AttemptID:        submission.AttemptID,
			TimeTakenSeconds: submission.TimeTakenSeconds,
			Answers:          answers,
		}
	}
}
