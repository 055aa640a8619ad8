package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"medprep-quiz-service/internal/app"
	"medprep-quiz-service/internal/domain"
	"medprep-quiz-service/internal/infra/memory"
)

// recordingSubmitter captures submissions and replays scripted outcomes.
type recordingSubmitter struct {
	submissions []domain.Submission
	fail        int // number of submissions to fail before succeeding
	result      domain.Result
}

func (s *recordingSubmitter) Submit(_ context.Context, submission domain.Submission) (domain.Result, error) {
	s.submissions = append(s.submissions, submission)
	if s.fail > 0 {
		s.fail--
		return domain.Result{}, fmt.Errorf("%w: results api unreachable", domain.ErrSubmissionFailed)
	}
	return s.result, nil
}

func newTestService(submitter app.Submitter) *app.QuizService {
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		"anatomy-1": threeQuestions(),
	}), 5*time.Minute)
	return app.NewQuizService(memory.NewAttemptStore(), questions, submitter)
}

func chapterSelection() domain.Selection {
	return domain.Selection{Mode: domain.ModeChapter, ChapterID: "anatomy-1"}
}

// The full happy path: answer a on q1, c on q2, a on q3; the final next
// submits exactly those three records and completes the attempt.
func TestQuizFlowEndsCompleted(t *testing.T) {
	ctx := context.Background()
	submitter := &recordingSubmitter{result: domain.Result{Score: 2, MaxScore: 3, TotalQuestions: 3}}
	service := newTestService(submitter)

	started, err := service.Start(ctx, "u1", chapterSelection())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.View.Index != 0 || started.View.Total != 3 {
		t.Fatalf("expected first of 3 questions, got %+v", started.View)
	}

	id := started.AttemptID
	steps := []string{"a", "c", "a"}
	for i, key := range steps {
		if _, err := service.Select(ctx, id, key); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		outcome, err := service.Next(ctx, id)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if i < len(steps)-1 {
			if outcome.Submitted {
				t.Fatalf("unexpected submit at step %d", i)
			}
			continue
		}
		if !outcome.Submitted {
			t.Fatalf("expected submission on last next")
		}
		if outcome.Result.Score != 2 {
			t.Fatalf("expected submitter result surfaced, got %+v", outcome.Result)
		}
	}

	if len(submitter.submissions) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(submitter.submissions))
	}
	payload := submitter.submissions[0]
	want := []domain.AnswerRecord{
		{QuestionID: "q1", SelectedKey: "a"},
		{QuestionID: "q2", SelectedKey: "c"},
		{QuestionID: "q3", SelectedKey: "a"},
	}
	if len(payload.Answers) != len(want) {
		t.Fatalf("expected %d answers, got %+v", len(want), payload.Answers)
	}
	for i := range want {
		if payload.Answers[i] != want[i] {
			t.Fatalf("answer %d: expected %+v, got %+v", i, want[i], payload.Answers[i])
		}
	}
	if payload.UserID != "u1" || payload.AttemptID != id {
		t.Fatalf("unexpected payload identity: %+v", payload)
	}
	if payload.TimeTakenSeconds < 0 {
		t.Fatalf("elapsed must be non-negative, got %d", payload.TimeTakenSeconds)
	}

	// The attempt is discarded after completion.
	if _, err := service.Select(ctx, id, "a"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt discarded, got %v", err)
	}
}

func TestStartUnknownSelection(t *testing.T) {
	service := newTestService(&recordingSubmitter{})

	_, err := service.Start(context.Background(), "u1", domain.Selection{Mode: domain.ModeMock, MockTestID: "missing"})
	if !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected question set not found, got %v", err)
	}
}

func TestStartEmptyQuestionSet(t *testing.T) {
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		"empty-topic": {},
	}), 5*time.Minute)
	service := app.NewQuizService(memory.NewAttemptStore(), questions, &recordingSubmitter{})

	_, err := service.Start(context.Background(), "u1", domain.Selection{Mode: domain.ModeChapter, ChapterID: "empty-topic"})
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	submitter := &recordingSubmitter{fail: 1, result: domain.Result{Score: 3}}
	service := newTestService(submitter)

	started, err := service.Start(ctx, "u1", chapterSelection())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	id := started.AttemptID
	for _, key := range []string{"a", "c"} {
		if _, err := service.Select(ctx, id, key); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := service.Next(ctx, id); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if _, err := service.Select(ctx, id, "a"); err != nil {
		t.Fatalf("select last: %v", err)
	}

	// First submit fails; attempt must remain retryable with answers intact.
	if _, err := service.Next(ctx, id); !errors.Is(err, domain.ErrSubmissionFailed) {
		t.Fatalf("expected submission failure, got %v", err)
	}

	result, err := service.Submit(ctx, id)
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if result.Score != 3 {
		t.Fatalf("expected result surfaced on retry, got %+v", result)
	}

	if len(submitter.submissions) != 2 {
		t.Fatalf("expected two submissions, got %d", len(submitter.submissions))
	}
	first, second := submitter.submissions[0], submitter.submissions[1]
	if len(first.Answers) != len(second.Answers) {
		t.Fatalf("retry changed the answer list")
	}
	for i := range first.Answers {
		if first.Answers[i] != second.Answers[i] {
			t.Fatalf("retry changed answer %d", i)
		}
	}
	if second.TimeTakenSeconds < first.TimeTakenSeconds {
		t.Fatalf("retry elapsed went backwards: %d < %d", second.TimeTakenSeconds, first.TimeTakenSeconds)
	}
}

func TestAbandonDiscardsAttempt(t *testing.T) {
	ctx := context.Background()
	service := newTestService(&recordingSubmitter{})

	started, err := service.Start(ctx, "u1", chapterSelection())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	service.Abandon(started.AttemptID)
	if _, err := service.Select(ctx, started.AttemptID, "a"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found after abandon, got %v", err)
	}
}
