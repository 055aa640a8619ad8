package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"medprep-quiz-service/internal/domain"
	"medprep-quiz-service/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(map[string][]domain.Question{
			"anatomy-1": sampleQuestions(),
		}),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)
	selection := domain.Selection{Mode: domain.ModeChapter, ChapterID: "anatomy-1"}

	questions, err := repo.Questions(context.Background(), selection)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectKey != "b" {
		t.Fatalf("unexpected question set: %+v", questions)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("questions:chapter:anatomy-1") {
		t.Fatalf("expected cached question set in redis")
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.Questions(context.Background(), selection); err != nil {
		t.Fatalf("load questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, selection domain.Selection) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, selection)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:     "q1",
			Prompt: "Which chamber of the heart pumps oxygenated blood into the aorta?",
			Options: []domain.Option{
				{Key: "a", Content: "Right atrium"},
				{Key: "b", Content: "Left ventricle"},
				{Key: "c", Content: "Right ventricle"},
				{Key: "d", Content: "Left atrium"},
			},
			CorrectKey:  "b",
			Explanation: "The left ventricle ejects blood through the aortic valve.",
			Points:      1,
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
