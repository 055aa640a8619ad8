package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"medprep-quiz-service/internal/app"
	"medprep-quiz-service/internal/domain"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewAttemptStore(client, time.Minute)

	session := app.NewSession("u1", domain.Selection{Mode: domain.ModeChapter, ChapterID: "anatomy-1"})
	if err := session.Start(sampleQuestions(), "attempt-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	store.Put(session)
	if !mr.Exists("quiz:attempt:attempt-1") {
		t.Fatalf("expected redis liveness key to be set")
	}
	if _, ok := store.Get("attempt-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("attempt-1")
	if mr.Exists("quiz:attempt:attempt-1") {
		t.Fatalf("expected redis liveness key to be removed")
	}
	if _, ok := store.Get("attempt-1"); ok {
		t.Fatalf("expected session removed")
	}
}
