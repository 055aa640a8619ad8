package app

import "testing"

func TestAnswerStoreUpsert(t *testing.T) {
	store := NewAnswerStore()

	store.Save("q1", "a")
	store.Save("q1", "b")

	record, ok := store.Get("q1")
	if !ok {
		t.Fatalf("expected record for q1")
	}
	if record.SelectedKey != "b" {
		t.Fatalf("expected later write to win, got %q", record.SelectedKey)
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one record, got %d", store.Len())
	}
}

func TestAnswerStoreGetAbsent(t *testing.T) {
	store := NewAnswerStore()

	if _, ok := store.Get("q1"); ok {
		t.Fatalf("expected no record for unanswered question")
	}
}

func TestAnswerStoreIgnoresEmptyQuestionID(t *testing.T) {
	store := NewAnswerStore()

	store.Save("", "a")
	if store.Len() != 0 {
		t.Fatalf("expected empty question id to be dropped")
	}
}

func TestAnswerStoreSnapshotKeepsFirstAnswerOrder(t *testing.T) {
	store := NewAnswerStore()

	store.Save("q2", "c")
	store.Save("q1", "a")
	store.Save("q2", "d") // upsert must not move q2 to the back

	snapshot := store.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snapshot))
	}
	if snapshot[0].QuestionID != "q2" || snapshot[0].SelectedKey != "d" {
		t.Fatalf("unexpected first record: %+v", snapshot[0])
	}
	if snapshot[1].QuestionID != "q1" || snapshot[1].SelectedKey != "a" {
		t.Fatalf("unexpected second record: %+v", snapshot[1])
	}
}

func TestAnswerStoreReset(t *testing.T) {
	store := NewAnswerStore()

	store.Save("q1", "a")
	store.Save("q2", "b")
	store.Reset()

	if store.Len() != 0 {
		t.Fatalf("expected store cleared, got %d records", store.Len())
	}
	if got := store.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}
