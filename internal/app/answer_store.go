package app

import "medprep-quiz-service/internal/domain"

// AnswerStore keeps one attempt's selections. It is constructed fresh for
// every session so answers can never leak between attempts, even when
// question IDs repeat across question sets.
type AnswerStore struct {
	order   []string
	records map[string]string
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{records: make(map[string]string)}
}

// Save upserts the selection for a question. A later write for the same
// question replaces the earlier one; first-answer order is preserved for
// submission payloads.
func (s *AnswerStore) Save(questionID, selectedKey string) {
	if questionID == "" {
		return
	}
	if _, ok := s.records[questionID]; !ok {
		s.order = append(s.order, questionID)
	}
	s.records[questionID] = selectedKey
}

// Get returns the recorded selection for a question, with ok=false when none
// has been recorded. It never fails.
func (s *AnswerStore) Get(questionID string) (domain.AnswerRecord, bool) {
	key, ok := s.records[questionID]
	if !ok {
		return domain.AnswerRecord{}, false
	}
	return domain.AnswerRecord{QuestionID: questionID, SelectedKey: key}, true
}

// Len reports how many questions have a recorded answer.
func (s *AnswerStore) Len() int {
	return len(s.records)
}

// Reset discards all records.
func (s *AnswerStore) Reset() {
	s.order = s.order[:0]
	for k := range s.records {
		delete(s.records, k)
	}
}

// Snapshot returns all records in first-answer order. The slice is freshly
// allocated; callers may hold it across later writes.
func (s *AnswerStore) Snapshot() []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, domain.AnswerRecord{QuestionID: id, SelectedKey: s.records[id]})
	}
	return out
}
