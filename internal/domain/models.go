package domain

import "strings"

// Option represents a possible answer for a question. Keys are short
// identifiers ("a".."d" in practice) unique within the question.
type Option struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// Question models an MCQ question with exactly one correct option key.
// CorrectKey and Explanation are withheld from clients until the question
// has been answered.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	CorrectKey  string   `json:"correct_answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Points      int      `json:"points"` // defaults to 1 if zero
}

// AnswerRecord is one recorded selection: at most one per question within an
// attempt, later writes replacing earlier ones.
type AnswerRecord struct {
	QuestionID  string `json:"question_id"`
	SelectedKey string `json:"selected_key"`
}

// Mode identifies which quiz variant an attempt belongs to. The mode declared
// when the attempt starts is authoritative for routing submissions.
type Mode string

const (
	ModeChapter Mode = "chapter"
	ModeTopic   Mode = "topic"
	ModeSubject Mode = "subject"
	ModeMock    Mode = "mock"
	ModeAMC     Mode = "amc"
)

// Selection is the quiz-selection context: a direct chapter, a topic list, a
// subject plus mood (difficulty), or a mock-test id.
type Selection struct {
	Mode       Mode     `json:"mode"`
	ChapterID  string   `json:"chapter_id,omitempty"`
	TopicIDs   []string `json:"topic_ids,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Mood       string   `json:"mood,omitempty"`
	MockTestID string   `json:"mock_test_id,omitempty"`
}

// Key returns the identifier a question source uses to look up the question
// set for this selection.
func (s Selection) Key() string {
	switch s.Mode {
	case ModeChapter:
		return s.ChapterID
	case ModeTopic:
		return strings.Join(s.TopicIDs, ",")
	case ModeSubject, ModeAMC:
		if s.Mood != "" {
			return s.Subject + ":" + s.Mood
		}
		return s.Subject
	case ModeMock:
		return s.MockTestID
	}
	return ""
}

// Submission is the unified payload handed to a submitter when an attempt is
// submitted. Per-mode field naming differences live in the submitter adapters,
// never here.
type Submission struct {
	UserID           string         `json:"user_id"`
	AttemptID        string         `json:"attempt_id"`
	Selection        Selection      `json:"selection"`
	TimeTakenSeconds int64          `json:"time_taken_seconds"`
	Answers          []AnswerRecord `json:"answers"`
}

// Result is the grading outcome surfaced to the caller after a successful
// submission.
type Result struct {
	AttemptID      string `json:"attempt_id"`
	Score          int    `json:"score"`
	MaxScore       int    `json:"max_score"`
	Correct        int    `json:"correct"`
	Incorrect      int    `json:"incorrect"`
	Unanswered     int    `json:"unanswered"`
	TotalQuestions int    `json:"total_questions"`
}
