package app

import (
	"sync"
	"time"

	"medprep-quiz-service/internal/domain"
)

// State is the tagged session state. Exactly one holds at any time, which
// keeps combinations like "submitting while still accepting selections"
// unrepresentable.
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// View is what a client renders for the current question. CorrectKey and
// Explanation are populated only once the question has been answered.
type View struct {
	Index       int             `json:"index"`
	Total       int             `json:"total"`
	Question    domain.Question `json:"question"`
	SelectedKey string          `json:"selected_key,omitempty"`
	Answered    bool            `json:"answered"`
}

// Session drives one quiz attempt for one user: question traversal, answer
// recording, elapsed-time accounting, and submission payload assembly. All
// methods are safe for concurrent use, though callers are expected to be a
// single client connection.
type Session struct {
	mu        sync.Mutex
	attemptID string
	userID    string
	selection domain.Selection
	questions []domain.Question
	index     int
	answers   *AnswerStore
	state     State
	startTime time.Time
	now       func() time.Time

	// submitEpoch identifies the in-flight submission so a late response
	// from an abandoned request cannot clobber a newer terminal state.
	submitEpoch uint64
	result      domain.Result
	lastErr     error
}

// NewSession creates an attempt in the Loading state with a fresh answer
// store.
func NewSession(userID string, selection domain.Selection) *Session {
	return NewSessionWithClock(userID, selection, time.Now)
}

// NewSessionWithClock is test-only for deterministic elapsed-time values.
func NewSessionWithClock(userID string, selection domain.Selection, now func() time.Time) *Session {
	return &Session{
		userID:    userID,
		selection: selection,
		answers:   NewAnswerStore(),
		state:     StateLoading,
		now:       now,
	}
}

// Start installs the fetched question list and attempt id and moves the
// session to InProgress. An empty list returns ErrNoQuestions and leaves the
// session unusable. A second Start on a running session is a no-op so
// duplicate triggers cannot reset the start time.
func (s *Session) Start(questions []domain.Question, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoading {
		return nil
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}

	s.questions = questions
	s.attemptID = attemptID
	s.index = 0
	s.startTime = s.now()
	s.state = StateInProgress
	return nil
}

// AttemptID returns the server-minted attempt identifier, empty until Start
// succeeds.
func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// UserID returns the owner of the attempt.
func (s *Session) UserID() string {
	return s.userID
}

// Selection returns the quiz-selection context the attempt was started with.
func (s *Session) Selection() domain.Selection {
	return s.selection
}

// State returns the current tagged state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the grading outcome; meaningful only once Completed.
func (s *Session) Result() domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the last submission failure; meaningful only in Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Current returns the view for the question at the current index.
func (s *Session) Current() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		return View{}, domain.ErrNotStarted
	}
	return s.viewLocked(), nil
}

// SelectOption records the selection for the current question. Once a
// question has an answer it is locked: the user has seen the feedback, so a
// repeat select is a no-op returning the unchanged view.
func (s *Session) SelectOption(optionKey string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading:
		return View{}, domain.ErrNotStarted
	case StateCompleted:
		return View{}, domain.ErrSessionClosed
	case StateSubmitting:
		return View{}, domain.ErrSubmitInFlight
	}

	q := s.questions[s.index]
	if _, answered := s.answers.Get(q.ID); answered {
		return s.viewLocked(), nil
	}
	if !hasOption(q, optionKey) {
		return View{}, domain.ErrOptionNotFound
	}
	s.answers.Save(q.ID, optionKey)
	return s.viewLocked(), nil
}

// GoNext advances to the next question, returning its view with any prior
// answer restored. The current question must be answered first. On the last
// question GoNext does not advance; it reports submit=true and the caller
// runs Submit.
func (s *Session) GoNext() (view View, submit bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading:
		return View{}, false, domain.ErrNotStarted
	case StateCompleted:
		return View{}, false, domain.ErrSessionClosed
	case StateSubmitting:
		return View{}, false, domain.ErrSubmitInFlight
	}

	if _, answered := s.answers.Get(s.questions[s.index].ID); !answered {
		return View{}, false, domain.ErrAnswerRequired
	}
	if s.index == len(s.questions)-1 {
		return s.viewLocked(), true, nil
	}
	s.index++
	return s.viewLocked(), false, nil
}

// GoPrevious steps back one question, restoring any recorded answer. The
// forward gate does not apply to backward motion; at index zero it is a
// no-op.
func (s *Session) GoPrevious() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading:
		return View{}, domain.ErrNotStarted
	case StateCompleted:
		return View{}, domain.ErrSessionClosed
	case StateSubmitting:
		return View{}, domain.ErrSubmitInFlight
	}

	if s.index > 0 {
		s.index--
	}
	return s.viewLocked(), nil
}

// BeginSubmit moves the session to Submitting and assembles the payload. The
// returned epoch must be passed back to CompleteSubmit so a stale response
// cannot overwrite a newer outcome. A submit while one is in flight returns
// ErrSubmitInFlight and is dropped.
func (s *Session) BeginSubmit() (domain.Submission, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateLoading:
		return domain.Submission{}, 0, domain.ErrNotStarted
	case StateSubmitting:
		return domain.Submission{}, 0, domain.ErrSubmitInFlight
	case StateCompleted:
		return domain.Submission{}, 0, domain.ErrSessionClosed
	}

	s.state = StateSubmitting
	s.submitEpoch++
	return domain.Submission{
		UserID:           s.userID,
		AttemptID:        s.attemptID,
		Selection:        s.selection,
		TimeTakenSeconds: s.elapsedSecondsLocked(),
		Answers:          s.answers.Snapshot(),
	}, s.submitEpoch, nil
}

// CompleteSubmit resolves an in-flight submission. Responses carrying a stale
// epoch, or arriving after the session left Submitting, are discarded.
// Failure returns the session to Failed with answers and start time intact,
// so a retried submit sends the same answers with a larger elapsed time.
func (s *Session) CompleteSubmit(epoch uint64, result domain.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.submitEpoch || s.state != StateSubmitting {
		return
	}
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		return
	}
	s.state = StateCompleted
	s.result = result
	s.lastErr = nil
}

func (s *Session) elapsedSecondsLocked() int64 {
	elapsed := s.now().Sub(s.startTime)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Second)
}

func (s *Session) viewLocked() View {
	q := s.questions[s.index]
	record, answered := s.answers.Get(q.ID)
	if !answered {
		// Hide the key and explanation until the question is answered.
		q.CorrectKey = ""
		q.Explanation = ""
	}
	return View{
		Index:       s.index,
		Total:       len(s.questions),
		Question:    q,
		SelectedKey: record.SelectedKey,
		Answered:    answered,
	}
}

func hasOption(q domain.Question, optionKey string) bool {
	for _, opt := range q.Options {
		if opt.Key == optionKey {
			return true
		}
	}
	return false
}
