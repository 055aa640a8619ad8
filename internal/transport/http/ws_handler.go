package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"medprep-quiz-service/internal/app"
	"medprep-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionKey string `json:"optionKey"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz attempt
// per connection. The client sends start/select/next/previous/submit; the
// server answers with question views, answer feedback, the final result, or
// an error. Messages on one connection are strictly serialized, matching the
// one-user-one-question interaction model.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var attemptID string
	completed := false
	defer func() {
		// A dropped connection abandons the attempt; nothing is kept for a
		// quiz the user never finished.
		if attemptID != "" && !completed {
			h.service.Abandon(attemptID)
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var selection domain.Selection
			if err := json.Unmarshal(inbound.Payload, &selection); err != nil {
				writeError(conn, "bad_request", "invalid start payload")
				continue
			}
			outcome, err := h.service.Start(r.Context(), userID, selection)
			if err != nil {
				writeError(conn, errorCode(err), err.Error())
				continue
			}
			// Restarting mid-quiz abandons the previous attempt; otherwise
			// it would sit in the attempt store forever.
			if attemptID != "" && !completed {
				h.service.Abandon(attemptID)
			}
			attemptID = outcome.AttemptID
			completed = false
			write(conn, "started", outcome)

		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "bad_request", "invalid select payload")
				continue
			}
			view, err := h.service.Select(r.Context(), attemptID, payload.OptionKey)
			if err != nil {
				writeError(conn, errorCode(err), err.Error())
				continue
			}
			write(conn, "answer", view)

		case "next":
			outcome, err := h.service.Next(r.Context(), attemptID)
			if err != nil {
				writeError(conn, errorCode(err), err.Error())
				continue
			}
			if outcome.Submitted {
				completed = true
				write(conn, "result", outcome.Result)
				continue
			}
			write(conn, "question", outcome.View)

		case "previous":
			view, err := h.service.Previous(r.Context(), attemptID)
			if err != nil {
				writeError(conn, errorCode(err), err.Error())
				continue
			}
			write(conn, "question", view)

		case "submit":
			result, err := h.service.Submit(r.Context(), attemptID)
			if err != nil {
				writeError(conn, errorCode(err), err.Error())
				continue
			}
			completed = true
			write(conn, "result", result)

		default:
			writeError(conn, "bad_request", "unsupported message type")
		}
	}
}

func write[T any](conn *websocket.Conn, msgType string, payload T) {
	if err := conn.WriteJSON(outboundMessage[T]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func writeError(conn *websocket.Conn, code, message string) {
	write(conn, "error", errorPayload{Code: code, Message: message})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrAnswerRequired):
		return "answer_required"
	case errors.Is(err, domain.ErrNoQuestions):
		return "no_questions"
	case errors.Is(err, domain.ErrQuestionSetNotFound):
		return "no_questions"
	case errors.Is(err, domain.ErrSubmissionFailed):
		return "submission_failed"
	case errors.Is(err, domain.ErrSubmitInFlight):
		return "submit_in_flight"
	case errors.Is(err, domain.ErrSessionClosed):
		return "attempt_completed"
	case errors.Is(err, domain.ErrAttemptNotFound), errors.Is(err, domain.ErrNotStarted):
		return "no_attempt"
	case errors.Is(err, domain.ErrOptionNotFound):
		return "bad_option"
	default:
		return "internal"
	}
}
