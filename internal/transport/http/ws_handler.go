package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

// WSHandler streams chat and quiz updates.
type WSHandler struct {
	dashboard *app.Dashboard
	upgrader  websocket.Upgrader
}

func NewWSHandler(dashboard *app.Dashboard) *WSHandler {
	return &WSHandler{
		dashboard: dashboard,
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

type chatMessagePayload struct {
	Text    string `json:"text"`
	Subject string `json:"subject"`
}

type feedbackPayload struct {
	MessageID string `json:"messageId"`
	Helpful   bool   `json:"helpful"`
}

type joinedPayload struct {
	Session  domain.ChatSessionInfo `json:"session"`
	Messages []domain.Message       `json:"messages"`
	Pending  bool                   `json:"pending"`
}

type typingPayload struct {
	Pending bool `json:"pending"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// conn serializes writes to one websocket. Gorilla connections allow a single
// concurrent writer.
type conn struct {
	ws           *websocket.Conn
	send         chan outboundMessage[any]
	closeSignals chan struct{}
	writerDone   chan struct{}
}

func newConn(ws *websocket.Conn) *conn {
	c := &conn{
		ws:           ws,
		send:         make(chan outboundMessage[any], 16),
		closeSignals: make(chan struct{}),
		writerDone:   make(chan struct{}),
	}
	go func() {
		defer close(c.writerDone)
		for msg := range c.send {
			if err := ws.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()
	return c
}

// push blocks until the writer accepts msg or the connection is closing.
func (c *conn) push(typ string, payload any) bool {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
		return true
	case <-c.closeSignals:
		return false
	case <-c.writerDone:
		return false
	}
}

func (c *conn) fail(err error) {
	c.push("error", errorPayload{Message: err.Error()})
}

// stop signals forwarders to return.
func (c *conn) stop() {
	close(c.closeSignals)
}

// drain flushes queued messages. Forwarders must have returned first.
func (c *conn) drain() {
	close(c.send)
	<-c.writerDone
}

// ServeChat streams one chat session. When the last viewer disconnects, a
// reply still pending for a message sent over the socket is cancelled.
func (h *WSHandler) ServeChat(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		badRequest(w, r, "missing sessionId")
		return
	}
	live, err := h.dashboard.Chat.Open(r.Context(), user.ID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	defer h.dashboard.Chat.Release(live)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	events, cancel := live.Subscribe()
	defer cancel()

	c := newConn(ws)
	messages, err := live.Messages(r.Context())
	if err != nil {
		c.fail(err)
		c.stop()
		c.drain()
		return
	}
	c.push("joined", joinedPayload{Session: live.Info(), Messages: messages, Pending: live.Pending()})

	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				var payload any = ev.Message
				if ev.Type == app.ChatTyping {
					payload = typingPayload{Pending: ev.Pending}
				}
				if !c.push(string(ev.Type), payload) {
					return
				}
			case <-c.closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := ws.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "message":
			var payload chatMessagePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.push("error", errorPayload{Message: "invalid message payload"})
				continue
			}
			// the message and the reply reach the client through the subscription
			if _, _, err := live.SendUserMessage(r.Context(), payload.Text, payload.Subject); err != nil {
				c.fail(err)
			}
		case "feedback":
			var payload feedbackPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.push("error", errorPayload{Message: "invalid feedback payload"})
				continue
			}
			if _, err := live.SetFeedback(r.Context(), payload.MessageID, payload.Helpful); err != nil {
				c.fail(err)
			}
		default:
			c.push("error", errorPayload{Message: "unsupported message type"})
		}
	}

	c.stop()
	<-eventsDone
	c.drain()
}

type quizAnswerPayload struct {
	QuestionID string             `json:"questionId"`
	Answer     domain.AnswerValue `json:"answer"`
}

// ServeQuiz pushes a snapshot after every transition of the caller's quiz.
// Clients may also drive the quiz over the socket.
func (h *WSHandler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	quiz := h.dashboard.Quiz
	updates, cancel, err := quiz.Subscribe(r.Context(), user.ID)
	if err != nil {
		_ = ws.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	c := newConn(ws)
	updatesDone := make(chan struct{})
	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					c.push("error", errorPayload{Message: "quiz session closed"})
					return
				}
				if !c.push("snapshot", update) {
					return
				}
			case <-c.closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := ws.ReadJSON(&inbound); err != nil {
			break
		}
		var err error
		switch inbound.Type {
		case "answer":
			var payload quizAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.push("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			_, err = quiz.Answer(r.Context(), user.ID, payload.QuestionID, payload.Answer)
		case "next":
			_, err = quiz.Next(r.Context(), user.ID)
		case "previous":
			_, err = quiz.Previous(r.Context(), user.ID)
		case "complete":
			_, err = quiz.Complete(r.Context(), user.ID)
		default:
			c.push("error", errorPayload{Message: "unsupported message type"})
			continue
		}
		if err != nil {
			c.fail(err)
		}
	}

	c.stop()
	<-updatesDone
	c.drain()
}
