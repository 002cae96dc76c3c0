package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"studybuddy-service/internal/async"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/responder"
)

// Greeting opens every new chat session.
const Greeting = "Hi! I'm your AI study assistant. I'm here to help you with any doubts or questions you have about your studies. What would you like to learn about today?"

// DefaultChatTitle names sessions created without a title.
const DefaultChatTitle = "Study Session"

// ChatEventType tags events pushed to chat subscribers.
type ChatEventType string

const (
	ChatMessageAdded ChatEventType = "message"
	ChatTyping       ChatEventType = "typing"
	ChatFeedback     ChatEventType = "feedback"
)

// ChatEvent is pushed to subscribers of a chat session.
type ChatEvent struct {
	Type    ChatEventType   `json:"type"`
	Message *domain.Message `json:"message,omitempty"`
	Pending bool            `json:"pending"`
}

// ChatSession is the live side of a stored conversation: it schedules bot
// replies and fans out events. At most one reply is pending at a time.
type ChatSession struct {
	// holders is guarded by ChatService.mu.
	holders int

	info  domain.ChatSessionInfo
	repo  ChatRepository
	delay time.Duration
	now   func() time.Time
	newID func() string

	lifetime context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	closed      bool
	pending     bool
	subscribers map[chan ChatEvent]struct{}
}

func newChatSession(info domain.ChatSessionInfo, repo ChatRepository, delay time.Duration, now func() time.Time, newID func() string) *ChatSession {
	lifetime, cancel := context.WithCancel(context.Background())
	return &ChatSession{
		info:        info,
		repo:        repo,
		delay:       delay,
		now:         now,
		newID:       newID,
		lifetime:    lifetime,
		cancel:      cancel,
		subscribers: make(map[chan ChatEvent]struct{}),
	}
}

// Info returns the stored session record.
func (s *ChatSession) Info() domain.ChatSessionInfo {
	return s.info
}

// Messages returns the conversation in append order.
func (s *ChatSession) Messages(ctx context.Context) ([]domain.Message, error) {
	return s.repo.ListMessages(ctx, s.info.ID)
}

// Pending reports whether a bot reply is being typed.
func (s *ChatSession) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SendUserMessage appends the user's message and schedules the bot reply.
// The reply future resolves once the reply is appended, or with an error if
// the session is closed first.
func (s *ChatSession) SendUserMessage(ctx context.Context, text, subject string) (domain.Message, *async.Future[domain.Message], error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, nil, domain.ErrEmptyMessage
	}
	if subject == "" {
		subject = s.info.Subject
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Message{}, nil, domain.ErrSessionNotFound
	}
	if s.pending {
		return domain.Message{}, nil, domain.ErrReplyPending
	}

	now := s.now()
	msg := domain.Message{
		ID:        s.newID(),
		SessionID: s.info.ID,
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: now,
		Subject:   subject,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return domain.Message{}, nil, err
	}
	s.touch(ctx, now)

	s.pending = true
	s.broadcastLocked(ChatEvent{Type: ChatMessageAdded, Message: &msg})
	s.broadcastLocked(ChatEvent{Type: ChatTyping, Pending: true})

	reply := async.After(s.lifetime, s.delay, func(ctx context.Context) (domain.Message, error) {
		return s.appendReply(ctx, text, subject)
	})
	return msg, reply, nil
}

func (s *ChatSession) appendReply(ctx context.Context, question, subject string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Message{}, context.Canceled
	}
	defer func() {
		s.pending = false
		s.broadcastLocked(ChatEvent{Type: ChatTyping, Pending: false})
	}()

	now := s.now()
	reply := domain.Message{
		ID:        s.newID(),
		SessionID: s.info.ID,
		Role:      domain.RoleBot,
		Content:   responder.Respond(question, subject),
		Timestamp: now,
		Subject:   subject,
	}
	if err := s.repo.AppendMessage(ctx, reply); err != nil {
		return domain.Message{}, err
	}
	s.touch(ctx, now)
	s.broadcastLocked(ChatEvent{Type: ChatMessageAdded, Message: &reply})
	return reply, nil
}

func (s *ChatSession) touch(ctx context.Context, at time.Time) {
	if err := s.repo.TouchSession(ctx, s.info.ID, at); err != nil {
		log.Printf("touch chat session %s: %v", s.info.ID, err)
	}
}

// SetFeedback rates one message of this session. A message is rated at most once.
func (s *ChatSession) SetFeedback(ctx context.Context, messageID string, helpful bool) (domain.Message, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	if msg.SessionID != s.info.ID {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	if msg.Helpful != nil {
		return domain.Message{}, domain.ErrFeedbackAlreadySet
	}
	if err := s.repo.SetHelpful(ctx, messageID, helpful); err != nil {
		return domain.Message{}, err
	}
	msg.Helpful = &helpful

	s.mu.Lock()
	s.broadcastLocked(ChatEvent{Type: ChatFeedback, Message: &msg})
	s.mu.Unlock()
	return msg, nil
}

// Subscribe returns a channel receiving session events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ChatSession) Subscribe() (<-chan ChatEvent, func()) {
	ch := make(chan ChatEvent, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close cancels a pending reply. A cancelled reply is never appended.
func (s *ChatSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = false
	s.mu.Unlock()
	s.cancel()
}

// broadcastLocked never blocks: a subscriber that is behind loses its oldest event.
func (s *ChatSession) broadcastLocked(ev ChatEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// ChatService manages a user's chat sessions and their live counterparts.
type ChatService struct {
	repo  ChatRepository
	delay time.Duration
	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	live map[string]*ChatSession
}

func NewChatService(repo ChatRepository, replyDelay time.Duration) *ChatService {
	return &ChatService{
		repo:  repo,
		delay: replyDelay,
		now:   time.Now,
		newID: NewID,
		live:  make(map[string]*ChatSession),
	}
}

// WithIDs swaps the ID generator. Test-only.
func (s *ChatService) WithIDs(newID func() string) *ChatService {
	s.newID = newID
	return s
}

// CreateSession stores a new conversation that starts with the greeting.
func (s *ChatService) CreateSession(ctx context.Context, userID, title, subject string) (domain.ChatSessionInfo, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultChatTitle
	}
	if subject == "" {
		subject = domain.DefaultChatSubject
	}
	now := s.now()
	info := domain.ChatSessionInfo{
		ID:        s.newID(),
		UserID:    userID,
		Title:     title,
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, info); err != nil {
		return domain.ChatSessionInfo{}, err
	}
	greeting := domain.Message{
		ID:        s.newID(),
		SessionID: info.ID,
		Role:      domain.RoleBot,
		Content:   Greeting,
		Timestamp: now,
	}
	if err := s.repo.AppendMessage(ctx, greeting); err != nil {
		return domain.ChatSessionInfo{}, err
	}
	return info, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]domain.ChatSessionInfo, error) {
	return s.repo.ListSessions(ctx, userID)
}

// GetSession returns a session with its messages.
func (s *ChatService) GetSession(ctx context.Context, userID, id string) (domain.ChatSessionInfo, []domain.Message, error) {
	info, err := s.repo.GetSession(ctx, userID, id)
	if err != nil {
		return domain.ChatSessionInfo{}, nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return domain.ChatSessionInfo{}, nil, err
	}
	return info, msgs, nil
}

// Open returns the live session for id, checking ownership, and takes a hold
// on it. Every Open must be paired with a Release. Viewers of the same
// session share one live session until the last of them releases it.
func (s *ChatService) Open(ctx context.Context, userID, id string) (*ChatSession, error) {
	info, err := s.repo.GetSession(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.live[id]
	if !ok {
		live = newChatSession(info, s.repo, s.delay, s.now, s.newID)
		s.live[id] = live
	}
	live.holders++
	return live, nil
}

// Release gives back a hold taken by Open. The last release closes the live
// session, cancelling a pending reply, and the next Open starts a fresh one.
func (s *ChatService) Release(live *ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live.holders--
	if live.holders > 0 {
		return
	}
	live.Close()
	if s.live[live.info.ID] == live {
		delete(s.live, live.info.ID)
	}
}

// Send appends a user message to session id and schedules the reply. The
// session is held until the reply resolves, so other viewers leaving does
// not cancel it.
func (s *ChatService) Send(ctx context.Context, userID, sessionID, text, subject string) (domain.Message, *async.Future[domain.Message], error) {
	live, err := s.Open(ctx, userID, sessionID)
	if err != nil {
		return domain.Message{}, nil, err
	}
	msg, reply, err := live.SendUserMessage(ctx, text, subject)
	if err != nil {
		s.Release(live)
		return domain.Message{}, nil, err
	}
	go func() {
		<-reply.Done()
		s.Release(live)
	}()
	return msg, reply, nil
}

// Feedback rates a message in one of the user's sessions.
func (s *ChatService) Feedback(ctx context.Context, userID, messageID string, helpful bool) (domain.Message, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return domain.Message{}, err
	}
	live, err := s.Open(ctx, userID, msg.SessionID)
	if err != nil {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	defer s.Release(live)
	return live.SetFeedback(ctx, messageID, helpful)
}

// DeleteSession cancels any pending reply and removes the session.
func (s *ChatService) DeleteSession(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetSession(ctx, userID, id); err != nil {
		return err
	}
	s.evict(id)
	return s.repo.DeleteSession(ctx, userID, id)
}

// evict closes the live side of a session regardless of its holders.
func (s *ChatService) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live, ok := s.live[id]; ok {
		live.Close()
		delete(s.live, id)
	}
}

// Stats counts the user's sessions and the messages they sent.
func (s *ChatService) Stats(ctx context.Context, userID string) (domain.ChatStats, error) {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return domain.ChatStats{}, err
	}
	stats := domain.ChatStats{
		TotalSessions:     len(sessions),
		MessagesBySubject: make(map[string]int),
	}
	for _, info := range sessions {
		msgs, err := s.repo.ListMessages(ctx, info.ID)
		if err != nil {
			return domain.ChatStats{}, err
		}
		for _, m := range msgs {
			if m.Role != domain.RoleUser {
				continue
			}
			stats.TotalMessages++
			subject := m.Subject
			if subject == "" {
				subject = info.Subject
			}
			stats.MessagesBySubject[subject]++
		}
	}
	return stats, nil
}

// Shutdown cancels every pending reply.
func (s *ChatService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, live := range s.live {
		live.Close()
		delete(s.live, id)
	}
}
