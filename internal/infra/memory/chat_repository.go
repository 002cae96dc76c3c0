package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"studybuddy-service/internal/domain"
)

// ChatRepository keeps chat sessions and their messages in memory.
type ChatRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSessionInfo
	messages map[string][]domain.Message // by session ID
	index    map[string]string           // message ID -> session ID
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		sessions: make(map[string]domain.ChatSessionInfo),
		messages: make(map[string][]domain.Message),
		index:    make(map[string]string),
	}
}

func (r *ChatRepository) CreateSession(_ context.Context, info domain.ChatSessionInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[info.ID] = info
	return nil
}

func (r *ChatRepository) GetSession(_ context.Context, userID, id string) (domain.ChatSessionInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sessions[id]
	if !ok || info.UserID != userID {
		return domain.ChatSessionInfo{}, domain.ErrSessionNotFound
	}
	return info, nil
}

// ListSessions returns the user's sessions, most recently updated first.
func (r *ChatRepository) ListSessions(_ context.Context, userID string) ([]domain.ChatSessionInfo, error) {
	r.mu.RLock()
	out := make([]domain.ChatSessionInfo, 0)
	for _, info := range r.sessions {
		if info.UserID == userID {
			out = append(out, info)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ChatRepository) TouchSession(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	info.UpdatedAt = at
	r.sessions[id] = info
	return nil
}

func (r *ChatRepository) DeleteSession(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.sessions[id]
	if !ok || info.UserID != userID {
		return domain.ErrSessionNotFound
	}
	for _, m := range r.messages[id] {
		delete(r.index, m.ID)
	}
	delete(r.messages, id)
	delete(r.sessions, id)
	return nil
}

func (r *ChatRepository) AppendMessage(_ context.Context, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[msg.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], msg)
	r.index[msg.ID] = msg.SessionID
	return nil
}

func (r *ChatRepository) GetMessage(_ context.Context, id string) (domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, i, ok := r.locateLocked(id)
	if !ok {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	return copyMessage(r.messages[r.index[id]][i]), nil
}

func (r *ChatRepository) SetHelpful(_ context.Context, id string, helpful bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessionID, i, ok := r.locateLocked(id)
	if !ok {
		return domain.ErrMessageNotFound
	}
	msg := &r.messages[sessionID][i]
	if msg.Helpful != nil {
		return domain.ErrFeedbackAlreadySet
	}
	msg.Helpful = &helpful
	return nil
}

func (r *ChatRepository) ListMessages(_ context.Context, sessionID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[sessionID]
	out := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		out[i] = copyMessage(m)
	}
	return out, nil
}

func (r *ChatRepository) locateLocked(id string) (string, int, bool) {
	sessionID, ok := r.index[id]
	if !ok {
		return "", 0, false
	}
	for i, m := range r.messages[sessionID] {
		if m.ID == id {
			return sessionID, i, true
		}
	}
	return "", 0, false
}

func copyMessage(m domain.Message) domain.Message {
	if m.Helpful != nil {
		v := *m.Helpful
		m.Helpful = &v
	}
	return m
}
