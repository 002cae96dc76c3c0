package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// DefaultChatSubject is used when a session or message carries no subject.
const DefaultChatSubject = "general"

// Message is a single chat entry. Helpful is the only field that changes after
// the message is appended, and only once.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject,omitempty"`
	Helpful   *bool     `json:"helpful,omitempty"`
}

// ChatSessionInfo describes a conversation thread owned by a user.
type ChatSessionInfo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatStats summarizes a user's chat usage.
type ChatStats struct {
	TotalSessions     int            `json:"totalSessions"`
	TotalMessages     int            `json:"totalMessages"`
	MessagesBySubject map[string]int `json:"messagesBySubject"`
}
