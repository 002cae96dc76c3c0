package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no quiz or chat session exists for the caller.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidTransition is returned when a quiz operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("operation not allowed in current quiz state")
	// ErrSubjectRequired mirrors the disabled generate button.
	ErrSubjectRequired = errors.New("quiz subject is required")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyMessage is returned when a chat message has no text.
	ErrEmptyMessage = errors.New("message text is required")
	// ErrReplyPending is returned when a message is sent while the bot is still typing.
	ErrReplyPending = errors.New("a reply is still pending")
	// ErrMessageNotFound indicates an unknown message ID.
	ErrMessageNotFound = errors.New("message not found")
	// ErrFeedbackAlreadySet is returned when a message has already been rated.
	ErrFeedbackAlreadySet = errors.New("feedback already recorded")
	// ErrTaskNotFound indicates an unknown study task.
	ErrTaskNotFound = errors.New("study task not found")
	// ErrSummaryNotFound indicates an unknown summary.
	ErrSummaryNotFound = errors.New("summary not found")
	// ErrEmptyText is returned when there is nothing to summarize.
	ErrEmptyText = errors.New("text to summarize is required")
	// ErrInvalidFormat is returned for an unknown summary format.
	ErrInvalidFormat = errors.New("unknown summary format")
	// ErrEmailRequired is returned by the email sign-in flow when no address is given.
	ErrEmailRequired = errors.New("email is required")
	// ErrUserNotFound indicates an unknown user ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
