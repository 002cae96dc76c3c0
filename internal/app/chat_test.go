package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/infra/memory"
	"studybuddy-service/internal/responder"
)

func TestNewSessionStartsWithGreeting(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 0)

	info, err := service.CreateSession(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if info.Subject != domain.DefaultChatSubject || info.Title != app.DefaultChatTitle {
		t.Fatalf("expected defaults, got %+v", info)
	}
	_, msgs, err := service.GetSession(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != domain.RoleBot || msgs[0].Content != app.Greeting {
		t.Fatalf("expected greeting, got %+v", msgs)
	}
}

func TestSendAppendsUserThenBotReply(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 0)
	info, _ := service.CreateSession(ctx, "u1", "Calculus", "mathematics")

	userMsg, reply, err := service.Send(ctx, "u1", info.ID, "What is a derivative?", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if userMsg.Role != domain.RoleUser || userMsg.Subject != "mathematics" {
		t.Fatalf("unexpected user message %+v", userMsg)
	}
	bot, err := reply.Wait(ctx)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if bot.Role != domain.RoleBot || bot.Content != responder.Respond("What is a derivative?", "mathematics") {
		t.Fatalf("unexpected bot reply %+v", bot)
	}

	_, msgs, _ := service.GetSession(ctx, "u1", info.ID)
	if len(msgs) != 3 || msgs[1].ID != userMsg.ID || msgs[2].ID != bot.ID {
		t.Fatalf("expected greeting, user, bot in order, got %+v", msgs)
	}
}

func TestSendRejectsBlankAndPending(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), time.Hour)
	info, _ := service.CreateSession(ctx, "u1", "", "")

	if _, _, err := service.Send(ctx, "u1", info.ID, "   ", ""); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, _, err := service.Send(ctx, "u1", info.ID, "force?", "physics"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, _, err := service.Send(ctx, "u1", info.ID, "again", "physics"); !errors.Is(err, domain.ErrReplyPending) {
		t.Fatalf("expected ErrReplyPending, got %v", err)
	}
	service.Shutdown()
}

func TestLastReleaseDiscardsPendingReply(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), time.Hour)
	info, _ := service.CreateSession(ctx, "u1", "", "")

	viewer, err := service.Open(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, reply, err := viewer.SendUserMessage(ctx, "plants?", "biology")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	service.Release(viewer)

	if _, err := reply.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled reply, got %v", err)
	}
	_, msgs, _ := service.GetSession(ctx, "u1", info.ID)
	if len(msgs) != 2 {
		t.Fatalf("cancelled reply must never be appended, got %d messages", len(msgs))
	}
	if _, _, err := viewer.SendUserMessage(ctx, "hello", ""); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("released session must refuse messages, got %v", err)
	}

	// the next Open starts a fresh live session
	fresh, err := service.Open(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer service.Release(fresh)
	if fresh == viewer {
		t.Fatalf("expected a fresh live session after the last release")
	}
	if _, _, err := fresh.SendUserMessage(ctx, "hello", ""); err != nil {
		t.Fatalf("send after release: %v", err)
	}
	service.Shutdown()
}

func TestViewerLeavingKeepsOtherHoldersAlive(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 20*time.Millisecond).WithIDs(sequentialIDs("chat"))
	defer service.Shutdown()
	info, _ := service.CreateSession(ctx, "u1", "", "")

	first, err := service.Open(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	second, err := service.Open(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	defer service.Release(second)
	if first != second {
		t.Fatalf("viewers of one session must share its live side")
	}

	userMsg, reply, err := service.Send(ctx, "u1", info.ID, "what is a cell?", "biology")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	service.Release(first)

	bot, err := reply.Wait(ctx)
	if err != nil {
		t.Fatalf("reply must survive another viewer leaving, got %v", err)
	}
	if bot.Role != domain.RoleBot || bot.ID != "chat-4" {
		t.Fatalf("unexpected reply %+v", bot)
	}
	_, msgs, _ := service.GetSession(ctx, "u1", info.ID)
	if len(msgs) != 3 || msgs[1].ID != userMsg.ID || msgs[2].ID != bot.ID {
		t.Fatalf("expected greeting, user, bot, got %+v", msgs)
	}

	if _, follow, err := second.SendUserMessage(ctx, "and a tissue?", "biology"); err != nil {
		t.Fatalf("remaining viewer must still send, got %v", err)
	} else if _, err := follow.Wait(ctx); err != nil {
		t.Fatalf("follow-up reply: %v", err)
	}
}

func TestHeldSendOutlivesEveryViewer(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 20*time.Millisecond)
	defer service.Shutdown()
	info, _ := service.CreateSession(ctx, "u1", "", "")

	viewer, _ := service.Open(ctx, "u1", info.ID)
	_, reply, err := service.Send(ctx, "u1", info.ID, "photosynthesis", "biology")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	service.Release(viewer)

	if _, err := reply.Wait(ctx); err != nil {
		t.Fatalf("a held send must still be answered, got %v", err)
	}
	_, msgs, _ := service.GetSession(ctx, "u1", info.ID)
	if len(msgs) != 3 {
		t.Fatalf("expected the reply to be appended, got %d messages", len(msgs))
	}
}

func TestFeedbackIsSetOnce(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 0)
	info, _ := service.CreateSession(ctx, "u1", "", "")
	_, reply, _ := service.Send(ctx, "u1", info.ID, "bond types", "chemistry")
	bot, _ := reply.Wait(ctx)

	msg, err := service.Feedback(ctx, "u1", bot.ID, true)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if msg.Helpful == nil || !*msg.Helpful {
		t.Fatalf("expected helpful flag, got %+v", msg)
	}
	if _, err := service.Feedback(ctx, "u1", bot.ID, false); !errors.Is(err, domain.ErrFeedbackAlreadySet) {
		t.Fatalf("expected ErrFeedbackAlreadySet, got %v", err)
	}
	if _, err := service.Feedback(ctx, "u1", "nope", true); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := service.Feedback(ctx, "u2", bot.ID, true); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("other users cannot rate the message, got %v", err)
	}
}

func TestChatSubscribersSeeTypingAndReply(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 0)
	info, _ := service.CreateSession(ctx, "u1", "", "")
	live, err := service.Open(ctx, "u1", info.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer service.Release(live)
	events, cancel := live.Subscribe()
	defer cancel()

	_, reply, _ := live.SendUserMessage(ctx, "newton", "physics")
	_, _ = reply.Wait(ctx)

	var got []app.ChatEventType
	for i := 0; i < 4; i++ {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	want := []app.ChatEventType{app.ChatMessageAdded, app.ChatTyping, app.ChatMessageAdded, app.ChatTyping}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if live.Pending() {
		t.Fatalf("reply delivered, nothing should be pending")
	}
}

func TestChatStatsCountUserMessagesBySubject(t *testing.T) {
	ctx := context.Background()
	service := app.NewChatService(memory.NewChatRepository(), 0)
	info, _ := service.CreateSession(ctx, "u1", "", "general")
	for _, subject := range []string{"physics", "physics", ""} {
		_, reply, err := service.Send(ctx, "u1", info.ID, "question", subject)
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		_, _ = reply.Wait(ctx)
	}

	stats, err := service.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSessions != 1 || stats.TotalMessages != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.MessagesBySubject["physics"] != 2 || stats.MessagesBySubject["general"] != 1 {
		t.Fatalf("unexpected subjects %+v", stats.MessagesBySubject)
	}
}
