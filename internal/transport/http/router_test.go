package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/auth"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
	"studybuddy-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server, _ := newTestServerWithDashboard(t)
	return server
}

func newTestServerWithDashboard(t *testing.T) (*httptest.Server, *app.Dashboard) {
	t.Helper()
	events := event.Nop{}
	progress := app.NewProgressService(memory.NewProgressRepository(domain.DefaultAchievements()), events)
	bank := memory.NewStaticQuestionBank(domain.DefaultQuestionBank())
	dashboard := app.NewDashboard(
		app.NewTaskService(memory.NewTaskRepository(), progress, events),
		app.NewSummaryService(memory.NewSummaryRepository(), progress, events, 0),
		app.NewQuizService(memory.NewQuizSessionStore(), bank, memory.NewAttemptRepository(), progress, events, 0),
		app.NewChatService(memory.NewChatRepository(), 0),
		progress,
	)
	authSvc := auth.NewService(memory.NewUserRepository(), "test-secret", time.Hour)

	server := httptest.NewServer(NewHandler(dashboard, authSvc).Router())
	t.Cleanup(func() {
		server.Close()
		dashboard.Shutdown()
	})
	return server, dashboard
}

func login(t *testing.T, server *httptest.Server) string {
	t.Helper()
	status, body := call(t, server, http.MethodPost, "/api/v1/auth/email", "", map[string]any{
		"email":    "sam@example.com",
		"password": "anything",
		"name":     "Sam Rivera",
	})
	if status != http.StatusOK {
		t.Fatalf("login status %d: %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token, got %v", body)
	}
	return token
}

func call(t *testing.T, server *httptest.Server, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		raw := new(bytes.Buffer)
		_, _ = raw.ReadFrom(resp.Body)
		// list endpoints answer with arrays
		if bytes.HasPrefix(bytes.TrimSpace(raw.Bytes()), []byte("[")) {
			var items []any
			if err := json.Unmarshal(raw.Bytes(), &items); err != nil {
				t.Fatalf("decode %s: %v", path, err)
			}
			return resp.StatusCode, map[string]any{"items": items}
		}
		if err := json.Unmarshal(raw.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode, body
}

func TestMissingTokenGetsErrorEnvelope(t *testing.T) {
	server := newTestServer(t)

	status, body := call(t, server, http.MethodGet, "/api/v1/tasks", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	apiErr, _ := body["error"].(map[string]any)
	if apiErr["code"] != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %v", body)
	}
	if apiErr["request_id"] == "" || apiErr["request_id"] == nil {
		t.Fatalf("expected request id in error, got %v", body)
	}
}

func TestEmailLoginRequiresEmail(t *testing.T) {
	server := newTestServer(t)
	status, body := call(t, server, http.MethodPost, "/api/v1/auth/email", "", map[string]any{"email": " "})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", status, body)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)
	today := time.Now().Format(domain.DateLayout)

	status, task := call(t, server, http.MethodPost, "/api/v1/tasks", token, map[string]any{
		"subject":  "Mathematics",
		"topic":    "Algebra",
		"duration": 45,
		"priority": "low",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status %d: %v", status, task)
	}
	if task["status"] != "pending" || task["date"] != today || task["time"] != "09:00" {
		t.Fatalf("unexpected defaults: %v", task)
	}
	id := task["id"].(string)

	_, list := call(t, server, http.MethodGet, "/api/v1/tasks?date="+today, token, nil)
	if items := list["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one task today, got %v", list)
	}

	status, toggled := call(t, server, http.MethodPatch, "/api/v1/tasks/"+id+"/toggle-status", token, nil)
	if status != http.StatusOK || toggled["status"] != "completed" {
		t.Fatalf("expected completed, got %d %v", status, toggled)
	}

	_, stats := call(t, server, http.MethodGet, "/api/v1/tasks/stats", token, nil)
	if stats["completedTasks"] != float64(1) || stats["totalStudyHours"] != 0.75 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	status, _ = call(t, server, http.MethodDelete, "/api/v1/tasks/"+id, token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	status, body := call(t, server, http.MethodGet, "/api/v1/tasks/"+id, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d: %v", status, body)
	}
}

func TestTasksAreScopedToTheirOwner(t *testing.T) {
	server := newTestServer(t)
	owner := login(t, server)
	_, google := call(t, server, http.MethodPost, "/api/v1/auth/google", "", nil)
	other := google["token"].(string)

	_, task := call(t, server, http.MethodPost, "/api/v1/tasks", owner, map[string]any{"subject": "History"})
	status, _ := call(t, server, http.MethodGet, "/api/v1/tasks/"+task["id"].(string), other, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's task, got %d", status)
	}
}

func TestSummaryCreateAndExport(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	status, body := call(t, server, http.MethodPost, "/api/v1/summaries", token, map[string]any{
		"text": "Photosynthesis converts light energy into chemical energy stored in glucose molecules.",
		"type": "paragraph",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status %d: %v", status, body)
	}
	summary := body["summary"].(map[string]any)
	if summary["title"] != "Summary 1" || !strings.HasPrefix(summary["content"].(string), "This content discusses ") {
		t.Fatalf("unexpected summary: %v", summary)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/summaries/"+summary["id"].(string)+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="Summary 1.txt"` {
		t.Fatalf("unexpected disposition %q", got)
	}

	status, body = call(t, server, http.MethodPost, "/api/v1/summaries", token, map[string]any{"text": "  "})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d: %v", status, body)
	}
	status, body = call(t, server, http.MethodPost, "/api/v1/summaries", token, map[string]any{"text": "x", "type": "haiku"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d: %v", status, body)
	}
}

func TestQuizFlowOverHTTP(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	status, body := call(t, server, http.MethodPost, "/api/v1/quiz/generate", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without subject, got %d: %v", status, body)
	}

	status, body = call(t, server, http.MethodPut, "/api/v1/quiz/config", token, map[string]any{
		"subject":      "Science",
		"numQuestions": 3,
		"timeLimit":    15,
	})
	if status != http.StatusOK {
		t.Fatalf("configure status %d: %v", status, body)
	}
	_, snap := call(t, server, http.MethodPost, "/api/v1/quiz/generate", token, nil)
	if snap["state"] != "ready" || len(snap["questions"].([]any)) != 3 {
		t.Fatalf("expected three ready questions, got %v", snap)
	}
	if _, snap = call(t, server, http.MethodPost, "/api/v1/quiz/start", token, nil); snap["state"] != "in-progress" {
		t.Fatalf("expected in-progress, got %v", snap)
	}

	answers := []map[string]any{
		{"questionId": "1", "answer": 1},
		{"questionId": "2", "answer": "true"},
		{"questionId": "3", "answer": 0},
	}
	for _, a := range answers {
		if status, body := call(t, server, http.MethodPost, "/api/v1/quiz/answer", token, a); status != http.StatusOK {
			t.Fatalf("answer status %d: %v", status, body)
		}
	}
	status, snap = call(t, server, http.MethodPost, "/api/v1/quiz/complete", token, nil)
	if status != http.StatusOK || snap["state"] != "completed" {
		t.Fatalf("expected completed, got %d %v", status, snap)
	}
	report := snap["report"].(map[string]any)
	if report["correctAnswers"] != float64(2) || report["accuracy"] != float64(67) {
		t.Fatalf("unexpected report: %v", report)
	}

	_, history := call(t, server, http.MethodGet, "/api/v1/quiz/history", token, nil)
	if items := history["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one attempt, got %v", history)
	}

	status, _ = call(t, server, http.MethodPost, "/api/v1/quiz/next", token, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 navigating a completed quiz, got %d", status)
	}
	if _, snap = call(t, server, http.MethodPost, "/api/v1/quiz/reset", token, nil); snap["state"] != "configuring" {
		t.Fatalf("expected configuring after reset, got %v", snap)
	}
}

func TestChatSendWaitsForReply(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	status, created := call(t, server, http.MethodPost, "/api/v1/chat/sessions", token, nil)
	if status != http.StatusCreated {
		t.Fatalf("create session status %d: %v", status, created)
	}
	session := created["session"].(map[string]any)
	if session["title"] != app.DefaultChatTitle {
		t.Fatalf("expected default title, got %v", session)
	}
	id := session["id"].(string)

	status, body := call(t, server, http.MethodPost, "/api/v1/chat/sessions/"+id+"/messages", token, map[string]any{
		"text":    "What is a derivative?",
		"subject": "mathematics",
	})
	if status != http.StatusCreated {
		t.Fatalf("send status %d: %v", status, body)
	}
	reply := body["reply"].(map[string]any)
	if reply["type"] != "bot" || !strings.Contains(reply["content"].(string), "derivative") {
		t.Fatalf("unexpected reply: %v", reply)
	}

	status, rated := call(t, server, http.MethodPatch, "/api/v1/chat/messages/"+reply["id"].(string)+"/feedback", token, map[string]any{"helpful": true})
	if status != http.StatusOK || rated["helpful"] != true {
		t.Fatalf("expected helpful feedback, got %d %v", status, rated)
	}
	status, _ = call(t, server, http.MethodPatch, "/api/v1/chat/messages/"+reply["id"].(string)+"/feedback", token, map[string]any{"helpful": false})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on second rating, got %d", status)
	}

	status, _ = call(t, server, http.MethodPost, "/api/v1/chat/sessions/"+id+"/messages", token, map[string]any{"text": ""})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", status)
	}

	_, stats := call(t, server, http.MethodGet, "/api/v1/chat/stats", token, nil)
	if stats["totalMessages"] != float64(1) {
		t.Fatalf("expected one user message, got %v", stats)
	}
}

func TestRespondEndpoint(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	_, body := call(t, server, http.MethodPost, "/api/v1/respond", token, map[string]any{
		"question": "asdf",
		"subject":  "history",
	})
	if !strings.Contains(body["response"].(string), "history") {
		t.Fatalf("expected fallback mentioning the subject, got %v", body)
	}
}

func TestDashboardOverview(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	_, tabs := call(t, server, http.MethodGet, "/api/v1/dashboard?tab=unknown", token, nil)
	active := tabs["active"].(map[string]any)
	if active["key"] != "overview" || tabs["greeting"] != "Good morning, Sam!" {
		t.Fatalf("unexpected dashboard: %v", tabs)
	}

	status, overview := call(t, server, http.MethodGet, "/api/v1/dashboard/overview", token, nil)
	if status != http.StatusOK {
		t.Fatalf("overview status %d: %v", status, overview)
	}
	progress := overview["progress"].(map[string]any)
	if progress["level"] != float64(1) {
		t.Fatalf("expected level 1 for a new user, got %v", progress)
	}
}
