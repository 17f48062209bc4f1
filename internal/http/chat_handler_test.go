package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/llm"
	"mindful-chat/internal/service"
)

const testCookie = "mindful_sid"

type slowLLM struct{}

func (slowLLM) Complete(ctx context.Context, _ []domain.Turn) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type testApp struct {
	router   *gin.Engine
	sessions *service.SessionService
	llm      llm.LLMClient
}

func setupApp(client llm.LLMClient, timeout time.Duration) *testApp {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	sessions := service.NewSessionService("secret", time.Hour)
	chatSvc := service.NewChatService(logger, service.NewMemoryHistoryStore(), client, service.NewPromptAssembler(), timeout)
	repo := newFakeCommunityRepo()
	communitySvc := service.NewCommunityService(logger, fakePostRepo{repo}, fakeAnswerRepo{repo}, 10)
	r := NewRouter(logger, sessions, SessionCookie{Name: testCookie},
		NewChatHandler(logger, chatSvc),
		NewCommunityHandler(logger, communitySvc),
	)
	return &testApp{router: r, sessions: sessions, llm: client}
}

func performRequest(r http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("expected session cookie to be set")
	return nil
}

func decodeHistory(t *testing.T, rec *httptest.ResponseRecorder) []domain.Turn {
	t.Helper()
	var body struct {
		History []domain.Turn `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if body.History == nil {
		t.Fatalf("expected history array, got %s", rec.Body.String())
	}
	return body.History
}

func TestChatHandler_TurnThenHistory(t *testing.T) {
	app := setupApp(&llm.MockClient{Response: "Let's talk about that."}, time.Second)

	rec := performRequest(app.router, http.MethodGet, "/chat-history", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(decodeHistory(t, rec)) != 0 {
		t.Fatalf("expected empty history")
	}
	cookie := sessionCookieFrom(t, rec)
	if !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}

	rec = performRequest(app.router, http.MethodPost, "/chat", map[string]any{
		"userInput":   "I feel anxious",
		"chatHistory": []domain.Turn{},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var turn domain.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.ResponseText != "Let's talk about that." || len(turn.NewHistory) != 2 {
		t.Fatalf("unexpected turn result %+v", turn)
	}

	rec = performRequest(app.router, http.MethodGet, "/chat-history", nil, cookie)
	history := decodeHistory(t, rec)
	expected := []domain.Turn{
		{Role: domain.RoleUser, Text: "I feel anxious"},
		{Role: domain.RoleModel, Text: "Let's talk about that."},
	}
	if len(history) != len(expected) {
		t.Fatalf("unexpected history %+v", history)
	}
	for i := range expected {
		if history[i] != expected[i] {
			t.Fatalf("turn %d: expected %+v, got %+v", i, expected[i], history[i])
		}
	}
}

func TestChatHandler_SessionsAreIsolated(t *testing.T) {
	app := setupApp(&llm.MockClient{Response: "ok"}, time.Second)

	first := sessionCookieFrom(t, performRequest(app.router, http.MethodGet, "/chat-history", nil, nil))
	second := sessionCookieFrom(t, performRequest(app.router, http.MethodGet, "/chat-history", nil, nil))
	if first.Value == second.Value {
		t.Fatalf("expected distinct sessions")
	}

	performRequest(app.router, http.MethodPost, "/chat", map[string]any{"userInput": "hola"}, first)
	rec := performRequest(app.router, http.MethodGet, "/chat-history", nil, second)
	if len(decodeHistory(t, rec)) != 0 {
		t.Fatalf("expected no cross-session visibility")
	}
}

func TestChatHandler_ProviderTimeout(t *testing.T) {
	app := setupApp(slowLLM{}, 20*time.Millisecond)
	cookie := sessionCookieFrom(t, performRequest(app.router, http.MethodGet, "/chat-history", nil, nil))

	rec := performRequest(app.router, http.MethodPost, "/chat", map[string]any{"userInput": "hola"}, cookie)
	if rec.Code < 300 {
		t.Fatalf("expected non-2xx, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] == "" {
		t.Fatalf("expected user-presentable message, got %s", rec.Body.String())
	}

	history := decodeHistory(t, performRequest(app.router, http.MethodGet, "/chat-history", nil, cookie))
	if len(history) != 1 || history[0].Role != domain.RoleUser || history[0].Text != "hola" {
		t.Fatalf("expected only the user turn, got %+v", history)
	}
}

func TestChatHandler_EmptyInput(t *testing.T) {
	app := setupApp(&llm.MockClient{Response: "ok"}, time.Second)

	rec := performRequest(app.router, http.MethodPost, "/chat", map[string]any{"userInput": "   "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestChatHandler_ClearChat(t *testing.T) {
	app := setupApp(&llm.MockClient{Response: "ok"}, time.Second)
	cookie := sessionCookieFrom(t, performRequest(app.router, http.MethodGet, "/chat-history", nil, nil))
	performRequest(app.router, http.MethodPost, "/chat", map[string]any{"userInput": "hola"}, cookie)

	for i := 0; i < 2; i++ {
		rec := performRequest(app.router, http.MethodPost, "/clear-chat", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]bool
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body["success"] {
			t.Fatalf("expected success true, got %s", rec.Body.String())
		}
	}

	rec := performRequest(app.router, http.MethodGet, "/chat-history", nil, cookie)
	if rec.Body.String() != `{"history":[]}` {
		t.Fatalf("expected empty history, got %s", rec.Body.String())
	}
}

func TestSessionMiddleware_ReplacesInvalidCookie(t *testing.T) {
	app := setupApp(&llm.MockClient{Response: "ok"}, time.Second)

	rec := performRequest(app.router, http.MethodGet, "/chat-history", nil, &http.Cookie{Name: testCookie, Value: "forged"})
	cookie := sessionCookieFrom(t, rec)
	if _, err := app.sessions.Parse(cookie.Value); err != nil {
		t.Fatalf("expected a fresh valid session, got %v", err)
	}

	rec = performRequest(app.router, http.MethodGet, "/chat-history", nil, cookie)
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			t.Fatalf("valid cookie should not be reissued")
		}
	}
}
