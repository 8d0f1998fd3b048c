package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codyseavey/textify/internal/errs"
	"github.com/codyseavey/textify/internal/middleware"
	"github.com/codyseavey/textify/internal/repository"
	"github.com/codyseavey/textify/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUpstream struct {
	result string
	err    error
}

func (s stubUpstream) Translate(context.Context, string, string, string) (string, error) {
	return s.result, s.err
}

type testServer struct {
	engine *gin.Engine
	auth   *services.AuthService
}

func newTestServer(t *testing.T, up services.Upstream) *testServer {
	t.Helper()
	log := zap.NewNop()

	users := repository.NewMemoryUsers()
	history := repository.NewMemoryHistory()
	tokens, err := services.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	auth := services.NewAuthService(users, tokens, services.MinPasswordCost, log)
	translator := services.NewTranslator(services.NewTranslationCache(10), up, log)
	historySvc := services.NewHistoryService(history, users, 3, log)

	ah := NewAuthHandler(auth, log)
	th := NewTranslateHandler(translator, log)
	hh := NewHistoryHandler(historySvc, log)

	r := gin.New()
	r.POST("/api/register", ah.Register)
	r.POST("/api/login", ah.Login)
	r.GET("/api/auth/verify", middleware.JWTAuth(auth), ah.Verify)
	r.GET("/api/translate", th.Translate)
	r.GET("/api/translate/stats", th.GetCacheStats)
	g := r.Group("/api/history", middleware.JWTAuth(auth))
	g.POST("", hh.Save)
	g.GET("", hh.List)
	g.DELETE("", hh.Clear)
	g.DELETE("/:id", hh.Delete)

	return &testServer{engine: r, auth: auth}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func register(t *testing.T, s *testServer, username string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/register", "", map[string]string{"username": username, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t, stubUpstream{})

	w := s.do(http.MethodPost, "/api/register", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.NotEmpty(t, user["id"])
	require.NotContains(t, w.Body.String(), "password")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{"duplicate username", map[string]string{"username": "alice", "password": "other"}, http.StatusConflict, "ALREADY_EXISTS"},
		{"missing password", map[string]string{"username": "bob"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"blank username", map[string]string{"username": "   ", "password": "pw"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"malformed json", "{not json", http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/register", "", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code)
			require.Equal(t, tt.expectedCode, decode(t, w)["code"])
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t, stubUpstream{})
	register(t, s, "alice")

	w := s.do(http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decode(t, w)["token"])

	wrongPassword := s.do(http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "nope"})
	unknownUser := s.do(http.MethodPost, "/api/login", "", map[string]string{"username": "ghost", "password": "pw"})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestAuthHandler_Verify(t *testing.T) {
	s := newTestServer(t, stubUpstream{})
	token := register(t, s, "alice")

	w := s.do(http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["valid"])
	require.Equal(t, "alice", body["user"].(map[string]any)["username"])

	w = s.do(http.MethodGet, "/api/auth/verify", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTranslateHandler(t *testing.T) {
	s := newTestServer(t, stubUpstream{result: "Hello"})

	w := s.do(http.MethodGet, "/api/translate?text=Bonjour&source=fr&target=en", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"translatedText":"Hello","source":"fr","target":"en","cached":false}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/translate?text=Bonjour&source=fr&target=en", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["cached"])

	w = s.do(http.MethodGet, "/api/translate/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	require.EqualValues(t, 1, stats["entries"])
	require.EqualValues(t, 1, stats["hits"])

	w = s.do(http.MethodGet, "/api/translate?source=fr&target=en", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/translate?text=Bonjour&source=fr&target=fr", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/translate?text=Bonjour&source=eng&target=en", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_FAILED", decode(t, w)["code"])
}

func TestTranslateHandler_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, stubUpstream{err: fmt.Errorf("%w: boom", errs.ErrUpstream)})

	w := s.do(http.MethodGet, "/api/translate?text=Bonjour&source=fr&target=en", "", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "UPSTREAM_FAILURE", decode(t, w)["code"])
}

func TestHistoryHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t, stubUpstream{})
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	entry := map[string]string{"text": "Bonjour", "translatedText": "Hello", "source": "fr", "target": "en"}
	w := s.do(http.MethodPost, "/api/history", alice, entry)
	require.Equal(t, http.StatusCreated, w.Code)
	saved := decode(t, w)["entry"].(map[string]any)
	id := saved["id"].(string)
	require.Equal(t, "Hello", saved["translatedText"])

	w = s.do(http.MethodGet, "/api/history", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["history"], 1)

	// Other users see an empty list, never null.
	w = s.do(http.MethodGet, "/api/history", bob, nil)
	require.JSONEq(t, `{"history":[]}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/history/"+id, bob, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/history/"+id, alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/history/"+id, alice, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/history", alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestHistoryHandler_CapAndValidation(t *testing.T) {
	s := newTestServer(t, stubUpstream{})
	token := register(t, s, "alice")

	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/history", token, map[string]string{
			"text": fmt.Sprintf("t%d", i), "translatedText": "x", "source": "fr", "target": "en",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/api/history", token, nil)
	list := decode(t, w)["history"].([]any)
	require.Len(t, list, 3)
	require.Equal(t, "t4", list[0].(map[string]any)["text"])

	w = s.do(http.MethodPost, "/api/history", token, map[string]string{"text": "only text"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/history", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "AUTH_REQUIRED", decode(t, w)["code"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x", errs.ErrValidation), http.StatusBadRequest, "VALIDATION_FAILED"},
		{errs.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{errs.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{fmt.Errorf("record: %w", errs.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{errs.ErrUpstream, http.StatusBadGateway, "UPSTREAM_FAILURE"},
		{errs.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		status, code, _ := classify(tt.err)
		require.Equal(t, tt.status, status, tt.err.Error())
		require.Equal(t, tt.code, code, tt.err.Error())
	}
}
