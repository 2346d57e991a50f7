package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/assets"
	"github.com/jonathan/flower-resume/internal/config"
	"github.com/jonathan/flower-resume/internal/db"
	"github.com/jonathan/flower-resume/internal/llm"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/resumes/resumestest"
	"github.com/jonathan/flower-resume/internal/server/ratelimit"
	"github.com/jonathan/flower-resume/internal/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

// memUserStore is an in-memory UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*db.User
	err   error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (m *memUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return uuid.Nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		PasswordSet:  passwordHash != "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memUserStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func (m *memUserStore) UpdateUserName(_ context.Context, id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// scriptedLLM returns reply for every prompt.
type scriptedLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt []string
}

func (f *scriptedLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = append(f.prompt, prompt)
	return f.reply, f.err
}

func (f *scriptedLLM) GetModel(tier llm.ModelTier) string { return "scripted-" + string(tier) }

func (f *scriptedLLM) Close() error { return nil }

type stubFetcher struct {
	text string
	err  error
}

func (f *stubFetcher) JobDescription(context.Context, string) (string, error) {
	return f.text, f.err
}

// memUploader records uploads and returns a predictable URL.
type memUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (u *memUploader) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	u.mu.Lock()
	u.keys = append(u.keys, key)
	u.mu.Unlock()
	return "https://cdn.example.com/" + key, nil
}

type harness struct {
	server   *Server
	handler  http.Handler
	users    *memUserStore
	store    *resumestest.Store
	docs     *resumes.Service
	llm      *scriptedLLM
	fetcher  *stubFetcher
	uploader *memUploader
}

type harnessOption func(*Deps)

func withLimiter(l *ratelimit.Limiter) harnessOption {
	return func(d *Deps) { d.Limiter = l }
}

func withoutAI() harnessOption {
	return func(d *Deps) { d.AI = nil }
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               8080,
			CORSAllowedOrigins: []string{"*"},
		},
		JWT:      config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 1},
		Password: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		users:    newMemUserStore(),
		store:    resumestest.NewStore(),
		llm:      &scriptedLLM{reply: `{"summary": "Enhanced summary"}`},
		fetcher:  &stubFetcher{text: "Senior Go engineer wanted."},
		uploader: &memUploader{},
	}
	h.docs = resumes.NewService(h.store, nil)

	deps := Deps{
		Config:  testConfig(),
		Users:   h.users,
		Resumes: h.docs,
		AI:      ai.NewService(h.llm, h.docs, h.fetcher, ai.Config{MaxAttempts: 2}, nil),
		Assets:  assets.NewService(h.uploader, 1<<10, nil),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	s, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)

	h.server = s
	h.handler = s.Handler()
	return h
}

// do sends a JSON request through the full middleware chain.
func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token and ID.
func (h *harness) register(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/auth/register", types.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

var errBoom = errors.New("boom")
