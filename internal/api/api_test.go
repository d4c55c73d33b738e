// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventsnap/internal/auth"
	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/config"
	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/engagement"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/models"
	"github.com/tomtom215/eventsnap/internal/queue"
	"github.com/tomtom215/eventsnap/internal/storage"
	"github.com/tomtom215/eventsnap/internal/websocket"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

var (
	uploader    = models.Identity{UserID: 1, Email: "uploader@example.com", Role: models.RoleMember}
	guest       = models.Identity{UserID: 2, Email: "guest@example.com", Role: models.RoleMember}
	coordinator = models.Identity{UserID: 3, Email: "coord@example.com", Role: models.RoleCoordinator}
)

type testServer struct {
	t        *testing.T
	router   http.Handler
	store    *database.MemoryStore
	files    *storage.LocalStore
	queue    *queue.Queue
	registry *websocket.Registry
	jwt      *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test wrap the in-memory store seen by the
// handlers, for example to inject failures.
func newTestServerWith(t *testing.T, wrap func(*database.MemoryStore) database.Store) *testServer {
	t.Helper()

	store := database.NewMemoryStore()
	var handlerStore database.Store = store
	if wrap != nil {
		handlerStore = wrap(store)
	}
	files, err := storage.NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatal(err)
	}
	q, err := queue.Open(queue.Config{RescanInterval: time.Second, CloseTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = q.Close() })

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, JWTIssuer: "eventsnap"})
	if err != nil {
		t.Fatal(err)
	}
	registry := websocket.NewRegistry(websocket.DefaultConfig())
	t.Cleanup(registry.CloseAll)

	h := NewHandler(Dependencies{
		Store:        handlerStore,
		Queue:        q,
		Files:        files,
		Engine:       engagement.NewEngine(handlerStore, nil, engagement.Config{}),
		Authorizer:   authz.NewPhotoAuthorizer(enforcer),
		Registry:     registry,
		MaxFileBytes: 1 << 10,
		MaxFiles:     5,
	})
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true

	return &testServer{
		t:        t,
		router:   NewRouter(h, auth.NewMiddleware(jwtManager), RouterConfig{Middleware: cfg, MediaRoot: files.Root()}),
		store:    store,
		files:    files,
		queue:    q,
		registry: registry,
		jwt:      jwtManager,
	}
}

func (s *testServer) token(id models.Identity) string {
	s.t.Helper()
	tok, err := s.jwt.GenerateToken(id, time.Hour)
	if err != nil {
		s.t.Fatal(err)
	}
	return tok
}

func (s *testServer) do(id *models.Identity, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*id))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(id *models.Identity, method, target, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return s.do(id, method, target, r, "application/json")
}

// seedPhoto creates a photo owned by owner with an original on disk.
func (s *testServer) seedPhoto(owner models.Identity) *models.Photo {
	s.t.Helper()
	ctx := context.Background()
	path, err := s.files.SaveFile(ctx, []byte("original-bytes"), "originals/seed.jpg")
	if err != nil {
		s.t.Fatal(err)
	}
	p, err := s.store.CreatePhoto(ctx, models.NewPhoto{OriginalPath: path, UploaderID: owner.UserID})
	if err != nil {
		s.t.Fatal(err)
	}
	return p
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) envelope {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body %s", err, rec.Body.String())
	}
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("files[]", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func fpath(id int64, suffix string) string {
	return "/api/v1/photos/" + itoa(id) + suffix
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
