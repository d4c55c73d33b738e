// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/models"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	decode(t, s.do(nil, http.MethodGet, "/api/v1/health/live", nil, ""), http.StatusOK)

	env := decode(t, s.do(nil, http.MethodGet, "/api/v1/health/ready", nil, ""), http.StatusOK)
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["database_connected"] != true || data["queue_depth"] != float64(0) {
		t.Errorf("ready data = %v", data)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/api/v1/photos/1", "/api/v1/me/library", "/ws"} {
		rec := s.do(nil, http.MethodGet, target, nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token = %d, want 401", target, rec.Code)
		}
	}
}

func TestUploadPhotos(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartBody(t,
		map[string]string{"event_id": "7"},
		map[string][]byte{
			"party.JPG":  []byte("jpeg-bytes"),
			"cake.webp":  []byte("webp-bytes"),
			"notes.txt":  []byte("not an image"),
			"huge.png":   make([]byte, 2<<10),
			"render.bmp": {},
		})
	env := decode(t, s.do(&uploader, http.MethodPost, "/api/v1/photos/upload", body, ct), http.StatusCreated)

	var results []models.UploadResult
	if err := json.Unmarshal(env.Data, &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("accepted %d files, want 2: %+v", len(results), results)
	}
	for _, res := range results {
		if res.ProcessingStatus != models.StatusPending {
			t.Errorf("status = %s, want pending", res.ProcessingStatus)
		}
		p, err := s.store.GetPhoto(context.Background(), res.PhotoID)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(p.OriginalPath, "originals/") || p.UploaderID != uploader.UserID {
			t.Errorf("photo = %+v", p)
		}
		if p.EventID == nil || *p.EventID != 7 {
			t.Errorf("event_id = %v, want 7", p.EventID)
		}
		if ok, _ := s.files.Exists(context.Background(), p.OriginalPath); !ok {
			t.Errorf("original %s not stored", p.OriginalPath)
		}
	}
	if got := s.queue.Len(); got != 2 {
		t.Errorf("queue depth = %d, want 2", got)
	}
}

func TestUploadPhotos_NoValidFiles(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, nil, map[string][]byte{"virus.exe": []byte("MZ")})
	env := decode(t, s.do(&uploader, http.MethodPost, "/api/v1/photos/upload", body, ct), http.StatusBadRequest)
	if env.Error == nil || env.Error.Code != CodeNoValidFiles {
		t.Errorf("error = %+v", env.Error)
	}
	if s.queue.Len() != 0 {
		t.Error("nothing should be enqueued")
	}
}

type failingCreateStore struct {
	*database.MemoryStore
	calls  atomic.Int32
	failOn int32
}

func (f *failingCreateStore) CreatePhoto(ctx context.Context, np models.NewPhoto) (*models.Photo, error) {
	if f.calls.Add(1) >= f.failOn {
		return nil, errors.New("disk full")
	}
	return f.MemoryStore.CreatePhoto(ctx, np)
}

// storedOriginals lists the files under originals/ in the local store.
func storedOriginals(t *testing.T, s *testServer) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.files.Root(), "originals"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, "originals/"+e.Name())
	}
	return names
}

func TestUploadPhotos_RecordFailureRemovesOriginals(t *testing.T) {
	s := newTestServerWith(t, func(m *database.MemoryStore) database.Store {
		return &failingCreateStore{MemoryStore: m, failOn: 2}
	})

	body, ct := multipartBody(t, nil, map[string][]byte{
		"a.jpg": []byte("first"),
		"b.jpg": []byte("second"),
		"c.jpg": []byte("third"),
	})
	env := decode(t, s.do(&uploader, http.MethodPost, "/api/v1/photos/upload", body, ct), http.StatusInternalServerError)
	if env.Error == nil || env.Error.Code != CodeDatabaseError {
		t.Errorf("error = %+v", env.Error)
	}

	// Only the original behind the one recorded photo survives.
	files := storedOriginals(t, s)
	if len(files) != 1 {
		t.Fatalf("originals on disk = %v, want 1", files)
	}
	p, err := s.store.GetPhoto(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if files[0] != p.OriginalPath {
		t.Errorf("kept %s, want %s", files[0], p.OriginalPath)
	}
}

func TestUploadPhotos_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)

	// The request limit is MaxFileBytes*MaxFiles plus 1 MiB of form
	// overhead. The first file is stored before the limit is crossed.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files[]", "first.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("caption", strings.Repeat("x", 2<<20)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	env := decode(t, s.do(&uploader, http.MethodPost, "/api/v1/photos/upload", &buf, mw.FormDataContentType()), http.StatusRequestEntityTooLarge)
	if env.Error == nil || env.Error.Code != CodeTooLarge {
		t.Errorf("error = %+v", env.Error)
	}
	if files := storedOriginals(t, s); len(files) != 0 {
		t.Errorf("originals left behind = %v", files)
	}
	if s.queue.Len() != 0 {
		t.Error("nothing should be enqueued")
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"direct", &http.MaxBytesError{Limit: 10}, true},
		{"wrapped", fmt.Errorf("read upload %q: %w", "a.jpg", &http.MaxBytesError{Limit: 10}), true},
		{"other", io.ErrUnexpectedEOF, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBodyTooLarge(tt.err); got != tt.want {
				t.Errorf("isBodyTooLarge(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUploadPhotos_BadEventID(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, map[string]string{"event_id": "abc"}, map[string][]byte{"a.jpg": []byte("x")})
	decode(t, s.do(&uploader, http.MethodPost, "/api/v1/photos/upload", body, ct), http.StatusBadRequest)
}

func TestUploadExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		ok   bool
	}{
		{"a.jpg", ".jpg", true},
		{"A.JPEG", ".jpeg", true},
		{"scan.tiff", ".tiff", true},
		{"noext", ".jpg", true},
		{`C:\photos\b.PNG`, ".png", true},
		{"doc.pdf", ".pdf", false},
		{"archive.tar.gz", ".gz", false},
	}
	for _, tt := range tests {
		ext, ok := uploadExtension(tt.name)
		if ext != tt.ext || ok != tt.ok {
			t.Errorf("uploadExtension(%q) = %q, %v; want %q, %v", tt.name, ext, ok, tt.ext, tt.ok)
		}
	}
}

func TestGetPhoto(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	env := decode(t, s.do(&guest, http.MethodGet, fpath(p.ID, ""), nil, ""), http.StatusOK)
	var detail models.PhotoWithEngagement
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if detail.ID != p.ID || detail.LikesCount != 0 {
		t.Errorf("detail = %+v", detail)
	}

	decode(t, s.do(&guest, http.MethodGet, fpath(999, ""), nil, ""), http.StatusNotFound)
	decode(t, s.do(&guest, http.MethodGet, "/api/v1/photos/abc", nil, ""), http.StatusBadRequest)
}

func TestUpdateTags_Permissions(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)
	body := `{"manual_tags":[" cake ","dance","cake",""]}`

	env := decode(t, s.doJSON(&guest, http.MethodPut, fpath(p.ID, "/tags"), body), http.StatusForbidden)
	if env.Error.Code != CodeForbidden {
		t.Errorf("code = %s", env.Error.Code)
	}

	for _, who := range []models.Identity{uploader, coordinator} {
		env = decode(t, s.doJSON(&who, http.MethodPut, fpath(p.ID, "/tags"), body), http.StatusOK)
		var photo models.Photo
		if err := json.Unmarshal(env.Data, &photo); err != nil {
			t.Fatal(err)
		}
		if strings.Join(photo.ManualTags, ",") != "cake,dance" {
			t.Errorf("%s: manual tags = %v", who.Role, photo.ManualTags)
		}
	}

	long := `{"manual_tags":["` + strings.Repeat("x", 65) + `"]}`
	env = decode(t, s.doJSON(&uploader, http.MethodPut, fpath(p.ID, "/tags"), long), http.StatusBadRequest)
	if env.Error.Code != CodeValidation {
		t.Errorf("code = %s, want %s", env.Error.Code, CodeValidation)
	}

	decode(t, s.doJSON(&uploader, http.MethodPut, fpath(p.ID, "/tags"), "{not json"), http.StatusBadRequest)
}

func TestTagUser(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	decode(t, s.doJSON(&guest, http.MethodPost, fpath(p.ID, "/tagged"), `{"user_id":2}`), http.StatusForbidden)
	decode(t, s.doJSON(&uploader, http.MethodPost, fpath(p.ID, "/tagged"), `{"user_id":2}`), http.StatusCreated)
	decode(t, s.doJSON(&coordinator, http.MethodPost, fpath(p.ID, "/tagged"), `{"user_id":2}`), http.StatusOK)
	decode(t, s.doJSON(&uploader, http.MethodPost, fpath(p.ID, "/tagged"), `{"user_id":0}`), http.StatusBadRequest)

	env := decode(t, s.do(&guest, http.MethodGet, "/api/v1/me/library", nil, ""), http.StatusOK)
	var lib []models.PhotoWithEngagement
	if err := json.Unmarshal(env.Data, &lib); err != nil {
		t.Fatal(err)
	}
	if len(lib) != 1 || lib[0].ID != p.ID {
		t.Errorf("library = %+v", lib)
	}
}

func TestToggleLike_TwoUsers(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	steps := []struct {
		who       models.Identity
		wantLiked bool
		wantCount int
	}{
		{uploader, true, 1},
		{guest, true, 2},
		{uploader, false, 1},
	}
	for i, st := range steps {
		env := decode(t, s.do(&st.who, http.MethodPost, fpath(p.ID, "/like"), nil, ""), http.StatusOK)
		var res models.LikeResult
		if err := json.Unmarshal(env.Data, &res); err != nil {
			t.Fatal(err)
		}
		if res.Liked != st.wantLiked || res.LikesCount != st.wantCount {
			t.Errorf("step %d: %+v, want liked=%v count=%d", i, res, st.wantLiked, st.wantCount)
		}
	}

	decode(t, s.do(&guest, http.MethodPost, fpath(404, "/like"), nil, ""), http.StatusNotFound)
}

func TestComments(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	env := decode(t, s.doJSON(&guest, http.MethodPost, fpath(p.ID, "/comments"), `{"content":"  Great shot!  "}`), http.StatusCreated)
	var root models.Comment
	if err := json.Unmarshal(env.Data, &root); err != nil {
		t.Fatal(err)
	}
	if root.Content != "Great shot!" || root.AuthorEmail != guest.Email || root.ParentID != nil {
		t.Errorf("root = %+v", root)
	}

	reply := `{"content":"Thanks","parent_id":` + itoa(root.ID) + `}`
	decode(t, s.doJSON(&uploader, http.MethodPost, fpath(p.ID, "/comments"), reply), http.StatusCreated)

	env = decode(t, s.doJSON(&guest, http.MethodPost, fpath(p.ID, "/comments"), `{"content":"orphan","parent_id":999}`), http.StatusNotFound)
	if env.Error.Code != CodeParentNotFound {
		t.Errorf("code = %s, want %s", env.Error.Code, CodeParentNotFound)
	}

	decode(t, s.doJSON(&guest, http.MethodPost, fpath(p.ID, "/comments"), `{"content":"   "}`), http.StatusBadRequest)
	decode(t, s.doJSON(&guest, http.MethodPost, fpath(p.ID, "/comments"), `{"content":"`+strings.Repeat("a", 2001)+`"}`), http.StatusBadRequest)

	env = decode(t, s.do(&guest, http.MethodGet, fpath(p.ID, "/comments"), nil, ""), http.StatusOK)
	var list []models.Comment
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("comments = %d, want 2", len(list))
	}
	if list[1].ParentID == nil || *list[1].ParentID != root.ID || list[1].AuthorEmail != uploader.Email {
		t.Errorf("reply = %+v", list[1])
	}
}

func TestReprocess(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	decode(t, s.do(&guest, http.MethodPost, fpath(p.ID, "/reprocess"), nil, ""), http.StatusForbidden)
	decode(t, s.do(&uploader, http.MethodPost, fpath(p.ID, "/reprocess"), nil, ""), http.StatusAccepted)
	if got := s.queue.Len(); got != 1 {
		t.Errorf("queue depth = %d, want 1", got)
	}
}

func TestDownload(t *testing.T) {
	s := newTestServer(t)
	p := s.seedPhoto(uploader)

	rec := s.do(&guest, http.MethodGet, fpath(p.ID, "/download"), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "original-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "seed.jpg") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	missing, err := s.store.CreatePhoto(context.Background(), models.NewPhoto{OriginalPath: "originals/gone.jpg", UploaderID: 1})
	if err != nil {
		t.Fatal(err)
	}
	decode(t, s.do(&guest, http.MethodGet, fpath(missing.ID, "/download"), nil, ""), http.StatusNotFound)
}

func TestLibrary_Paging(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", http.StatusOK},
		{"?limit=1000&offset=0", http.StatusOK},
		{"?limit=0", http.StatusBadRequest},
		{"?limit=1001", http.StatusBadRequest},
		{"?offset=-1", http.StatusBadRequest},
		{"?limit=ten", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := s.do(&guest, http.MethodGet, "/api/v1/me/library"+tt.query, nil, "")
		if rec.Code != tt.want {
			t.Errorf("library%s = %d, want %d", tt.query, rec.Code, tt.want)
		}
	}
}

func TestSearchPhotos(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	event := int64(11)
	mk := func(owner models.Identity, eventID *int64, tags []string) int64 {
		t.Helper()
		p, err := s.store.CreatePhoto(ctx, models.NewPhoto{OriginalPath: "originals/s.jpg", UploaderID: owner.UserID, EventID: eventID})
		if err != nil {
			t.Fatal(err)
		}
		if tags != nil {
			if err := s.store.SetManualTags(ctx, p.ID, tags); err != nil {
				t.Fatal(err)
			}
		}
		return p.ID
	}
	first := mk(uploader, &event, []string{"Sunset"})
	second := mk(coordinator, &event, []string{"Crowd"})
	third := mk(uploader, nil, nil)
	if _, _, err := s.store.ToggleLike(ctx, second, guest.UserID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"all newest first", "", []int64{third, second, first}},
		{"event", "?event_id=11", []int64{second, first}},
		{"photographer", "?photographer_id=1", []int64{third, first}},
		{"tags", "?tags=sunset,%20nothing", []int64{first}},
		{"skip and limit", "?skip=1&limit=1", []int64{second}},
		{"offset alias", "?offset=2", []int64{first}},
		{"date window", "?date_from=2000-01-01T00:00:00Z&date_to=2999-01-01T00:00:00Z", []int64{third, second, first}},
		{"future window", "?date_from=2999-01-01T00:00:00Z", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := decode(t, s.do(&guest, http.MethodGet, "/api/v1/photos"+tt.query, nil, ""), http.StatusOK)
			var photos []models.PhotoWithEngagement
			if err := json.Unmarshal(env.Data, &photos); err != nil {
				t.Fatal(err)
			}
			if len(photos) != len(tt.want) {
				t.Fatalf("got %d photos, want %d", len(photos), len(tt.want))
			}
			for i, id := range tt.want {
				if photos[i].ID != id {
					t.Errorf("photos[%d].ID = %d, want %d", i, photos[i].ID, id)
				}
			}
		})
	}

	t.Run("viewer relative engagement", func(t *testing.T) {
		env := decode(t, s.do(&guest, http.MethodGet, "/api/v1/photos?photographer_id=3", nil, ""), http.StatusOK)
		var photos []models.PhotoWithEngagement
		if err := json.Unmarshal(env.Data, &photos); err != nil {
			t.Fatal(err)
		}
		if len(photos) != 1 || !photos[0].IsLiked || photos[0].LikesCount != 1 {
			t.Errorf("photos = %+v", photos)
		}
	})
}

func TestSearchPhotos_InvalidQuery(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{
		"?limit=0",
		"?limit=1001",
		"?skip=-1",
		"?event_id=abc",
		"?photographer_id=-4",
		"?date_from=yesterday",
		"?date_from=2026-02-01T00:00:00Z&date_to=2026-01-01T00:00:00Z",
	} {
		t.Run(query, func(t *testing.T) {
			env := decode(t, s.do(&guest, http.MethodGet, "/api/v1/photos"+query, nil, ""), http.StatusBadRequest)
			if env.Error == nil {
				t.Error("missing error body")
			}
		})
	}

	if rec := s.do(nil, http.MethodGet, "/api/v1/photos", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("search without token = %d, want 401", rec.Code)
	}
}

func TestWebSocket_QueryToken(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + s.token(guest)
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp %v)", err, resp)
	}
	defer conn.Close()

	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var greeting struct {
		Type   string `json:"type"`
		UserID int64  `json:"user_id"`
	}
	if err := json.Unmarshal(frame, &greeting); err != nil {
		t.Fatal(err)
	}
	if greeting.Type != "connection" || greeting.UserID != guest.UserID {
		t.Errorf("greeting = %+v", greeting)
	}
	if s.registry.ConnectionCount() != 1 {
		t.Errorf("connections = %d, want 1", s.registry.ConnectionCount())
	}
}

func TestCheckOrigin(t *testing.T) {
	h := &Handler{origins: []string{"https://app.example.com"}}
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://example.test", true},
		{"https://app.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://example.test/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := h.checkOrigin(req); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(nil, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "eventsnap_") {
		t.Errorf("metrics status = %d", rec.Code)
	}
}
