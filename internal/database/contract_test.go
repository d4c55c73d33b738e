// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

var (
	fromPending    = []models.ProcessingStatus{models.StatusPending, models.StatusProcessing, models.StatusCompleted, models.StatusFailed}
	fromProcessing = []models.ProcessingStatus{models.StatusProcessing}
)

// runStoreContract exercises behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("photos", func(t *testing.T) { testPhotos(t, newStore(t)) })
	t.Run("transitions", func(t *testing.T) { testTransitions(t, newStore(t)) })
	t.Run("likes", func(t *testing.T) { testLikes(t, newStore(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("tags and library", func(t *testing.T) { testTagsAndLibrary(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("search", func(t *testing.T) { testSearch(t, newStore(t)) })
}

func mustPhoto(t *testing.T, s Store, uploader int64) *models.Photo {
	t.Helper()
	p, err := s.CreatePhoto(context.Background(), models.NewPhoto{OriginalPath: "originals/a.jpg", UploaderID: uploader})
	if err != nil {
		t.Fatalf("CreatePhoto() error = %v", err)
	}
	return p
}

func testPhotos(t *testing.T, s Store) {
	ctx := context.Background()
	eventID := int64(42)
	created, err := s.CreatePhoto(ctx, models.NewPhoto{OriginalPath: "originals/x.png", UploaderID: 7, EventID: &eventID})
	if err != nil {
		t.Fatalf("CreatePhoto() error = %v", err)
	}
	if created.ID == 0 || created.Status != models.StatusPending {
		t.Fatalf("CreatePhoto() = %+v", created)
	}

	got, err := s.GetPhoto(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPhoto() error = %v", err)
	}
	if got.OriginalPath != "originals/x.png" || got.UploaderID != 7 || got.EventID == nil || *got.EventID != 42 {
		t.Errorf("GetPhoto() = %+v", got)
	}
	if got.ThumbnailPath != nil || got.WatermarkedPath != nil {
		t.Error("pending photo has derived paths")
	}

	if _, err := s.GetPhoto(ctx, 9999); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("GetPhoto(missing) error = %v", err)
	}

	if err := s.SetManualTags(ctx, created.ID, []string{"stage", "crowd"}); err != nil {
		t.Fatalf("SetManualTags() error = %v", err)
	}
	got, _ = s.GetPhoto(ctx, created.ID)
	if len(got.ManualTags) != 2 || got.ManualTags[0] != "stage" {
		t.Errorf("ManualTags = %v", got.ManualTags)
	}
	if err := s.SetManualTags(ctx, 9999, nil); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("SetManualTags(missing) error = %v", err)
	}
}

func testTransitions(t *testing.T, s Store) {
	ctx := context.Background()
	p := mustPhoto(t, s, 1)

	if err := s.TransitionStatus(ctx, p.ID, fromProcessing, models.StatusCompleted, &models.DerivedFields{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> completed error = %v, want ErrInvalidTransition", err)
	}
	if err := s.TransitionStatus(ctx, 9999, fromPending, models.StatusProcessing, nil); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("missing photo error = %v, want ErrPhotoNotFound", err)
	}

	if err := s.TransitionStatus(ctx, p.ID, fromPending, models.StatusProcessing, nil); err != nil {
		t.Fatalf("-> processing error = %v", err)
	}
	derived := &models.DerivedFields{
		ThumbnailPath:   "thumbnails/thumb_a.jpg",
		WatermarkedPath: "watermarked/watermarked_a.jpg",
		EXIF:            map[string]any{"Make": "Canon", "ISOSpeedRatings": int64(200)},
		AITags:          []string{"Stage", "Crowd"},
	}
	if err := s.TransitionStatus(ctx, p.ID, fromProcessing, models.StatusCompleted, derived); err != nil {
		t.Fatalf("-> completed error = %v", err)
	}

	got, _ := s.GetPhoto(ctx, p.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.ThumbnailPath == nil || *got.ThumbnailPath != derived.ThumbnailPath {
		t.Errorf("ThumbnailPath = %v", got.ThumbnailPath)
	}
	if got.WatermarkedPath == nil || *got.WatermarkedPath != derived.WatermarkedPath {
		t.Errorf("WatermarkedPath = %v", got.WatermarkedPath)
	}
	if got.EXIF["Make"] != "Canon" || len(got.AITags) != 2 {
		t.Errorf("derived metadata = %v %v", got.EXIF, got.AITags)
	}

	// A stale second terminal write is rejected.
	if err := s.TransitionStatus(ctx, p.ID, fromProcessing, models.StatusFailed, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed -> failed error = %v, want ErrInvalidTransition", err)
	}

	// Re-enqueue and fail: derived fields are cleared.
	if err := s.TransitionStatus(ctx, p.ID, fromPending, models.StatusProcessing, nil); err != nil {
		t.Fatalf("re-enter processing error = %v", err)
	}
	if err := s.TransitionStatus(ctx, p.ID, fromProcessing, models.StatusFailed, nil); err != nil {
		t.Fatalf("-> failed error = %v", err)
	}
	got, _ = s.GetPhoto(ctx, p.ID)
	if got.Status != models.StatusFailed || got.ThumbnailPath != nil || got.WatermarkedPath != nil || len(got.AITags) != 0 {
		t.Errorf("failed photo = %+v", got)
	}
	if got.OriginalPath != "originals/a.jpg" {
		t.Errorf("original path changed to %q", got.OriginalPath)
	}
}

func testLikes(t *testing.T, s Store) {
	ctx := context.Background()
	p := mustPhoto(t, s, 1)
	const alice, bob = int64(10), int64(20)

	steps := []struct {
		user      int64
		wantLiked bool
		wantCount int
	}{
		{alice, true, 1},
		{bob, true, 2},
		{alice, false, 1},
		{bob, false, 0},
		{bob, true, 1},
	}
	for i, st := range steps {
		liked, count, err := s.ToggleLike(ctx, p.ID, st.user)
		if err != nil {
			t.Fatalf("step %d: ToggleLike() error = %v", i, err)
		}
		if liked != st.wantLiked || count != st.wantCount {
			t.Fatalf("step %d: ToggleLike() = (%v, %d), want (%v, %d)", i, liked, count, st.wantLiked, st.wantCount)
		}
	}

	if n, err := s.LikesCount(ctx, p.ID); err != nil || n != 1 {
		t.Errorf("LikesCount() = %d, %v", n, err)
	}
	if n, err := s.LikesCount(ctx, 9999); err != nil || n != 0 {
		t.Errorf("LikesCount(no engagement) = %d, %v", n, err)
	}
	if _, _, err := s.ToggleLike(ctx, 9999, alice); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("ToggleLike(missing) error = %v", err)
	}

	detail, err := s.PhotoDetail(ctx, p.ID, bob)
	if err != nil {
		t.Fatalf("PhotoDetail() error = %v", err)
	}
	if detail.LikesCount != 1 || !detail.IsLiked {
		t.Errorf("PhotoDetail() = likes %d liked %v", detail.LikesCount, detail.IsLiked)
	}
}

func testComments(t *testing.T, s Store) {
	ctx := context.Background()
	p := mustPhoto(t, s, 1)
	other := mustPhoto(t, s, 1)

	if got, err := s.ListComments(ctx, p.ID); err != nil || len(got) != 0 {
		t.Fatalf("ListComments(empty) = %v, %v", got, err)
	}

	root, err := s.CreateComment(ctx, p.ID, 10, "Great shot", nil)
	if err != nil {
		t.Fatalf("CreateComment(root) error = %v", err)
	}
	reply, err := s.CreateComment(ctx, p.ID, 20, "Agreed", &root.ID)
	if err != nil {
		t.Fatalf("CreateComment(reply) error = %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != root.ID || reply.EngagementID != root.EngagementID {
		t.Errorf("reply = %+v", reply)
	}

	missing := int64(9999)
	if _, err := s.CreateComment(ctx, p.ID, 20, "orphan", &missing); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("CreateComment(missing parent) error = %v", err)
	}

	foreign, err := s.CreateComment(ctx, other.ID, 30, "elsewhere", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateComment(ctx, p.ID, 20, "cross-thread", &foreign.ID); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("CreateComment(foreign parent) error = %v", err)
	}
	if _, err := s.CreateComment(ctx, 9999, 20, "nowhere", nil); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("CreateComment(missing photo) error = %v", err)
	}

	list, err := s.ListComments(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListComments() = %d comments, want 2 (rejected replies must not be stored)", len(list))
	}
	if list[0].ID != root.ID || list[1].ID != reply.ID {
		t.Errorf("ListComments() order = [%d %d], want [%d %d]", list[0].ID, list[1].ID, root.ID, reply.ID)
	}
	if list[1].ParentID == nil || *list[1].ParentID != root.ID {
		t.Errorf("reply parent = %v", list[1].ParentID)
	}

	detail, _ := s.PhotoDetail(ctx, p.ID, 0)
	if detail.CommentsCount != 2 {
		t.Errorf("CommentsCount = %d, want 2", detail.CommentsCount)
	}
}

func testTagsAndLibrary(t *testing.T, s Store) {
	ctx := context.Background()
	const user = int64(5)
	liked := mustPhoto(t, s, 1)
	tagged := mustPhoto(t, s, 1)
	both := mustPhoto(t, s, 1)
	unrelated := mustPhoto(t, s, 1)

	if _, _, err := s.ToggleLike(ctx, liked.ID, user); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ToggleLike(ctx, both.ID, user); err != nil {
		t.Fatal(err)
	}

	for _, id := range []int64{tagged.ID, both.ID} {
		created, err := s.TagUser(ctx, id, user)
		if err != nil || !created {
			t.Fatalf("TagUser(%d) = %v, %v", id, created, err)
		}
	}
	if created, err := s.TagUser(ctx, tagged.ID, user); err != nil || created {
		t.Errorf("TagUser(duplicate) = %v, %v; want false, nil", created, err)
	}
	if _, err := s.TagUser(ctx, 9999, user); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("TagUser(missing) error = %v", err)
	}

	ids, err := s.TaggedUsers(ctx, tagged.ID)
	if err != nil || len(ids) != 1 || ids[0] != user {
		t.Errorf("TaggedUsers() = %v, %v", ids, err)
	}
	if ids, _ := s.TaggedUsers(ctx, unrelated.ID); len(ids) != 0 {
		t.Errorf("TaggedUsers(untagged) = %v", ids)
	}

	lib, err := s.Library(ctx, user, 100, 0)
	if err != nil {
		t.Fatalf("Library() error = %v", err)
	}
	if len(lib) != 3 {
		t.Fatalf("Library() = %d photos, want 3", len(lib))
	}
	seen := map[int64]models.PhotoWithEngagement{}
	for _, pe := range lib {
		seen[pe.ID] = pe
	}
	if _, ok := seen[unrelated.ID]; ok {
		t.Error("Library() includes unrelated photo")
	}
	if pe := seen[both.ID]; !pe.IsLiked || !pe.IsTagged || len(pe.TaggedUsers) != 1 {
		t.Errorf("Library() both = %+v", pe)
	}
	if pe := seen[liked.ID]; !pe.IsLiked || pe.IsTagged {
		t.Errorf("Library() liked = %+v", pe)
	}

	page, err := s.Library(ctx, user, 2, 2)
	if err != nil || len(page) != 1 {
		t.Errorf("Library(limit 2, offset 2) = %d, %v", len(page), err)
	}
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	if _, err := s.GetUser(ctx, 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUser(missing) error = %v", err)
	}
	if err := s.UpsertUser(ctx, models.User{ID: 1, Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertUser(ctx, models.User{ID: 1, Email: "b@example.com", Role: models.RoleAdmin}); err != nil {
		t.Fatal(err)
	}
	u, err := s.GetUser(ctx, 1)
	if err != nil || u.Email != "b@example.com" || u.Role != models.RoleAdmin {
		t.Errorf("GetUser() = %+v, %v", u, err)
	}
}

func testSearch(t *testing.T, s Store) {
	ctx := context.Background()
	event := int64(5)
	other := int64(6)

	newPhoto := func(uploader int64, eventID *int64, aiTags, manualTags []string) int64 {
		t.Helper()
		p, err := s.CreatePhoto(ctx, models.NewPhoto{OriginalPath: "originals/s.jpg", UploaderID: uploader, EventID: eventID})
		if err != nil {
			t.Fatalf("CreatePhoto() error = %v", err)
		}
		if aiTags != nil {
			if err := s.TransitionStatus(ctx, p.ID, fromPending, models.StatusProcessing, nil); err != nil {
				t.Fatal(err)
			}
			if err := s.TransitionStatus(ctx, p.ID, fromProcessing, models.StatusCompleted, &models.DerivedFields{AITags: aiTags}); err != nil {
				t.Fatal(err)
			}
		}
		if manualTags != nil {
			if err := s.SetManualTags(ctx, p.ID, manualTags); err != nil {
				t.Fatal(err)
			}
		}
		return p.ID
	}

	shark := newPhoto(1, &event, []string{"Great White Shark", "Coral Reef"}, nil)
	stage := newPhoto(2, &event, []string{"Stage"}, []string{"Keynote"})
	lone := newPhoto(2, &other, nil, nil)
	untagged := newPhoto(3, nil, nil, nil)

	if _, _, err := s.ToggleLike(ctx, stage, 9); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateComment(ctx, stage, 9, "great talk", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.TagUser(ctx, stage, 4); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	uploader2 := int64(2)

	tests := []struct {
		name   string
		filter PhotoFilter
		want   []int64
	}{
		{name: "no filter newest first", filter: PhotoFilter{}, want: []int64{untagged, lone, stage, shark}},
		{name: "event", filter: PhotoFilter{EventID: &event}, want: []int64{stage, shark}},
		{name: "uploader", filter: PhotoFilter{UploaderID: &uploader2}, want: []int64{lone, stage}},
		{name: "event and uploader", filter: PhotoFilter{EventID: &event, UploaderID: &uploader2}, want: []int64{stage}},
		{name: "date window", filter: PhotoFilter{From: &past, To: &future}, want: []int64{untagged, lone, stage, shark}},
		{name: "from future", filter: PhotoFilter{From: &future}, want: []int64{}},
		{name: "to past", filter: PhotoFilter{To: &past}, want: []int64{}},
		{name: "ai tag substring ignores case", filter: PhotoFilter{Tags: []string{"SHARK"}}, want: []int64{shark}},
		{name: "manual tag", filter: PhotoFilter{Tags: []string{"keynote"}}, want: []int64{stage}},
		{name: "any of tags", filter: PhotoFilter{Tags: []string{"reef", "stage"}}, want: []int64{stage, shark}},
		{name: "unknown tag", filter: PhotoFilter{Tags: []string{"volcano"}}, want: []int64{}},
		{name: "limit", filter: PhotoFilter{Limit: 2}, want: []int64{untagged, lone}},
		{name: "offset", filter: PhotoFilter{Limit: 2, Offset: 3}, want: []int64{shark}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			if f.Limit == 0 {
				f.Limit = 100
			}
			got, err := s.SearchPhotos(ctx, f, 9)
			if err != nil {
				t.Fatalf("SearchPhotos() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SearchPhotos() returned %d photos, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	t.Run("engagement fields", func(t *testing.T) {
		got, err := s.SearchPhotos(ctx, PhotoFilter{EventID: &event, UploaderID: &uploader2, Limit: 10}, 9)
		if err != nil || len(got) != 1 {
			t.Fatalf("SearchPhotos() = %v, %v", got, err)
		}
		pe := got[0]
		if pe.LikesCount != 1 || !pe.IsLiked || pe.CommentsCount != 1 {
			t.Errorf("engagement = likes %d liked %v comments %d, want 1 true 1", pe.LikesCount, pe.IsLiked, pe.CommentsCount)
		}
		if len(pe.TaggedUsers) != 1 || pe.TaggedUsers[0] != 4 {
			t.Errorf("TaggedUsers = %v, want [4]", pe.TaggedUsers)
		}

		anon, err := s.SearchPhotos(ctx, PhotoFilter{EventID: &event, UploaderID: &uploader2, Limit: 10}, 0)
		if err != nil || len(anon) != 1 {
			t.Fatalf("SearchPhotos(anonymous) = %v, %v", anon, err)
		}
		if anon[0].IsLiked {
			t.Error("anonymous viewer sees is_liked = true")
		}
	})
}
