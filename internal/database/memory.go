// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/eventsnap/internal/models"
)

type likeKey struct{ photoID, userID int64 }

// MemoryStore implements Store in process memory. It mirrors the DuckDB
// semantics, including guarded status updates and count recomputation.
type MemoryStore struct {
	mu sync.RWMutex

	photos      map[int64]*models.Photo
	engagements map[int64]*models.Engagement // keyed by photo id
	likes       map[likeKey]time.Time
	comments    []models.Comment
	tagged      map[likeKey]time.Time
	users       map[int64]models.User

	nextPhoto      int64
	nextEngagement int64
	nextComment    int64

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		photos:      make(map[int64]*models.Photo),
		engagements: make(map[int64]*models.Engagement),
		likes:       make(map[likeKey]time.Time),
		tagged:      make(map[likeKey]time.Time),
		users:       make(map[int64]models.User),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func clonePhoto(p *models.Photo) *models.Photo {
	c := *p
	if p.ThumbnailPath != nil {
		v := *p.ThumbnailPath
		c.ThumbnailPath = &v
	}
	if p.WatermarkedPath != nil {
		v := *p.WatermarkedPath
		c.WatermarkedPath = &v
	}
	c.EXIF = make(map[string]any, len(p.EXIF))
	for k, v := range p.EXIF {
		c.EXIF[k] = v
	}
	c.AITags = append([]string{}, p.AITags...)
	c.ManualTags = append([]string{}, p.ManualTags...)
	return &c
}

// CreatePhoto inserts a pending photo.
func (m *MemoryStore) CreatePhoto(_ context.Context, np models.NewPhoto) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPhoto++
	p := &models.Photo{
		ID:           m.nextPhoto,
		OriginalPath: np.OriginalPath,
		UploaderID:   np.UploaderID,
		EventID:      np.EventID,
		Status:       models.StatusPending,
		EXIF:         map[string]any{},
		AITags:       []string{},
		ManualTags:   []string{},
		CreatedAt:    m.now(),
	}
	m.photos[p.ID] = p
	return clonePhoto(p), nil
}

// GetPhoto loads one photo.
func (m *MemoryStore) GetPhoto(_ context.Context, id int64) (*models.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	return clonePhoto(p), nil
}

// TransitionStatus performs the guarded status update.
func (m *MemoryStore) TransitionStatus(_ context.Context, id int64, from []models.ProcessingStatus, to models.ProcessingStatus, derived *models.DerivedFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[id]
	if !ok {
		return ErrPhotoNotFound
	}
	if !slices.Contains(from, p.Status) {
		return ErrInvalidTransition
	}

	p.Status = to
	if derived == nil {
		p.ThumbnailPath = nil
		p.WatermarkedPath = nil
		p.EXIF = map[string]any{}
		p.AITags = []string{}
		return nil
	}
	thumb, wm := derived.ThumbnailPath, derived.WatermarkedPath
	p.ThumbnailPath = &thumb
	p.WatermarkedPath = &wm
	p.EXIF = derived.EXIF
	if p.EXIF == nil {
		p.EXIF = map[string]any{}
	}
	p.AITags = append([]string{}, derived.AITags...)
	return nil
}

// SetManualTags replaces the photo's manual tags.
func (m *MemoryStore) SetManualTags(_ context.Context, id int64, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.photos[id]
	if !ok {
		return ErrPhotoNotFound
	}
	p.ManualTags = append([]string{}, tags...)
	return nil
}

func (m *MemoryStore) detailLocked(p *models.Photo, viewerID int64) models.PhotoWithEngagement {
	pe := models.PhotoWithEngagement{
		Photo:       *clonePhoto(p),
		TaggedUsers: m.taggedLocked(p.ID),
	}
	if e, ok := m.engagements[p.ID]; ok {
		pe.LikesCount = e.LikesCount
		for _, c := range m.comments {
			if c.EngagementID == e.ID {
				pe.CommentsCount++
			}
		}
	}
	_, pe.IsLiked = m.likes[likeKey{p.ID, viewerID}]
	_, pe.IsTagged = m.tagged[likeKey{p.ID, viewerID}]
	return pe
}

// PhotoDetail loads a photo with counters relative to viewerID.
func (m *MemoryStore) PhotoDetail(_ context.Context, photoID, viewerID int64) (*models.PhotoWithEngagement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.photos[photoID]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	pe := m.detailLocked(p, viewerID)
	return &pe, nil
}

// Library returns the liked-or-tagged photos for userID.
func (m *MemoryStore) Library(_ context.Context, userID int64, limit, offset int) ([]models.PhotoWithEngagement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.Photo
	for id, p := range m.photos {
		_, liked := m.likes[likeKey{id, userID}]
		_, tagged := m.tagged[likeKey{id, userID}]
		if liked || tagged {
			matched = append(matched, p)
		}
	}
	return m.pageLocked(matched, userID, limit, offset), nil
}

// SearchPhotos returns photos matching filter, newest first.
func (m *MemoryStore) SearchPhotos(_ context.Context, filter PhotoFilter, viewerID int64) ([]models.PhotoWithEngagement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.Photo
	for _, p := range m.photos {
		if filter.matches(p) {
			matched = append(matched, p)
		}
	}
	return m.pageLocked(matched, viewerID, filter.Limit, filter.Offset), nil
}

// pageLocked sorts photos newest first and returns one page of details.
func (m *MemoryStore) pageLocked(photos []*models.Photo, viewerID int64, limit, offset int) []models.PhotoWithEngagement {
	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].CreatedAt.After(photos[j].CreatedAt)
		}
		return photos[i].ID > photos[j].ID
	})

	out := []models.PhotoWithEngagement{}
	for i := offset; i < len(photos) && len(out) < limit; i++ {
		out = append(out, m.detailLocked(photos[i], viewerID))
	}
	return out
}

func (f PhotoFilter) matches(p *models.Photo) bool {
	if f.EventID != nil && (p.EventID == nil || *p.EventID != *f.EventID) {
		return false
	}
	if f.UploaderID != nil && p.UploaderID != *f.UploaderID {
		return false
	}
	if f.From != nil && p.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && p.CreatedAt.After(*f.To) {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	for _, want := range f.Tags {
		want = strings.ToLower(want)
		for _, list := range [][]string{p.AITags, p.ManualTags} {
			for _, tag := range list {
				if strings.Contains(strings.ToLower(tag), want) {
					return true
				}
			}
		}
	}
	return false
}

func (m *MemoryStore) engagementLocked(photoID int64) *models.Engagement {
	e, ok := m.engagements[photoID]
	if !ok {
		m.nextEngagement++
		e = &models.Engagement{ID: m.nextEngagement, PhotoID: photoID, Metadata: map[string]any{}}
		m.engagements[photoID] = e
	}
	return e
}

// ToggleLike flips the like and recomputes the count from the like set.
func (m *MemoryStore) ToggleLike(_ context.Context, photoID, userID int64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[photoID]; !ok {
		return false, 0, ErrPhotoNotFound
	}
	e := m.engagementLocked(photoID)

	key := likeKey{photoID, userID}
	_, had := m.likes[key]
	if had {
		delete(m.likes, key)
	} else {
		m.likes[key] = m.now()
	}

	count := 0
	for k := range m.likes {
		if k.photoID == photoID {
			count++
		}
	}
	e.LikesCount = count
	return !had, count, nil
}

// LikesCount returns the stored like count.
func (m *MemoryStore) LikesCount(_ context.Context, photoID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.engagements[photoID]; ok {
		return e.LikesCount, nil
	}
	return 0, nil
}

// CreateComment inserts a comment after validating the parent.
func (m *MemoryStore) CreateComment(_ context.Context, photoID, authorID int64, content string, parentID *int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[photoID]; !ok {
		return nil, ErrPhotoNotFound
	}
	e := m.engagementLocked(photoID)

	if parentID != nil {
		found := false
		for _, c := range m.comments {
			if c.ID == *parentID && c.EngagementID == e.ID {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrParentNotFound
		}
	}

	m.nextComment++
	c := models.Comment{
		ID:           m.nextComment,
		EngagementID: e.ID,
		AuthorID:     authorID,
		Content:      content,
		CreatedAt:    m.now(),
	}
	if parentID != nil {
		pid := *parentID
		c.ParentID = &pid
	}
	m.comments = append(m.comments, c)
	return &c, nil
}

// ListComments returns the photo's comments in creation order.
func (m *MemoryStore) ListComments(_ context.Context, photoID int64) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Comment{}
	e, ok := m.engagements[photoID]
	if !ok {
		return out, nil
	}
	for _, c := range m.comments {
		if c.EngagementID == e.ID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// TagUser records that userID appears in photoID.
func (m *MemoryStore) TagUser(_ context.Context, photoID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.photos[photoID]; !ok {
		return false, ErrPhotoNotFound
	}
	key := likeKey{photoID, userID}
	if _, ok := m.tagged[key]; ok {
		return false, nil
	}
	m.tagged[key] = m.now()
	return true, nil
}

func (m *MemoryStore) taggedLocked(photoID int64) []int64 {
	type entry struct {
		user int64
		at   time.Time
	}
	var entries []entry
	for k, at := range m.tagged {
		if k.photoID == photoID {
			entries = append(entries, entry{k.userID, at})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return entries[i].user < entries[j].user
	})
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.user)
	}
	return ids
}

// TaggedUsers lists users tagged in photoID in tagging order.
func (m *MemoryStore) TaggedUsers(_ context.Context, photoID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taggedLocked(photoID), nil
}

// UpsertUser inserts or refreshes a directory entry.
func (m *MemoryStore) UpsertUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	m.users[u.ID] = u
	return nil
}

// GetUser loads a directory entry.
func (m *MemoryStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
