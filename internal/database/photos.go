// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventsnap/internal/models"
)

const photoColumns = `p.id, p.original_path, p.thumbnail_path, p.watermarked_path, p.exif_data,
	p.ai_tags, p.manual_tags, p.uploader_id, p.event_id, p.processing_status, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPhoto scans photoColumns followed by any extra destinations.
func scanPhoto(row rowScanner, extra ...any) (*models.Photo, error) {
	var (
		p                  models.Photo
		thumb, watermarked sql.NullString
		exifJSON, aiJSON   string
		manualJSON, status string
		eventID            sql.NullInt64
	)
	dest := append([]any{
		&p.ID, &p.OriginalPath, &thumb, &watermarked, &exifJSON,
		&aiJSON, &manualJSON, &p.UploaderID, &eventID, &status, &p.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if thumb.Valid {
		p.ThumbnailPath = &thumb.String
	}
	if watermarked.Valid {
		p.WatermarkedPath = &watermarked.String
	}
	if eventID.Valid {
		p.EventID = &eventID.Int64
	}
	p.Status = models.ProcessingStatus(status)
	p.EXIF = decodeObject(exifJSON)
	p.AITags = decodeList(aiJSON)
	p.ManualTags = decodeList(manualJSON)
	return &p, nil
}

func encodeJSON(v any, empty string) string {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return empty
	}
	return string(data)
}

func decodeObject(s string) map[string]any {
	out := map[string]any{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	return out
}

func decodeList(s string) []string {
	out := []string{}
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	return out
}

// CreatePhoto inserts a pending photo.
func (db *DB) CreatePhoto(ctx context.Context, np models.NewPhoto) (p *models.Photo, err error) {
	defer track("create_photo")(&err)

	var eventID any
	if np.EventID != nil {
		eventID = *np.EventID
	}
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO photos (original_path, uploader_id, event_id, processing_status, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		np.OriginalPath, np.UploaderID, eventID, string(models.StatusPending), time.Now().UTC(),
	)

	p = &models.Photo{
		OriginalPath: np.OriginalPath,
		UploaderID:   np.UploaderID,
		EventID:      np.EventID,
		Status:       models.StatusPending,
		EXIF:         map[string]any{},
		AITags:       []string{},
		ManualTags:   []string{},
	}
	if err = row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert photo: %w", err)
	}
	return p, nil
}

// GetPhoto loads one photo.
func (db *DB) GetPhoto(ctx context.Context, id int64) (p *models.Photo, err error) {
	defer track("get_photo")(&err)

	row := db.conn.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos p WHERE p.id = ?`, id)
	p, err = scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo %d: %w", id, err)
	}
	return p, nil
}

// TransitionStatus performs the guarded status update in one statement.
func (db *DB) TransitionStatus(ctx context.Context, id int64, from []models.ProcessingStatus, to models.ProcessingStatus, derived *models.DerivedFields) (err error) {
	defer track("transition_status")(&err)

	if len(from) == 0 {
		return ErrInvalidTransition
	}

	var thumb, watermarked any
	exifJSON, aiJSON := "{}", "[]"
	if derived != nil {
		thumb = derived.ThumbnailPath
		watermarked = derived.WatermarkedPath
		exifJSON = encodeJSON(derived.EXIF, "{}")
		aiJSON = encodeJSON(derived.AITags, "[]")
	}

	args := []any{string(to), thumb, watermarked, exifJSON, aiJSON, id}
	for _, s := range from {
		args = append(args, string(s))
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE photos
		SET processing_status = ?, thumbnail_path = ?, watermarked_path = ?, exif_data = ?, ai_tags = ?
		WHERE id = ? AND processing_status IN (`+placeholders(len(from))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update photo %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	return db.missingOrConflict(ctx, id)
}

func (db *DB) missingOrConflict(ctx context.Context, id int64) error {
	var exists bool
	if err := db.conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM photos WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check photo %d: %w", id, err)
	}
	if !exists {
		return ErrPhotoNotFound
	}
	return ErrInvalidTransition
}

// SetManualTags replaces the photo's manual tags.
func (db *DB) SetManualTags(ctx context.Context, id int64, tags []string) (err error) {
	defer track("set_manual_tags")(&err)

	if tags == nil {
		tags = []string{}
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE photos SET manual_tags = ? WHERE id = ?`, encodeJSON(tags, "[]"), id)
	if err != nil {
		return fmt.Errorf("failed to update manual tags: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

const engagementSelect = `SELECT ` + photoColumns + `,
		COALESCE(e.likes_count, 0),
		(SELECT COUNT(*) FROM comments c WHERE c.engagement_id = e.id),
		EXISTS (SELECT 1 FROM likes l WHERE l.photo_id = p.id AND l.user_id = ?),
		EXISTS (SELECT 1 FROM tagged_in t WHERE t.photo_id = p.id AND t.user_id = ?)
	FROM photos p
	LEFT JOIN engagements e ON e.photo_id = p.id`

func scanPhotoWithEngagement(row rowScanner) (*models.PhotoWithEngagement, error) {
	var (
		likes, comments int64
		liked, tagged   bool
	)
	p, err := scanPhoto(row, &likes, &comments, &liked, &tagged)
	if err != nil {
		return nil, err
	}
	return &models.PhotoWithEngagement{
		Photo:         *p,
		LikesCount:    int(likes),
		CommentsCount: int(comments),
		TaggedUsers:   []int64{},
		IsLiked:       liked,
		IsTagged:      tagged,
	}, nil
}

// PhotoDetail loads a photo with counters relative to viewerID.
func (db *DB) PhotoDetail(ctx context.Context, photoID, viewerID int64) (pe *models.PhotoWithEngagement, err error) {
	defer track("photo_detail")(&err)

	row := db.conn.QueryRowContext(ctx, engagementSelect+` WHERE p.id = ?`, viewerID, viewerID, photoID)
	pe, err = scanPhotoWithEngagement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo detail %d: %w", photoID, err)
	}

	tagged, err := db.taggedUsersFor(ctx, []int64{photoID})
	if err != nil {
		return nil, err
	}
	if ids := tagged[photoID]; ids != nil {
		pe.TaggedUsers = ids
	}
	return pe, nil
}

// Library returns the liked-or-tagged photos for userID.
func (db *DB) Library(ctx context.Context, userID int64, limit, offset int) (out []models.PhotoWithEngagement, err error) {
	defer track("library")(&err)

	return db.queryWithEngagement(ctx, "library", engagementSelect+`
		WHERE p.id IN (
			SELECT photo_id FROM likes WHERE user_id = ?
			UNION
			SELECT photo_id FROM tagged_in WHERE user_id = ?
		)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`,
		userID, userID, userID, userID, limit, offset,
	)
}

// PhotoFilter narrows SearchPhotos. Zero-valued fields do not filter.
type PhotoFilter struct {
	EventID    *int64
	UploaderID *int64
	From       *time.Time
	To         *time.Time

	// Tags matches photos whose AI or manual tags contain any of the
	// given strings, ignoring case.
	Tags []string

	Limit  int
	Offset int
}

// SearchPhotos returns photos matching filter, newest first, with
// engagement counters relative to viewerID.
func (db *DB) SearchPhotos(ctx context.Context, filter PhotoFilter, viewerID int64) (out []models.PhotoWithEngagement, err error) {
	defer track("search_photos")(&err)

	var (
		where []string
		args  = []any{viewerID, viewerID}
	)
	if filter.EventID != nil {
		where = append(where, "p.event_id = ?")
		args = append(args, *filter.EventID)
	}
	if filter.UploaderID != nil {
		where = append(where, "p.uploader_id = ?")
		args = append(args, *filter.UploaderID)
	}
	if filter.From != nil {
		where = append(where, "p.created_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "p.created_at <= ?")
		args = append(args, filter.To.UTC())
	}
	if len(filter.Tags) > 0 {
		var anyOf []string
		for _, tag := range filter.Tags {
			anyOf = append(anyOf, "(contains(lower(p.ai_tags), ?) OR contains(lower(p.manual_tags), ?))")
			tag = strings.ToLower(tag)
			args = append(args, tag, tag)
		}
		where = append(where, "("+strings.Join(anyOf, " OR ")+")")
	}

	query := engagementSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	return db.queryWithEngagement(ctx, "search", query, args...)
}

// queryWithEngagement runs an engagementSelect query and fills in the
// tagged users of every returned photo.
func (db *DB) queryWithEngagement(ctx context.Context, what, query string, args ...any) ([]models.PhotoWithEngagement, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	out := []models.PhotoWithEngagement{}
	var ids []int64
	for rows.Next() {
		pe, err := scanPhotoWithEngagement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", what, err)
		}
		out = append(out, *pe)
		ids = append(ids, pe.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	tagged, err := db.taggedUsersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if t := tagged[out[i].ID]; t != nil {
			out[i].TaggedUsers = t
		}
	}
	return out, nil
}

func (db *DB) taggedUsersFor(ctx context.Context, photoIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(photoIDs))
	if len(photoIDs) == 0 {
		return result, nil
	}
	args := make([]any, len(photoIDs))
	for i, id := range photoIDs {
		args[i] = id
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT photo_id, user_id FROM tagged_in
		WHERE photo_id IN (`+placeholders(len(args))+`)
		ORDER BY photo_id, created_at, user_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tagged users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var photoID, userID int64
		if err := rows.Scan(&photoID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan tagged user: %w", err)
		}
		result[photoID] = append(result[photoID], userID)
	}
	return result, rows.Err()
}
