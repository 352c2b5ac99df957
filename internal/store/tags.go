package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// CreateTag inserts a new Tag with a case-sensitively unique name.
func (s *Store) CreateTag(ctx context.Context, name string) (*media.Tag, error) {
	t := &media.Tag{ID: uuid.New(), Name: name}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, t.ID.String(), name)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "create tag", err)
	}
	return t, nil
}

// ListTags returns every Tag, ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*media.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "list tags", err)
	}
	defer rows.Close()

	var tags []*media.Tag
	for rows.Next() {
		t := &media.Tag{}
		var idStr string
		if err := rows.Scan(&idStr, &t.Name); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan tag", err)
		}
		t.ID = mustParseUUID(idStr)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// UpdateTag renames an existing Tag.
func (s *Store) UpdateTag(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "update tag", err)
	}
	return checkAffected(res, "tag")
}

// DeleteTag removes a Tag; the schema cascades the media_tags rows.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "delete tag", err)
	}
	return checkAffected(res, "tag")
}

// AssignTag associates a Tag with a Media, ignoring an already-existing
// association.
func (s *Store) AssignTag(ctx context.Context, mediaID, tagID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media_tags (media_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, mediaID, tagID)
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "assign tag", err)
	}
	return nil
}

// RemoveTag removes a Media/Tag association, if present.
func (s *Store) RemoveTag(ctx context.Context, mediaID, tagID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM media_tags WHERE media_id = ? AND tag_id = ?`, mediaID, tagID)
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "remove tag", err)
	}
	return nil
}

func checkAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "check rows affected", err)
	}
	if n == 0 {
		return ierr.NotFoundError(what + " not found")
	}
	return nil
}
