package store

import (
	"context"
	"testing"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

func TestTagCRUDAndAssignment(t *testing.T) {
	s := openTestStore(t)
	m := media.FromPath("/lib/Dune.2021.mkv")
	if err := s.InsertMedias(context.Background(), []*media.Media{m}); err != nil {
		t.Fatalf("InsertMedias: %v", err)
	}

	tag, err := s.CreateTag(context.Background(), "favorite")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := s.AssignTag(context.Background(), m.ID.String(), tag.ID.String()); err != nil {
		t.Fatalf("AssignTag: %v", err)
	}

	got, err := s.GetMediaByID(context.Background(), m.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "favorite" {
		t.Fatalf("got tags %v, want [favorite]", got.Tags)
	}

	if err := s.RemoveTag(context.Background(), m.ID.String(), tag.ID.String()); err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	got, err = s.GetMediaByID(context.Background(), m.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("got tags %v after removal, want none", got.Tags)
	}

	if err := s.DeleteTag(context.Background(), tag.ID.String()); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Fatalf("got %d tags after delete, want 0", len(tags))
	}
}

func TestDeleteTagNotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.DeleteTag(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Fatal("expected not-found error")
	}
}
