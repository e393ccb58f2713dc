package sqlite_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"linktracker/internal/domain/entity"
	sqliteRepo "linktracker/internal/infra/adapter/persistence/sqlite"
)

func TestChatRepo_GetChats_Pagination(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	chats := sqliteRepo.NewChatRepo(db)

	for _, id := range []int64{5, 1, 42, 17, 23} {
		if err := chats.RegisterChat(ctx, id); err != nil {
			t.Fatalf("RegisterChat(%d): %v", id, err)
		}
	}

	page1, err := chats.GetChats(ctx, 2, 0)
	if err != nil {
		t.Fatalf("GetChats page 1: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 5}, page1); diff != "" {
		t.Fatalf("page 1 mismatch (-want +got):\n%s", diff)
	}

	page2, err := chats.GetChats(ctx, 2, 2)
	if err != nil {
		t.Fatalf("GetChats page 2: %v", err)
	}
	if diff := cmp.Diff([]int64{17, 23}, page2); diff != "" {
		t.Fatalf("page 2 mismatch (-want +got):\n%s", diff)
	}

	page3, err := chats.GetChats(ctx, 2, 4)
	if err != nil {
		t.Fatalf("GetChats page 3: %v", err)
	}
	if diff := cmp.Diff([]int64{42}, page3); diff != "" {
		t.Fatalf("page 3 mismatch (-want +got):\n%s", diff)
	}
}

func TestChatRepo_DeleteChat_CascadesLinks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	chats := sqliteRepo.NewChatRepo(db)
	links := sqliteRepo.NewLinkRepo(db)

	if err := chats.RegisterChat(ctx, 42); err != nil {
		t.Fatalf("RegisterChat: %v", err)
	}
	if _, err := links.AddLink(ctx, &entity.Link{
		ChatID: 42, URL: "https://github.com/octocat/hello-world",
	}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	if err := chats.DeleteChat(ctx, 42); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}

	got, err := links.GetLinks(ctx, 42)
	if err != nil {
		t.Fatalf("GetLinks: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("links survived chat deletion: %v", got)
	}
}
