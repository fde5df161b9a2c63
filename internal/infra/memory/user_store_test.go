package memory

import (
	"context"
	"errors"
	"testing"

	"quizmaker-service/internal/domain"
)

func TestUserStoreLifecycle(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	user := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetUserByID(ctx, "u1")
	if err != nil || got.Username != "alice" {
		t.Fatalf("get by id: %+v, %v", got, err)
	}
	got, err = store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("get by email: %+v, %v", got, err)
	}

	if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserStoreUniqueness(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()
	_ = store.CreateUser(ctx, domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"})

	cases := []domain.User{
		{ID: "u2", Username: "alice", Email: "other@example.com"},
		{ID: "u3", Username: "other", Email: "alice@example.com"},
	}
	for _, u := range cases {
		if err := store.CreateUser(ctx, u); !errors.Is(err, domain.ErrUserExists) {
			t.Fatalf("expected ErrUserExists for %+v, got %v", u, err)
		}
	}

	exists, _ := store.ExistsUser(ctx, "nobody@example.com", "alice")
	if !exists {
		t.Fatalf("expected username match to count as existing")
	}
	exists, _ = store.ExistsUser(ctx, "nobody@example.com", "nobody")
	if exists {
		t.Fatalf("expected no match")
	}
}
