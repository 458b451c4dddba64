package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithActor_ActorFromCtx(t *testing.T) {
	ctx := WithActor(context.Background(), "zhang.wei")

	got, err := ActorFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "zhang.wei" {
		t.Fatalf("expected zhang.wei, got %q", got)
	}
}

func TestActorFromCtx_EmptyContext(t *testing.T) {
	_, err := ActorFromCtx(context.Background())
	if !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}

func TestActorFromCtx_EmptyActor(t *testing.T) {
	ctx := WithActor(context.Background(), "")
	_, err := ActorFromCtx(ctx)
	if !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound for empty actor, got %v", err)
	}
}

func TestActorFromCtx_Isolation(t *testing.T) {
	ctx1 := WithActor(context.Background(), "operator-a")
	ctx2 := WithActor(context.Background(), "operator-b")

	got1, _ := ActorFromCtx(ctx1)
	got2, _ := ActorFromCtx(ctx2)

	if got1 != "operator-a" {
		t.Fatalf("ctx1: expected operator-a, got %q", got1)
	}
	if got2 != "operator-b" {
		t.Fatalf("ctx2: expected operator-b, got %q", got2)
	}
}
