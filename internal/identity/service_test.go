package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemStore(), WithClock(fixedClock))
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != 1 || user.Name != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token.Value == "" || !token.Active || token.UserID != user.ID {
		t.Fatalf("unexpected token: %+v", token)
	}
	if user.PasswordHash == "pw" {
		t.Fatal("password stored in plaintext")
	}

	got, err := svc.Authenticate(ctx, "alice", "pw")
	if err != nil || got.ID != user.ID {
		t.Fatalf("Authenticate: %v (user %+v)", err, got)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("bad password: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "pw"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown name: expected ErrUnauthenticated, got %v", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	svc := NewService(NewMemStore())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Register(ctx, "alice", "other"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestResolveAndRevokeToken(t *testing.T) {
	svc := NewService(NewMemStore(), WithClock(fixedClock))
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}

	uid, err := svc.ResolveToken(ctx, token.Value)
	if err != nil || uid != user.ID {
		t.Fatalf("ResolveToken: uid=%d err=%v", uid, err)
	}

	found, err := svc.RevokeToken(ctx, token.Value)
	if err != nil || !found {
		t.Fatalf("RevokeToken: found=%v err=%v", found, err)
	}

	// The row survives revocation but no longer resolves.
	if _, err := svc.ResolveToken(ctx, token.Value); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("revoked token must be unauthenticated, got %v", err)
	}

	// Revoking again still reports the row exists.
	found, err = svc.RevokeToken(ctx, token.Value)
	if err != nil || !found {
		t.Fatalf("second revoke: found=%v err=%v", found, err)
	}

	found, err = svc.RevokeToken(ctx, "no-such-token")
	if err != nil || found {
		t.Fatalf("unknown token: found=%v err=%v", found, err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	svc := NewService(NewMemStore())
	if _, err := svc.ResolveToken(context.Background(), "missing"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.ResolveToken(context.Background(), "  "); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("blank token: expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	svc := NewService(NewMemStore())
	ctx := context.Background()

	user, first, err := svc.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.Value == second.Value {
		t.Fatal("token values must be unique per issuance")
	}
}
