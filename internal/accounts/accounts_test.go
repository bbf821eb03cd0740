package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/robalobadob/sets/assets"
	"github.com/robalobadob/sets/internal/database"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, assets.Migrations()); err != nil {
		t.Fatal(err)
	}
	return NewStore(db)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name, user, pw string
		ok             bool
	}{
		{"ok", "alice_1", "password1", true},
		{"short name", "al", "password1", false},
		{"long name", strings.Repeat("a", 25), "password1", false},
		{"bad rune", "al ice", "password1", false},
		{"short password", "alice", "short", false},
		{"long password", "alice", strings.Repeat("p", 73), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.user, tt.pw)
			if (err == nil) != tt.ok {
				t.Fatalf("Validate = %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Fatalf("err %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p, err := s.Create(ctx, "  Alice ", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if p.Username != "Alice" || len(p.ID) != 22 || p.PasswordHash == "correct horse" {
		t.Fatalf("player %+v", p)
	}
	if _, err := s.Create(ctx, "alice", "another pass"); !errors.Is(err, ErrTaken) {
		t.Fatalf("duplicate err = %v", err)
	}

	got, err := s.Authenticate(ctx, "ALICE", "correct horse")
	if err != nil || got.ID != p.ID {
		t.Fatalf("Authenticate = %+v, %v", got, err)
	}
	if _, err := s.Authenticate(ctx, "alice", "wrong pass"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := s.Authenticate(ctx, "bob", "whatever1"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}
}

func TestInsertMapsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	first, err := s.Create(ctx, "Racer", "password1")
	if err != nil {
		t.Fatal(err)
	}
	// a second signup that passed the lookup before the first one committed
	late := &Account{ID: NewID(), Username: "racer", PasswordHash: first.PasswordHash, CreatedAt: first.CreatedAt}
	if err := s.insert(ctx, late); !errors.Is(err, ErrTaken) {
		t.Fatalf("insert err = %v, want ErrTaken", err)
	}
	if _, err := s.ByID(ctx, late.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("late row stored: %v", err)
	}
}

func TestRecordRound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p, err := s.Create(ctx, "bob", "password1")
	if err != nil {
		t.Fatal(err)
	}
	for _, score := range []int{6, 12, 3} {
		if err := s.RecordRound(ctx, p.ID, score); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.ByID(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RoundsPlayed != 3 || got.BestScore != 12 {
		t.Fatalf("counters %+v", got)
	}
	if err := s.RecordRound(ctx, "nobody", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.ByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
