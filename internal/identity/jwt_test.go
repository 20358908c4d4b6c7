package identity

import (
	"errors"
	"testing"
	"time"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("alice", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if tok == "" {
		t.Fatalf("empty token")
	}

	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("username=%q want=%q", claims.Username, "alice")
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("missing expiry")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 55*time.Minute || ttl > time.Hour {
		t.Fatalf("expiry %v not about an hour out", ttl)
	}
}

func TestTokenMaker_Expired(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("alice", -time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	_, err = tm.Parse(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err=%v want=%v", err, ErrTokenExpired)
	}
}

func TestTokenMaker_BadSignature(t *testing.T) {
	tm := NewTokenMaker("test-secret")
	other := NewTokenMaker("another-secret")

	tok, err := tm.New("alice", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	_, err = other.Parse(tok)
	if !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("err=%v want=%v", err, ErrTokenBadSignature)
	}
}

func TestTokenMaker_Malformed(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tm.Parse(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Parse(%q) err=%v want=%v", tok, err, ErrTokenMalformed)
		}
	}
}

func TestTokenMaker_DoesNotConsultRegistry(t *testing.T) {
	// Issuance is for any username string; verification only needs the
	// secret, whether or not the user is (still) registered.
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("never-registered", time.Hour)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "never-registered" {
		t.Fatalf("username=%q", claims.Username)
	}
}
