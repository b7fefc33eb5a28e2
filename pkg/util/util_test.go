package util

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("u1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("expected u1, got %s", claims.UserID)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id to be set")
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	token, _ := GenerateJWT("u1", "secret", time.Hour)
	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestJWT_Expired(t *testing.T) {
	token, _ := GenerateJWT("u1", "secret", -time.Minute)
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"Bearer abc": "abc",
		"bearer abc": "abc",
		"Basic abc":  "",
		"Bearer a b": "",
		"Bearerabc":  "",
	}
	for header, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := ExtractToken(req); got != want {
			t.Fatalf("header %q: expected %q, got %q", header, want, got)
		}
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}
