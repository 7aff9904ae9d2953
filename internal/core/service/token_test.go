package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPrefixTokenValidator(t *testing.T) {
	v := NewPrefixTokenValidator()
	tests := []struct {
		token string
		valid bool
	}{
		{"", false},
		{"hf_12", false},
		{"abcdefghij", false},
		{"hf_abcdefgh", true},
	}
	for _, tt := range tests {
		res, err := v.Validate(context.Background(), tt.token)
		if err != nil {
			t.Fatalf("Validate(%q) error: %v", tt.token, err)
		}
		if res.Valid != tt.valid {
			t.Errorf("Validate(%q).Valid = %v, want %v (%s)", tt.token, res.Valid, tt.valid, res.Message)
		}
		if !res.Advisory {
			t.Errorf("Validate(%q) should be advisory", tt.token)
		}
	}
}

func TestHTTPTokenValidator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/whoami-v2" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer hf_good_token":
			_, _ = w.Write([]byte(`{"name":"octocat"}`))
		case "Bearer hf_broken_server":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	v := NewHTTPTokenValidator(srv.URL)
	ctx := context.Background()

	res, err := v.Validate(ctx, "hf_good_token")
	if err != nil {
		t.Fatalf("good token error: %v", err)
	}
	if !res.Valid || res.Username != "octocat" || res.Advisory {
		t.Errorf("good token result = %+v", res)
	}

	res, err = v.Validate(ctx, "hf_bad_token")
	if err != nil {
		t.Fatalf("bad token error: %v", err)
	}
	if res.Valid {
		t.Error("bad token should be invalid")
	}

	if _, err := v.Validate(ctx, "hf_broken_server"); err == nil {
		t.Error("5xx should return an error")
	}
}

type countingValidator struct {
	calls atomic.Int32
}

func (c *countingValidator) Validate(_ context.Context, token string) (TokenResult, error) {
	c.calls.Add(1)
	return TokenResult{Valid: token == "hf_ok_token"}, nil
}

func TestCachingTokenValidator(t *testing.T) {
	inner := &countingValidator{}
	v := NewCachingTokenValidator(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := v.Validate(ctx, "hf_ok_token")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Valid {
			t.Error("expected cached valid result")
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}

	if _, err := v.Validate(ctx, "hf_other_token"); err != nil {
		t.Fatal(err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner calls = %d, want 2", got)
	}
}
