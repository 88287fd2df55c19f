package service

import (
	"errors"
	"testing"
	"time"
)

func TestChannelTokenService_RoundTrip(t *testing.T) {
	svc := NewChannelTokenService("secret", time.Hour)

	token, err := svc.Mint("telegram")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	channel, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if channel != "telegram" {
		t.Fatalf("expected channel telegram, got %q", channel)
	}
}

func TestChannelTokenService_RejectsForeignSecret(t *testing.T) {
	minted := NewChannelTokenService("secret-a", time.Hour)
	verifier := NewChannelTokenService("secret-b", time.Hour)

	token, err := minted.Mint("telegram")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrChannelTokenInvalid) {
		t.Fatalf("expected ErrChannelTokenInvalid, got %v", err)
	}
}

func TestChannelTokenService_RejectsGarbage(t *testing.T) {
	svc := NewChannelTokenService("secret", time.Hour)

	for _, raw := range []string{"", "   ", "not.a.token"} {
		if _, err := svc.Verify(raw); !errors.Is(err, ErrChannelTokenInvalid) {
			t.Fatalf("input %q: expected ErrChannelTokenInvalid, got %v", raw, err)
		}
	}
}

func TestChannelTokenService_DisabledWithoutSecret(t *testing.T) {
	svc := NewChannelTokenService("", time.Hour)

	if svc.Enabled() {
		t.Fatalf("expected disabled service")
	}
	if _, err := svc.Mint("telegram"); !errors.Is(err, ErrChannelTokenInvalid) {
		t.Fatalf("expected mint to fail, got %v", err)
	}
}
