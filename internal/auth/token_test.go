package auth

import (
	"testing"
	"time"
)

func TestTokenRecordValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil record is invalid", func(t *testing.T) {
		var record *TokenRecord
		if record.Valid(now) {
			t.Error("expected nil record to be invalid")
		}
	})

	t.Run("missing access token is invalid", func(t *testing.T) {
		record := &TokenRecord{ExpiresAt: now.Add(time.Hour)}
		if record.Valid(now) {
			t.Error("expected record without access token to be invalid")
		}
	})

	t.Run("zero expiry never expires", func(t *testing.T) {
		record := &TokenRecord{AccessToken: "tok"}
		if !record.Valid(now.Add(100 * 365 * 24 * time.Hour)) {
			t.Error("expected record without expiry to stay valid")
		}
	})

	t.Run("safety margin applies before the declared expiry", func(t *testing.T) {
		record := &TokenRecord{AccessToken: "tok", ExpiresAt: now.Add(time.Hour)}

		if !record.Valid(now.Add(time.Hour - ExpirySafetyMargin - time.Second)) {
			t.Error("expected record to be valid just outside the margin")
		}
		if record.Valid(now.Add(time.Hour - ExpirySafetyMargin)) {
			t.Error("expected record to be invalid once inside the margin")
		}
		if record.Valid(now.Add(2 * time.Hour)) {
			t.Error("expected record to be invalid past expiry")
		}
	})
}

func TestTokenRecordScopes(t *testing.T) {
	record := &TokenRecord{Scope: "openid profile offline_access"}
	scopes := record.Scopes()
	if len(scopes) != 3 || scopes[0] != "openid" || scopes[2] != "offline_access" {
		t.Errorf("unexpected scopes: %v", scopes)
	}

	empty := &TokenRecord{}
	if empty.Scopes() != nil {
		t.Error("expected nil scopes for empty scope string")
	}
}

func TestTokenRecordToOAuth2Token(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	record := &TokenRecord{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		ExpiresAt:    expiry,
	}

	tok := record.ToOAuth2Token()
	if tok.AccessToken != "access" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token: %+v", tok)
	}
	if tok.RefreshToken != "refresh" {
		t.Errorf("unexpected refresh token: %q", tok.RefreshToken)
	}
	if !tok.Expiry.Equal(expiry) {
		t.Errorf("unexpected expiry: %v", tok.Expiry)
	}
}
