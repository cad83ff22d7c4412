package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func tokenSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  "access-1",
		"token_type":    "Bearer",
		"refresh_token": "refresh-1",
		"expires_in":    3600,
		"scope":         "openid offline_access",
	})
}

func TestRequestDeviceSession(t *testing.T) {
	t.Run("parses the session response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.PostForm.Get("client_id"); got != "test-client" {
				t.Errorf("unexpected client_id: %q", got)
			}
			if got := r.PostForm.Get("scope"); got != "openid offline_access" {
				t.Errorf("unexpected scope: %q", got)
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"device_code":               "dev-1",
				"user_code":                 "WDJB-MJHT",
				"verification_uri":          "https://example.okta.com/activate",
				"verification_uri_complete": "https://example.okta.com/activate?user_code=WDJB-MJHT",
				"expires_in":                600,
				"interval":                  7,
			})
		}))
		defer server.Close()

		clock := newFakeClock()
		e := NewExchanger(WithExchangeClock(clock))
		session, err := e.RequestDeviceSession(t.Context(), newDeviceIdentity(server.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if session.DeviceCode != "dev-1" || session.UserCode != "WDJB-MJHT" {
			t.Errorf("unexpected session: %+v", session)
		}
		if session.Interval != 7*time.Second {
			t.Errorf("unexpected interval: %v", session.Interval)
		}
		if !session.ExpiresAt.Equal(clock.Now().Add(600 * time.Second)) {
			t.Errorf("unexpected expiry: %v", session.ExpiresAt)
		}
	})

	t.Run("missing interval falls back to the default", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"device_code": "dev-1",
				"expires_in":  600,
			})
		}))
		defer server.Close()

		e := NewExchanger(WithExchangeClock(newFakeClock()))
		session, err := e.RequestDeviceSession(t.Context(), newDeviceIdentity(server.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Interval != defaultPollInterval {
			t.Errorf("unexpected interval: %v", session.Interval)
		}
	})

	t.Run("missing device code is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{})
		}))
		defer server.Close()

		e := NewExchanger(WithExchangeClock(newFakeClock()))
		if _, err := e.RequestDeviceSession(t.Context(), newDeviceIdentity(server.URL)); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestExchangeDeviceCode(t *testing.T) {
	clock := newFakeClock()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != grantTypeDeviceCode {
			t.Errorf("unexpected grant_type: %q", got)
		}
		if got := r.PostForm.Get("device_code"); got != "dev-1" {
			t.Errorf("unexpected device_code: %q", got)
		}
		tokenSuccess(w)
	}))
	defer server.Close()

	e := NewExchanger(WithExchangeClock(clock))
	record, err := e.ExchangeDeviceCode(t.Context(), newDeviceIdentity(server.URL), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.AccessToken != "access-1" || record.RefreshToken != "refresh-1" {
		t.Errorf("unexpected record: %+v", record)
	}
	if !record.ExpiresAt.Equal(clock.Now().Add(3600 * time.Second)) {
		t.Errorf("unexpected expiry: %v", record.ExpiresAt)
	}
}

func TestExchangeDefaultsTokenType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "access-1"})
	}))
	defer server.Close()

	e := NewExchanger(WithExchangeClock(newFakeClock()))
	record, err := e.ExchangeDeviceCode(t.Context(), newDeviceIdentity(server.URL), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.TokenType != "Bearer" {
		t.Errorf("expected Bearer default, got %q", record.TokenType)
	}
	if !record.ExpiresAt.IsZero() {
		t.Errorf("expected zero expiry without expires_in, got %v", record.ExpiresAt)
	}
}

func TestExchangeRefreshToken(t *testing.T) {
	t.Run("sends the refresh grant", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.PostForm.Get("grant_type"); got != grantTypeRefreshToken {
				t.Errorf("unexpected grant_type: %q", got)
			}
			if got := r.PostForm.Get("refresh_token"); got != "refresh-1" {
				t.Errorf("unexpected refresh_token: %q", got)
			}
			tokenSuccess(w)
		}))
		defer server.Close()

		e := NewExchanger(WithExchangeClock(newFakeClock()))
		if _, err := e.ExchangeRefreshToken(t.Context(), newDeviceIdentity(server.URL), "refresh-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid_grant is terminal, no retry", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "The refresh token is invalid or expired.",
			})
		}))
		defer server.Close()

		e := NewExchanger(WithExchangeClock(newFakeClock()))
		_, err := e.ExchangeRefreshToken(t.Context(), newDeviceIdentity(server.URL), "refresh-1")
		if err == nil {
			t.Fatal("expected an error")
		}

		var exchErr *ExchangeError
		if !errors.As(err, &exchErr) || !exchErr.IsInvalidGrant() {
			t.Fatalf("expected an invalid_grant ExchangeError, got %v", err)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected exactly 1 request, got %d", got)
		}
	})
}

func TestExchangeClientCredentials(t *testing.T) {
	t.Run("signs a fresh assertion per attempt", func(t *testing.T) {
		var assertions []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.PostForm.Get("grant_type"); got != grantTypeClientCredentials {
				t.Errorf("unexpected grant_type: %q", got)
			}
			if got := r.PostForm.Get("client_assertion_type"); got != clientAssertionType {
				t.Errorf("unexpected client_assertion_type: %q", got)
			}
			assertions = append(assertions, r.PostForm.Get("client_assertion"))

			if len(assertions) < 3 {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
				return
			}
			tokenSuccess(w)
		}))
		defer server.Close()

		clock := newFakeClock()
		e := NewExchanger(WithExchangeClock(clock), WithRetryPolicy(5, time.Second))
		record, err := e.ExchangeClientCredentials(t.Context(), newJWTIdentity(t, server.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.AccessToken != "access-1" {
			t.Errorf("unexpected record: %+v", record)
		}

		if len(assertions) != 3 {
			t.Fatalf("expected 3 attempts, got %d", len(assertions))
		}
		if assertions[0] == assertions[1] || assertions[1] == assertions[2] {
			t.Error("expected a distinct assertion per attempt")
		}

		// Exponential backoff between the failed attempts.
		sleeps := clock.Sleeps()
		if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
			t.Errorf("unexpected backoff sequence: %v", sleeps)
		}
	})

	t.Run("exhausted retries report renewal failure", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		}))
		defer server.Close()

		e := NewExchanger(WithExchangeClock(newFakeClock()), WithRetryPolicy(3, time.Second))
		_, err := e.ExchangeClientCredentials(t.Context(), newJWTIdentity(t, server.URL))
		if !errors.Is(err, ErrRenewalFailed) {
			t.Fatalf("expected ErrRenewalFailed, got %v", err)
		}
		if got := requests.Load(); got != 3 {
			t.Errorf("expected 3 attempts, got %d", got)
		}
	})

	t.Run("rate limiting honors Retry-After", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) == 1 {
				w.Header().Set("Retry-After", "17")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
				return
			}
			tokenSuccess(w)
		}))
		defer server.Close()

		clock := newFakeClock()
		e := NewExchanger(WithExchangeClock(clock))
		if _, err := e.ExchangeClientCredentials(t.Context(), newJWTIdentity(t, server.URL)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sleeps := clock.Sleeps()
		if len(sleeps) != 1 || sleeps[0] != 17*time.Second {
			t.Errorf("expected a single 17s wait, got %v", sleeps)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := parseRetryAfter("", now); got != 0 {
		t.Errorf("expected 0 for empty header, got %v", got)
	}
	if got := parseRetryAfter("30", now); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}

	at := now.Add(90 * time.Second)
	if got := parseRetryAfter(at.Format(http.TimeFormat), now); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}

	past := now.Add(-time.Minute)
	if got := parseRetryAfter(past.Format(http.TimeFormat), now); got != 0 {
		t.Errorf("expected 0 for a past date, got %v", got)
	}
}
