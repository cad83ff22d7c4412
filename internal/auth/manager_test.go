package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newJWTManager wires a manager with the private key JWT strategy against the
// given handler, sharing one fake clock across all components.
func newJWTManager(t *testing.T, handler http.HandlerFunc) (*Manager, *MemoryStore, *fakeClock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := newFakeClock()
	store := NewMemoryStore()
	identity := newJWTIdentity(t, server.URL)
	exchanger := NewExchanger(WithExchangeClock(clock))
	manager := NewManager(identity, store,
		WithManagerClock(clock),
		WithExchanger(exchanger),
	)
	return manager, store, clock
}

func TestManagerTokenIdempotent(t *testing.T) {
	var requests atomic.Int32
	manager, _, _ := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		tokenSuccess(w)
	})

	first, err := manager.Token(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := manager.Token(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the cached record to be returned as-is")
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly 1 exchange, got %d", got)
	}
}

func TestManagerRenewsInsideSafetyMargin(t *testing.T) {
	var requests atomic.Int32
	manager, _, clock := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		tokenSuccess(w)
	})

	if _, err := manager.Token(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3600s lifetime with a 60s margin: still valid at 3500s...
	clock.Advance(3500 * time.Second)
	if _, err := manager.Token(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected no renewal before the margin, got %d exchanges", got)
	}

	// ...but 41s later the margin is crossed and renewal runs.
	clock.Advance(41 * time.Second)
	if _, err := manager.Token(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected a renewal inside the margin, got %d exchanges", got)
	}
}

func TestManagerConcurrentCallersShareOneRenewal(t *testing.T) {
	var requests atomic.Int32
	manager, _, _ := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(50 * time.Millisecond) // let callers pile up on the flight
		tokenSuccess(w)
	})

	const callers = 8
	var wg sync.WaitGroup
	records := make([]*TokenRecord, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i], errs[i] = manager.Token(t.Context())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if records[i] == nil || records[i].AccessToken != "access-1" {
			t.Errorf("caller %d: unexpected record: %+v", i, records[i])
		}
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly 1 exchange for %d concurrent callers, got %d", callers, got)
	}
}

func TestManagerClientCredentialsInvalidGrant(t *testing.T) {
	var requests atomic.Int32
	manager, store, _ := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "The client assertion is invalid.",
		})
	})

	// Seed the store so the terminal rejection has something to clear.
	key := manager.Identity().StorageKey()
	store.Save(key, &TokenRecord{AccessToken: "stale", ExpiresAt: time.Unix(1, 0)})

	_, err := manager.Token(t.Context())
	if !errors.Is(err, ErrReauthenticationRequired) {
		t.Fatalf("expected ErrReauthenticationRequired, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected no retry of a rejected assertion, got %d exchanges", got)
	}

	record, _ := store.Load(key)
	if record != nil {
		t.Error("expected the stored credential to be cleared")
	}
}

func TestManagerDeviceGrantRefreshPath(t *testing.T) {
	var refreshes, negotiations atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/v1/token":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.PostForm.Get("grant_type") != grantTypeRefreshToken {
				t.Errorf("unexpected grant_type: %q", r.PostForm.Get("grant_type"))
			}
			refreshes.Add(1)
			tokenSuccess(w)
		case "/oauth2/v1/device/authorize":
			negotiations.Add(1)
			t.Error("expected no fresh device negotiation while the refresh token works")
		}
	}))
	t.Cleanup(server.Close)

	clock := newFakeClock()
	store := NewMemoryStore()
	identity := newDeviceIdentity(server.URL)
	store.Save(identity.StorageKey(), &TokenRecord{
		AccessToken:  "stale",
		RefreshToken: "refresh-0",
		ExpiresAt:    clock.Now().Add(-time.Minute),
	})

	manager := NewManager(identity, store,
		WithManagerClock(clock),
		WithExchanger(NewExchanger(WithExchangeClock(clock))),
	)

	record, err := manager.Token(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.AccessToken != "access-1" {
		t.Errorf("unexpected record: %+v", record)
	}
	if refreshes.Load() != 1 || negotiations.Load() != 0 {
		t.Errorf("expected 1 refresh and 0 negotiations, got %d/%d", refreshes.Load(), negotiations.Load())
	}

	stored, _ := store.Load(identity.StorageKey())
	if stored == nil || stored.AccessToken != "access-1" {
		t.Errorf("expected the renewed record to be persisted, got %+v", stored)
	}
}

func TestManagerDeviceGrantFallsBackToNegotiation(t *testing.T) {
	// The refresh token is rejected terminally, so the manager discards the
	// credential and runs a full device negotiation.
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/v1/token":
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			switch r.PostForm.Get("grant_type") {
			case grantTypeRefreshToken:
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			case grantTypeDeviceCode:
				if polls.Add(1) == 1 {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "authorization_pending"})
					return
				}
				tokenSuccess(w)
			default:
				t.Errorf("unexpected grant_type: %q", r.PostForm.Get("grant_type"))
			}
		case "/oauth2/v1/device/authorize":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"device_code":      "dev-1",
				"user_code":        "WDJB-MJHT",
				"verification_uri": "https://example.okta.com/activate",
				"expires_in":       600,
				"interval":         5,
			})
		}
	}))
	t.Cleanup(server.Close)

	clock := newFakeClock()
	store := NewMemoryStore()
	identity := newDeviceIdentity(server.URL)
	store.Save(identity.StorageKey(), &TokenRecord{
		AccessToken:  "stale",
		RefreshToken: "refresh-0",
		ExpiresAt:    clock.Now().Add(-time.Minute),
	})

	var prompts atomic.Int32
	manager := NewManager(identity, store,
		WithManagerClock(clock),
		WithExchanger(NewExchanger(WithExchangeClock(clock))),
		WithDevicePrompt(func(session *DeviceSession) { prompts.Add(1) }),
	)

	record, err := manager.Token(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.AccessToken != "access-1" || record.RefreshToken != "refresh-1" {
		t.Errorf("unexpected record: %+v", record)
	}
	if prompts.Load() != 1 {
		t.Errorf("expected the device prompt to run once, got %d", prompts.Load())
	}
}

func TestManagerInvalidateForcesRenewal(t *testing.T) {
	var requests atomic.Int32
	manager, store, _ := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		tokenSuccess(w)
	})

	if _, err := manager.Token(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.Invalidate()
	if record, _ := store.Load(manager.Identity().StorageKey()); record != nil {
		t.Error("expected invalidation to clear the store")
	}

	if _, err := manager.Token(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected a second exchange after invalidation, got %d", got)
	}
}

func TestManagerCurrentAndLogout(t *testing.T) {
	manager, store, clock := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		tokenSuccess(w)
	})

	if manager.Current() != nil {
		t.Error("expected no current record before authentication")
	}

	if _, err := manager.Authenticate(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current := manager.Current()
	if current == nil || current.AccessToken != "access-1" {
		t.Errorf("unexpected current record: %+v", current)
	}
	if !current.Valid(clock.Now()) {
		t.Error("expected the fresh record to be valid")
	}

	manager.Logout()
	if manager.Current() != nil {
		t.Error("expected no current record after logout")
	}
	if record, _ := store.Load(manager.Identity().StorageKey()); record != nil {
		t.Error("expected logout to clear the store")
	}
}

func TestManagerTokenSource(t *testing.T) {
	manager, _, _ := newJWTManager(t, func(w http.ResponseWriter, r *http.Request) {
		tokenSuccess(w)
	})

	source := manager.TokenSource(t.Context())
	tok, err := source.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "access-1" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token: %+v", tok)
	}
}
