package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Manager is the token lifecycle façade. Callers ask it for a currently
// valid bearer token; the manager transparently refreshes or re-authenticates
// as needed, using the strategy selected at resolve time.
//
// Thread-safe: yes. Concurrent callers racing an expired token trigger
// exactly one renewal; the renewal path is deduplicated per identity and
// re-checks validity before exchanging, so waiters simply read the record the
// winner produced.
type Manager struct {
	identity   *ClientIdentity
	exchanger  *Exchanger
	negotiator *Negotiator
	store      Store
	clock      Clock
	logger     *slog.Logger
	prompt     PromptFunc

	mu     sync.RWMutex
	cached *TokenRecord

	renewGroup singleflight.Group
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithManagerClock sets the clock used for validity checks.
func WithManagerClock(clock Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithManagerLogger sets a custom logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithExchanger overrides the token exchanger, mainly for tests.
func WithExchanger(exchanger *Exchanger) ManagerOption {
	return func(m *Manager) {
		m.exchanger = exchanger
	}
}

// WithDevicePrompt sets the callback that surfaces the device grant user
// code and verification URI. Without it the codes are only logged.
func WithDevicePrompt(prompt PromptFunc) ManagerOption {
	return func(m *Manager) {
		m.prompt = prompt
	}
}

// NewManager creates a lifecycle manager for the resolved identity.
func NewManager(identity *ClientIdentity, store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		identity: identity,
		store:    store,
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.exchanger == nil {
		m.exchanger = NewExchanger(
			WithExchangeLogger(m.logger),
			WithExchangeClock(m.clock),
		)
	}
	if m.negotiator == nil {
		m.negotiator = NewNegotiator(identity, m.exchanger,
			WithPrompt(m.prompt),
			WithNegotiatorClock(m.clock),
			WithNegotiatorLogger(m.logger),
		)
	}

	return m
}

// Identity returns the resolved client identity this manager serves.
func (m *Manager) Identity() *ClientIdentity {
	return m.identity
}

// Token returns a currently valid token record. A cached valid record is
// returned without any network traffic; otherwise renewal runs once no
// matter how many callers arrive at the same time, and everyone gets the
// refreshed record.
func (m *Manager) Token(ctx context.Context) (*TokenRecord, error) {
	if record := m.currentValid(); record != nil {
		return record, nil
	}

	result, err, _ := m.renewGroup.Do(m.identity.StorageKey(), func() (interface{}, error) {
		// Re-check under the flight: another caller may have renewed while
		// this one waited for its turn.
		if record := m.loadValid(); record != nil {
			return record, nil
		}
		return m.renew(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.(*TokenRecord), nil
}

// currentValid returns the in-process cached record when still usable.
func (m *Manager) currentValid() *TokenRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached.Valid(m.clock.Now()) {
		return m.cached
	}
	return nil
}

// loadValid consults the store (populating the cache) and returns the record
// when still usable.
func (m *Manager) loadValid() *TokenRecord {
	if record := m.currentValid(); record != nil {
		return record
	}

	record, err := m.store.Load(m.identity.StorageKey())
	if err != nil {
		m.logger.Warn("failed to load stored token", "error", err.Error())
		return nil
	}
	if record == nil {
		return nil
	}

	m.mu.Lock()
	m.cached = record
	m.mu.Unlock()

	if record.Valid(m.clock.Now()) {
		return record
	}
	return nil
}

// renew performs strategy-appropriate renewal and persists the result.
// Terminal rejections clear the stored credential and surface
// ErrReauthenticationRequired.
func (m *Manager) renew(ctx context.Context) (*TokenRecord, error) {
	switch m.identity.Strategy() {
	case StrategyPrivateKeyJWT:
		return m.renewClientCredentials(ctx)
	default:
		return m.renewDeviceGrant(ctx)
	}
}

func (m *Manager) renewClientCredentials(ctx context.Context) (*TokenRecord, error) {
	record, err := m.exchanger.ExchangeClientCredentials(ctx, m.identity)
	if err != nil {
		var exchErr *ExchangeError
		if errors.As(err, &exchErr) && exchErr.IsInvalidGrant() {
			// No refresh path exists for this strategy: the assertion itself
			// was rejected. Check clock skew and key registration.
			m.discard()
			return nil, fmt.Errorf("%w: client assertion rejected: %v", ErrReauthenticationRequired, exchErr)
		}
		return nil, err
	}

	return m.commit(record)
}

func (m *Manager) renewDeviceGrant(ctx context.Context) (*TokenRecord, error) {
	if refreshToken := m.currentRefreshToken(); refreshToken != "" {
		record, err := m.exchanger.ExchangeRefreshToken(ctx, m.identity, refreshToken)
		if err == nil {
			return m.commit(record)
		}

		var exchErr *ExchangeError
		if !errors.As(err, &exchErr) || !exchErr.IsInvalidGrant() {
			return nil, err
		}

		m.logger.Info("refresh token no longer accepted, starting a fresh device authorization")
		m.discard()
	}

	record, err := m.negotiator.Negotiate(ctx)
	if err != nil {
		if errors.Is(err, ErrDeviceAccessDenied) || errors.Is(err, ErrDeviceSessionExpired) {
			m.discard()
			return nil, fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
		}
		return nil, err
	}

	return m.commit(record)
}

// currentRefreshToken returns the refresh token from the cache or store, if
// any.
func (m *Manager) currentRefreshToken() string {
	m.mu.RLock()
	cached := m.cached
	m.mu.RUnlock()

	if cached != nil && cached.RefreshToken != "" {
		return cached.RefreshToken
	}

	record, err := m.store.Load(m.identity.StorageKey())
	if err != nil || record == nil {
		return ""
	}
	return record.RefreshToken
}

// commit replaces the cached record and persists it. Storage failure is not
// fatal: the in-process token still works, it just will not survive a
// restart.
func (m *Manager) commit(record *TokenRecord) (*TokenRecord, error) {
	m.mu.Lock()
	m.cached = record
	m.mu.Unlock()

	if err := m.store.Save(m.identity.StorageKey(), record); err != nil {
		m.logger.Warn("failed to persist renewed token", "error", err.Error())
	}

	return record, nil
}

// discard drops the cached and stored record.
func (m *Manager) discard() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()

	if err := m.store.Clear(m.identity.StorageKey()); err != nil {
		m.logger.Warn("failed to clear stored token", "error", err.Error())
	}
}

// Authenticate forces a full authentication, bypassing any cached record.
// Used by the login command and for eager authentication at server startup.
func (m *Manager) Authenticate(ctx context.Context) (*TokenRecord, error) {
	result, err, _ := m.renewGroup.Do(m.identity.StorageKey(), func() (interface{}, error) {
		switch m.identity.Strategy() {
		case StrategyPrivateKeyJWT:
			return m.renewClientCredentials(ctx)
		default:
			record, err := m.negotiator.Negotiate(ctx)
			if err != nil {
				if errors.Is(err, ErrDeviceAccessDenied) || errors.Is(err, ErrDeviceSessionExpired) {
					return nil, fmt.Errorf("%w: %v", ErrReauthenticationRequired, err)
				}
				return nil, err
			}
			return m.commit(record)
		}
	})
	if err != nil {
		return nil, err
	}
	return result.(*TokenRecord), nil
}

// Invalidate discards the current record, typically after the API rejected
// it as revoked. The next Token call renews from scratch.
func (m *Manager) Invalidate() {
	m.logger.Info("SECURITY_AUDIT: cached token invalidated",
		"event", "token_invalidated",
		"identity_key", m.identity.StorageKey(),
	)
	m.discard()
}

// Logout clears the stored credential for this identity.
func (m *Manager) Logout() {
	m.discard()
}

// Current returns the cached or stored record without triggering renewal.
// Returns nil when no record exists. Used for status reporting only.
func (m *Manager) Current() *TokenRecord {
	m.mu.RLock()
	cached := m.cached
	m.mu.RUnlock()

	if cached != nil {
		return cached
	}

	record, err := m.store.Load(m.identity.StorageKey())
	if err != nil {
		return nil
	}
	return record
}

// TokenSource adapts the manager to golang.org/x/oauth2 so collaborators can
// attach the bearer token with the stock oauth2 transport.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *Manager
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	record, err := s.manager.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return record.ToOAuth2Token(), nil
}
