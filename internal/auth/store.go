package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name under which token records are filed in
// the platform secret store.
const keyringService = "oktamcp"

// Store persists token records across process restarts, keyed by the stable
// identity derived from org URL and client id. Implementations serialize
// their own access; coordination between separate processes sharing one
// identity is out of scope, and the last refresh wins.
//
// SECURITY: implementations must never log token values. Only storage events
// and identity keys are logged, for audit purposes.
type Store interface {
	// Load returns the stored record for the identity, or nil when absent.
	Load(identityKey string) (*TokenRecord, error)

	// Save stores the record, replacing any previous one.
	Save(identityKey string, record *TokenRecord) error

	// Clear removes the record. Clearing an absent record is not an error.
	Clear(identityKey string) error
}

// OpenStore selects the token store backend once at startup. The platform
// secret store (keychain, credential manager, Secret Service) is probed
// first; if unreachable, the process degrades to an explicitly logged
// in-memory store rather than writing secrets to a plaintext fallback. The
// selection never changes at runtime.
func OpenStore(logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}

	if err := probeKeyring(); err != nil {
		logger.Warn("SECURITY_AUDIT: platform secret store unavailable, tokens will not survive restarts",
			"event", "token_store_degraded",
			"backend", "memory",
			"error", err.Error(),
		)
		return NewMemoryStore()
	}

	logger.Debug("using platform secret store for token persistence")
	return &keyringStore{logger: logger}
}

// probeKeyring verifies the secret store round-trips before trusting it.
func probeKeyring() error {
	const probeKey = "oktamcp-probe"
	if err := keyring.Set(keyringService, probeKey, "ok"); err != nil {
		return err
	}
	if _, err := keyring.Get(keyringService, probeKey); err != nil {
		return err
	}
	return keyring.Delete(keyringService, probeKey)
}

// keyringStore files JSON-encoded token records in the OS secret store.
type keyringStore struct {
	mu     sync.Mutex
	logger *slog.Logger
}

func (s *keyringStore) Load(identityKey string) (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := keyring.Get(keyringService, identityKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token from secret store: %w", err)
	}

	var record TokenRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("stored token record is corrupted: %w", err)
	}
	return &record, nil
}

func (s *keyringStore) Save(identityKey string, record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}

	if err := keyring.Set(keyringService, identityKey, string(data)); err != nil {
		s.logger.Warn("SECURITY_AUDIT: token storage failed",
			"event", "token_store_failed",
			"identity_key", identityKey,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.logger.Info("SECURITY_AUDIT: token stored",
		"event", "token_stored",
		"identity_key", identityKey,
		"has_refresh_token", record.RefreshToken != "",
	)
	return nil
}

func (s *keyringStore) Clear(identityKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := keyring.Delete(keyringService, identityKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from secret store: %w", err)
	}

	s.logger.Info("SECURITY_AUDIT: token cleared",
		"event", "token_cleared",
		"identity_key", identityKey,
	)
	return nil
}

// MemoryStore keeps token records in process memory only. Used when no
// secure backend is reachable, and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*TokenRecord
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*TokenRecord)}
}

func (s *MemoryStore) Load(identityKey string) (*TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identityKey]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate the stored record in place.
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) Save(identityKey string, record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[identityKey] = &clone
	return nil
}

func (s *MemoryStore) Clear(identityKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identityKey)
	return nil
}
