package auth

import (
	"crypto"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Strategy identifies which of the two mutually exclusive authentication
// protocols is in use. It is selected once per process and is immutable
// thereafter.
type Strategy int

const (
	// StrategyDeviceGrant is the interactive OAuth 2.0 Device Authorization
	// Grant (RFC 8628). Used when no private key material is configured.
	StrategyDeviceGrant Strategy = iota

	// StrategyPrivateKeyJWT authenticates with a signed client assertion
	// (private_key_jwt). Browserless; used when a private key and key id
	// are both configured.
	StrategyPrivateKeyJWT
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyDeviceGrant:
		return "device_grant"
	case StrategyPrivateKeyJWT:
		return "private_key_jwt"
	default:
		return "unknown"
	}
}

// Credentials is the raw credential configuration handed to Resolve.
type Credentials struct {
	// OrgURL is the Okta organization base URL. Must be an HTTPS origin.
	OrgURL string

	// ClientID is the OAuth client identifier.
	ClientID string

	// Scopes is the requested scope set. Order is preserved for the wire
	// encoding but the set semantics are what matter.
	Scopes []string

	// PrivateKeyPEM is the optional PEM-encoded RSA or EC private key for
	// the browserless flow.
	PrivateKeyPEM string

	// KeyID is the key identifier registered with the authorization server
	// for the private key.
	KeyID string
}

// ClientIdentity is the resolved, validated identity used by every other
// component. The private key, when present, lives only in process memory and
// is never persisted.
type ClientIdentity struct {
	OrgURL   string
	ClientID string
	Scopes   []string

	strategy      Strategy
	signingKey    crypto.PrivateKey
	signingMethod jwt.SigningMethod
	keyID         string
}

// Resolve validates the credential configuration and deterministically
// selects the authentication strategy. The decision is pure: private key and
// key id both present and parseable selects private key JWT; neither present
// selects the device grant; anything in between is a fatal ConfigError, never
// a silent fallback.
func Resolve(creds Credentials) (*ClientIdentity, error) {
	orgURL, err := validateOrgURL(creds.OrgURL)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if strings.TrimSpace(creds.ClientID) == "" {
		return nil, &ConfigError{Err: errors.New("client id must not be empty")}
	}

	if len(creds.Scopes) == 0 {
		return nil, &ConfigError{Err: errors.New("at least one scope must be requested")}
	}

	id := &ClientIdentity{
		OrgURL:   orgURL,
		ClientID: creds.ClientID,
		Scopes:   creds.Scopes,
	}

	hasKey := strings.TrimSpace(creds.PrivateKeyPEM) != ""
	hasKeyID := strings.TrimSpace(creds.KeyID) != ""

	switch {
	case !hasKey && !hasKeyID:
		id.strategy = StrategyDeviceGrant
		return id, nil
	case hasKey != hasKeyID:
		return nil, &ConfigError{Err: ErrIncompletePrivateKeyMaterial}
	}

	key, method, err := parsePrivateKey(creds.PrivateKeyPEM)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("%w: %v", ErrIncompletePrivateKeyMaterial, err)}
	}

	id.strategy = StrategyPrivateKeyJWT
	id.signingKey = key
	id.signingMethod = method
	id.keyID = creds.KeyID
	return id, nil
}

// parsePrivateKey parses PEM-encoded RSA or EC key material and picks the
// matching signature algorithm (RS256 for RSA, ES256 for EC).
func parsePrivateKey(pemData string) (crypto.PrivateKey, jwt.SigningMethod, error) {
	data := []byte(pemData)

	if key, err := jwt.ParseRSAPrivateKeyFromPEM(data); err == nil {
		return key, jwt.SigningMethodRS256, nil
	}

	if key, err := jwt.ParseECPrivateKeyFromPEM(data); err == nil {
		return key, jwt.SigningMethodES256, nil
	}

	return nil, nil, errors.New("private key is not a PEM-encoded RSA or EC key")
}

func validateOrgURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("org URL must not be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("org URL is not a valid URL: %w", err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("org URL must use https, got %q", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("org URL has no host: %q", raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", fmt.Errorf("org URL must be a bare origin without a path: %q", raw)
	}

	return "https://" + u.Host, nil
}

// Strategy returns the selected authentication strategy.
func (id *ClientIdentity) Strategy() Strategy {
	return id.strategy
}

// TokenEndpoint returns the org's OAuth token endpoint.
func (id *ClientIdentity) TokenEndpoint() string {
	return id.OrgURL + "/oauth2/v1/token"
}

// DeviceAuthorizationEndpoint returns the org's device authorization endpoint.
func (id *ClientIdentity) DeviceAuthorizationEndpoint() string {
	return id.OrgURL + "/oauth2/v1/device/authorize"
}

// ScopeString returns the scope set in its space-delimited wire form.
func (id *ClientIdentity) ScopeString() string {
	return strings.Join(id.Scopes, " ")
}

// StorageKey derives the stable storage identity for this org/client pair.
// Distinct identities hash to distinct keys, so two clients against the same
// org never collide in the token store.
func (id *ClientIdentity) StorageKey() string {
	hash := sha256.Sum256([]byte(id.OrgURL + "\x00" + id.ClientID))
	return hex.EncodeToString(hash[:16])
}
