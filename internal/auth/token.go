package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExpirySafetyMargin is subtracted from a token's declared lifetime when
// checking validity. It accounts for clock skew and for tokens expiring
// mid-flight to the API.
const ExpirySafetyMargin = 60 * time.Second

// TokenRecord is the canonical form of a token endpoint response. Records are
// immutable once created; renewal replaces the whole record, never individual
// fields.
type TokenRecord struct {
	// AccessToken is the opaque bearer credential.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// RefreshToken is only present for the device grant flow. Client
	// credential exchanges mint a fresh assertion instead of refreshing.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the absolute expiry instant, derived from the issuance
	// time plus the server-declared lifetime.
	ExpiresAt time.Time `json:"expires_at"`

	// Scope is the granted scope set, space-separated. It may be narrower
	// than what was requested.
	Scope string `json:"scope,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the access token is still usable at the given
// instant, leaving the safety margin before the declared expiry.
func (t *TokenRecord) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(t.ExpiresAt.Add(-ExpirySafetyMargin))
}

// Scopes returns the granted scope set as a slice.
func (t *TokenRecord) Scopes() []string {
	if t.Scope == "" {
		return nil
	}
	return strings.Fields(t.Scope)
}

// ToOAuth2Token converts the record for use with golang.org/x/oauth2
// transports.
func (t *TokenRecord) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}
