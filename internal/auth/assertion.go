package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// assertionLifetime is how long a signed client assertion stays acceptable.
// Assertions are single-use: every exchange attempt signs a fresh one, so a
// short lifetime is sufficient.
const assertionLifetime = 5 * time.Minute

// SignAssertion builds and signs the JWT client assertion for the private key
// JWT flow. The assertion claims the client id as both issuer and subject,
// targets the token endpoint as audience, and carries a fresh unique jti so a
// captured assertion cannot be replayed across exchanges.
func SignAssertion(id *ClientIdentity, now time.Time) (string, error) {
	if id.strategy != StrategyPrivateKeyJWT {
		return "", &SigningError{Err: errors.New("client identity has no signing key")}
	}
	if id.signingKey == nil || id.signingMethod == nil {
		// The key parsed at resolve time; a nil key here means the identity
		// was corrupted after startup.
		return "", &SigningError{Err: errors.New("signing key is no longer usable")}
	}

	claims := jwt.MapClaims{
		"iss": id.ClientID,
		"sub": id.ClientID,
		"aud": id.TokenEndpoint(),
		"iat": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(id.signingMethod, claims)
	token.Header["kid"] = id.keyID

	signed, err := token.SignedString(id.signingKey)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	return signed, nil
}
