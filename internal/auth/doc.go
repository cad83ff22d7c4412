// Package auth establishes and maintains the bearer credential used for
// every outbound Okta API call.
//
// Two mutually exclusive authentication strategies are supported, selected
// once at startup by Resolve:
//   - the OAuth 2.0 Device Authorization Grant (RFC 8628) for interactive
//     use, driven by the Negotiator state machine, and
//   - private_key_jwt client credentials (RFC 7523) for browserless use,
//     signing a fresh short-lived assertion per exchange.
//
// # Token lifecycle
//
// The Manager is the façade the rest of the process talks to. A call to
// Token returns the cached record while it is valid (with a 60 second safety
// margin before the declared expiry) and otherwise renews it: a refresh-token
// exchange when one is available, a fresh device negotiation or assertion
// exchange when not. Renewal is deduplicated, so concurrent callers racing an
// expired token produce exactly one exchange.
//
// # Storage
//
// Records persist in the platform secret store, keyed by a hash of the org
// URL and client id. When no secure backend is reachable the process
// degrades, loudly, to in-memory storage; tokens are never written to a
// plaintext fallback. The private key itself is never persisted.
//
// # Usage
//
//	identity, err := auth.Resolve(auth.Credentials{
//	    OrgURL:   "https://dev-1.okta.com",
//	    ClientID: "abc",
//	    Scopes:   []string{"openid", "okta.users.read"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	manager := auth.NewManager(identity, auth.OpenStore(nil))
//	record, err := manager.Token(ctx)
package auth
