package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// defaultPollInterval is used when the server declares no interval.
const defaultPollInterval = 5 * time.Second

// slowDownIncrement is added to the poll interval on every slow_down
// response. Increments are cumulative, not one-shot.
const slowDownIncrement = 5 * time.Second

// DeviceState is the negotiator's position in the device grant flow.
type DeviceState int

const (
	StateNotStarted DeviceState = iota
	StateSessionRequested
	StateAwaitingUserAction
	StatePolling
	StateGranted
	StateDenied
	StateExpired
	StateCancelled
)

// String returns the string representation of the device state.
func (s DeviceState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateSessionRequested:
		return "session_requested"
	case StateAwaitingUserAction:
		return "awaiting_user_action"
	case StatePolling:
		return "polling"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	case StateExpired:
		return "expired"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DeviceSession holds the ephemeral state of one device grant negotiation.
// The device code is server-facing and never shown to the user; the user code
// and verification URI are what the operator needs. Sessions are never
// persisted and are discarded when the negotiation terminates.
type DeviceSession struct {
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	Interval                time.Duration
	ExpiresAt               time.Time
}

// PromptFunc surfaces the user code and verification URI to whoever renders
// UI. The negotiator itself never prints anything.
type PromptFunc func(session *DeviceSession)

// Negotiator drives the interactive device authorization grant: it requests
// a device/user code pair, hands the user-facing half to the prompt callback,
// and polls the token endpoint at the server-declared pace until the grant
// resolves.
//
// A Negotiator runs one negotiation at a time and is not safe for concurrent
// use; the lifecycle manager serializes access to it.
type Negotiator struct {
	identity  *ClientIdentity
	exchanger *Exchanger
	clock     Clock
	prompt    PromptFunc
	logger    *slog.Logger

	state DeviceState
}

// NegotiatorOption configures the Negotiator.
type NegotiatorOption func(*Negotiator)

// WithPrompt sets the callback that displays the user code and verification
// URI.
func WithPrompt(prompt PromptFunc) NegotiatorOption {
	return func(n *Negotiator) {
		n.prompt = prompt
	}
}

// WithNegotiatorClock sets the clock used for pacing and session expiry.
func WithNegotiatorClock(clock Clock) NegotiatorOption {
	return func(n *Negotiator) {
		n.clock = clock
	}
}

// WithNegotiatorLogger sets a custom logger.
func WithNegotiatorLogger(logger *slog.Logger) NegotiatorOption {
	return func(n *Negotiator) {
		n.logger = logger
	}
}

// NewNegotiator creates a device grant negotiator for the given identity.
func NewNegotiator(identity *ClientIdentity, exchanger *Exchanger, opts ...NegotiatorOption) *Negotiator {
	n := &Negotiator{
		identity:  identity,
		exchanger: exchanger,
		clock:     NewClock(),
		logger:    slog.Default(),
		state:     StateNotStarted,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the current negotiation state.
func (n *Negotiator) State() DeviceState {
	return n.state
}

// Negotiate runs one complete device grant negotiation and returns the
// resulting token record. Terminal outcomes:
//
//   - success returns the record with state Granted
//   - ErrDeviceAccessDenied when the user refused (state Denied)
//   - ErrDeviceSessionExpired when the session lapsed (state Expired);
//     the caller must start over to get a fresh user code
//   - the context error on cancellation (state Cancelled)
//
// Polling never runs faster than the server-declared interval, and slow_down
// responses stretch the interval cumulatively. Tight-loop polling is a
// protocol violation that risks server-side throttling, so the pacing here is
// mandatory rather than cosmetic.
func (n *Negotiator) Negotiate(ctx context.Context) (*TokenRecord, error) {
	n.state = StateSessionRequested
	session, err := n.exchanger.RequestDeviceSession(ctx, n.identity)
	if err != nil {
		if ctx.Err() != nil {
			n.state = StateCancelled
		} else {
			n.state = StateNotStarted
		}
		return nil, fmt.Errorf("failed to start device authorization: %w", err)
	}

	n.state = StateAwaitingUserAction
	if n.prompt != nil {
		n.prompt(session)
	}

	n.state = StatePolling
	record, err := n.poll(ctx, session)

	// The session is ephemeral regardless of outcome.
	*session = DeviceSession{}

	return record, err
}

func (n *Negotiator) poll(ctx context.Context, session *DeviceSession) (*TokenRecord, error) {
	interval := session.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		if err := n.clock.Sleep(ctx, interval); err != nil {
			n.state = StateCancelled
			return nil, err
		}

		// Re-check the absolute session bound after every wait so an expired
		// session is never polled again.
		if !n.clock.Now().Before(session.ExpiresAt) {
			n.state = StateExpired
			return nil, ErrDeviceSessionExpired
		}

		record, err := n.exchanger.ExchangeDeviceCode(ctx, n.identity, session.DeviceCode)
		if err == nil {
			n.state = StateGranted
			n.logger.Info("device authorization granted")
			return record, nil
		}

		if ctx.Err() != nil {
			n.state = StateCancelled
			return nil, ctx.Err()
		}

		var exchErr *ExchangeError
		if !errors.As(err, &exchErr) {
			n.state = StateCancelled
			return nil, err
		}

		switch exchErr.Code {
		case errCodeAuthorizationPending:
			// Stay in Polling, wait another interval.
		case errCodeSlowDown:
			interval += slowDownIncrement
			n.logger.Debug("server requested slower polling",
				"interval", interval.String(),
			)
		case errCodeAccessDenied:
			n.state = StateDenied
			return nil, fmt.Errorf("%w (verification was shown at %s)", ErrDeviceAccessDenied, session.VerificationURI)
		case errCodeExpiredToken:
			n.state = StateExpired
			return nil, ErrDeviceSessionExpired
		default:
			if exchErr.IsTransient() {
				// Network hiccup mid-poll: keep polling at the current pace,
				// bounded by the session expiry.
				n.logger.Debug("transient poll failure, retrying",
					"error", exchErr.Error(),
				)
				continue
			}
			n.state = StateDenied
			return nil, fmt.Errorf("device authorization failed: %w", exchErr)
		}
	}
}
