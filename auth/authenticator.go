// Package auth authenticates inbound webhook deliveries. Credentials
// arrive as an opaque "client_id:secret" pair in the Authorization
// header; the client id selects a registered subscription and the secret
// is compared in constant time.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-zaaknotify/core"
)

// Authenticator resolves webhook credentials to an active subscription.
type Authenticator struct {
	subscriptions core.SubscriptionStore
}

func New(subscriptions core.SubscriptionStore) *Authenticator {
	return &Authenticator{subscriptions: subscriptions}
}

// Authenticate parses the Authorization value, looks the subscription up
// by client id, and verifies the secret. Every failure path returns a
// 401-category error with a distinct text code so the audit trail can
// tell a malformed header from an unknown client from a wrong secret.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (core.Subscription, error) {
	if a == nil || a.subscriptions == nil {
		return core.Subscription{}, goerrors.New("auth: subscription store is required", goerrors.CategoryInternal).
			WithTextCode(core.NotifyErrorInternal)
	}

	clientID, secret, err := splitCredential(authorization)
	if err != nil {
		return core.Subscription{}, err
	}

	sub, err := a.subscriptions.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Subscription{}, unauthorized("auth: unknown client id")
		}
		return core.Subscription{}, goerrors.Wrap(err, goerrors.CategoryInternal, "auth: subscription lookup failed").
			WithTextCode(core.NotifyErrorInternal)
	}
	if !sub.Active {
		return core.Subscription{}, unauthorized("auth: subscription is inactive")
	}
	if subtle.ConstantTimeCompare([]byte(sub.Secret), []byte(secret)) != 1 {
		return core.Subscription{}, unauthorized("auth: subscription secret mismatch")
	}
	return sub, nil
}

// CheckChannel verifies the subscription is registered for the channel
// the notification was delivered on. A mismatch is the sender's
// configuration error, reported as bad input rather than unauthorized.
func (a *Authenticator) CheckChannel(sub core.Subscription, channel string) error {
	if sub.HasChannel(channel) {
		return nil
	}
	return goerrors.New("auth: subscription does not cover channel "+strings.TrimSpace(channel), goerrors.CategoryBadInput).
		WithTextCode(core.NotifyErrorChannelRejected)
}

func splitCredential(authorization string) (string, string, error) {
	credential := strings.TrimSpace(authorization)
	if credential == "" {
		return "", "", unauthorized("auth: credential is required")
	}
	clientID, secret, ok := strings.Cut(credential, ":")
	if !ok {
		return "", "", unauthorized("auth: credential is malformed")
	}
	clientID = strings.TrimSpace(clientID)
	secret = strings.TrimSpace(secret)
	if clientID == "" || secret == "" {
		return "", "", unauthorized("auth: credential is malformed")
	}
	return clientID, secret, nil
}

func unauthorized(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(core.NotifyErrorUnauthorized)
}
