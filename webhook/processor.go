// Package webhook is the pipeline boundary: it parses and authenticates
// an inbound notification delivery, runs the policy engine, dispatches
// per user, and maps every outcome to the response code the sender
// keys its retry behavior on.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-zaaknotify/auth"
	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/delivery"
	"github.com/goliatone/go-zaaknotify/policy"
)

// Result is the processed outcome of one delivery. StatusCode follows
// the contract: 204 processed (even when the event was ignored or an
// upstream fetch failed), 400 malformed or channel-rejected, 401
// credential failure, 500 unexpected failure so the sender retries.
type Result struct {
	StatusCode int
	Accepted   bool
	Reason     string
}

type Processor struct {
	config        core.Config
	authenticator *auth.Authenticator
	engine        *policy.Engine
	dispatcher    *delivery.Dispatcher
	auditor       *core.Auditor
}

func NewProcessor(
	config core.Config,
	authenticator *auth.Authenticator,
	engine *policy.Engine,
	dispatcher *delivery.Dispatcher,
	auditor *core.Auditor,
) *Processor {
	return &Processor{
		config:        config,
		authenticator: authenticator,
		engine:        engine,
		dispatcher:    dispatcher,
		auditor:       auditor,
	}
}

// Process handles one webhook delivery end to end. The returned error
// is non-nil only for unexpected failures; everything else is expressed
// through the Result status code.
func (p *Processor) Process(ctx context.Context, authorization string, body []byte) (Result, error) {
	var notification core.Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		p.auditor.Info(ctx, "rejected malformed body", map[string]any{"error": err.Error()})
		return Result{StatusCode: http.StatusBadRequest, Reason: "malformed body"}, nil
	}
	if err := notification.Validate(); err != nil {
		p.auditor.Info(ctx, "rejected invalid notification", map[string]any{"error": err.Error()})
		return Result{StatusCode: http.StatusBadRequest, Reason: err.Error()}, nil
	}

	subscription, err := p.authenticator.Authenticate(ctx, authorization)
	if err != nil {
		return p.credentialFailure(ctx, err)
	}

	if !p.config.AcceptsChannel(notification.Channel) {
		p.auditor.Info(ctx, "rejected unaccepted channel", map[string]any{
			"channel":   notification.Channel,
			"client_id": subscription.ClientID,
		})
		return Result{StatusCode: http.StatusBadRequest, Reason: "channel not accepted"}, nil
	}
	if err := p.authenticator.CheckChannel(subscription, notification.Channel); err != nil {
		p.auditor.Info(ctx, "rejected unsubscribed channel", map[string]any{
			"channel":   notification.Channel,
			"client_id": subscription.ClientID,
		})
		return Result{StatusCode: http.StatusBadRequest, Reason: "channel not subscribed"}, nil
	}

	decision := p.engine.Evaluate(ctx, notification)
	policy.Audit(ctx, p.auditor, notification, decision)
	if !decision.Accepted {
		return Result{StatusCode: http.StatusNoContent, Reason: string(decision.Reason)}, nil
	}

	if err := p.dispatcher.Dispatch(ctx, decision.Users, decision.Event); err != nil {
		p.auditor.Error(ctx, "dispatch failed", map[string]any{
			"case_url": notification.MainObject,
			"error":    err.Error(),
		})
		return Result{StatusCode: http.StatusInternalServerError}, err
	}

	return Result{StatusCode: http.StatusNoContent, Accepted: true}, nil
}

func (p *Processor) credentialFailure(ctx context.Context, err error) (Result, error) {
	rich := core.MapError(err)
	p.auditor.Info(ctx, "rejected credentials", map[string]any{
		"error":     rich.Message,
		"text_code": rich.TextCode,
	})
	switch rich.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return Result{StatusCode: http.StatusUnauthorized, Reason: rich.Message}, nil
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return Result{StatusCode: http.StatusBadRequest, Reason: rich.Message}, nil
	default:
		return Result{StatusCode: http.StatusInternalServerError}, err
	}
}
