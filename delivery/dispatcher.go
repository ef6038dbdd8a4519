package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/policy"
)

// Dispatcher runs the per-user dedup/rate-limit gate and delivers. The
// ledger's unique constraint is the only thing preventing a double send
// when the same webhook is redelivered concurrently; the dispatcher
// never pre-checks, it inserts and inspects the created flag.
type Dispatcher struct {
	statusLedger   core.NotificationLedger
	documentLedger core.NotificationLedger
	feed           core.FeedSink
	mailer         core.Mailer
	renderer       *Renderer
	auditor        *core.Auditor
	window         time.Duration

	// Now is swappable for fixed-clock tests.
	Now func() time.Time
}

func NewDispatcher(
	statusLedger core.NotificationLedger,
	documentLedger core.NotificationLedger,
	feed core.FeedSink,
	mailer core.Mailer,
	renderer *Renderer,
	auditor *core.Auditor,
	window time.Duration,
) *Dispatcher {
	return &Dispatcher{
		statusLedger:   statusLedger,
		documentLedger: documentLedger,
		feed:           feed,
		mailer:         mailer,
		renderer:       renderer,
		auditor:        auditor,
		window:         window,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch processes each user sequentially. Suppressed deliveries are
// terminal per user and audited; unexpected failures propagate so the
// webhook boundary answers 5xx and the sender retries.
func (d *Dispatcher) Dispatch(ctx context.Context, users []core.User, event policy.Event) error {
	for _, user := range users {
		if err := d.dispatchUser(ctx, user, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatchUser(ctx context.Context, user core.User, event policy.Event) error {
	fields := map[string]any{
		"user_id":   user.ID,
		"case_url":  event.Case.URL,
		"event_url": event.EventURL,
		"kind":      string(event.Kind),
	}

	// The feed reflects the underlying event even when email delivery
	// is suppressed. Failures here are logged, never fatal.
	d.recordFeed(ctx, user, event, fields)

	if !user.CaseNotificationsEnabled || !user.HasUsableEmail() {
		d.auditor.Info(ctx, "ignored user-disabled delivery", fields)
		return nil
	}

	ledger, err := d.ledgerFor(event.Kind)
	if err != nil {
		return err
	}

	entry, created, err := ledger.Insert(ctx, core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		CaseURL:      event.Case.URL,
		EventURL:     event.EventURL,
		CollisionKey: event.CollisionKey,
		CreatedAt:    d.Now(),
	})
	if err != nil {
		return fmt.Errorf("delivery: ledger insert failed: %w", err)
	}
	if !created {
		d.auditor.Info(ctx, "ignored duplicate delivery", fields)
		return nil
	}

	if d.window > 0 {
		since := entry.CreatedAt.Add(-d.window)
		collisions, err := ledger.CollisionsSince(ctx, user.ID, event.Case.URL, event.CollisionKey, since, entry.ID)
		if err != nil {
			return fmt.Errorf("delivery: collision scan failed: %w", err)
		}
		if collisions > 0 {
			// The row stays is_sent=false forever; it still blocks the
			// exact same event from ever sending later.
			d.auditor.Info(ctx, "blocked over-frequent delivery", fields)
			return nil
		}
	}

	msg, err := d.renderer.Render(user, event)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("delivery: send mail to user %s: %w", user.ID, err)
	}
	if err := ledger.MarkSent(ctx, entry.ID); err != nil {
		return fmt.Errorf("delivery: mark ledger entry sent: %w", err)
	}

	d.auditor.Info(ctx, "notification delivered", fields)
	return nil
}

func (d *Dispatcher) ledgerFor(kind core.LedgerKind) (core.NotificationLedger, error) {
	switch kind {
	case core.LedgerKindStatus:
		return d.statusLedger, nil
	case core.LedgerKindDocument:
		return d.documentLedger, nil
	default:
		return nil, fmt.Errorf("delivery: no ledger for event kind %q", kind)
	}
}

func (d *Dispatcher) recordFeed(ctx context.Context, user core.User, event policy.Event, fields map[string]any) {
	if d.feed == nil {
		return
	}
	title := "Update bij aanvraag " + event.Case.Identification
	action := "status_changed"
	metadata := map[string]any{
		"event_url": event.EventURL,
	}
	if event.Kind == core.LedgerKindDocument {
		title = "Nieuw document bij aanvraag " + event.Case.Identification
		action = "document_added"
		metadata["document_title"] = event.Document.Title
	} else if event.StatusType.Description != "" {
		metadata["status"] = event.StatusType.Description
	}

	err := d.feed.Record(ctx, core.ActivityEntry{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		CaseURL:            event.Case.URL,
		CaseIdentification: event.Case.Identification,
		Channel:            event.Kind,
		Action:             action,
		Title:              title,
		Metadata:           metadata,
		CreatedAt:          d.Now(),
	})
	if err != nil {
		d.auditor.Warn(ctx, "feed hook failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}
}
