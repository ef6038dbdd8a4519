package policy

import (
	"context"

	"github.com/goliatone/go-zaaknotify/core"
)

// Audit records one pipeline outcome. Benign ignores are routine and
// log at INFO; upstream failures log at ERROR so operators can spot a
// failing backend without the sender ever seeing a 5xx.
func Audit(ctx context.Context, auditor *core.Auditor, notification core.Notification, decision Decision) {
	fields := map[string]any{
		"channel":      notification.Channel,
		"resource":     notification.Resource,
		"resource_url": notification.ResourceURL,
		"case_url":     notification.MainObject,
		"action":       notification.Action,
	}
	if decision.Accepted {
		fields["users"] = len(decision.Users)
		fields["event_url"] = decision.Event.EventURL
		fields["kind"] = string(decision.Event.Kind)
		auditor.Info(ctx, "notification accepted", fields)
		return
	}

	fields["reason"] = string(decision.Reason)
	fields["detail"] = decision.Detail
	if decision.Upstream != nil {
		fields["error"] = decision.Upstream.Error()
		auditor.Error(ctx, "notification dropped", fields)
		return
	}
	auditor.Info(ctx, "notification ignored", fields)
}
