package policy

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-zaaknotify/core"
)

// statusEvent applies the status-resource rules. The collision key is
// the case URL rather than the status URL: repeated status changes on
// one case must collide with each other for rate limiting.
func (e *Engine) statusEvent(
	ctx context.Context,
	client core.CaseService,
	notification core.Notification,
	zaak core.Case,
	caseType core.CaseType,
	history []core.Status,
) (Event, Decision, bool) {
	status := findStatus(history, notification.ResourceURL)
	if status.URL == "" {
		var err error
		status, err = fetchStatusFromHistory(ctx, client, notification.ResourceURL, zaak.URL)
		if err != nil {
			return Event{}, failed(ReasonStatusFetchFailed, "status lookup failed", err), true
		}
	}

	statusType, err := client.StatusType(ctx, status.StatusTypeURL)
	if err != nil {
		return Event{}, failed(ReasonStatusTypeFetchFailed, "status type fetch failed", err), true
	}

	if decision, halted := e.statusEligibility(ctx, caseType, statusType); halted {
		return Event{}, decision, true
	}

	return Event{
		Kind:         core.LedgerKindStatus,
		Case:         zaak,
		CaseType:     caseType,
		EventURL:     status.URL,
		CollisionKey: zaak.URL,
		Status:       status,
		StatusType:   statusType,
	}, Decision{}, false
}

// statusEligibility applies one of two modes. Strict mode trusts the
// catalog's informeren flag. Override mode consults local per-case-type
// configuration plus an optional per-status-type override.
func (e *Engine) statusEligibility(
	ctx context.Context,
	caseType core.CaseType,
	statusType core.StatusType,
) (Decision, bool) {
	if e.config.StatusEligibility == core.StatusEligibilityInform {
		if !statusType.Inform {
			return ignored(ReasonStatusNotEligible, "status type is not marked informeren"), true
		}
		return Decision{}, false
	}

	config, err := e.caseTypes.Get(ctx, caseType.Catalog, caseType.Identification)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ignored(ReasonNoCaseTypeConfig, "no case type configuration for "+caseType.Identification), true
		}
		return failed(ReasonNoCaseTypeConfig, "case type configuration lookup failed", err), true
	}
	if !config.NotifyStatusChanges {
		return ignored(ReasonStatusNotEligible, "case type "+caseType.Identification+" has status notifications disabled"), true
	}

	override, err := e.caseTypes.GetStatusTypeOverride(ctx, config.ID, statusType.URL)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Decision{}, false
		}
		return failed(ReasonStatusNotEligible, "status type override lookup failed", err), true
	}
	if !override.Notify {
		return ignored(ReasonStatusNotEligible, "status type "+statusType.URL+" is overridden off"), true
	}
	return Decision{}, false
}

func findStatus(history []core.Status, statusURL string) core.Status {
	statusURL = strings.TrimSpace(statusURL)
	for _, status := range history {
		if status.URL == statusURL {
			return status
		}
	}
	return core.Status{}
}

// fetchStatusFromHistory re-reads the history when the notified status
// was not in the first fetch (it can land between the two reads).
func fetchStatusFromHistory(
	ctx context.Context,
	client core.CaseService,
	statusURL string,
	caseURL string,
) (core.Status, error) {
	history, err := client.StatusHistory(ctx, caseURL)
	if err != nil {
		return core.Status{}, err
	}
	status := findStatus(history, statusURL)
	if status.URL == "" {
		return core.Status{}, core.ErrNotFound
	}
	return status, nil
}
