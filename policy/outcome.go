// Package policy decides whether a webhook notification is
// notify-worthy. The pipeline is an ordered sequence of stages; each
// stage either continues with enriched state or halts with a terminal
// ignore. Ignores are expected and frequent: benign ones audit at INFO,
// upstream fetch failures at ERROR, and both still produce an accepted
// webhook response.
package policy

import "github.com/goliatone/go-zaaknotify/core"

// ReasonCode identifies why the pipeline halted. Codes are stable
// strings so the audit log can be filtered per reason.
type ReasonCode string

const (
	ReasonUnsupportedResource   ReasonCode = "unsupported_resource"
	ReasonNoAPIGroup            ReasonCode = "no_api_group"
	ReasonCaseFetchFailed       ReasonCode = "case_fetch_failed"
	ReasonCaseTypeFetchFailed   ReasonCode = "case_type_fetch_failed"
	ReasonCaseNotVisible        ReasonCode = "case_not_visible"
	ReasonRoleFetchFailed       ReasonCode = "role_fetch_failed"
	ReasonNoInitiators          ReasonCode = "no_initiators"
	ReasonNoUsers               ReasonCode = "no_users"
	ReasonInitialStatus         ReasonCode = "initial_status"
	ReasonStatusFetchFailed     ReasonCode = "status_fetch_failed"
	ReasonStatusTypeFetchFailed ReasonCode = "status_type_fetch_failed"
	ReasonStatusNotEligible     ReasonCode = "status_not_eligible"
	ReasonNoCaseTypeConfig      ReasonCode = "no_case_type_config"
	ReasonDocumentFetchFailed   ReasonCode = "document_fetch_failed"
	ReasonDocumentNotVisible    ReasonCode = "document_not_visible"
	ReasonNoDocumentTypeConfig  ReasonCode = "no_document_type_config"
	ReasonDocumentNotEnabled    ReasonCode = "document_type_disabled"
)

// Event is the policy-accepted payload handed to the dispatcher: what
// happened, on which case, for which event URL, grouped under which
// collision key for rate limiting.
type Event struct {
	Kind         core.LedgerKind
	Case         core.Case
	CaseType     core.CaseType
	EventURL     string
	CollisionKey string

	// Status fields, set when Kind is LedgerKindStatus.
	Status     core.Status
	StatusType core.StatusType

	// Document fields, set when Kind is LedgerKindDocument.
	Document core.Document
}

// Decision is the structured outcome of a pipeline run.
type Decision struct {
	Accepted bool
	Reason   ReasonCode
	Detail   string
	// Upstream carries the fetch error behind a failure reason; nil for
	// benign ignores.
	Upstream error
	Users    []core.User
	Event    Event
}

func ignored(reason ReasonCode, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}

func failed(reason ReasonCode, detail string, err error) Decision {
	return Decision{Reason: reason, Detail: detail, Upstream: err}
}

func accepted(users []core.User, event Event) Decision {
	return Decision{Accepted: true, Users: users, Event: event}
}
