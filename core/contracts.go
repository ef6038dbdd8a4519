package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// SubscriptionStore resolves webhook credentials to registered senders.
type SubscriptionStore interface {
	GetByClientID(ctx context.Context, clientID string) (Subscription, error)
	Upsert(ctx context.Context, in Subscription) (Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
}

// APIGroupStore lists the configured ZGW backends.
type APIGroupStore interface {
	List(ctx context.Context) ([]APIGroup, error)
	Upsert(ctx context.Context, in APIGroup) (APIGroup, error)
}

// UserDirectory looks portal users up by the identifiers roles carry.
// Implementations return every matching row; eligibility filtering
// (active, usable email) is the identity resolver's concern.
type UserDirectory interface {
	FindByCitizenID(ctx context.Context, citizenID string) ([]User, error)
	FindByCompanyID(ctx context.Context, companyID string) ([]User, error)
	FindByFiscalID(ctx context.Context, fiscalID string) ([]User, error)
}

// CaseTypeConfigStore resolves the local status-eligibility configuration.
// An empty catalog selects the catalog-absent lookup path.
type CaseTypeConfigStore interface {
	Get(ctx context.Context, catalog string, identification string) (CaseTypeConfig, error)
	GetStatusTypeOverride(ctx context.Context, configID string, statusTypeURL string) (StatusTypeOverride, error)
}

// DocumentTypeConfigStore resolves per-(case type, document type) upload
// notification configuration.
type DocumentTypeConfigStore interface {
	Get(ctx context.Context, caseTypeIdentification string, documentTypeURL string) (DocumentTypeConfig, error)
}

// NotificationLedger is the dedup/rate-limit ledger for one resource kind.
// Insert must be atomic insert-or-detect-conflict: the uniqueness
// constraint on (user, case, event) is the only mechanism preventing a
// double send when the same webhook is redelivered concurrently.
type NotificationLedger interface {
	Insert(ctx context.Context, entry LedgerEntry) (LedgerEntry, bool, error)
	CollisionsSince(
		ctx context.Context,
		userID string,
		caseURL string,
		collisionKey string,
		since time.Time,
		excludeID string,
	) (int, error)
	MarkSent(ctx context.Context, id string) error
}

// FeedSink records in-app feed entries. Calls are best effort: the
// dispatcher logs failures and moves on.
type FeedSink interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// FeedReader pages a user's feed, newest first.
type FeedReader interface {
	ListByUser(ctx context.Context, userID string, limit int, offset int) ([]ActivityEntry, int, error)
}

// Mailer sends a rendered notification mail.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// CaseService reads case, catalog, role, status, and document resources
// from one resolved API group. All calls are synchronous and bounded by
// the underlying HTTP client's timeout; failures surface as errors the
// policy engine converts to terminal ignore outcomes.
type CaseService interface {
	Case(ctx context.Context, url string) (Case, error)
	CaseType(ctx context.Context, url string) (CaseType, error)
	Roles(ctx context.Context, caseURL string) ([]Role, error)
	StatusHistory(ctx context.Context, caseURL string) ([]Status, error)
	StatusType(ctx context.Context, url string) (StatusType, error)
	CaseDocument(ctx context.Context, url string) (CaseDocument, error)
	Document(ctx context.Context, url string) (Document, error)
}

// ClientFactory builds a CaseService bound to one API group's base URLs
// and token.
type ClientFactory interface {
	ForGroup(group APIGroup) CaseService
}
