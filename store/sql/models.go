package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-zaaknotify/core"
)

type subscriptionRecord struct {
	bun.BaseModel `bun:"table:webhook_subscriptions,alias:ws"`

	ID        string    `bun:"id,pk"`
	ClientID  string    `bun:"client_id,notnull"`
	Secret    string    `bun:"secret,notnull"`
	Channels  []string  `bun:"channels,type:jsonb,notnull"`
	Active    bool      `bun:"active,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *subscriptionRecord) toDomain() core.Subscription {
	if r == nil {
		return core.Subscription{}
	}
	return core.Subscription{
		ID:        r.ID,
		ClientID:  r.ClientID,
		Secret:    r.Secret,
		Channels:  append([]string(nil), r.Channels...),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type apiGroupRecord struct {
	bun.BaseModel `bun:"table:zgw_api_groups,alias:ag"`

	ID                string    `bun:"id,pk"`
	Name              string    `bun:"name,notnull"`
	ZakenBaseURL      string    `bun:"zaken_base_url,notnull"`
	CatalogiBaseURL   string    `bun:"catalogi_base_url,notnull"`
	DocumentenBaseURL string    `bun:"documenten_base_url,notnull"`
	ClientID          string    `bun:"client_id"`
	Secret            string    `bun:"secret"`
	Token             string    `bun:"token"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *apiGroupRecord) toDomain() core.APIGroup {
	if r == nil {
		return core.APIGroup{}
	}
	return core.APIGroup{
		ID:                r.ID,
		Name:              r.Name,
		ZakenBaseURL:      r.ZakenBaseURL,
		CatalogiBaseURL:   r.CatalogiBaseURL,
		DocumentenBaseURL: r.DocumentenBaseURL,
		ClientID:          r.ClientID,
		Secret:            r.Secret,
		Token:             r.Token,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type userRecord struct {
	bun.BaseModel `bun:"table:portal_users,alias:pu"`

	ID                       string    `bun:"id,pk"`
	Email                    string    `bun:"email,notnull"`
	EmailVerified            bool      `bun:"email_verified,notnull"`
	Active                   bool      `bun:"active,notnull"`
	CitizenID                string    `bun:"citizen_id"`
	CompanyID                string    `bun:"company_id"`
	FiscalID                 string    `bun:"fiscal_id"`
	CaseNotificationsEnabled bool      `bun:"case_notifications_enabled,notnull"`
	CreatedAt                time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt                time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *userRecord) toDomain() core.User {
	if r == nil {
		return core.User{}
	}
	return core.User{
		ID:                       r.ID,
		Email:                    r.Email,
		EmailVerified:            r.EmailVerified,
		Active:                   r.Active,
		CitizenID:                r.CitizenID,
		CompanyID:                r.CompanyID,
		FiscalID:                 r.FiscalID,
		CaseNotificationsEnabled: r.CaseNotificationsEnabled,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

type caseTypeConfigRecord struct {
	bun.BaseModel `bun:"table:case_type_configs,alias:ctc"`

	ID                  string    `bun:"id,pk"`
	Catalog             string    `bun:"catalog"`
	Identification      string    `bun:"identification,notnull"`
	NotifyStatusChanges bool      `bun:"notify_status_changes,notnull"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *caseTypeConfigRecord) toDomain() core.CaseTypeConfig {
	if r == nil {
		return core.CaseTypeConfig{}
	}
	return core.CaseTypeConfig{
		ID:                  r.ID,
		Catalog:             r.Catalog,
		Identification:      r.Identification,
		NotifyStatusChanges: r.NotifyStatusChanges,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type statusTypeOverrideRecord struct {
	bun.BaseModel `bun:"table:status_type_overrides,alias:sto"`

	ID               string `bun:"id,pk"`
	CaseTypeConfigID string `bun:"case_type_config_id,notnull"`
	StatusTypeURL    string `bun:"status_type_url,notnull"`
	Notify           bool   `bun:"notify,notnull"`
}

func (r *statusTypeOverrideRecord) toDomain() core.StatusTypeOverride {
	if r == nil {
		return core.StatusTypeOverride{}
	}
	return core.StatusTypeOverride{
		ID:               r.ID,
		CaseTypeConfigID: r.CaseTypeConfigID,
		StatusTypeURL:    r.StatusTypeURL,
		Notify:           r.Notify,
	}
}

type documentTypeConfigRecord struct {
	bun.BaseModel `bun:"table:document_type_configs,alias:dtc"`

	ID                     string    `bun:"id,pk"`
	CaseTypeIdentification string    `bun:"case_type_identification,notnull"`
	DocumentTypeURL        string    `bun:"document_type_url,notnull"`
	NotifyUploads          bool      `bun:"notify_uploads,notnull"`
	CreatedAt              time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt              time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *documentTypeConfigRecord) toDomain() core.DocumentTypeConfig {
	if r == nil {
		return core.DocumentTypeConfig{}
	}
	return core.DocumentTypeConfig{
		ID:                     r.ID,
		CaseTypeIdentification: r.CaseTypeIdentification,
		DocumentTypeURL:        r.DocumentTypeURL,
		NotifyUploads:          r.NotifyUploads,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

// The two ledger tables are identical in shape but deliberately
// separate: status and document events never dedupe against each other.

type statusLedgerRecord struct {
	bun.BaseModel `bun:"table:status_notification_ledger,alias:snl"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	CaseURL      string    `bun:"case_url,notnull"`
	EventURL     string    `bun:"event_url,notnull"`
	CollisionKey string    `bun:"collision_key,notnull"`
	IsSent       bool      `bun:"is_sent,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *statusLedgerRecord) toDomain() core.LedgerEntry {
	if r == nil {
		return core.LedgerEntry{}
	}
	return core.LedgerEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		CaseURL:      r.CaseURL,
		EventURL:     r.EventURL,
		CollisionKey: r.CollisionKey,
		Sent:         r.IsSent,
		CreatedAt:    r.CreatedAt,
	}
}

type documentLedgerRecord struct {
	bun.BaseModel `bun:"table:document_notification_ledger,alias:dnl"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	CaseURL      string    `bun:"case_url,notnull"`
	EventURL     string    `bun:"event_url,notnull"`
	CollisionKey string    `bun:"collision_key,notnull"`
	IsSent       bool      `bun:"is_sent,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *documentLedgerRecord) toDomain() core.LedgerEntry {
	if r == nil {
		return core.LedgerEntry{}
	}
	return core.LedgerEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		CaseURL:      r.CaseURL,
		EventURL:     r.EventURL,
		CollisionKey: r.CollisionKey,
		Sent:         r.IsSent,
		CreatedAt:    r.CreatedAt,
	}
}

type activityEntryRecord struct {
	bun.BaseModel `bun:"table:case_activity_entries,alias:cae"`

	ID                 string         `bun:"id,pk"`
	UserID             string         `bun:"user_id,notnull"`
	CaseURL            string         `bun:"case_url,notnull"`
	CaseIdentification string         `bun:"case_identification"`
	Channel            string         `bun:"channel,notnull"`
	Action             string         `bun:"action,notnull"`
	Title              string         `bun:"title,notnull"`
	Metadata           map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt          time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *activityEntryRecord) toDomain() core.ActivityEntry {
	if r == nil {
		return core.ActivityEntry{}
	}
	return core.ActivityEntry{
		ID:                 r.ID,
		UserID:             r.UserID,
		CaseURL:            r.CaseURL,
		CaseIdentification: r.CaseIdentification,
		Channel:            core.LedgerKind(r.Channel),
		Action:             r.Action,
		Title:              r.Title,
		Metadata:           copyAnyMap(r.Metadata),
		CreatedAt:          r.CreatedAt,
	}
}
