package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound            = errors.New("core: not found")
	ErrInvalidRoleIdentity = errors.New("core: invalid role identity")
)

// Notification is the ephemeral webhook body delivered by a ZGW
// notificaties service.
type Notification struct {
	Channel     string            `json:"kanaal"`
	MainObject  string            `json:"hoofdObject"`
	Resource    string            `json:"resource"`
	ResourceURL string            `json:"resourceUrl"`
	Action      string            `json:"actie"`
	CreatedAt   time.Time         `json:"aanmaakdatum"`
	Attributes  map[string]string `json:"kenmerken"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.Channel) == "" {
		return errors.New("core: notification channel is required")
	}
	if strings.TrimSpace(n.MainObject) == "" {
		return errors.New("core: notification main object is required")
	}
	if strings.TrimSpace(n.Resource) == "" {
		return errors.New("core: notification resource is required")
	}
	if strings.TrimSpace(n.ResourceURL) == "" {
		return errors.New("core: notification resource url is required")
	}
	return nil
}

const (
	ResourceStatus       = "status"
	ResourceCaseDocument = "zaakinformatieobject"
)

// Subscription holds the webhook credentials one notification sender was
// registered with, plus the channels it may deliver on.
type Subscription struct {
	ID        string
	ClientID  string
	Secret    string
	Channels  []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Subscription) HasChannel(channel string) bool {
	channel = strings.TrimSpace(strings.ToLower(channel))
	for _, candidate := range s.Channels {
		if strings.TrimSpace(strings.ToLower(candidate)) == channel {
			return true
		}
	}
	return false
}

// APIGroup describes one configured ZGW backend: the base URLs of its
// zaken, catalogi, and documenten services. Multiple groups may coexist.
type APIGroup struct {
	ID                string
	Name              string
	ZakenBaseURL      string
	CatalogiBaseURL   string
	DocumentenBaseURL string
	ClientID          string
	Secret            string
	Token             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Confidentiality is the ZGW vertrouwelijkheidaanduiding ladder. Comparisons
/// are ordinal: a value is visible when its rank does not exceed the
// configured maximum.
type Confidentiality string

const (
	ConfidentialityOpenbaar          Confidentiality = "openbaar"
	ConfidentialityBeperktOpenbaar   Confidentiality = "beperkt_openbaar"
	ConfidentialityIntern            Confidentiality = "intern"
	ConfidentialityZaakvertrouwelijk Confidentiality = "zaakvertrouwelijk"
	ConfidentialityVertrouwelijk     Confidentiality = "vertrouwelijk"
	ConfidentialityConfidentieel     Confidentiality = "confidentieel"
	ConfidentialityGeheim            Confidentiality = "geheim"
	ConfidentialityZeerGeheim        Confidentiality = "zeer_geheim"
)

var confidentialityRanks = map[Confidentiality]int{
	ConfidentialityOpenbaar:          0,
	ConfidentialityBeperktOpenbaar:   1,
	ConfidentialityIntern:            2,
	ConfidentialityZaakvertrouwelijk: 3,
	ConfidentialityVertrouwelijk:     4,
	ConfidentialityConfidentieel:     5,
	ConfidentialityGeheim:            6,
	ConfidentialityZeerGeheim:        7,
}

func (c Confidentiality) Known() bool {
	_, ok := confidentialityRanks[normalizeConfidentiality(c)]
	return ok
}

// Within reports whether c is at most max. Unknown values are treated as
// most restrictive and never pass.
func (c Confidentiality) Within(max Confidentiality) bool {
	rank, ok := confidentialityRanks[normalizeConfidentiality(c)]
	if !ok {
		return false
	}
	maxRank, ok := confidentialityRanks[normalizeConfidentiality(max)]
	if !ok {
		return false
	}
	return rank <= maxRank
}

func normalizeConfidentiality(c Confidentiality) Confidentiality {
	return Confidentiality(strings.TrimSpace(strings.ToLower(string(c))))
}

// Case is a zaak fetched from a zaken service.
type Case struct {
	URL             string          `json:"url"`
	Identification  string          `json:"identificatie"`
	Description     string          `json:"omschrijving"`
	CaseTypeURL     string          `json:"zaaktype"`
	StatusURL       string          `json:"status"`
	Confidentiality Confidentiality `json:"vertrouwelijkheidaanduiding"`
	StartDate       string          `json:"startdatum"`
}

// CaseType is a zaaktype fetched from a catalogi service. Catalog plus
// identification is the stable lookup key across backends.
type CaseType struct {
	URL             string          `json:"url"`
	Identification  string          `json:"identificatie"`
	Description     string          `json:"omschrijving"`
	Catalog         string          `json:"catalogus"`
	InternExtern    string          `json:"indicatieInternOfExtern"`
	Confidentiality Confidentiality `json:"vertrouwelijkheidaanduiding"`
}

func (t CaseType) IsExternal() bool {
	return strings.TrimSpace(strings.ToLower(t.InternExtern)) == "extern"
}

// Status is one entry of a case's status history.
type Status struct {
	URL           string    `json:"url"`
	CaseURL       string    `json:"zaak"`
	StatusTypeURL string    `json:"statustype"`
	SetAt         time.Time `json:"datumStatusGezet"`
}

// StatusType carries the catalog-level inform flag ("informeren").
type StatusType struct {
	URL            string `json:"url"`
	Description    string `json:"omschrijving"`
	SequenceNumber int    `json:"volgnummer"`
	Inform         bool   `json:"informeren"`
}

const (
	PartyTypeNaturalPerson    = "natuurlijk_persoon"
	PartyTypeNonNaturalPerson = "niet_natuurlijk_persoon"

	RoleCapacityInitiator   = "initiator"
	RoleCapacityCoInitiator = "mede_initiator"
)

// RoleIdentity is the tagged union behind a role's identification payload.
// The shape depends on the party type: natural persons carry a citizen
// service number, non-natural persons a company and/or fiscal number.
type RoleIdentity interface {
	isRoleIdentity()
}

type NaturalPerson struct {
	CitizenID string
}

func (NaturalPerson) isRoleIdentity() {}

type NonNaturalPerson struct {
	CompanyID string
	FiscalID  string
}

func (NonNaturalPerson) isRoleIdentity() {}

// OtherParty marks party types this pipeline never resolves (vestiging,
// organisatorische eenheid, medewerker).
type OtherParty struct{}

func (OtherParty) isRoleIdentity() {}

// Role is a party attached to a case in some capacity.
type Role struct {
	URL       string
	CaseURL   string
	PartyType string
	Capacity  string
	Identity  RoleIdentity
}

func (r Role) IsInitiator() bool {
	capacity := strings.TrimSpace(strings.ToLower(r.Capacity))
	return capacity == RoleCapacityInitiator || capacity == RoleCapacityCoInitiator
}

// CaseDocument is the zaakinformatieobject link between a case and a
// document.
type CaseDocument struct {
	URL         string `json:"url"`
	CaseURL     string `json:"zaak"`
	DocumentURL string `json:"informatieobject"`
}

const DocumentStatusFinal = "definitief"

// Document is an enkelvoudiginformatieobject from a documenten service.
type Document struct {
	URL             string          `json:"url"`
	Title           string          `json:"titel"`
	Status          string          `json:"status"`
	Confidentiality Confidentiality `json:"vertrouwelijkheidaanduiding"`
	DocumentTypeURL string          `json:"informatieobjecttype"`
	CreationDate    string          `json:"creatiedatum"`
}

func (d Document) IsFinal() bool {
	return strings.TrimSpace(strings.ToLower(d.Status)) == DocumentStatusFinal
}

// placeholderEmailSuffix marks accounts provisioned without a real address;
// those users are never mailed.
const placeholderEmailSuffix = "@example.org"

// User is a portal user directory row.
type User struct {
	ID                       string
	Email                    string
	EmailVerified            bool
	Active                   bool
	CitizenID                string
	CompanyID                string
	FiscalID                 string
	CaseNotificationsEnabled bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// HasUsableEmail reports whether the user can actually be mailed: a real,
// verified address rather than a provisioning placeholder.
func (u User) HasUsableEmail() bool {
	email := strings.TrimSpace(strings.ToLower(u.Email))
	if email == "" || !strings.Contains(email, "@") {
		return false
	}
	if strings.HasSuffix(email, placeholderEmailSuffix) {
		return false
	}
	return u.EmailVerified
}

// CaseTypeConfig is the local override-mode eligibility source for status
// notifications, keyed by catalog + identification.
type CaseTypeConfig struct {
	ID                  string
	Catalog             string
	Identification      string
	NotifyStatusChanges bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StatusTypeOverride can force notification off for one status type even
// when its case type is enabled as a whole.
type StatusTypeOverride struct {
	ID               string
	CaseTypeConfigID string
	StatusTypeURL    string
	Notify           bool
}

// DocumentTypeConfig enables upload notifications per (case type, document
// type) pair.
type DocumentTypeConfig struct {
	ID                     string
	CaseTypeIdentification string
	DocumentTypeURL        string
	NotifyUploads          bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// LedgerKind selects which per-resource ledger table an entry lives in.
type LedgerKind string

const (
	LedgerKindStatus   LedgerKind = "status"
	LedgerKindDocument LedgerKind = "document"
)

// LedgerEntry is one row of the dedup/rate-limit ledger. At most one row
// can ever exist per (user, case, event) triple; the backing store's
// uniqueness constraint enforces that, not application logic.
type LedgerEntry struct {
	ID           string
	UserID       string
	CaseURL      string
	EventURL     string
	CollisionKey string
	Sent         bool
	CreatedAt    time.Time
}

// ActivityEntry is one in-app feed item. Feed entries are recorded for
// every policy-accepted event, independent of email delivery.
type ActivityEntry struct {
	ID                 string
	UserID             string
	CaseURL            string
	CaseIdentification string
	Channel            LedgerKind
	Action             string
	Title              string
	Metadata           map[string]any
	CreatedAt          time.Time
}

// MailMessage is a rendered notification mail ready for transport.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}
