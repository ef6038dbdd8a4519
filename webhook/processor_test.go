package webhook

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-zaaknotify/auth"
	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/delivery"
	"github.com/goliatone/go-zaaknotify/identity"
	"github.com/goliatone/go-zaaknotify/policy"
)

const (
	caseURL   = "https://zaken.gemeente.nl/api/v1/zaken/abc"
	statusURL = "https://zaken.gemeente.nl/api/v1/statussen/s2"
)

type stubSubscriptions struct{}

func (stubSubscriptions) GetByClientID(_ context.Context, clientID string) (core.Subscription, error) {
	if clientID != "notifier" {
		return core.Subscription{}, core.ErrNotFound
	}
	return core.Subscription{
		ID:       "sub-1",
		ClientID: "notifier",
		Secret:   "s3cret",
		Channels: []string{"zaken"},
		Active:   true,
	}, nil
}

func (stubSubscriptions) Upsert(_ context.Context, in core.Subscription) (core.Subscription, error) {
	return in, nil
}

func (stubSubscriptions) List(context.Context) ([]core.Subscription, error) { return nil, nil }

type stubGroups struct{}

func (stubGroups) Resolve(context.Context, string) (core.APIGroup, error) {
	return core.APIGroup{ID: "g1"}, nil
}

type stubCaseService struct {
	zaakErr error
}

func (s stubCaseService) Case(context.Context, string) (core.Case, error) {
	if s.zaakErr != nil {
		return core.Case{}, s.zaakErr
	}
	return core.Case{
		URL:             caseURL,
		Identification:  "ZAAK-2026-001",
		CaseTypeURL:     "zt1",
		Confidentiality: core.ConfidentialityOpenbaar,
	}, nil
}

func (stubCaseService) CaseType(context.Context, string) (core.CaseType, error) {
	return core.CaseType{Identification: "ZT-01", InternExtern: "extern"}, nil
}

func (stubCaseService) Roles(context.Context, string) ([]core.Role, error) {
	return []core.Role{{
		Capacity:  core.RoleCapacityInitiator,
		PartyType: core.PartyTypeNaturalPerson,
		Identity:  core.NaturalPerson{CitizenID: "999990123"},
	}}, nil
}

func (stubCaseService) StatusHistory(context.Context, string) ([]core.Status, error) {
	return []core.Status{
		{URL: "s1", SetAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
		{URL: statusURL, StatusTypeURL: "st2", SetAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}, nil
}

func (stubCaseService) StatusType(context.Context, string) (core.StatusType, error) {
	return core.StatusType{URL: "st2", Description: "In behandeling", Inform: true}, nil
}

func (stubCaseService) CaseDocument(context.Context, string) (core.CaseDocument, error) {
	return core.CaseDocument{}, core.ErrNotFound
}

func (stubCaseService) Document(context.Context, string) (core.Document, error) {
	return core.Document{}, core.ErrNotFound
}

type stubFactory struct {
	service core.CaseService
}

func (f stubFactory) ForGroup(core.APIGroup) core.CaseService { return f.service }

type stubDirectory struct{}

func (stubDirectory) FindByCitizenID(context.Context, string) ([]core.User, error) {
	return []core.User{{
		ID:                       "u1",
		Email:                    "jan@gemeente.nl",
		EmailVerified:            true,
		Active:                   true,
		CaseNotificationsEnabled: true,
	}}, nil
}

func (stubDirectory) FindByCompanyID(context.Context, string) ([]core.User, error) { return nil, nil }

func (stubDirectory) FindByFiscalID(context.Context, string) ([]core.User, error) { return nil, nil }

type stubCaseTypeConfigs struct{}

func (stubCaseTypeConfigs) Get(context.Context, string, string) (core.CaseTypeConfig, error) {
	return core.CaseTypeConfig{}, core.ErrNotFound
}

func (stubCaseTypeConfigs) GetStatusTypeOverride(context.Context, string, string) (core.StatusTypeOverride, error) {
	return core.StatusTypeOverride{}, core.ErrNotFound
}

type stubDocTypeConfigs struct{}

func (stubDocTypeConfigs) Get(context.Context, string, string) (core.DocumentTypeConfig, error) {
	return core.DocumentTypeConfig{}, core.ErrNotFound
}

type memoryLedger struct {
	entries []core.LedgerEntry
}

func (l *memoryLedger) Insert(_ context.Context, entry core.LedgerEntry) (core.LedgerEntry, bool, error) {
	for _, existing := range l.entries {
		if existing.UserID == entry.UserID && existing.CaseURL == entry.CaseURL && existing.EventURL == entry.EventURL {
			return existing, false, nil
		}
	}
	l.entries = append(l.entries, entry)
	return entry, true, nil
}

func (l *memoryLedger) CollisionsSince(context.Context, string, string, string, time.Time, string) (int, error) {
	return 0, nil
}

func (l *memoryLedger) MarkSent(_ context.Context, id string) error {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Sent = true
		}
	}
	return nil
}

type captureMailer struct {
	sent []core.MailMessage
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg core.MailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type nopFeed struct{}

func (nopFeed) Record(context.Context, core.ActivityEntry) error { return nil }

func newProcessor(t *testing.T, service core.CaseService, mailer *captureMailer) *Processor {
	t.Helper()
	config := core.DefaultConfig()
	auditor := core.NewAuditor(nil)
	renderer, err := delivery.NewRenderer("https://mijn.gemeente.nl")
	if err != nil {
		t.Fatalf("build renderer: %v", err)
	}
	engine := policy.NewEngine(
		config,
		stubGroups{},
		stubFactory{service: service},
		identity.New(stubDirectory{}, config.CompanyIDScheme),
		stubCaseTypeConfigs{},
		stubDocTypeConfigs{},
	)
	dispatcher := delivery.NewDispatcher(
		&memoryLedger{}, &memoryLedger{}, nopFeed{}, mailer, renderer, auditor, time.Hour,
	)
	return NewProcessor(config, auth.New(stubSubscriptions{}), engine, dispatcher, auditor)
}

func validBody() []byte {
	return []byte(`{
		"kanaal": "zaken",
		"hoofdObject": "` + caseURL + `",
		"resource": "status",
		"resourceUrl": "` + statusURL + `",
		"actie": "create",
		"aanmaakdatum": "2026-03-01T10:00:05Z"
	}`)
}

func TestProcessHappyPath(t *testing.T) {
	mailer := &captureMailer{}
	processor := newProcessor(t, stubCaseService{}, mailer)

	result, err := processor.Process(context.Background(), "notifier:s3cret", validBody())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.StatusCode != http.StatusNoContent || !result.Accepted {
		t.Fatalf("expected accepted 204, got %#v", result)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
}

func TestProcessMalformedBody(t *testing.T) {
	processor := newProcessor(t, stubCaseService{}, &captureMailer{})
	result, err := processor.Process(context.Background(), "notifier:s3cret", []byte("{not json"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", result.StatusCode)
	}
}

func TestProcessMissingFields(t *testing.T) {
	processor := newProcessor(t, stubCaseService{}, &captureMailer{})
	result, err := processor.Process(context.Background(), "notifier:s3cret", []byte(`{"kanaal": "zaken"}`))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", result.StatusCode)
	}
}

func TestProcessBadCredentials(t *testing.T) {
	processor := newProcessor(t, stubCaseService{}, &captureMailer{})
	for _, credential := range []string{"", "notifier:wrong", "stranger:s3cret", "garbage"} {
		result, err := processor.Process(context.Background(), credential, validBody())
		if err != nil {
			t.Fatalf("process %q: %v", credential, err)
		}
		if result.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", credential, result.StatusCode)
		}
	}
}

func TestProcessChannelRejected(t *testing.T) {
	processor := newProcessor(t, stubCaseService{}, &captureMailer{})
	body := []byte(`{
		"kanaal": "besluiten",
		"hoofdObject": "` + caseURL + `",
		"resource": "status",
		"resourceUrl": "` + statusURL + `"
	}`)
	result, err := processor.Process(context.Background(), "notifier:s3cret", body)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for rejected channel, got %d", result.StatusCode)
	}
}

func TestProcessUpstreamFailureStillAcknowledges(t *testing.T) {
	mailer := &captureMailer{}
	processor := newProcessor(t, stubCaseService{zaakErr: errors.New("502 from backend")}, mailer)

	result, err := processor.Process(context.Background(), "notifier:s3cret", validBody())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.StatusCode != http.StatusNoContent || result.Accepted {
		t.Fatalf("expected ignored 204, got %#v", result)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no email on upstream failure, got %d", len(mailer.sent))
	}
}

func TestProcessDispatchFailureIs500(t *testing.T) {
	mailer := &captureMailer{err: errors.New("smtp down")}
	processor := newProcessor(t, stubCaseService{}, mailer)

	result, err := processor.Process(context.Background(), "notifier:s3cret", validBody())
	if err == nil {
		t.Fatal("expected dispatch failure to propagate")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", result.StatusCode)
	}
}
