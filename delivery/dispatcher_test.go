package delivery

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/policy"
)

type memoryLedger struct {
	entries []core.LedgerEntry
}

func (l *memoryLedger) Insert(_ context.Context, entry core.LedgerEntry) (core.LedgerEntry, bool, error) {
	for _, existing := range l.entries {
		if existing.UserID == entry.UserID &&
			existing.CaseURL == entry.CaseURL &&
			existing.EventURL == entry.EventURL {
			return existing, false, nil
		}
	}
	l.entries = append(l.entries, entry)
	return entry, true, nil
}

func (l *memoryLedger) CollisionsSince(
	_ context.Context,
	userID string,
	caseURL string,
	collisionKey string,
	since time.Time,
	excludeID string,
) (int, error) {
	count := 0
	for _, existing := range l.entries {
		if existing.ID == excludeID {
			continue
		}
		if existing.UserID == userID &&
			existing.CaseURL == caseURL &&
			existing.CollisionKey == collisionKey &&
			existing.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (l *memoryLedger) MarkSent(_ context.Context, id string) error {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Sent = true
			return nil
		}
	}
	return core.ErrNotFound
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

type captureFeed struct {
	entries []core.ActivityEntry
}

func (f *captureFeed) Record(_ context.Context, entry core.ActivityEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type dispatcherFixture struct {
	ledger *memoryLedger
	mailer *captureMailer
	feed   *captureFeed
	disp   *Dispatcher
	now    time.Time
}

func newDispatcherFixture(t *testing.T, window time.Duration) *dispatcherFixture {
	t.Helper()
	renderer, err := NewRenderer("https://mijn.gemeente.nl")
	if err != nil {
		t.Fatalf("build renderer: %v", err)
	}
	f := &dispatcherFixture{
		ledger: &memoryLedger{},
		mailer: &captureMailer{},
		feed:   &captureFeed{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.disp = NewDispatcher(
		f.ledger,
		&memoryLedger{},
		f.feed,
		f.mailer,
		renderer,
		core.NewAuditor(nil),
		window,
	)
	f.disp.Now = func() time.Time { return f.now }
	return f
}

func eligibleUser() core.User {
	return core.User{
		ID:                       "u1",
		Email:                    "jan@gemeente.nl",
		EmailVerified:            true,
		Active:                   true,
		CaseNotificationsEnabled: true,
	}
}

func statusEvent(eventURL string) policy.Event {
	return policy.Event{
		Kind: core.LedgerKindStatus,
		Case: core.Case{
			URL:            "https://zaken.gemeente.nl/api/v1/zaken/abc",
			Identification: "ZAAK-2026-001",
			Description:    "Kapvergunning",
		},
		EventURL:     eventURL,
		CollisionKey: "https://zaken.gemeente.nl/api/v1/zaken/abc",
		StatusType:   core.StatusType{Description: "In behandeling"},
	}
}

func TestDispatchFirstEventSendsAndMarks(t *testing.T) {
	f := newDispatcherFixture(t, time.Hour)
	err := f.disp.Dispatch(context.Background(), []core.User{eligibleUser()}, statusEvent("s1"))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.mailer.sent))
	}
	if len(f.feed.entries) != 1 {
		t.Fatalf("expected one feed entry, got %d", len(f.feed.entries))
	}
	if len(f.ledger.entries) != 1 || !f.ledger.entries[0].Sent {
		t.Fatalf("expected one sent ledger row, got %#v", f.ledger.entries)
	}
	if !strings.Contains(f.mailer.sent[0].Subject, "ZAAK-2026-001") {
		t.Fatalf("expected subject to mention the case, got %q", f.mailer.sent[0].Subject)
	}
}

func TestDispatchDuplicateEventSuppressed(t *testing.T) {
	f := newDispatcherFixture(t, time.Hour)
	users := []core.User{eligibleUser()}

	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s1")); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s1")); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected duplicate to send no extra email, got %d", len(f.mailer.sent))
	}
	if len(f.ledger.entries) != 1 {
		t.Fatalf("expected single ledger row, got %d", len(f.ledger.entries))
	}
}

func TestDispatchRateLimitWindow(t *testing.T) {
	f := newDispatcherFixture(t, time.Hour)
	users := []core.User{eligibleUser()}

	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s1")); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	// Distinct event on the same case, ten minutes later: blocked.
	f.now = f.now.Add(10 * time.Minute)
	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s2")); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected over-frequent event to be blocked, got %d emails", len(f.mailer.sent))
	}
	if len(f.ledger.entries) != 2 {
		t.Fatalf("expected blocked event to keep its ledger row, got %d", len(f.ledger.entries))
	}
	if f.ledger.entries[1].Sent {
		t.Fatal("expected blocked row to remain unsent")
	}

	// Third event after the window elapses: sends again.
	f.now = f.now.Add(2 * time.Hour)
	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s3")); err != nil {
		t.Fatalf("third dispatch: %v", err)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected post-window event to send, got %d emails", len(f.mailer.sent))
	}
}

func TestDispatchUserDisabledStillFeeds(t *testing.T) {
	f := newDispatcherFixture(t, time.Hour)
	user := eligibleUser()
	user.CaseNotificationsEnabled = false

	if err := f.disp.Dispatch(context.Background(), []core.User{user}, statusEvent("s1")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("expected no email for opted-out user, got %d", len(f.mailer.sent))
	}
	if len(f.feed.entries) != 1 {
		t.Fatalf("expected feed hook to fire exactly once, got %d", len(f.feed.entries))
	}
	if len(f.ledger.entries) != 0 {
		t.Fatalf("expected no ledger work for opted-out user, got %d rows", len(f.ledger.entries))
	}
}

func TestDispatchZeroWindowDisablesRateLimit(t *testing.T) {
	f := newDispatcherFixture(t, 0)
	users := []core.User{eligibleUser()}

	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s1")); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := f.disp.Dispatch(context.Background(), users, statusEvent("s2")); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected both distinct events to send without a window, got %d", len(f.mailer.sent))
	}
}

func TestDispatchSendFailurePropagates(t *testing.T) {
	f := newDispatcherFixture(t, time.Hour)
	f.mailer.err = context.DeadlineExceeded

	err := f.disp.Dispatch(context.Background(), []core.User{eligibleUser()}, statusEvent("s1"))
	if err == nil {
		t.Fatal("expected send failure to propagate")
	}
	if len(f.ledger.entries) != 1 || f.ledger.entries[0].Sent {
		t.Fatalf("expected unsent ledger row to remain, got %#v", f.ledger.entries)
	}
}

func TestRenderDocumentTemplate(t *testing.T) {
	renderer, err := NewRenderer("https://mijn.gemeente.nl/")
	if err != nil {
		t.Fatalf("build renderer: %v", err)
	}
	event := policy.Event{
		Kind: core.LedgerKindDocument,
		Case: core.Case{
			URL:            "https://zaken.gemeente.nl/api/v1/zaken/abc",
			Identification: "ZAAK-2026-001",
		},
		Document: core.Document{Title: "Besluit.pdf"},
	}

	msg, err := renderer.Render(eligibleUser(), event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.Subject, "Nieuw document") {
		t.Fatalf("expected document subject, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Besluit.pdf") {
		t.Fatalf("expected body to mention the document, got %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "https://mijn.gemeente.nl/zaken/ZAAK-2026-001") {
		t.Fatalf("expected absolute case link, got %q", msg.Body)
	}
	if msg.To != "jan@gemeente.nl" {
		t.Fatalf("expected recipient, got %q", msg.To)
	}
}
