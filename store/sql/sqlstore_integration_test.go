package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-zaaknotify/core"
	notifymigrations "github.com/goliatone/go-zaaknotify/migrations"
	sqlstore "github.com/goliatone/go-zaaknotify/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-zaaknotify-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:zaaknotify-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	err = notifymigrations.Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, notifymigrations.DialectSQLite)
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func newFactory(t *testing.T) (*sqlstore.RepositoryFactory, func()) {
	t.Helper()
	client, cleanup := newSQLiteClient(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		cleanup()
		t.Fatalf("new repository factory: %v", err)
	}
	return factory, cleanup
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{
		"webhook_subscriptions",
		"zgw_api_groups",
		"portal_users",
		"case_type_configs",
		"status_type_overrides",
		"document_type_configs",
		"status_notification_ledger",
		"document_notification_ledger",
		"case_activity_entries",
	} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestSubscriptionStoreUpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	store := factory.SubscriptionStore()
	created, err := store.Upsert(ctx, core.Subscription{
		ClientID: "notifier",
		Secret:   "s3cret",
		Channels: []string{"zaken"},
		Active:   true,
	})
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	found, err := store.GetByClientID(ctx, "notifier")
	if err != nil {
		t.Fatalf("get by client id: %v", err)
	}
	if found.Secret != "s3cret" || !found.HasChannel("zaken") {
		t.Fatalf("unexpected subscription: %#v", found)
	}

	updated, err := store.Upsert(ctx, core.Subscription{
		ClientID: "notifier",
		Secret:   "rotated",
		Channels: []string{"zaken", "documenten"},
		Active:   true,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected upsert to keep id %s, got %s", created.ID, updated.ID)
	}
	if updated.Secret != "rotated" || len(updated.Channels) != 2 {
		t.Fatalf("unexpected updated subscription: %#v", updated)
	}

	if _, err := store.GetByClientID(ctx, "stranger"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAPIGroupStoreUpsertByName(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	store := factory.APIGroupStore()
	first, err := store.Upsert(ctx, core.APIGroup{
		Name:         "gemeente",
		ZakenBaseURL: "https://zaken.gemeente.nl/api/v1",
	})
	if err != nil {
		t.Fatalf("upsert group: %v", err)
	}

	second, err := store.Upsert(ctx, core.APIGroup{
		Name:         "gemeente",
		ZakenBaseURL: "https://zaken.gemeente.nl/api/v2",
		Token:        "token-2",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert by name to keep id")
	}

	groups, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ZakenBaseURL != "https://zaken.gemeente.nl/api/v2" {
		t.Fatalf("unexpected groups: %#v", groups)
	}
}

func TestUserDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	directory := factory.UserDirectory()
	users := []core.User{
		{ID: uuid.NewString(), Email: "jan@gemeente.nl", EmailVerified: true, Active: true, CitizenID: "999990123"},
		{ID: uuid.NewString(), Email: "bakkerij@bedrijf.nl", EmailVerified: true, Active: true, CompanyID: "12345678"},
		{ID: uuid.NewString(), Email: "fiscaal@bedrijf.nl", EmailVerified: true, Active: true, FiscalID: "823456789"},
	}
	for _, user := range users {
		if _, err := directory.Upsert(ctx, user); err != nil {
			t.Fatalf("upsert user: %v", err)
		}
	}

	byCitizen, err := directory.FindByCitizenID(ctx, "999990123")
	if err != nil {
		t.Fatalf("find by citizen id: %v", err)
	}
	if len(byCitizen) != 1 || byCitizen[0].Email != "jan@gemeente.nl" {
		t.Fatalf("unexpected citizen lookup: %#v", byCitizen)
	}

	byCompany, err := directory.FindByCompanyID(ctx, "12345678")
	if err != nil {
		t.Fatalf("find by company id: %v", err)
	}
	if len(byCompany) != 1 || byCompany[0].Email != "bakkerij@bedrijf.nl" {
		t.Fatalf("unexpected company lookup: %#v", byCompany)
	}

	byFiscal, err := directory.FindByFiscalID(ctx, "823456789")
	if err != nil {
		t.Fatalf("find by fiscal id: %v", err)
	}
	if len(byFiscal) != 1 || byFiscal[0].Email != "fiscaal@bedrijf.nl" {
		t.Fatalf("unexpected fiscal lookup: %#v", byFiscal)
	}

	if none, err := directory.FindByCitizenID(ctx, ""); err != nil || len(none) != 0 {
		t.Fatalf("expected empty identifier to match nothing, got %v %v", none, err)
	}
}

func TestCaseTypeConfigCatalogAbsentLookup(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	store := factory.CaseTypeConfigStore()
	config, err := store.Upsert(ctx, core.CaseTypeConfig{
		Catalog:             "https://catalogi.gemeente.nl/catalogussen/c1",
		Identification:      "ZT-01",
		NotifyStatusChanges: true,
	})
	if err != nil {
		t.Fatalf("upsert config: %v", err)
	}

	exact, err := store.Get(ctx, "https://catalogi.gemeente.nl/catalogussen/c1", "ZT-01")
	if err != nil {
		t.Fatalf("exact lookup: %v", err)
	}
	if exact.ID != config.ID || !exact.NotifyStatusChanges {
		t.Fatalf("unexpected exact lookup: %#v", exact)
	}

	// A case type fetched without a catalog still resolves by identification.
	relaxed, err := store.Get(ctx, "", "ZT-01")
	if err != nil {
		t.Fatalf("catalog-absent lookup: %v", err)
	}
	if relaxed.ID != config.ID {
		t.Fatalf("expected catalog-absent lookup to find the same row")
	}

	if _, err := store.Get(ctx, "https://elders.nl/catalogussen/c9", "ZT-01"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for mismatched catalog, got %v", err)
	}

	override, err := store.UpsertStatusTypeOverride(ctx, core.StatusTypeOverride{
		CaseTypeConfigID: config.ID,
		StatusTypeURL:    "https://catalogi.gemeente.nl/statustypen/st1",
		Notify:           false,
	})
	if err != nil {
		t.Fatalf("upsert override: %v", err)
	}
	fetched, err := store.GetStatusTypeOverride(ctx, config.ID, "https://catalogi.gemeente.nl/statustypen/st1")
	if err != nil {
		t.Fatalf("get override: %v", err)
	}
	if fetched.ID != override.ID || fetched.Notify {
		t.Fatalf("unexpected override: %#v", fetched)
	}
	if _, err := store.GetStatusTypeOverride(ctx, config.ID, "https://catalogi.gemeente.nl/statustypen/st9"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for unknown status type, got %v", err)
	}
}

func TestDocumentTypeConfigLookup(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	store := factory.DocumentTypeConfigStore()
	if _, err := store.Upsert(ctx, core.DocumentTypeConfig{
		CaseTypeIdentification: "ZT-01",
		DocumentTypeURL:        "https://catalogi.gemeente.nl/informatieobjecttypen/d1",
		NotifyUploads:          true,
	}); err != nil {
		t.Fatalf("upsert document config: %v", err)
	}

	config, err := store.Get(ctx, "ZT-01", "https://catalogi.gemeente.nl/informatieobjecttypen/d1")
	if err != nil {
		t.Fatalf("get document config: %v", err)
	}
	if !config.NotifyUploads {
		t.Fatalf("expected uploads enabled")
	}

	if _, err := store.Get(ctx, "ZT-02", "https://catalogi.gemeente.nl/informatieobjecttypen/d1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for other case type, got %v", err)
	}
}

func TestStatusLedgerInsertDetectsDuplicate(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	ledger := factory.StatusLedgerStore()
	entry := core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       "u1",
		CaseURL:      "https://zaken.gemeente.nl/zaken/z1",
		EventURL:     "https://zaken.gemeente.nl/statussen/s1",
		CollisionKey: "https://zaken.gemeente.nl/zaken/z1",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	first, created, err := ledger.Insert(ctx, entry)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !created || first.ID != entry.ID {
		t.Fatalf("expected fresh insert, got created=%v id=%s", created, first.ID)
	}

	redelivered := entry
	redelivered.ID = uuid.NewString()
	redelivered.CreatedAt = entry.CreatedAt.Add(time.Minute)
	second, created, err := ledger.Insert(ctx, redelivered)
	if err != nil {
		t.Fatalf("redelivered insert: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate detection on redelivery")
	}
	if second.ID != entry.ID {
		t.Fatalf("expected the original row back, got %s", second.ID)
	}
}

func TestStatusLedgerCollisionWindow(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	ledger := factory.StatusLedgerStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	caseURL := "https://zaken.gemeente.nl/zaken/z1"

	prior := core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       "u1",
		CaseURL:      caseURL,
		EventURL:     "https://zaken.gemeente.nl/statussen/s1",
		CollisionKey: caseURL,
		CreatedAt:    base,
	}
	if _, _, err := ledger.Insert(ctx, prior); err != nil {
		t.Fatalf("insert prior: %v", err)
	}

	next := core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       "u1",
		CaseURL:      caseURL,
		EventURL:     "https://zaken.gemeente.nl/statussen/s2",
		CollisionKey: caseURL,
		CreatedAt:    base.Add(10 * time.Minute),
	}
	if _, _, err := ledger.Insert(ctx, next); err != nil {
		t.Fatalf("insert next: %v", err)
	}

	count, err := ledger.CollisionsSince(ctx, "u1", caseURL, caseURL, next.CreatedAt.Add(-time.Hour), next.ID)
	if err != nil {
		t.Fatalf("collisions since: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one collision inside the window, got %d", count)
	}

	count, err = ledger.CollisionsSince(ctx, "u1", caseURL, caseURL, next.CreatedAt.Add(-time.Minute), next.ID)
	if err != nil {
		t.Fatalf("collisions since narrow window: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no collisions outside the window, got %d", count)
	}

	count, err = ledger.CollisionsSince(ctx, "u2", caseURL, caseURL, next.CreatedAt.Add(-time.Hour), next.ID)
	if err != nil {
		t.Fatalf("collisions since other user: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected per-user isolation, got %d", count)
	}
}

func TestStatusLedgerMarkSent(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	ledger := factory.StatusLedgerStore()
	entry := core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       "u1",
		CaseURL:      "https://zaken.gemeente.nl/zaken/z1",
		EventURL:     "https://zaken.gemeente.nl/statussen/s1",
		CollisionKey: "https://zaken.gemeente.nl/zaken/z1",
		CreatedAt:    time.Now().UTC(),
	}
	inserted, _, err := ledger.Insert(ctx, entry)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted.Sent {
		t.Fatalf("expected fresh entry unsent")
	}

	if err := ledger.MarkSent(ctx, inserted.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	again, created, err := ledger.Insert(ctx, entry)
	if err != nil || created {
		t.Fatalf("expected duplicate re-read, got created=%v err=%v", created, err)
	}
	if !again.Sent {
		t.Fatalf("expected sent flag persisted")
	}

	if err := ledger.MarkSent(ctx, uuid.NewString()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for unknown entry, got %v", err)
	}
}

func TestDocumentLedgerIndependentOfStatusLedger(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	entry := core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       "u1",
		CaseURL:      "https://zaken.gemeente.nl/zaken/z1",
		EventURL:     "https://zaken.gemeente.nl/zaakinformatieobjecten/zio1",
		CollisionKey: "https://zaken.gemeente.nl/zaken/z1",
		CreatedAt:    time.Now().UTC(),
	}
	if _, created, err := factory.StatusLedgerStore().Insert(ctx, core.LedgerEntry{
		ID:           uuid.NewString(),
		UserID:       entry.UserID,
		CaseURL:      entry.CaseURL,
		EventURL:     entry.EventURL,
		CollisionKey: entry.CollisionKey,
		CreatedAt:    entry.CreatedAt,
	}); err != nil || !created {
		t.Fatalf("status insert: created=%v err=%v", created, err)
	}

	// The same (user, case, event) triple is fresh in the document ledger.
	_, created, err := factory.DocumentLedgerStore().Insert(ctx, entry)
	if err != nil {
		t.Fatalf("document insert: %v", err)
	}
	if !created {
		t.Fatalf("expected document ledger not to collide with status ledger")
	}
}

func TestActivityStorePagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	factory, cleanup := newFactory(t)
	defer cleanup()

	store := factory.ActivityStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Record(ctx, core.ActivityEntry{
			UserID:             "u1",
			CaseURL:            "https://zaken.gemeente.nl/zaken/z1",
			CaseIdentification: "ZAAK-2026-001",
			Channel:            core.LedgerKindStatus,
			Action:             "status_changed",
			Title:              fmt.Sprintf("Statuswijziging %d", i),
			Metadata:           map[string]any{"sequence": i},
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record entry %d: %v", i, err)
		}
	}
	if err := store.Record(ctx, core.ActivityEntry{
		UserID:  "u2",
		CaseURL: "https://zaken.gemeente.nl/zaken/z2",
		Channel: core.LedgerKindDocument,
		Action:  "document_added",
		Title:   "Nieuw document",
	}); err != nil {
		t.Fatalf("record other user: %v", err)
	}

	page, total, err := store.ListByUser(ctx, "u1", 2, 0)
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("expected total 3 page 2, got total=%d len=%d", total, len(page))
	}
	if page[0].Title != "Statuswijziging 2" {
		t.Fatalf("expected newest entry first, got %q", page[0].Title)
	}

	rest, _, err := store.ListByUser(ctx, "u1", 2, 2)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 1 || rest[0].Title != "Statuswijziging 0" {
		t.Fatalf("unexpected second page: %#v", rest)
	}
}
