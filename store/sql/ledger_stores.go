package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-zaaknotify/core"
)

// StatusLedgerStore backs the status notification ledger. Insert relies
// on the UNIQUE(user_id, case_url, event_url) constraint: on conflict it
// re-reads the existing row and reports created=false, which is what
// keeps concurrent redeliveries of the same webhook at most-once.
type StatusLedgerStore struct {
	db *bun.DB
}

func NewStatusLedgerStore(db *bun.DB) (*StatusLedgerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &StatusLedgerStore{db: db}, nil
}

func (s *StatusLedgerStore) Insert(ctx context.Context, entry core.LedgerEntry) (core.LedgerEntry, bool, error) {
	if s == nil || s.db == nil {
		return core.LedgerEntry{}, false, fmt.Errorf("sqlstore: status ledger is not configured")
	}
	record := &statusLedgerRecord{
		ID:           entry.ID,
		UserID:       entry.UserID,
		CaseURL:      entry.CaseURL,
		EventURL:     entry.EventURL,
		CollisionKey: entry.CollisionKey,
		IsSent:       false,
		CreatedAt:    entry.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if !isUniqueConstraintError(err) {
			return core.LedgerEntry{}, false, err
		}
		existing := &statusLedgerRecord{}
		selectErr := s.db.NewSelect().
			Model(existing).
			Where("?TableAlias.user_id = ?", entry.UserID).
			Where("?TableAlias.case_url = ?", entry.CaseURL).
			Where("?TableAlias.event_url = ?", entry.EventURL).
			Limit(1).
			Scan(ctx)
		if selectErr != nil {
			return core.LedgerEntry{}, false, selectErr
		}
		return existing.toDomain(), false, nil
	}
	return record.toDomain(), true, nil
}

func (s *StatusLedgerStore) CollisionsSince(
	ctx context.Context,
	userID string,
	caseURL string,
	collisionKey string,
	since time.Time,
	excludeID string,
) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: status ledger is not configured")
	}
	count, err := s.db.NewSelect().
		Model((*statusLedgerRecord)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.case_url = ?", caseURL).
		Where("?TableAlias.collision_key = ?", collisionKey).
		Where("?TableAlias.created_at > ?", since).
		Where("?TableAlias.id != ?", excludeID).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *StatusLedgerStore) MarkSent(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: status ledger is not configured")
	}
	result, err := s.db.NewUpdate().
		Model((*statusLedgerRecord)(nil)).
		Set("is_sent = ?", true).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRowUpdated(result, id)
}

var _ core.NotificationLedger = (*StatusLedgerStore)(nil)

// DocumentLedgerStore is the document counterpart. The table is separate
// so document uploads never collide with status changes on the same case.
type DocumentLedgerStore struct {
	db *bun.DB
}

func NewDocumentLedgerStore(db *bun.DB) (*DocumentLedgerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &DocumentLedgerStore{db: db}, nil
}

func (s *DocumentLedgerStore) Insert(ctx context.Context, entry core.LedgerEntry) (core.LedgerEntry, bool, error) {
	if s == nil || s.db == nil {
		return core.LedgerEntry{}, false, fmt.Errorf("sqlstore: document ledger is not configured")
	}
	record := &documentLedgerRecord{
		ID:           entry.ID,
		UserID:       entry.UserID,
		CaseURL:      entry.CaseURL,
		EventURL:     entry.EventURL,
		CollisionKey: entry.CollisionKey,
		IsSent:       false,
		CreatedAt:    entry.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if !isUniqueConstraintError(err) {
			return core.LedgerEntry{}, false, err
		}
		existing := &documentLedgerRecord{}
		selectErr := s.db.NewSelect().
			Model(existing).
			Where("?TableAlias.user_id = ?", entry.UserID).
			Where("?TableAlias.case_url = ?", entry.CaseURL).
			Where("?TableAlias.event_url = ?", entry.EventURL).
			Limit(1).
			Scan(ctx)
		if selectErr != nil {
			return core.LedgerEntry{}, false, selectErr
		}
		return existing.toDomain(), false, nil
	}
	return record.toDomain(), true, nil
}

func (s *DocumentLedgerStore) CollisionsSince(
	ctx context.Context,
	userID string,
	caseURL string,
	collisionKey string,
	since time.Time,
	excludeID string,
) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: document ledger is not configured")
	}
	count, err := s.db.NewSelect().
		Model((*documentLedgerRecord)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.case_url = ?", caseURL).
		Where("?TableAlias.collision_key = ?", collisionKey).
		Where("?TableAlias.created_at > ?", since).
		Where("?TableAlias.id != ?", excludeID).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *DocumentLedgerStore) MarkSent(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: document ledger is not configured")
	}
	result, err := s.db.NewUpdate().
		Model((*documentLedgerRecord)(nil)).
		Set("is_sent = ?", true).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRowUpdated(result, id)
}

var _ core.NotificationLedger = (*DocumentLedgerStore)(nil)

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "unique") || strings.Contains(text, "duplicate")
}

func requireRowUpdated(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return nil
	}
	if affected == 0 {
		return fmt.Errorf("sqlstore: ledger entry %q: %w", id, core.ErrNotFound)
	}
	return nil
}
