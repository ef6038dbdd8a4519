package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-zaaknotify/core"
)

// ActivityStore backs the in-app case activity feed. Recording is the
// dispatcher's best-effort hook; reads page a user's feed newest first.
type ActivityStore struct {
	db   *bun.DB
	repo repository.Repository[*activityEntryRecord]
}

func NewActivityStore(db *bun.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*activityEntryRecord](db, activityEntryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	return &ActivityStore{db: db, repo: repo}, nil
}

func (s *ActivityStore) Record(ctx context.Context, entry core.ActivityEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	if strings.TrimSpace(entry.UserID) == "" {
		return fmt.Errorf("sqlstore: activity entry user id is required")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	record := &activityEntryRecord{
		ID:                 id,
		UserID:             entry.UserID,
		CaseURL:            strings.TrimSpace(entry.CaseURL),
		CaseIdentification: strings.TrimSpace(entry.CaseIdentification),
		Channel:            strings.TrimSpace(string(entry.Channel)),
		Action:             strings.TrimSpace(entry.Action),
		Title:              strings.TrimSpace(entry.Title),
		Metadata:           copyAnyMap(entry.Metadata),
		CreatedAt:          createdAt,
	}
	if record.Channel == "" {
		record.Channel = string(core.LedgerKindStatus)
	}
	if record.Action == "" {
		record.Action = "case.event"
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *ActivityStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]core.ActivityEntry, int, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("sqlstore: activity store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, 0, fmt.Errorf("sqlstore: user id is required")
	}
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.repo.List(ctx,
		repository.SelectBy("user_id", "=", userID),
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(limit, offset),
	)
	if err != nil {
		return nil, 0, err
	}
	items := make([]core.ActivityEntry, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	return items, total, nil
}

var (
	_ core.FeedSink   = (*ActivityStore)(nil)
	_ core.FeedReader = (*ActivityStore)(nil)
)
