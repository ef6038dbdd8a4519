// Package sqlstore holds the bun-backed persistence layer: webhook
// subscriptions, API groups, the user directory, notification policy
// configuration, the dedup/rate-limit ledgers, and the activity feed.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-zaaknotify/core"
)

type SubscriptionStore struct {
	db   *bun.DB
	repo repository.Repository[*subscriptionRecord]
}

func NewSubscriptionStore(db *bun.DB) (*SubscriptionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*subscriptionRecord](db, subscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscription repository wiring: %w", err)
		}
	}
	return &SubscriptionStore{db: db, repo: repo}, nil
}

func (s *SubscriptionStore) GetByClientID(ctx context.Context, clientID string) (core.Subscription, error) {
	if s == nil || s.repo == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("client_id", "=", strings.TrimSpace(clientID)),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Subscription{}, err
	}
	if len(records) == 0 {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription for client %q: %w", clientID, core.ErrNotFound)
	}
	return records[0].toDomain(), nil
}

func (s *SubscriptionStore) Upsert(ctx context.Context, in core.Subscription) (core.Subscription, error) {
	if s == nil || s.db == nil {
		return core.Subscription{}, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Secret = strings.TrimSpace(in.Secret)
	if in.ClientID == "" || in.Secret == "" {
		return core.Subscription{}, fmt.Errorf("sqlstore: client id and secret are required")
	}
	now := time.Now().UTC()

	var out core.Subscription
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &subscriptionRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.client_id = ?", in.ClientID).
			Limit(1).
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == sql.ErrNoRows || strings.TrimSpace(existing.ID) == "" {
			record := &subscriptionRecord{
				ID:        uuid.NewString(),
				ClientID:  in.ClientID,
				Secret:    in.Secret,
				Channels:  append([]string(nil), in.Channels...),
				Active:    in.Active,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				return insertErr
			}
			out = record.toDomain()
			return nil
		}

		existing.Secret = in.Secret
		existing.Channels = append([]string(nil), in.Channels...)
		existing.Active = in.Active
		existing.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().
			Model(existing).
			Where("id = ?", existing.ID).
			Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = existing.toDomain()
		return nil
	})
	if err != nil {
		return core.Subscription{}, err
	}
	return out, nil
}

func (s *SubscriptionStore) List(ctx context.Context) ([]core.Subscription, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("client_id ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

var _ core.SubscriptionStore = (*SubscriptionStore)(nil)
