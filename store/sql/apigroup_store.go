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

type APIGroupStore struct {
	db   *bun.DB
	repo repository.Repository[*apiGroupRecord]
}

func NewAPIGroupStore(db *bun.DB) (*APIGroupStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*apiGroupRecord](db, apiGroupHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid api group repository wiring: %w", err)
		}
	}
	return &APIGroupStore{db: db, repo: repo}, nil
}

func (s *APIGroupStore) List(ctx context.Context) ([]core.APIGroup, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: api group store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.APIGroup, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *APIGroupStore) Upsert(ctx context.Context, in core.APIGroup) (core.APIGroup, error) {
	if s == nil || s.db == nil {
		return core.APIGroup{}, fmt.Errorf("sqlstore: api group store is not configured")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return core.APIGroup{}, fmt.Errorf("sqlstore: api group name is required")
	}
	if strings.TrimSpace(in.ZakenBaseURL) == "" {
		return core.APIGroup{}, fmt.Errorf("sqlstore: api group zaken base url is required")
	}
	now := time.Now().UTC()

	var out core.APIGroup
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &apiGroupRecord{}
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.name = ?", in.Name).
			Limit(1).
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == sql.ErrNoRows || strings.TrimSpace(existing.ID) == "" {
			record := &apiGroupRecord{
				ID:                uuid.NewString(),
				Name:              in.Name,
				ZakenBaseURL:      in.ZakenBaseURL,
				CatalogiBaseURL:   in.CatalogiBaseURL,
				DocumentenBaseURL: in.DocumentenBaseURL,
				ClientID:          in.ClientID,
				Secret:            in.Secret,
				Token:             in.Token,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				return insertErr
			}
			out = record.toDomain()
			return nil
		}

		existing.ZakenBaseURL = in.ZakenBaseURL
		existing.CatalogiBaseURL = in.CatalogiBaseURL
		existing.DocumentenBaseURL = in.DocumentenBaseURL
		existing.ClientID = in.ClientID
		existing.Secret = in.Secret
		existing.Token = in.Token
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
		return core.APIGroup{}, err
	}
	return out, nil
}

var _ core.APIGroupStore = (*APIGroupStore)(nil)
