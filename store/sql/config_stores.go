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

// CaseTypeConfigStore resolves override-mode eligibility rows. Case types
// fetched from a backend that omits the catalog field are looked up by
// identification alone.
type CaseTypeConfigStore struct {
	db        *bun.DB
	repo      repository.Repository[*caseTypeConfigRecord]
	overrides repository.Repository[*statusTypeOverrideRecord]
}

func NewCaseTypeConfigStore(db *bun.DB) (*CaseTypeConfigStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*caseTypeConfigRecord](db, caseTypeConfigHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid case type config repository wiring: %w", err)
		}
	}
	overrides := repository.NewRepository[*statusTypeOverrideRecord](db, statusTypeOverrideHandlers())
	if validator, ok := overrides.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid status type override repository wiring: %w", err)
		}
	}
	return &CaseTypeConfigStore{db: db, repo: repo, overrides: overrides}, nil
}

func (s *CaseTypeConfigStore) Get(ctx context.Context, catalog, identification string) (core.CaseTypeConfig, error) {
	if s == nil || s.repo == nil {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: case type config store is not configured")
	}
	identification = strings.TrimSpace(identification)
	if identification == "" {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: case type identification is required")
	}
	catalog = strings.TrimSpace(catalog)

	criteria := []repository.SelectCriteria{
		repository.SelectBy("identification", "=", identification),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	}
	if catalog != "" {
		criteria = append(criteria, repository.SelectBy("catalog", "=", catalog))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return core.CaseTypeConfig{}, err
	}
	if len(records) == 0 {
		return core.CaseTypeConfig{}, fmt.Errorf(
			"sqlstore: case type config for %q/%q: %w", catalog, identification, core.ErrNotFound,
		)
	}
	return records[0].toDomain(), nil
}

func (s *CaseTypeConfigStore) GetStatusTypeOverride(ctx context.Context, configID, statusTypeURL string) (core.StatusTypeOverride, error) {
	if s == nil || s.overrides == nil {
		return core.StatusTypeOverride{}, fmt.Errorf("sqlstore: case type config store is not configured")
	}
	records, _, err := s.overrides.List(ctx,
		repository.SelectBy("case_type_config_id", "=", strings.TrimSpace(configID)),
		repository.SelectBy("status_type_url", "=", strings.TrimSpace(statusTypeURL)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.StatusTypeOverride{}, err
	}
	if len(records) == 0 {
		return core.StatusTypeOverride{}, fmt.Errorf(
			"sqlstore: status type override for %q: %w", statusTypeURL, core.ErrNotFound,
		)
	}
	return records[0].toDomain(), nil
}

func (s *CaseTypeConfigStore) Upsert(ctx context.Context, in core.CaseTypeConfig) (core.CaseTypeConfig, error) {
	if s == nil || s.db == nil {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: case type config store is not configured")
	}
	in.Identification = strings.TrimSpace(in.Identification)
	if in.Identification == "" {
		return core.CaseTypeConfig{}, fmt.Errorf("sqlstore: case type identification is required")
	}
	now := time.Now().UTC()

	existing, err := s.Get(ctx, in.Catalog, in.Identification)
	if err == nil {
		record := &caseTypeConfigRecord{
			ID:                  existing.ID,
			Catalog:             in.Catalog,
			Identification:      in.Identification,
			NotifyStatusChanges: in.NotifyStatusChanges,
			CreatedAt:           existing.CreatedAt,
			UpdatedAt:           now,
		}
		if _, updateErr := s.db.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx); updateErr != nil {
			return core.CaseTypeConfig{}, updateErr
		}
		return record.toDomain(), nil
	}

	record := &caseTypeConfigRecord{
		ID:                  uuid.NewString(),
		Catalog:             in.Catalog,
		Identification:      in.Identification,
		NotifyStatusChanges: in.NotifyStatusChanges,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, insertErr := s.db.NewInsert().Model(record).Exec(ctx); insertErr != nil {
		return core.CaseTypeConfig{}, insertErr
	}
	return record.toDomain(), nil
}

func (s *CaseTypeConfigStore) UpsertStatusTypeOverride(ctx context.Context, in core.StatusTypeOverride) (core.StatusTypeOverride, error) {
	if s == nil || s.db == nil {
		return core.StatusTypeOverride{}, fmt.Errorf("sqlstore: case type config store is not configured")
	}
	existing, err := s.GetStatusTypeOverride(ctx, in.CaseTypeConfigID, in.StatusTypeURL)
	if err == nil {
		record := &statusTypeOverrideRecord{
			ID:               existing.ID,
			CaseTypeConfigID: in.CaseTypeConfigID,
			StatusTypeURL:    in.StatusTypeURL,
			Notify:           in.Notify,
		}
		if _, updateErr := s.db.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx); updateErr != nil {
			return core.StatusTypeOverride{}, updateErr
		}
		return record.toDomain(), nil
	}

	record := &statusTypeOverrideRecord{
		ID:               uuid.NewString(),
		CaseTypeConfigID: in.CaseTypeConfigID,
		StatusTypeURL:    in.StatusTypeURL,
		Notify:           in.Notify,
	}
	if _, insertErr := s.db.NewInsert().Model(record).Exec(ctx); insertErr != nil {
		return core.StatusTypeOverride{}, insertErr
	}
	return record.toDomain(), nil
}

var _ core.CaseTypeConfigStore = (*CaseTypeConfigStore)(nil)

// DocumentTypeConfigStore resolves upload notification rows per
// (case type, document type) pair.
type DocumentTypeConfigStore struct {
	db   *bun.DB
	repo repository.Repository[*documentTypeConfigRecord]
}

func NewDocumentTypeConfigStore(db *bun.DB) (*DocumentTypeConfigStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*documentTypeConfigRecord](db, documentTypeConfigHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid document type config repository wiring: %w", err)
		}
	}
	return &DocumentTypeConfigStore{db: db, repo: repo}, nil
}

func (s *DocumentTypeConfigStore) Get(ctx context.Context, caseTypeIdentification, documentTypeURL string) (core.DocumentTypeConfig, error) {
	if s == nil || s.repo == nil {
		return core.DocumentTypeConfig{}, fmt.Errorf("sqlstore: document type config store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("case_type_identification", "=", strings.TrimSpace(caseTypeIdentification)),
		repository.SelectBy("document_type_url", "=", strings.TrimSpace(documentTypeURL)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.DocumentTypeConfig{}, err
	}
	if len(records) == 0 {
		return core.DocumentTypeConfig{}, fmt.Errorf(
			"sqlstore: document type config for %q/%q: %w",
			caseTypeIdentification, documentTypeURL, core.ErrNotFound,
		)
	}
	return records[0].toDomain(), nil
}

func (s *DocumentTypeConfigStore) Upsert(ctx context.Context, in core.DocumentTypeConfig) (core.DocumentTypeConfig, error) {
	if s == nil || s.db == nil {
		return core.DocumentTypeConfig{}, fmt.Errorf("sqlstore: document type config store is not configured")
	}
	now := time.Now().UTC()
	existing, err := s.Get(ctx, in.CaseTypeIdentification, in.DocumentTypeURL)
	if err == nil {
		record := &documentTypeConfigRecord{
			ID:                     existing.ID,
			CaseTypeIdentification: in.CaseTypeIdentification,
			DocumentTypeURL:        in.DocumentTypeURL,
			NotifyUploads:          in.NotifyUploads,
			CreatedAt:              existing.CreatedAt,
			UpdatedAt:              now,
		}
		if _, updateErr := s.db.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx); updateErr != nil {
			return core.DocumentTypeConfig{}, updateErr
		}
		return record.toDomain(), nil
	}

	record := &documentTypeConfigRecord{
		ID:                     uuid.NewString(),
		CaseTypeIdentification: in.CaseTypeIdentification,
		DocumentTypeURL:        in.DocumentTypeURL,
		NotifyUploads:          in.NotifyUploads,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if _, insertErr := s.db.NewInsert().Model(record).Exec(ctx); insertErr != nil {
		return core.DocumentTypeConfig{}, insertErr
	}
	return record.toDomain(), nil
}

var _ core.DocumentTypeConfigStore = (*DocumentTypeConfigStore)(nil)
