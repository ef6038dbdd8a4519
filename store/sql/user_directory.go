package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-zaaknotify/core"
)

// UserDirectory serves role-identifier lookups against the portal user
// table. Eligibility filtering stays with the identity resolver.
type UserDirectory struct {
	db   *bun.DB
	repo repository.Repository[*userRecord]
}

func NewUserDirectory(db *bun.DB) (*UserDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*userRecord](db, userHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid user repository wiring: %w", err)
		}
	}
	return &UserDirectory{db: db, repo: repo}, nil
}

func (s *UserDirectory) FindByCitizenID(ctx context.Context, citizenID string) ([]core.User, error) {
	return s.findBy(ctx, "citizen_id", citizenID)
}

func (s *UserDirectory) FindByCompanyID(ctx context.Context, companyID string) ([]core.User, error) {
	return s.findBy(ctx, "company_id", companyID)
}

func (s *UserDirectory) FindByFiscalID(ctx context.Context, fiscalID string) ([]core.User, error) {
	return s.findBy(ctx, "fiscal_id", fiscalID)
}

func (s *UserDirectory) findBy(ctx context.Context, column, value string) ([]core.User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: user directory is not configured")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy(column, "=", value),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.User, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *UserDirectory) Upsert(ctx context.Context, in core.User) (core.User, error) {
	if s == nil || s.db == nil {
		return core.User{}, fmt.Errorf("sqlstore: user directory is not configured")
	}
	if strings.TrimSpace(in.ID) == "" {
		return core.User{}, fmt.Errorf("sqlstore: user id is required")
	}
	record := &userRecord{
		ID:                       in.ID,
		Email:                    in.Email,
		EmailVerified:            in.EmailVerified,
		Active:                   in.Active,
		CitizenID:                in.CitizenID,
		CompanyID:                in.CompanyID,
		FiscalID:                 in.FiscalID,
		CaseNotificationsEnabled: in.CaseNotificationsEnabled,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("email_verified = EXCLUDED.email_verified").
		Set("active = EXCLUDED.active").
		Set("citizen_id = EXCLUDED.citizen_id").
		Set("company_id = EXCLUDED.company_id").
		Set("fiscal_id = EXCLUDED.fiscal_id").
		Set("case_notifications_enabled = EXCLUDED.case_notifications_enabled").
		Exec(ctx)
	if err != nil {
		return core.User{}, err
	}
	return record.toDomain(), nil
}

var _ core.UserDirectory = (*UserDirectory)(nil)
