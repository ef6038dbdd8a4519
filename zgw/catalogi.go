package zgw

import (
	"context"

	"github.com/goliatone/go-zaaknotify/core"
)

func (s *Service) CaseType(ctx context.Context, caseTypeURL string) (core.CaseType, error) {
	var out core.CaseType
	if err := s.getJSON(ctx, caseTypeURL, &out); err != nil {
		return core.CaseType{}, err
	}
	return out, nil
}

func (s *Service) StatusType(ctx context.Context, statusTypeURL string) (core.StatusType, error) {
	var out core.StatusType
	if err := s.getJSON(ctx, statusTypeURL, &out); err != nil {
		return core.StatusType{}, err
	}
	return out, nil
}
