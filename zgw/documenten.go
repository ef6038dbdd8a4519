package zgw

import (
	"context"

	"github.com/goliatone/go-zaaknotify/core"
)

func (s *Service) Document(ctx context.Context, documentURL string) (core.Document, error) {
	var out core.Document
	if err := s.getJSON(ctx, documentURL, &out); err != nil {
		return core.Document{}, err
	}
	return out, nil
}
