package policy

import (
	"context"
	"errors"

	"github.com/goliatone/go-zaaknotify/core"
)

// documentEvent applies the document-resource rules: resolve the
// case-document link to the document itself, gate on lifecycle status
// and confidentiality, then require an enabled per-(case type, document
// type) configuration.
func (e *Engine) documentEvent(
	ctx context.Context,
	client core.CaseService,
	notification core.Notification,
	zaak core.Case,
	caseType core.CaseType,
) (Event, Decision, bool) {
	link, err := client.CaseDocument(ctx, notification.ResourceURL)
	if err != nil {
		return Event{}, failed(ReasonDocumentFetchFailed, "case document link fetch failed", err), true
	}
	document, err := client.Document(ctx, link.DocumentURL)
	if err != nil {
		return Event{}, failed(ReasonDocumentFetchFailed, "document fetch failed", err), true
	}

	if !document.IsFinal() {
		return Event{}, ignored(ReasonDocumentNotVisible, "document status "+document.Status+" is not definitief"), true
	}
	if !document.Confidentiality.Within(core.Confidentiality(e.config.MaxDocumentConfidentiality)) {
		return Event{}, ignored(ReasonDocumentNotVisible, "document confidentiality "+string(document.Confidentiality)+" exceeds maximum"), true
	}

	config, err := e.docTypes.Get(ctx, caseType.Identification, document.DocumentTypeURL)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Event{}, ignored(ReasonNoDocumentTypeConfig, "no document type configuration for "+document.DocumentTypeURL), true
		}
		return Event{}, failed(ReasonNoDocumentTypeConfig, "document type configuration lookup failed", err), true
	}
	if !config.NotifyUploads {
		return Event{}, ignored(ReasonDocumentNotEnabled, "document type "+document.DocumentTypeURL+" has upload notifications disabled"), true
	}

	return Event{
		Kind:         core.LedgerKindDocument,
		Case:         zaak,
		CaseType:     caseType,
		EventURL:     document.URL,
		CollisionKey: zaak.URL,
		Document:     document,
	}, Decision{}, false
}
