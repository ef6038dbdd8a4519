package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func subscriptionHandlers() repository.ModelHandlers[*subscriptionRecord] {
	return repository.ModelHandlers[*subscriptionRecord]{
		NewRecord: func() *subscriptionRecord {
			return &subscriptionRecord{}
		},
		GetID: func(record *subscriptionRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *subscriptionRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *subscriptionRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func apiGroupHandlers() repository.ModelHandlers[*apiGroupRecord] {
	return repository.ModelHandlers[*apiGroupRecord]{
		NewRecord: func() *apiGroupRecord {
			return &apiGroupRecord{}
		},
		GetID: func(record *apiGroupRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *apiGroupRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *apiGroupRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func userHandlers() repository.ModelHandlers[*userRecord] {
	return repository.ModelHandlers[*userRecord]{
		NewRecord: func() *userRecord {
			return &userRecord{}
		},
		GetID: func(record *userRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *userRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *userRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func caseTypeConfigHandlers() repository.ModelHandlers[*caseTypeConfigRecord] {
	return repository.ModelHandlers[*caseTypeConfigRecord]{
		NewRecord: func() *caseTypeConfigRecord {
			return &caseTypeConfigRecord{}
		},
		GetID: func(record *caseTypeConfigRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *caseTypeConfigRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *caseTypeConfigRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func statusTypeOverrideHandlers() repository.ModelHandlers[*statusTypeOverrideRecord] {
	return repository.ModelHandlers[*statusTypeOverrideRecord]{
		NewRecord: func() *statusTypeOverrideRecord {
			return &statusTypeOverrideRecord{}
		},
		GetID: func(record *statusTypeOverrideRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *statusTypeOverrideRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *statusTypeOverrideRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func documentTypeConfigHandlers() repository.ModelHandlers[*documentTypeConfigRecord] {
	return repository.ModelHandlers[*documentTypeConfigRecord]{
		NewRecord: func() *documentTypeConfigRecord {
			return &documentTypeConfigRecord{}
		},
		GetID: func(record *documentTypeConfigRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *documentTypeConfigRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *documentTypeConfigRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func activityEntryHandlers() repository.ModelHandlers[*activityEntryRecord] {
	return repository.ModelHandlers[*activityEntryRecord]{
		NewRecord: func() *activityEntryRecord {
			return &activityEntryRecord{}
		},
		GetID: func(record *activityEntryRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *activityEntryRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *activityEntryRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
