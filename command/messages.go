// Package command exposes the pipeline's mutations as go-command
// messages so transports and CLI tooling dispatch them uniformly.
package command

import (
	"strings"

	"github.com/goliatone/go-zaaknotify/core"
)

const (
	TypeProcessNotification      = "zaaknotify.command.notification.process"
	TypeUpsertSubscription       = "zaaknotify.command.subscription.upsert"
	TypeUpsertAPIGroup           = "zaaknotify.command.apigroup.upsert"
	TypeUpsertUser               = "zaaknotify.command.user.upsert"
	TypeUpsertCaseTypeConfig     = "zaaknotify.command.case_type_config.upsert"
	TypeUpsertDocumentTypeConfig = "zaaknotify.command.document_type_config.upsert"
)

// ProcessNotificationMessage carries one raw webhook delivery.
type ProcessNotificationMessage struct {
	Authorization string
	Body          []byte
}

func (ProcessNotificationMessage) Type() string { return TypeProcessNotification }

func (m ProcessNotificationMessage) Validate() error {
	if len(m.Body) == 0 {
		return commandValidationError("body", "notification body is required")
	}
	return nil
}

type UpsertSubscriptionMessage struct {
	Subscription core.Subscription
}

func (UpsertSubscriptionMessage) Type() string { return TypeUpsertSubscription }

func (m UpsertSubscriptionMessage) Validate() error {
	if strings.TrimSpace(m.Subscription.ClientID) == "" {
		return commandValidationError("client_id", "client id is required")
	}
	if strings.TrimSpace(m.Subscription.Secret) == "" {
		return commandValidationError("secret", "secret is required")
	}
	if len(m.Subscription.Channels) == 0 {
		return commandValidationError("channels", "at least one channel is required")
	}
	return nil
}

type UpsertAPIGroupMessage struct {
	Group core.APIGroup
}

func (UpsertAPIGroupMessage) Type() string { return TypeUpsertAPIGroup }

func (m UpsertAPIGroupMessage) Validate() error {
	if strings.TrimSpace(m.Group.Name) == "" {
		return commandValidationError("name", "api group name is required")
	}
	if strings.TrimSpace(m.Group.ZakenBaseURL) == "" {
		return commandValidationError("zaken_base_url", "zaken base url is required")
	}
	return nil
}

type UpsertUserMessage struct {
	User core.User
}

func (UpsertUserMessage) Type() string { return TypeUpsertUser }

func (m UpsertUserMessage) Validate() error {
	if strings.TrimSpace(m.User.ID) == "" {
		return commandValidationError("id", "user id is required")
	}
	if strings.TrimSpace(m.User.Email) == "" {
		return commandValidationError("email", "email is required")
	}
	return nil
}

type UpsertCaseTypeConfigMessage struct {
	Config    core.CaseTypeConfig
	Overrides []core.StatusTypeOverride
}

func (UpsertCaseTypeConfigMessage) Type() string { return TypeUpsertCaseTypeConfig }

func (m UpsertCaseTypeConfigMessage) Validate() error {
	if strings.TrimSpace(m.Config.Identification) == "" {
		return commandValidationError("identification", "case type identification is required")
	}
	for _, override := range m.Overrides {
		if strings.TrimSpace(override.StatusTypeURL) == "" {
			return commandValidationError("overrides", "status type url is required")
		}
	}
	return nil
}

type UpsertDocumentTypeConfigMessage struct {
	Config core.DocumentTypeConfig
}

func (UpsertDocumentTypeConfigMessage) Type() string { return TypeUpsertDocumentTypeConfig }

func (m UpsertDocumentTypeConfigMessage) Validate() error {
	if strings.TrimSpace(m.Config.CaseTypeIdentification) == "" {
		return commandValidationError("case_type_identification", "case type identification is required")
	}
	if strings.TrimSpace(m.Config.DocumentTypeURL) == "" {
		return commandValidationError("document_type_url", "document type url is required")
	}
	return nil
}
