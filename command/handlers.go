package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/webhook"
)

// NotificationProcessor is the webhook pipeline entry point.
type NotificationProcessor interface {
	Process(ctx context.Context, authorization string, body []byte) (webhook.Result, error)
}

type SubscriptionWriter interface {
	Upsert(ctx context.Context, in core.Subscription) (core.Subscription, error)
}

type APIGroupWriter interface {
	Upsert(ctx context.Context, in core.APIGroup) (core.APIGroup, error)
}

type UserWriter interface {
	Upsert(ctx context.Context, in core.User) (core.User, error)
}

type CaseTypeConfigWriter interface {
	Upsert(ctx context.Context, in core.CaseTypeConfig) (core.CaseTypeConfig, error)
	UpsertStatusTypeOverride(ctx context.Context, in core.StatusTypeOverride) (core.StatusTypeOverride, error)
}

type DocumentTypeConfigWriter interface {
	Upsert(ctx context.Context, in core.DocumentTypeConfig) (core.DocumentTypeConfig, error)
}

type ProcessNotificationCommand struct {
	processor NotificationProcessor
}

func NewProcessNotificationCommand(processor NotificationProcessor) *ProcessNotificationCommand {
	return &ProcessNotificationCommand{processor: processor}
}

func (c *ProcessNotificationCommand) Execute(ctx context.Context, msg ProcessNotificationMessage) error {
	if c == nil || c.processor == nil {
		return commandDependencyError("command: notification processor is required")
	}
	result, err := c.processor.Process(ctx, msg.Authorization, msg.Body)
	storeResult(ctx, result)
	return err
}

type UpsertSubscriptionCommand struct {
	writer SubscriptionWriter
}

func NewUpsertSubscriptionCommand(writer SubscriptionWriter) *UpsertSubscriptionCommand {
	return &UpsertSubscriptionCommand{writer: writer}
}

func (c *UpsertSubscriptionCommand) Execute(ctx context.Context, msg UpsertSubscriptionMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: subscription writer is required")
	}
	out, err := c.writer.Upsert(ctx, msg.Subscription)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertAPIGroupCommand struct {
	writer APIGroupWriter
}

func NewUpsertAPIGroupCommand(writer APIGroupWriter) *UpsertAPIGroupCommand {
	return &UpsertAPIGroupCommand{writer: writer}
}

func (c *UpsertAPIGroupCommand) Execute(ctx context.Context, msg UpsertAPIGroupMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: api group writer is required")
	}
	out, err := c.writer.Upsert(ctx, msg.Group)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertUserCommand struct {
	writer UserWriter
}

func NewUpsertUserCommand(writer UserWriter) *UpsertUserCommand {
	return &UpsertUserCommand{writer: writer}
}

func (c *UpsertUserCommand) Execute(ctx context.Context, msg UpsertUserMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: user writer is required")
	}
	out, err := c.writer.Upsert(ctx, msg.User)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertCaseTypeConfigCommand struct {
	writer CaseTypeConfigWriter
}

func NewUpsertCaseTypeConfigCommand(writer CaseTypeConfigWriter) *UpsertCaseTypeConfigCommand {
	return &UpsertCaseTypeConfigCommand{writer: writer}
}

func (c *UpsertCaseTypeConfigCommand) Execute(ctx context.Context, msg UpsertCaseTypeConfigMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: case type config writer is required")
	}
	config, err := c.writer.Upsert(ctx, msg.Config)
	if err != nil {
		return err
	}
	for _, override := range msg.Overrides {
		override.CaseTypeConfigID = config.ID
		if _, err := c.writer.UpsertStatusTypeOverride(ctx, override); err != nil {
			return err
		}
	}
	storeResult(ctx, config)
	return nil
}

type UpsertDocumentTypeConfigCommand struct {
	writer DocumentTypeConfigWriter
}

func NewUpsertDocumentTypeConfigCommand(writer DocumentTypeConfigWriter) *UpsertDocumentTypeConfigCommand {
	return &UpsertDocumentTypeConfigCommand{writer: writer}
}

func (c *UpsertDocumentTypeConfigCommand) Execute(ctx context.Context, msg UpsertDocumentTypeConfigMessage) error {
	if c == nil || c.writer == nil {
		return commandDependencyError("command: document type config writer is required")
	}
	out, err := c.writer.Upsert(ctx, msg.Config)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
