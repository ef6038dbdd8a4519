package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ProcessNotificationMessage]      = (*ProcessNotificationCommand)(nil)
	_ gocmd.Commander[UpsertSubscriptionMessage]       = (*UpsertSubscriptionCommand)(nil)
	_ gocmd.Commander[UpsertAPIGroupMessage]           = (*UpsertAPIGroupCommand)(nil)
	_ gocmd.Commander[UpsertUserMessage]               = (*UpsertUserCommand)(nil)
	_ gocmd.Commander[UpsertCaseTypeConfigMessage]     = (*UpsertCaseTypeConfigCommand)(nil)
	_ gocmd.Commander[UpsertDocumentTypeConfigMessage] = (*UpsertDocumentTypeConfigCommand)(nil)
)
