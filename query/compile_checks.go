package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-zaaknotify/core"
)

var (
	_ gocmd.Querier[ListCaseActivityMessage, ActivityPage]         = (*ListCaseActivityQuery)(nil)
	_ gocmd.Querier[ListSubscriptionsMessage, []core.Subscription] = (*ListSubscriptionsQuery)(nil)
	_ gocmd.Querier[ListAPIGroupsMessage, []core.APIGroup]         = (*ListAPIGroupsQuery)(nil)
)
