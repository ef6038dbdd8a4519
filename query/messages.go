// Package query exposes the pipeline's reads as go-command messages.
package query

import (
	"fmt"
	"strings"
)

const (
	TypeListCaseActivity  = "zaaknotify.query.activity.list"
	TypeListSubscriptions = "zaaknotify.query.subscription.list"
	TypeListAPIGroups     = "zaaknotify.query.apigroup.list"
)

type ListCaseActivityMessage struct {
	UserID string
	Limit  int
	Offset int
}

func (ListCaseActivityMessage) Type() string { return TypeListCaseActivity }

func (m ListCaseActivityMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("query: user id is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	if m.Offset < 0 {
		return fmt.Errorf("query: offset must be >= 0")
	}
	return nil
}

type ListSubscriptionsMessage struct{}

func (ListSubscriptionsMessage) Type() string { return TypeListSubscriptions }

func (ListSubscriptionsMessage) Validate() error { return nil }

type ListAPIGroupsMessage struct{}

func (ListAPIGroupsMessage) Type() string { return TypeListAPIGroups }

func (ListAPIGroupsMessage) Validate() error { return nil }
