package policy

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/identity"
)

// GroupResolver matches a case URL to a configured API group.
type GroupResolver interface {
	Resolve(ctx context.Context, caseURL string) (core.APIGroup, error)
}

// Engine runs the notify-worthiness pipeline for one notification.
type Engine struct {
	config    core.Config
	groups    GroupResolver
	clients   core.ClientFactory
	users     *identity.Resolver
	caseTypes core.CaseTypeConfigStore
	docTypes  core.DocumentTypeConfigStore
}

func NewEngine(
	config core.Config,
	groups GroupResolver,
	clients core.ClientFactory,
	users *identity.Resolver,
	caseTypes core.CaseTypeConfigStore,
	docTypes core.DocumentTypeConfigStore,
) *Engine {
	return &Engine{
		config:    config,
		groups:    groups,
		clients:   clients,
		users:     users,
		caseTypes: caseTypes,
		docTypes:  docTypes,
	}
}

// Evaluate runs the ordered stages for one notification. Every halt is
// terminal; the caller still acknowledges the webhook. The
// initial-status check runs before role resolution so that brand-new
// cases never trigger role or user lookups at all.
func (e *Engine) Evaluate(ctx context.Context, notification core.Notification) Decision {
	resource := strings.TrimSpace(strings.ToLower(notification.Resource))
	if resource != core.ResourceStatus && resource != core.ResourceCaseDocument {
		return ignored(ReasonUnsupportedResource, "resource "+resource+" is not handled")
	}

	group, err := e.groups.Resolve(ctx, notification.MainObject)
	if err != nil {
		return ignored(ReasonNoAPIGroup, "no api group serves "+notification.MainObject)
	}
	client := e.clients.ForGroup(group)

	zaak, err := client.Case(ctx, notification.MainObject)
	if err != nil {
		return failed(ReasonCaseFetchFailed, "case fetch failed", err)
	}
	caseType, err := client.CaseType(ctx, zaak.CaseTypeURL)
	if err != nil {
		return failed(ReasonCaseTypeFetchFailed, "case type fetch failed", err)
	}

	if !caseType.IsExternal() {
		return ignored(ReasonCaseNotVisible, "case type is internal")
	}
	if !zaak.Confidentiality.Within(core.Confidentiality(e.config.MaxCaseConfidentiality)) {
		return ignored(ReasonCaseNotVisible, "case confidentiality "+string(zaak.Confidentiality)+" exceeds maximum")
	}

	var history []core.Status
	if resource == core.ResourceStatus {
		history, err = client.StatusHistory(ctx, zaak.URL)
		if err != nil {
			return failed(ReasonStatusFetchFailed, "status history fetch failed", err)
		}
		if len(history) <= 1 {
			return ignored(ReasonInitialStatus, "status history only holds the initial entry")
		}
		sortStatusHistory(history)
	}

	roles, err := client.Roles(ctx, zaak.URL)
	if err != nil {
		return failed(ReasonRoleFetchFailed, "role fetch failed", err)
	}
	if !hasResolvableInitiator(roles) {
		return ignored(ReasonNoInitiators, "case has no resolvable initiator role")
	}

	users, err := e.users.Resolve(ctx, roles)
	if err != nil {
		return failed(ReasonNoUsers, "user resolution failed", err)
	}
	if len(users) == 0 {
		return ignored(ReasonNoUsers, "initiator identities match no eligible users")
	}

	var event Event
	var decision Decision
	var halted bool
	if resource == core.ResourceStatus {
		event, decision, halted = e.statusEvent(ctx, client, notification, zaak, caseType, history)
	} else {
		event, decision, halted = e.documentEvent(ctx, client, notification, zaak, caseType)
	}
	if halted {
		return decision
	}

	return accepted(users, event)
}

func hasResolvableInitiator(roles []core.Role) bool {
	for _, role := range roles {
		if !role.IsInitiator() {
			continue
		}
		switch id := role.Identity.(type) {
		case core.NaturalPerson:
			if strings.TrimSpace(id.CitizenID) != "" {
				return true
			}
		case core.NonNaturalPerson:
			if strings.TrimSpace(id.CompanyID) != "" || strings.TrimSpace(id.FiscalID) != "" {
				return true
			}
		}
	}
	return false
}

func sortStatusHistory(history []core.Status) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].SetAt.Before(history[j].SetAt)
	})
}
