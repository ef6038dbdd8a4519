// Package delivery turns policy-accepted events into emails and feed
// entries, guarded per user by the dedup/rate-limit ledger.
package delivery

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/policy"
)

const statusSubject = "Update bij aanvraag {{.CaseIdentification}}"

const statusBody = `Beste,

Er is een update bij uw aanvraag {{.CaseIdentification}}{{if .CaseDescription}} ({{.CaseDescription}}){{end}}.
{{if .StatusText}}De nieuwe status is: {{.StatusText}}.{{end}}
{{if .StatusDate}}Status gezet op: {{.StatusDate}}.{{end}}

Bekijk uw aanvraag: {{.CaseURL}}
`

const documentSubject = "Nieuw document bij aanvraag {{.CaseIdentification}}"

const documentBody = `Beste,

Er is een nieuw document toegevoegd aan uw aanvraag {{.CaseIdentification}}{{if .CaseDescription}} ({{.CaseDescription}}){{end}}.
{{if .DocumentTitle}}Document: {{.DocumentTitle}}.{{end}}

Bekijk uw aanvraag: {{.CaseURL}}
`

type templateContext struct {
	CaseIdentification string
	CaseDescription    string
	CaseURL            string
	StatusText         string
	StatusDate         string
	DocumentTitle      string
	StartDate          string
}

// Renderer renders the notification mail for one event kind.
type Renderer struct {
	portalBaseURL string
	templates     map[core.LedgerKind][2]*template.Template
}

func NewRenderer(portalBaseURL string) (*Renderer, error) {
	parse := func(name, subject, body string) ([2]*template.Template, error) {
		subjectTmpl, err := template.New(name + "_subject").Parse(subject)
		if err != nil {
			return [2]*template.Template{}, fmt.Errorf("delivery: parse %s subject: %w", name, err)
		}
		bodyTmpl, err := template.New(name + "_body").Parse(body)
		if err != nil {
			return [2]*template.Template{}, fmt.Errorf("delivery: parse %s body: %w", name, err)
		}
		return [2]*template.Template{subjectTmpl, bodyTmpl}, nil
	}

	statusTmpl, err := parse("status_update", statusSubject, statusBody)
	if err != nil {
		return nil, err
	}
	documentTmpl, err := parse("document_added", documentSubject, documentBody)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		portalBaseURL: strings.TrimRight(strings.TrimSpace(portalBaseURL), "/"),
		templates: map[core.LedgerKind][2]*template.Template{
			core.LedgerKindStatus:   statusTmpl,
			core.LedgerKindDocument: documentTmpl,
		},
	}, nil
}

// Render builds the mail for one user and event. The case detail link
// is absolute, rooted at the configured portal base URL.
func (r *Renderer) Render(user core.User, event policy.Event) (core.MailMessage, error) {
	pair, ok := r.templates[event.Kind]
	if !ok {
		return core.MailMessage{}, fmt.Errorf("delivery: no template for event kind %q", event.Kind)
	}

	ctx := templateContext{
		CaseIdentification: event.Case.Identification,
		CaseDescription:    event.Case.Description,
		CaseURL:            r.caseDetailURL(event.Case),
		StartDate:          event.Case.StartDate,
	}
	switch event.Kind {
	case core.LedgerKindStatus:
		ctx.StatusText = event.StatusType.Description
		if !event.Status.SetAt.IsZero() {
			ctx.StatusDate = event.Status.SetAt.Format("02-01-2006")
		}
	case core.LedgerKindDocument:
		ctx.DocumentTitle = event.Document.Title
	}

	var subject, body strings.Builder
	if err := pair[0].Execute(&subject, ctx); err != nil {
		return core.MailMessage{}, fmt.Errorf("delivery: render subject: %w", err)
	}
	if err := pair[1].Execute(&body, ctx); err != nil {
		return core.MailMessage{}, fmt.Errorf("delivery: render body: %w", err)
	}

	return core.MailMessage{
		To:      user.Email,
		Subject: strings.TrimSpace(subject.String()),
		Body:    body.String(),
	}, nil
}

func (r *Renderer) caseDetailURL(zaak core.Case) string {
	identification := strings.TrimSpace(zaak.Identification)
	if r.portalBaseURL == "" {
		return zaak.URL
	}
	return r.portalBaseURL + "/zaken/" + identification
}
