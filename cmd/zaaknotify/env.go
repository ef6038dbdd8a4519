package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// environment holds the process-level settings read from ZAAKNOTIFY_*
// variables: where to listen, how to reach the database, and the raw
// notification pipeline configuration layered over compiled defaults.
type environment struct {
	Port     int    `default:"8080"`
	LogLevel string `default:"info" split_words:"true"`

	DBDriver string `default:"postgres" split_words:"true"`
	DBDSN    string `default:"postgres://localhost:5432/zaaknotify?sslmode=disable" split_words:"true"`

	PortalBaseURL              string   `default:"" split_words:"true"`
	AcceptedChannels           []string `default:"" split_words:"true"`
	MaxCaseConfidentiality     string   `default:"" split_words:"true"`
	MaxDocumentConfidentiality string   `default:"" split_words:"true"`
	StatusEligibility          string   `default:"" split_words:"true"`
	CompanyIDScheme            string   `default:"" split_words:"true"`
	RateLimitWindowSeconds     int      `default:"0" split_words:"true"`
	UpstreamTimeoutSeconds     int      `default:"0" split_words:"true"`

	MailHost     string `default:"" split_words:"true"`
	MailPort     int    `default:"0" split_words:"true"`
	MailUsername string `default:"" split_words:"true"`
	MailPassword string `default:"" split_words:"true"`
	MailFrom     string `default:"" split_words:"true"`
}

func processEnvironment() (environment, error) {
	var env environment
	if err := envconfig.Process("zaaknotify", &env); err != nil {
		return environment{}, fmt.Errorf("process environment: %w", err)
	}
	return env, nil
}

// envRawConfigLoader exposes the environment as the raw map the config
// provider layers over defaults. Unset values are omitted so defaults
// survive.
type envRawConfigLoader struct {
	env environment
}

func (l envRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	if strings.TrimSpace(l.env.PortalBaseURL) != "" {
		raw["portal_base_url"] = l.env.PortalBaseURL
	}
	if len(l.env.AcceptedChannels) > 0 {
		raw["accepted_channels"] = l.env.AcceptedChannels
	}
	if strings.TrimSpace(l.env.MaxCaseConfidentiality) != "" {
		raw["max_case_confidentiality"] = l.env.MaxCaseConfidentiality
	}
	if strings.TrimSpace(l.env.MaxDocumentConfidentiality) != "" {
		raw["max_document_confidentiality"] = l.env.MaxDocumentConfidentiality
	}
	if strings.TrimSpace(l.env.StatusEligibility) != "" {
		raw["status_eligibility"] = l.env.StatusEligibility
	}
	if strings.TrimSpace(l.env.CompanyIDScheme) != "" {
		raw["company_id_scheme"] = l.env.CompanyIDScheme
	}
	if l.env.RateLimitWindowSeconds > 0 {
		raw["rate_limit_window_seconds"] = l.env.RateLimitWindowSeconds
	}
	if l.env.UpstreamTimeoutSeconds > 0 {
		raw["upstream_timeout_seconds"] = l.env.UpstreamTimeoutSeconds
	}
	mail := map[string]any{}
	if strings.TrimSpace(l.env.MailHost) != "" {
		mail["host"] = l.env.MailHost
	}
	if l.env.MailPort > 0 {
		mail["port"] = l.env.MailPort
	}
	if strings.TrimSpace(l.env.MailUsername) != "" {
		mail["username"] = l.env.MailUsername
	}
	if strings.TrimSpace(l.env.MailPassword) != "" {
		mail["password"] = l.env.MailPassword
	}
	if strings.TrimSpace(l.env.MailFrom) != "" {
		mail["from"] = l.env.MailFrom
	}
	if len(mail) > 0 {
		raw["mail"] = mail
	}
	return raw, nil
}
