package core

import (
	"fmt"
	"strings"
)

const (
	StatusEligibilityInform         = "informeren"
	StatusEligibilityCaseTypeConfig = "case-type-config"

	CompanyIDSchemeKVK  = "kvk"
	CompanyIDSchemeRSIN = "rsin"
)

type MailConfig struct {
	Host     string `koanf:"host" mapstructure:"host"`
	Port     int    `koanf:"port" mapstructure:"port"`
	Username string `koanf:"username" mapstructure:"username"`
	Password string `koanf:"password" mapstructure:"password"`
	From     string `koanf:"from" mapstructure:"from"`
}

type Config struct {
	ServiceName                string     `koanf:"service_name" mapstructure:"service_name"`
	PortalBaseURL              string     `koanf:"portal_base_url" mapstructure:"portal_base_url"`
	AcceptedChannels           []string   `koanf:"accepted_channels" mapstructure:"accepted_channels"`
	MaxCaseConfidentiality     string     `koanf:"max_case_confidentiality" mapstructure:"max_case_confidentiality"`
	MaxDocumentConfidentiality string     `koanf:"max_document_confidentiality" mapstructure:"max_document_confidentiality"`
	StatusEligibility          string     `koanf:"status_eligibility" mapstructure:"status_eligibility"`
	CompanyIDScheme            string     `koanf:"company_id_scheme" mapstructure:"company_id_scheme"`
	RateLimitWindowSeconds     int        `koanf:"rate_limit_window_seconds" mapstructure:"rate_limit_window_seconds"`
	UpstreamTimeoutSeconds     int        `koanf:"upstream_timeout_seconds" mapstructure:"upstream_timeout_seconds"`
	Mail                       MailConfig `koanf:"mail" mapstructure:"mail"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:                "zaaknotify",
		AcceptedChannels:           []string{"zaken"},
		MaxCaseConfidentiality:     string(ConfidentialityZaakvertrouwelijk),
		MaxDocumentConfidentiality: string(ConfidentialityZaakvertrouwelijk),
		StatusEligibility:          StatusEligibilityInform,
		CompanyIDScheme:            CompanyIDSchemeKVK,
		RateLimitWindowSeconds:     0,
		UpstreamTimeoutSeconds:     10,
		Mail: MailConfig{
			Port: 587,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if len(c.AcceptedChannels) == 0 {
		return fmt.Errorf("core: accepted_channels requires at least one channel")
	}
	if !Confidentiality(c.MaxCaseConfidentiality).Known() {
		return fmt.Errorf("core: max_case_confidentiality %q is not a known level", c.MaxCaseConfidentiality)
	}
	if !Confidentiality(c.MaxDocumentConfidentiality).Known() {
		return fmt.Errorf("core: max_document_confidentiality %q is not a known level", c.MaxDocumentConfidentiality)
	}
	switch strings.TrimSpace(c.StatusEligibility) {
	case StatusEligibilityInform, StatusEligibilityCaseTypeConfig:
	default:
		return fmt.Errorf("core: status_eligibility %q is not supported", c.StatusEligibility)
	}
	switch strings.TrimSpace(c.CompanyIDScheme) {
	case CompanyIDSchemeKVK, CompanyIDSchemeRSIN:
	default:
		return fmt.Errorf("core: company_id_scheme %q is not supported", c.CompanyIDScheme)
	}
	if c.RateLimitWindowSeconds < 0 {
		return fmt.Errorf("core: rate_limit_window_seconds must not be negative")
	}
	if c.UpstreamTimeoutSeconds <= 0 {
		return fmt.Errorf("core: upstream_timeout_seconds must be positive")
	}
	return nil
}

// AcceptsChannel reports whether a delivered notification channel is in
// the accepted set. Comparison is case-insensitive.
func (c Config) AcceptsChannel(channel string) bool {
	channel = strings.TrimSpace(strings.ToLower(channel))
	for _, candidate := range c.AcceptedChannels {
		if strings.TrimSpace(strings.ToLower(candidate)) == channel {
			return true
		}
	}
	return false
}
