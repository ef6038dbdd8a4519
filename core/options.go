package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

// ConfigProvider loads configuration on top of compiled defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader produces the raw key/value map a ConfigProvider builds
// from (environment, file, or static values).
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded config, and runtime overrides
// into the effective Config.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults under loaded config under runtime
// overrides. Later layers win per key.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.PortalBaseURL) != "" {
		layer["portal_base_url"] = cfg.PortalBaseURL
	}
	if includeZero || len(cfg.AcceptedChannels) > 0 {
		layer["accepted_channels"] = append([]string(nil), cfg.AcceptedChannels...)
	}
	if includeZero || strings.TrimSpace(cfg.MaxCaseConfidentiality) != "" {
		layer["max_case_confidentiality"] = cfg.MaxCaseConfidentiality
	}
	if includeZero || strings.TrimSpace(cfg.MaxDocumentConfidentiality) != "" {
		layer["max_document_confidentiality"] = cfg.MaxDocumentConfidentiality
	}
	if includeZero || strings.TrimSpace(cfg.StatusEligibility) != "" {
		layer["status_eligibility"] = cfg.StatusEligibility
	}
	if includeZero || strings.TrimSpace(cfg.CompanyIDScheme) != "" {
		layer["company_id_scheme"] = cfg.CompanyIDScheme
	}
	if includeZero || cfg.RateLimitWindowSeconds > 0 {
		layer["rate_limit_window_seconds"] = cfg.RateLimitWindowSeconds
	}
	if includeZero || cfg.UpstreamTimeoutSeconds > 0 {
		layer["upstream_timeout_seconds"] = cfg.UpstreamTimeoutSeconds
	}
	mail := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Mail.Host) != "" {
		mail["host"] = cfg.Mail.Host
	}
	if includeZero || cfg.Mail.Port > 0 {
		mail["port"] = cfg.Mail.Port
	}
	if includeZero || strings.TrimSpace(cfg.Mail.Username) != "" {
		mail["username"] = cfg.Mail.Username
	}
	if includeZero || strings.TrimSpace(cfg.Mail.Password) != "" {
		mail["password"] = cfg.Mail.Password
	}
	if includeZero || strings.TrimSpace(cfg.Mail.From) != "" {
		mail["from"] = cfg.Mail.From
	}
	if len(mail) > 0 {
		layer["mail"] = mail
	}
	return layer
}
