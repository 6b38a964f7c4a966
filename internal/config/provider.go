// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// Provider loads configuration. The CLI depends on this interface so
	// tests can supply a fixed Config.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, Sources, error)
	}

	fileProvider struct{}

	staticProvider struct {
		cfg *Config
	}
)

// NewProvider returns the file-backed provider.
func NewProvider() Provider {
	return fileProvider{}
}

// Static returns a provider that always yields cfg.
func Static(cfg *Config) Provider {
	return staticProvider{cfg: cfg}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, Sources, error) {
	return Load(ctx, opts)
}

func (p staticProvider) Load(context.Context, LoadOptions) (*Config, Sources, error) {
	return p.cfg, Sources{}, nil
}
