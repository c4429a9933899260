// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions pins configuration loading to explicit inputs instead of the
// platform directory lookup. The --config flag and tests both go through it.
type LoadOptions struct {
	// ConfigFilePath forces a single config file; loading fails when the
	// file is missing.
	ConfigFilePath string
	// ConfigDirPath replaces the platform config directory lookup.
	ConfigDirPath string
}

// Provider resolves the effective harness configuration.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// fileProvider reads CUE config files, validates them against the embedded
// schema and fills unset fields from defaults.
type fileProvider struct{}

// NewProvider returns the file-backed configuration provider.
func NewProvider() Provider {
	return fileProvider{}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
