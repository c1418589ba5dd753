package convergence

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults with a resource kind are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "resource kind is required",
			mutate:  func(c *Config) { c.ResourceKind = "" },
			wantErr: true,
		},
		{
			name:    "backoff is required",
			mutate:  func(c *Config) { c.Backoff = 0 },
			wantErr: true,
		},
		{
			name:    "sub-second backoff rejected",
			mutate:  func(c *Config) { c.Backoff = 500 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "hard timeout is required",
			mutate:  func(c *Config) { c.HardTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "auto-succeed threshold must be below hard timeout",
			mutate:  func(c *Config) { c.AutoSucceedThreshold = c.HardTimeout },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ResourceKind = "serverGroup"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
