package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/watcher"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

// Config is the top-level configuration structure for the controller.
type Config struct {
	Organizr       OrganizrConfig       `yaml:"organizr"`
	Watch          WatchConfig          `yaml:"watch"`
	Reconcile      ReconcileConfig      `yaml:"reconcile"`
	LeaderElection LeaderElectionConfig `yaml:"leaderElection"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// OrganizrConfig describes the Organizr instance to sync against.
type OrganizrConfig struct {
	// APIURL is the root URL of the Organizr instance. Required.
	APIURL string `yaml:"apiUrl"`
	// APIKey authenticates against the Organizr API. When empty, the
	// key is read from APIKeyFile instead.
	APIKey string `yaml:"apiKey,omitempty"`
	// APIKeyFile is the path of a mounted secret holding the API key
	// (default: /var/run/secrets/organizr/api-key).
	APIKeyFile string `yaml:"apiKeyFile,omitempty"`
	// APIVersion is "v2" (preferred) or "v1" (legacy).
	APIVersion string `yaml:"apiVersion,omitempty"`
	// Timeout bounds each Organizr API call (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// WatchConfig scopes what the controller watches.
type WatchConfig struct {
	// Namespaces to watch. Empty means all namespaces.
	Namespaces []string `yaml:"namespaces,omitempty"`
	// ResourceTypes to watch (default: all supported types).
	ResourceTypes []string `yaml:"resourceTypes,omitempty"`
}

// ReconcileConfig tunes the reconciliation loop.
type ReconcileConfig struct {
	// SyncPolicy is "upsert" (never delete) or "sync" (full ownership).
	SyncPolicy string `yaml:"syncPolicy,omitempty"`
	// Interval between periodic full sweeps (default: 60s, floor: 10s).
	Interval time.Duration `yaml:"interval,omitempty"`
}

// LeaderElectionConfig enables active/passive HA via a Lease object.
type LeaderElectionConfig struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
	LeaseName string `yaml:"leaseName,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
	// Format is "json" or "text".
	Format string `yaml:"format,omitempty"`
}

// GetDefaultConfig returns the configuration used when no file and no
// environment overrides are present. The API URL stays empty and fails
// validation, which is deliberate: there is no sensible default target.
func GetDefaultConfig() Config {
	return Config{
		Organizr: OrganizrConfig{
			APIKeyFile: "/var/run/secrets/organizr/api-key",
			APIVersion: "v2",
			Timeout:    30 * time.Second,
		},
		Watch: WatchConfig{
			ResourceTypes: watcher.SupportedResourceTypes(),
		},
		Reconcile: ReconcileConfig{
			SyncPolicy: string(tabs.PolicyUpsert),
			Interval:   60 * time.Second,
		},
		LeaderElection: LeaderElectionConfig{
			Namespace: "default",
			LeaseName: "organizr-tab-controller-leader",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the resolved configuration for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Organizr.APIURL) == "" {
		return fmt.Errorf("organizr.apiUrl is required (or set ORGANIZR_API_URL)")
	}
	if c.Organizr.APIKey == "" {
		return fmt.Errorf("no Organizr API key: set organizr.apiKey, ORGANIZR_API_KEY, or mount a secret at %s", c.Organizr.APIKeyFile)
	}
	if v := c.Organizr.APIVersion; v != "v1" && v != "v2" {
		return fmt.Errorf("organizr.apiVersion must be v1 or v2, got %q", v)
	}
	if _, err := tabs.ParseSyncPolicy(c.Reconcile.SyncPolicy); err != nil {
		return err
	}
	if c.Reconcile.Interval < 10*time.Second {
		return fmt.Errorf("reconcile.interval must be at least 10s, got %s", c.Reconcile.Interval)
	}
	for _, rt := range c.Watch.ResourceTypes {
		if !watcher.IsSupportedResourceType(rt) {
			return fmt.Errorf("unsupported watch resource type %q (supported: %s)",
				rt, strings.Join(watcher.SupportedResourceTypes(), ", "))
		}
	}
	return nil
}

// SyncPolicy returns the parsed sync policy. Call only after Validate.
func (c *Config) SyncPolicy() tabs.SyncPolicy {
	policy, _ := tabs.ParseSyncPolicy(c.Reconcile.SyncPolicy)
	return policy
}
