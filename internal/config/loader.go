package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

const subsystem = "ConfigLoader"

// Load resolves the controller configuration in precedence order:
// defaults, then the YAML file at configPath (optional), then ORGANIZR_*
// environment variables, then the API key file when no key was given
// directly. The result is validated before it is returned.
func Load(configPath string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configPath, err)
		}
		logging.Info(subsystem, "Loaded configuration from %s", configPath)
	case errors.Is(err, os.ErrNotExist):
		logging.Info(subsystem, "No config file at %s, using defaults and environment", configPath)
	default:
		return Config{}, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	applyEnv(&config)

	if config.Organizr.APIKey == "" {
		config.Organizr.APIKey = readAPIKeyFile(config.Organizr.APIKeyFile)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// applyEnv overrides config fields from ORGANIZR_* environment
// variables. List-valued variables are comma-separated.
func applyEnv(c *Config) {
	setString(&c.Organizr.APIURL, "ORGANIZR_API_URL", "ORGANIZR_URL")
	setString(&c.Organizr.APIKey, "ORGANIZR_API_KEY")
	setString(&c.Organizr.APIKeyFile, "ORGANIZR_API_KEY_FILE")
	setString(&c.Organizr.APIVersion, "ORGANIZR_API_VERSION")
	setDuration(&c.Organizr.Timeout, "ORGANIZR_API_TIMEOUT")

	setList(&c.Watch.Namespaces, "ORGANIZR_WATCH_NAMESPACES")
	setList(&c.Watch.ResourceTypes, "ORGANIZR_WATCH_RESOURCE_TYPES")

	setString(&c.Reconcile.SyncPolicy, "ORGANIZR_SYNC_POLICY")
	setDuration(&c.Reconcile.Interval, "ORGANIZR_RECONCILE_INTERVAL")

	setBool(&c.LeaderElection.Enabled, "ORGANIZR_ENABLE_LEADER_ELECTION")
	setString(&c.LeaderElection.Namespace, "ORGANIZR_LEADER_ELECTION_NAMESPACE")
	setString(&c.LeaderElection.LeaseName, "ORGANIZR_LEADER_ELECTION_NAME")

	setString(&c.Logging.Level, "ORGANIZR_LOG_LEVEL")
	setString(&c.Logging.Format, "ORGANIZR_LOG_FORMAT")
}

func readAPIKeyFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn(subsystem, "Failed to read API key file %s: %v", path, err)
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

func setString(dst *string, names ...string) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			return
		}
	}
}

func setList(dst *[]string, name string) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func setBool(dst *bool, name string) {
	if v, ok := os.LookupEnv(name); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		} else {
			logging.Warn(subsystem, "Ignoring non-boolean value %q for %s", v, name)
		}
	}
}

// setDuration accepts either a Go duration string ("90s", "2m") or a
// bare number of seconds, which is what Kubernetes manifests tend to
// carry over from older deployments.
func setDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	logging.Warn(subsystem, "Ignoring unparseable duration %q for %s", v, name)
}
