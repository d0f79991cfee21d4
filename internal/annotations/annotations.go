// Package annotations defines the annotation vocabulary the controller
// recognises on watched Kubernetes resources, plus typed accessors for
// annotation values.
package annotations

import (
	"strconv"
	"strings"
)

// Prefix is the annotation namespace used on Kubernetes resources to
// declare Organizr tab configuration.
const Prefix = "organizr.expectedbehaviors.com"

// Recognised annotation suffixes under Prefix.
const (
	Enabled    = "enabled"
	Name       = "name"
	URL        = "url"
	URLLocal   = "url-local"
	PingURL    = "ping-url"
	Image      = "image"
	Type       = "type"
	GroupID    = "group-id"
	CategoryID = "category-id"
	Order      = "order"
	Default    = "default"
	Active     = "active"
	Splash     = "splash"
	Ping       = "ping"
	Preload    = "preload"

	// Group and Category carry names rather than IDs; the controller
	// resolves them through the Organizr groups/categories endpoints.
	Group        = "group"
	Category     = "category"
	GroupIcon    = "group-icon"
	CategoryIcon = "category-icon"
)

// ExternalDNSHostname is the well-known external-dns annotation consumed
// for passive URL derivation on non-Ingress resources.
const ExternalDNSHostname = "external-dns.alpha.kubernetes.io/hostname"

// Key returns the fully-qualified annotation key for a short suffix.
func Key(suffix string) string {
	return Prefix + "/" + suffix
}

// Get returns the trimmed value of the annotation with the given suffix,
// or "" when absent.
func Get(ann map[string]string, suffix string) string {
	return strings.TrimSpace(ann[Key(suffix)])
}

// IsEnabled reports whether the opt-in annotation is present and "true".
func IsEnabled(ann map[string]string) bool {
	return strings.EqualFold(strings.TrimSpace(ann[Key(Enabled)]), "true")
}

// Bool parses a boolean annotation. Accepted values are true/1/yes and
// false/0/no, case-insensitive; anything else yields the default.
func Bool(ann map[string]string, suffix string, def bool) bool {
	switch strings.ToLower(Get(ann, suffix)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

// Int parses an integer annotation. An absent or unparseable value yields
// (def, false); the caller decides whether to log the malformed value.
func Int(ann map[string]string, suffix string, def int) (int, bool) {
	raw := Get(ann, suffix)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, false
	}
	return n, true
}
