package tabs

import (
	"fmt"
	"strings"
)

// TabType is how an Organizr tab opens. It maps to the integer the API
// expects.
type TabType int

const (
	// TypeInternal marks built-in Organizr pages (Homepage, Settings).
	// Tabs of this type are never managed or deleted by the controller.
	TypeInternal TabType = 0
	// TypeIframe renders the target inside Organizr.
	TypeIframe TabType = 1
	// TypeNewWindow opens the target in a new browser window.
	TypeNewWindow TabType = 2
)

// String makes TabType satisfy the fmt.Stringer interface.
func (t TabType) String() string {
	switch t {
	case TypeInternal:
		return "internal"
	case TypeIframe:
		return "iframe"
	case TypeNewWindow:
		return "new-window"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseTabType parses a human-friendly annotation value into a TabType.
// Raw integer codes ("0", "1", "2") are accepted alongside the names.
func ParseTabType(value string) (TabType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "internal", "0":
		return TypeInternal, nil
	case "iframe", "1":
		return TypeIframe, nil
	case "new-window", "new_window", "newwindow", "2":
		return TypeNewWindow, nil
	default:
		return TypeIframe, fmt.Errorf("unknown tab type annotation value: %q", value)
	}
}

// SyncPolicy controls how the controller reconciles tabs with Organizr.
type SyncPolicy string

const (
	// PolicyUpsert creates and updates tabs but never deletes them.
	PolicyUpsert SyncPolicy = "upsert"
	// PolicySync performs full reconciliation, deleting orphaned tabs.
	PolicySync SyncPolicy = "sync"
)

// ParseSyncPolicy validates a sync policy string.
func ParseSyncPolicy(value string) (SyncPolicy, error) {
	switch SyncPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyUpsert:
		return PolicyUpsert, nil
	case PolicySync:
		return PolicySync, nil
	default:
		return PolicyUpsert, fmt.Errorf("unknown sync policy: %q (want %q or %q)", value, PolicyUpsert, PolicySync)
	}
}

// Tab represents a single Organizr tab, either desired (derived from a
// Kubernetes resource, ID zero) or actual (fetched from the API, ID set).
//
// Integer fields use zero as "unset": a desired tab with Order 0 inherits
// the actual tab's order on update, and CategoryID 0 means no category.
type Tab struct {
	// ID is the Organizr-assigned tab ID. Zero for desired state.
	ID int

	// Name is the tab display name.
	Name string

	// URL is the primary tab URL and must include a scheme.
	URL string
	// LocalURL is the local/RFC1918 URL override.
	LocalURL string
	// PingURL is a host:port target for ping checks, without a scheme.
	PingURL string

	// Image is an icon identifier or full image URL.
	Image string
	// Type is how the tab opens.
	Type TabType

	// GroupID is the minimum Organizr group that can see this tab.
	GroupID int
	// CategoryID is the Organizr category ID, zero for none.
	CategoryID int

	// Order is the tab position, zero when unset.
	Order int
	// Default marks the tab opened on login.
	Default bool
	// Active is whether the tab is enabled.
	Active bool
	// Splash shows the tab on the splash/login screen.
	Splash bool
	// Ping enables the ping health check.
	Ping bool
	// Preload loads the tab on login.
	Preload bool

	// ManagedBy is the controller-assigned tracking key
	// (namespace/kind/name) correlating the tab with its Kubernetes
	// source. Informational only; Organizr has no field for it.
	ManagedBy string
}

// ContentMatches reports whether two tabs are semantically equal, ignoring
// ID, Order, and ManagedBy.
func (t Tab) ContentMatches(other Tab) bool {
	return t.Name == other.Name &&
		t.URL == other.URL &&
		t.LocalURL == other.LocalURL &&
		t.PingURL == other.PingURL &&
		t.Image == other.Image &&
		t.Type == other.Type &&
		t.GroupID == other.GroupID &&
		t.CategoryID == other.CategoryID &&
		t.Default == other.Default &&
		t.Active == other.Active &&
		t.Splash == other.Splash &&
		t.Ping == other.Ping &&
		t.Preload == other.Preload
}
