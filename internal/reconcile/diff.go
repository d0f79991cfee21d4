package reconcile

import (
	"strings"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

// Diff computes the minimal action set turning the actual tab list into
// the desired one under the given sync policy.
//
// Organizr has no field to store the controller's tracking key, so tabs
// are correlated by URL first (URLs are expected unique per tab) and by
// case-insensitive name as a fallback, which keeps a tab's identity when
// its URL annotation changes. Desired tabs are processed in input order
// and actual tabs are scanned in list order, so duplicate URLs or names
// among actual tabs resolve to the first occurrence; the result is a pure
// function of its inputs.
func Diff(desired, actual []tabs.Tab, policy tabs.SyncPolicy) Actions {
	var actions Actions

	claimed := make(map[int]bool)

	for _, want := range desired {
		existing, found := matchByURL(want, actual)
		if !found {
			existing, found = matchByName(want, actual)
		}

		if !found || existing.ID == 0 {
			actions.Create = append(actions.Create, want)
			logging.Info(subsystem, "Tab %q needs create (managed by %s)", want.Name, want.ManagedBy)
			continue
		}

		claimed[existing.ID] = true

		if want.ContentMatches(existing) {
			logging.Debug(subsystem, "Tab %q up to date (id=%d)", want.Name, existing.ID)
			continue
		}

		updated := want
		updated.ID = existing.ID
		// Order is not part of content equality, but an update must not
		// silently drop the position Organizr already has.
		if updated.Order == 0 {
			updated.Order = existing.Order
		}
		actions.Update = append(actions.Update, updated)
		logging.Info(subsystem, "Tab %q needs update (id=%d, managed by %s)", want.Name, existing.ID, want.ManagedBy)
	}

	if policy == tabs.PolicySync {
		for _, existing := range actual {
			if existing.ID == 0 || claimed[existing.ID] {
				continue
			}
			// Built-in Organizr pages (Homepage, Settings) were never
			// managed; preserve them regardless of policy.
			if existing.Type == tabs.TypeInternal {
				logging.Debug(subsystem, "Skipping internal tab %q (id=%d)", existing.Name, existing.ID)
				continue
			}
			actions.Delete = append(actions.Delete, existing)
			logging.Info(subsystem, "Tab %q needs delete (id=%d)", existing.Name, existing.ID)
		}
	}

	logging.Info(subsystem, "Reconcile computed: %s", actions.Summary())
	return actions
}

func matchByURL(want tabs.Tab, actual []tabs.Tab) (tabs.Tab, bool) {
	for _, existing := range actual {
		if existing.URL == want.URL {
			return existing, true
		}
	}
	return tabs.Tab{}, false
}

func matchByName(want tabs.Tab, actual []tabs.Tab) (tabs.Tab, bool) {
	for _, existing := range actual {
		if strings.EqualFold(existing.Name, want.Name) {
			return existing, true
		}
	}
	return tabs.Tab{}, false
}
