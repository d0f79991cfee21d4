package reconcile

import (
	"fmt"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

// Actions is the ordered set of API calls one reconciliation produced.
// Creates are applied first, then updates, then deletes; each entry is
// independently appliable, so a partial failure leaves the system in a
// state the next cycle re-reconciles naturally.
type Actions struct {
	// Create holds desired tabs with no Organizr ID yet.
	Create []tabs.Tab
	// Update holds desired tabs stamped with the matched Organizr ID.
	Update []tabs.Tab
	// Delete holds actual tabs whose ID was claimed by nothing desired.
	Delete []tabs.Tab
}

// Empty reports whether the reconciliation produced no work.
func (a Actions) Empty() bool {
	return len(a.Create) == 0 && len(a.Update) == 0 && len(a.Delete) == 0
}

// Summary is a compact log line describing the action counts.
func (a Actions) Summary() string {
	return fmt.Sprintf("create=%d update=%d delete=%d", len(a.Create), len(a.Update), len(a.Delete))
}
