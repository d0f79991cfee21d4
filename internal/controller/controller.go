package controller

import (
	"context"
	"time"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/annotations"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/reconcile"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/watcher"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

const subsystem = "Controller"

// OrganizrAPI is the slice of the Organizr client the controller needs.
type OrganizrAPI interface {
	HealthCheck(ctx context.Context) bool
	ListTabs(ctx context.Context) ([]tabs.Tab, error)
	CreateTab(ctx context.Context, tab tabs.Tab) (tabs.Tab, error)
	UpdateTab(ctx context.Context, tab tabs.Tab) error
	DeleteTab(ctx context.Context, id int) error
	ResolveGroupID(ctx context.Context, name string) int
	EnsureCategory(ctx context.Context, name, icon string) int
	EnsureGroupIcon(ctx context.Context, name, icon string)
}

// ResourceTracker is the slice of the watch state tracker the controller
// needs.
type ResourceTracker interface {
	FullList(ctx context.Context) []watcher.ResourceRef
	Start(ctx context.Context)
	Changes() <-chan struct{}
	Wait(timeout time.Duration) bool
}

// Options tunes the controller loop.
type Options struct {
	// SyncPolicy decides whether orphaned tabs are deleted.
	SyncPolicy tabs.SyncPolicy
	// Interval between periodic full reconciliation sweeps.
	Interval time.Duration
}

// Controller ties the Kubernetes tracker, the desired-tab builder, and
// the Organizr client together into the reconciliation loop.
type Controller struct {
	api     OrganizrAPI
	tracker ResourceTracker
	opts    Options
}

// New creates a controller. The zero Interval defaults to one minute.
func New(api OrganizrAPI, tracker ResourceTracker, opts Options) *Controller {
	if opts.Interval == 0 {
		opts.Interval = time.Minute
	}
	if opts.SyncPolicy == "" {
		opts.SyncPolicy = tabs.PolicyUpsert
	}
	return &Controller{api: api, tracker: tracker, opts: opts}
}

// Run executes the control loop until ctx is cancelled: an initial full
// reconciliation, then one sweep per interval tick or coalesced watch
// event, whichever fires first.
func (c *Controller) Run(ctx context.Context) error {
	logging.Info(subsystem, "Starting (policy: %s, interval: %s)", c.opts.SyncPolicy, c.opts.Interval)

	if !c.api.HealthCheck(ctx) {
		// The instance may simply not be up yet; reconciliation cycles
		// will keep retrying.
		logging.Warn(subsystem, "Organizr instance is unreachable, starting anyway")
	}

	c.ReconcileOnce(ctx)
	c.tracker.Start(ctx)

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info(subsystem, "Shutting down")
			c.tracker.Wait(5 * time.Second)
			return nil
		case <-ticker.C:
			logging.Debug(subsystem, "Reconcile triggered by timer")
			c.ReconcileOnce(ctx)
		case <-c.tracker.Changes():
			logging.Debug(subsystem, "Reconcile triggered by watch event")
			c.ReconcileOnce(ctx)
		}
	}
}

// ReconcileOnce executes a single reconciliation cycle: re-list the
// annotated resources for a consistent view, derive desired tabs, fetch
// actual tabs, and apply the difference. When the actual tabs cannot be
// listed the whole cycle is abandoned; acting on an unknown remote state
// could delete tabs that still exist.
func (c *Controller) ReconcileOnce(ctx context.Context) {
	refs := c.tracker.FullList(ctx)

	desired := make([]tabs.Tab, 0, len(refs))
	for _, ref := range refs {
		tab, err := reconcile.BuildTab(ref)
		if err != nil {
			logging.Warn(subsystem, "Skipping %s: %v", ref.TrackingKey(), err)
			continue
		}
		c.resolveNames(ctx, &tab, ref)
		desired = append(desired, tab)
	}

	actual, err := c.api.ListTabs(ctx)
	if err != nil {
		logging.Error(subsystem, err, "Failed to list tabs, skipping this cycle")
		return
	}

	actions := reconcile.Diff(desired, actual, c.opts.SyncPolicy)
	if actions.Empty() {
		logging.Debug(subsystem, "No changes needed (%d desired, %d actual)", len(desired), len(actual))
		return
	}

	logging.Info(subsystem, "Applying changes: %s", actions.Summary())
	c.apply(ctx, actions)
}

// resolveNames handles the name-based group and category annotations,
// which need API lookups the pure builder cannot perform. Explicit
// numeric ID annotations take precedence over names.
func (c *Controller) resolveNames(ctx context.Context, tab *tabs.Tab, ref watcher.ResourceRef) {
	groupName := annotations.Get(ref.Annotations, annotations.Group)
	if groupName != "" {
		if annotations.Get(ref.Annotations, annotations.GroupID) == "" {
			tab.GroupID = c.api.ResolveGroupID(ctx, groupName)
		}
		if icon := annotations.Get(ref.Annotations, annotations.GroupIcon); icon != "" {
			c.api.EnsureGroupIcon(ctx, groupName, icon)
		}
	}

	categoryName := annotations.Get(ref.Annotations, annotations.Category)
	if categoryName != "" && annotations.Get(ref.Annotations, annotations.CategoryID) == "" {
		icon := annotations.Get(ref.Annotations, annotations.CategoryIcon)
		if id := c.api.EnsureCategory(ctx, categoryName, icon); id != 0 {
			tab.CategoryID = id
		}
	}
}

// apply executes the actions in create, update, delete order. Each call
// fails independently; a failed create must not block the deletes that
// keep the dashboard from accumulating stale tabs.
func (c *Controller) apply(ctx context.Context, actions reconcile.Actions) {
	for _, tab := range actions.Create {
		created, err := c.api.CreateTab(ctx, tab)
		if err != nil {
			logging.Error(subsystem, err, "Failed to create tab %q", tab.Name)
			continue
		}
		logging.Info(subsystem, "Created tab %q (ID %d)", created.Name, created.ID)
	}

	for _, tab := range actions.Update {
		if err := c.api.UpdateTab(ctx, tab); err != nil {
			logging.Error(subsystem, err, "Failed to update tab %q (ID %d)", tab.Name, tab.ID)
			continue
		}
		logging.Info(subsystem, "Updated tab %q (ID %d)", tab.Name, tab.ID)
	}

	for _, tab := range actions.Delete {
		if tab.ID == 0 {
			continue
		}
		if err := c.api.DeleteTab(ctx, tab.ID); err != nil {
			logging.Error(subsystem, err, "Failed to delete tab %q (ID %d)", tab.Name, tab.ID)
			continue
		}
		logging.Info(subsystem, "Deleted tab %q (ID %d)", tab.Name, tab.ID)
	}
}
