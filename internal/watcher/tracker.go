package watcher

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

const subsystem = "Watcher"

// Config holds the tracker's tunables.
type Config struct {
	// Namespaces to watch. Empty means cluster-wide.
	Namespaces []string

	// ResourceTypes to watch, by registry name (e.g. "ingresses").
	// Unknown names are logged and skipped.
	ResourceTypes []string

	// WatchTimeoutSeconds bounds each watch connection. The server closes
	// the stream after this long and the loop reconnects.
	WatchTimeoutSeconds int64

	// ReconnectBackoff is the fixed delay before reopening a failed
	// watch stream.
	ReconnectBackoff time.Duration
}

func (c *Config) applyDefaults() {
	if c.WatchTimeoutSeconds == 0 {
		c.WatchTimeoutSeconds = 300
	}
	if c.ReconnectBackoff == 0 {
		c.ReconnectBackoff = 5 * time.Second
	}
}

// Tracker maintains the set of currently-annotated resources per
// configured resource type, via one-shot full lists and long-lived
// reconnecting watch streams.
//
// The state map is the only mutable shared resource; a single mutex
// guards every read and mutation, including the wholesale replacement a
// full list performs, so a periodic relist never races a concurrent
// watch event. State changes are signalled through a coalescing channel:
// any number of events between two reads collapse into one wakeup, and
// consumers re-derive the full snapshot rather than replaying deltas.
type Tracker struct {
	cs  kubernetes.Interface
	cfg Config

	mu    sync.Mutex
	state map[string]ResourceRef

	changes chan struct{}

	done chan struct{}
}

// New creates a tracker over the given clientset.
func New(cs kubernetes.Interface, cfg Config) *Tracker {
	cfg.applyDefaults()
	return &Tracker{
		cs:      cs,
		cfg:     cfg,
		state:   make(map[string]ResourceRef),
		changes: make(chan struct{}, 1),
	}
}

// Changes returns the coalescing change signal. A receive means state
// changed at least once since the previous receive; call Snapshot to get
// the current view.
func (t *Tracker) Changes() <-chan struct{} {
	return t.changes
}

// Snapshot returns a copy of the current annotated resources, sorted by
// tracking key for deterministic downstream processing.
func (t *Tracker) Snapshot() []ResourceRef {
	t.mu.Lock()
	refs := make([]ResourceRef, 0, len(t.state))
	for _, ref := range t.state {
		refs = append(refs, ref)
	}
	t.mu.Unlock()

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].TrackingKey() < refs[j].TrackingKey()
	})
	return refs
}

// FullList fetches all resources of every configured type, filters to the
// annotated ones, and atomically replaces the in-memory state with the
// result. A resource type whose listing fails contributes nothing to this
// cycle's snapshot; the other types still populate normally.
func (t *Tracker) FullList(ctx context.Context) []ResourceRef {
	var refs []ResourceRef
	for _, name := range t.cfg.ResourceTypes {
		rt, ok := registry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		refs = append(refs, t.listResources(ctx, name, rt)...)
	}

	state := make(map[string]ResourceRef, len(refs))
	for _, ref := range refs {
		state[ref.TrackingKey()] = ref
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	return t.Snapshot()
}

func (t *Tracker) listResources(ctx context.Context, name string, rt resourceType) []ResourceRef {
	var refs []ResourceRef
	for _, ns := range t.namespaces() {
		objs, err := rt.list(ctx, t.cs, ns, metav1.ListOptions{})
		if err != nil {
			logging.Error(subsystem, err, "Failed to list %s in namespace %q", name, ns)
			continue
		}
		for _, obj := range objs {
			if ref, ok := ExtractRef(obj); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Start launches one watch loop per configured resource type. Unknown
// resource types are rejected with a warning and skipped. The loops run
// until ctx is cancelled; use Wait to join them.
func (t *Tracker) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range t.cfg.ResourceTypes {
		key := strings.ToLower(strings.TrimSpace(name))
		rt, ok := registry[key]
		if !ok {
			logging.Warn(subsystem, "Unknown resource type %q, skipping (supported: %s)",
				name, strings.Join(SupportedResourceTypes(), ", "))
			continue
		}

		g.Go(func() error {
			t.watchLoop(gctx, key, rt)
			return nil
		})
		logging.Info(subsystem, "Started watch for %s (namespaces: %s)", key, t.namespacesDisplay())
	}

	t.done = make(chan struct{})
	go func() {
		// Watch loops log their own failures and only exit on
		// cancellation, so the group never carries an error.
		_ = g.Wait()
		close(t.done)
	}()
}

// Wait blocks until every watch loop has exited or the timeout elapses.
// It returns false when the join timed out.
func (t *Tracker) Wait(timeout time.Duration) bool {
	if t.done == nil {
		return true
	}
	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		logging.Warn(subsystem, "Timed out after %s waiting for watch loops to stop", timeout)
		return false
	}
}

// watchLoop runs the reconnecting watch for a single resource type. When
// namespaces are restricted, each namespace's stream is drained in turn
// within the same loop. Stream end reconnects immediately; stream errors
// reconnect after a fixed backoff.
func (t *Tracker) watchLoop(ctx context.Context, name string, rt resourceType) {
	for ctx.Err() == nil {
		failed := false
		for _, ns := range t.namespaces() {
			if ctx.Err() != nil {
				return
			}
			if err := t.watchOnce(ctx, rt, ns); err != nil {
				logging.Error(subsystem, err, "Watch stream for %s in namespace %q failed", name, ns)
				failed = true
			}
		}

		if failed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(t.cfg.ReconnectBackoff):
			}
		}
	}
}

// watchOnce opens a single bounded watch connection and drains it until
// the server closes the stream, the context is cancelled, or an error
// occurs.
func (t *Tracker) watchOnce(ctx context.Context, rt resourceType, namespace string) error {
	timeout := t.cfg.WatchTimeoutSeconds
	w, err := rt.watch(ctx, t.cs, namespace, metav1.ListOptions{TimeoutSeconds: &timeout})
	if err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.ResultChan():
			if !ok {
				// Stream closed by the server (connection timeout).
				return nil
			}
			t.handleEvent(event, rt.kind)
		}
	}
}

// handleEvent applies one watch event to the state map and signals the
// change channel when the state actually changed.
//
// An ADDED or MODIFIED event whose object no longer carries the opt-in
// annotation is an effective removal: the tab must stop being managed
// even though the resource still exists.
func (t *Tracker) handleEvent(event watch.Event, kind string) {
	switch event.Type {
	case watch.Added, watch.Modified:
		if ref, ok := ExtractRef(event.Object); ok {
			t.upsert(ref)
			return
		}
		if key, ok := objectTrackingKey(event.Object, kind); ok {
			t.remove(key)
		}
	case watch.Deleted:
		if key, ok := objectTrackingKey(event.Object, kind); ok {
			t.remove(key)
		}
	case watch.Error:
		logging.Warn(subsystem, "Received error event on %s watch: %v", kind, event.Object)
	}
}

func (t *Tracker) upsert(ref ResourceRef) {
	key := ref.TrackingKey()

	t.mu.Lock()
	existing, found := t.state[key]
	changed := !found || !existing.Equal(ref)
	if changed {
		t.state[key] = ref
	}
	t.mu.Unlock()

	if changed {
		logging.Debug(subsystem, "Resource %s added or updated", key)
		t.notify()
	}
}

func (t *Tracker) remove(key string) {
	t.mu.Lock()
	_, found := t.state[key]
	if found {
		delete(t.state, key)
	}
	t.mu.Unlock()

	if found {
		logging.Debug(subsystem, "Resource %s removed", key)
		t.notify()
	}
}

// notify signals the change channel without blocking. A pending signal
// already covers this change.
func (t *Tracker) notify() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

func (t *Tracker) namespaces() []string {
	if len(t.cfg.Namespaces) == 0 {
		return []string{metav1.NamespaceAll}
	}
	return t.cfg.Namespaces
}

func (t *Tracker) namespacesDisplay() string {
	if len(t.cfg.Namespaces) == 0 {
		return "all"
	}
	return strings.Join(t.cfg.Namespaces, ", ")
}

// objectTrackingKey derives the tracking key from an arbitrary watch
// object, using the registry kind since the object's own TypeMeta is not
// reliably populated on watch events.
func objectTrackingKey(obj interface{}, kind string) (string, bool) {
	m, ok := obj.(metav1.Object)
	if !ok {
		return "", false
	}
	return m.GetNamespace() + "/" + strings.ToLower(kind) + "/" + m.GetName(), true
}
