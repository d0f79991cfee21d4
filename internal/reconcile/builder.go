package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/annotations"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/watcher"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/icons"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

const subsystem = "Reconcile"

// appNameLabel is the conventional label carrying the application name,
// used for passive name and icon derivation.
const appNameLabel = "app.kubernetes.io/name"

// BuildTab constructs the desired Tab for one annotated resource.
//
// Every field follows the same priority chain: explicit annotation wins,
// else passive derivation from the resource itself, else a documented
// default. Scheme conventions: the external URL is https (Ingress host or
// external-dns hostname), the local URL is http (cluster-internal DNS).
//
// A malformed type annotation fails the whole call; the caller skips the
// resource. Malformed integer annotations degrade to absent with a
// warning.
func BuildTab(ref watcher.ResourceRef) (tabs.Tab, error) {
	ann := ref.Annotations

	tabType := tabs.TypeIframe
	if raw := annotations.Get(ann, annotations.Type); raw != "" {
		parsed, err := tabs.ParseTabType(raw)
		if err != nil {
			return tabs.Tab{}, fmt.Errorf("resource %s: %w", ref.TrackingKey(), err)
		}
		tabType = parsed
	}

	pingURL := derivePingURL(ref)

	return tabs.Tab{
		Name:       deriveName(ref),
		URL:        deriveURL(ref),
		LocalURL:   deriveLocalURL(ref),
		PingURL:    pingURL,
		Image:      deriveImage(ref),
		Type:       tabType,
		GroupID:    intAnnotation(ref, annotations.GroupID, 1),
		CategoryID: intAnnotation(ref, annotations.CategoryID, 0),
		Order:      intAnnotation(ref, annotations.Order, 0),
		Default:    annotations.Bool(ann, annotations.Default, false),
		Active:     annotations.Bool(ann, annotations.Active, true),
		Splash:     annotations.Bool(ann, annotations.Splash, false),
		// Ping defaults to whether a ping target was resolvable at all.
		Ping:      annotations.Bool(ann, annotations.Ping, pingURL != ""),
		Preload:   annotations.Bool(ann, annotations.Preload, false),
		ManagedBy: ref.TrackingKey(),
	}, nil
}

// BuildAll derives the desired tab list from a snapshot of resource refs.
// A resource whose build fails is logged and skipped; the rest of the
// snapshot is unaffected.
func BuildAll(refs []watcher.ResourceRef) []tabs.Tab {
	desired := make([]tabs.Tab, 0, len(refs))
	for _, ref := range refs {
		tab, err := BuildTab(ref)
		if err != nil {
			logging.Error(subsystem, err, "Failed to build tab for %s, skipping", ref.TrackingKey())
			continue
		}
		desired = append(desired, tab)
	}
	return desired
}

// deriveName resolves the display name: annotation, else the app name
// label, else the resource's own name, prettified.
func deriveName(ref watcher.ResourceRef) string {
	if name := annotations.Get(ref.Annotations, annotations.Name); name != "" {
		return name
	}

	name := ref.Labels[appNameLabel]
	if name == "" {
		name = ref.Name
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.Und).String(name)
}

// deriveURL resolves the external URL. Priority: explicit annotation,
// Ingress host, external-dns hostname, then https://{name}.{namespace}
// as a last resort. Always non-empty.
func deriveURL(ref watcher.ResourceRef) string {
	if url := annotations.Get(ref.Annotations, annotations.URL); url != "" {
		return url
	}
	if len(ref.IngressHosts) > 0 {
		return "https://" + ref.IngressHosts[0]
	}
	if host := strings.TrimSpace(ref.Annotations[annotations.ExternalDNSHostname]); host != "" {
		return "https://" + host
	}
	return "https://" + ref.Name + "." + ref.Namespace
}

// deriveLocalURL resolves the cluster-internal URL. Priority: explicit
// annotation, Ingress backend service, the Service itself. The port
// defaults to 80 when the backend declares none. Other kinds get no
// local URL.
func deriveLocalURL(ref watcher.ResourceRef) string {
	if local := annotations.Get(ref.Annotations, annotations.URLLocal); local != "" {
		return local
	}

	svc, port := backendService(ref)
	if svc == "" {
		return ""
	}
	if port == 0 {
		port = 80
	}
	return fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", svc, ref.Namespace, port)
}

// derivePingURL resolves the host:port ping target (no scheme). Unlike
// the local URL there is no port default here: when no port is known the
// ping target is omitted entirely.
func derivePingURL(ref watcher.ResourceRef) string {
	if ping := annotations.Get(ref.Annotations, annotations.PingURL); ping != "" {
		return ping
	}

	switch strings.ToLower(ref.Kind) {
	case "ingress":
		if ref.IngressBackendService != "" {
			port := ref.IngressBackendPort
			if port == 0 {
				port = 80
			}
			return fmt.Sprintf("%s.%s:%d", ref.IngressBackendService, ref.Namespace, port)
		}
	case "service":
		if len(ref.ServicePorts) > 0 {
			return fmt.Sprintf("%s.%s:%d", ref.Name, ref.Namespace, ref.ServicePorts[0])
		}
	}
	return ""
}

// deriveImage resolves the tab icon. An explicit annotation goes through
// icon resolution (which passes URLs, paths, and fontawesome refs through
// untouched) and falls back to the literal value when unresolved. With no
// annotation, resolution is attempted on the app name label or resource
// name, possibly yielding no icon.
func deriveImage(ref watcher.ResourceRef) string {
	if img := annotations.Get(ref.Annotations, annotations.Image); img != "" {
		if resolved := icons.Resolve(img); resolved != "" {
			return resolved
		}
		return img
	}

	appName := ref.Labels[appNameLabel]
	if appName == "" {
		appName = ref.Name
	}
	return icons.Resolve(appName)
}

// backendService returns the service name and port the tab's local URL
// should point at: the Ingress backend for ingresses, the Service itself
// for services.
func backendService(ref watcher.ResourceRef) (string, int32) {
	switch strings.ToLower(ref.Kind) {
	case "ingress":
		return ref.IngressBackendService, ref.IngressBackendPort
	case "service":
		var port int32
		if len(ref.ServicePorts) > 0 {
			port = ref.ServicePorts[0]
		}
		return ref.Name, port
	default:
		return "", 0
	}
}

func intAnnotation(ref watcher.ResourceRef, suffix string, def int) int {
	n, ok := annotations.Int(ref.Annotations, suffix, def)
	if !ok {
		logging.Warn(subsystem, "Resource %s: invalid integer annotation %s=%q, ignoring",
			ref.TrackingKey(), annotations.Key(suffix), annotations.Get(ref.Annotations, suffix))
	}
	return n
}
