package watcher

import (
	"maps"
	"slices"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	netv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/annotations"
)

// ResourceRef is an immutable snapshot of one watched Kubernetes resource
// carrying the opt-in annotation. It holds only the fields downstream tab
// derivation consumes; it is replaced wholesale on every MODIFIED event.
type ResourceRef struct {
	APIVersion  string
	Kind        string
	Namespace   string
	Name        string
	UID         string
	Annotations map[string]string
	Labels      map[string]string

	// Ingress-specific fields, populated only for Ingress resources.
	IngressHosts          []string
	IngressBackendService string
	IngressBackendPort    int32

	// Service-specific fields.
	ServiceClusterIP string
	ServicePorts     []int32
}

// TrackingKey is the stable identity namespace/kind/name used to correlate
// watch events for this resource across its lifetime.
func (r ResourceRef) TrackingKey() string {
	return r.Namespace + "/" + strings.ToLower(r.Kind) + "/" + r.Name
}

// Equal reports whether two refs carry identical snapshots.
func (r ResourceRef) Equal(other ResourceRef) bool {
	return r.APIVersion == other.APIVersion &&
		r.Kind == other.Kind &&
		r.Namespace == other.Namespace &&
		r.Name == other.Name &&
		r.UID == other.UID &&
		maps.Equal(r.Annotations, other.Annotations) &&
		maps.Equal(r.Labels, other.Labels) &&
		slices.Equal(r.IngressHosts, other.IngressHosts) &&
		r.IngressBackendService == other.IngressBackendService &&
		r.IngressBackendPort == other.IngressBackendPort &&
		r.ServiceClusterIP == other.ServiceClusterIP &&
		slices.Equal(r.ServicePorts, other.ServicePorts)
}

// ExtractRef converts a raw Kubernetes object into a ResourceRef. It
// returns false when the object does not carry the opt-in annotation, or
// is not a supported type.
func ExtractRef(obj runtime.Object) (ResourceRef, bool) {
	switch o := obj.(type) {
	case *netv1.Ingress:
		ref, ok := baseRef(o.APIVersion, "Ingress", o.Namespace, o.Name, string(o.UID), o.Annotations, o.Labels)
		if !ok {
			return ResourceRef{}, false
		}
		ref.APIVersion = netv1.SchemeGroupVersion.String()
		populateIngress(&ref, o)
		return ref, true
	case *corev1.Service:
		ref, ok := baseRef(o.APIVersion, "Service", o.Namespace, o.Name, string(o.UID), o.Annotations, o.Labels)
		if !ok {
			return ResourceRef{}, false
		}
		ref.APIVersion = corev1.SchemeGroupVersion.String()
		populateService(&ref, o)
		return ref, true
	case *appsv1.Deployment:
		return appsRef(o.APIVersion, "Deployment", o.Namespace, o.Name, string(o.UID), o.Annotations, o.Labels)
	case *appsv1.StatefulSet:
		return appsRef(o.APIVersion, "StatefulSet", o.Namespace, o.Name, string(o.UID), o.Annotations, o.Labels)
	case *appsv1.DaemonSet:
		return appsRef(o.APIVersion, "DaemonSet", o.Namespace, o.Name, string(o.UID), o.Annotations, o.Labels)
	default:
		return ResourceRef{}, false
	}
}

func baseRef(apiVersion, kind, namespace, name, uid string, ann, labels map[string]string) (ResourceRef, bool) {
	if !annotations.IsEnabled(ann) {
		return ResourceRef{}, false
	}
	return ResourceRef{
		APIVersion:  apiVersion,
		Kind:        kind,
		Namespace:   namespace,
		Name:        name,
		UID:         uid,
		Annotations: maps.Clone(ann),
		Labels:      maps.Clone(labels),
	}, true
}

func appsRef(apiVersion, kind, namespace, name, uid string, ann, labels map[string]string) (ResourceRef, bool) {
	ref, ok := baseRef(apiVersion, kind, namespace, name, uid, ann, labels)
	if !ok {
		return ResourceRef{}, false
	}
	ref.APIVersion = appsv1.SchemeGroupVersion.String()
	return ref, true
}

// populateIngress fills in the hostnames and the first declared backend
// service from the Ingress spec.
func populateIngress(ref *ResourceRef, ing *netv1.Ingress) {
	for _, rule := range ing.Spec.Rules {
		if rule.Host != "" {
			ref.IngressHosts = append(ref.IngressHosts, rule.Host)
		}
	}

	for _, rule := range ing.Spec.Rules {
		if rule.HTTP == nil {
			continue
		}
		for _, path := range rule.HTTP.Paths {
			if path.Backend.Service == nil {
				continue
			}
			ref.IngressBackendService = path.Backend.Service.Name
			ref.IngressBackendPort = path.Backend.Service.Port.Number
			return
		}
	}
}

func populateService(ref *ResourceRef, svc *corev1.Service) {
	if svc.Spec.ClusterIP != corev1.ClusterIPNone {
		ref.ServiceClusterIP = svc.Spec.ClusterIP
	}
	for _, port := range svc.Spec.Ports {
		if port.Port != 0 {
			ref.ServicePorts = append(ref.ServicePorts, port.Port)
		}
	}
}
