package watcher

import (
	"context"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
)

// resourceType binds a user-facing resource type name ("ingresses") to the
// typed clientset calls that list and watch it. Namespace may be
// metav1.NamespaceAll for cluster-wide operation.
type resourceType struct {
	kind  string
	list  func(ctx context.Context, cs kubernetes.Interface, namespace string, opts metav1.ListOptions) ([]runtime.Object, error)
	watch func(ctx context.Context, cs kubernetes.Interface, namespace string, opts metav1.ListOptions) (watch.Interface, error)
}

var registry = map[string]resourceType{
	"ingresses": {
		kind: "Ingress",
		list: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) ([]runtime.Object, error) {
			result, err := cs.NetworkingV1().Ingresses(ns).List(ctx, opts)
			if err != nil {
				return nil, err
			}
			objs := make([]runtime.Object, 0, len(result.Items))
			for i := range result.Items {
				objs = append(objs, &result.Items[i])
			}
			return objs, nil
		},
		watch: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) (watch.Interface, error) {
			return cs.NetworkingV1().Ingresses(ns).Watch(ctx, opts)
		},
	},
	"services": {
		kind: "Service",
		list: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) ([]runtime.Object, error) {
			result, err := cs.CoreV1().Services(ns).List(ctx, opts)
			if err != nil {
				return nil, err
			}
			objs := make([]runtime.Object, 0, len(result.Items))
			for i := range result.Items {
				objs = append(objs, &result.Items[i])
			}
			return objs, nil
		},
		watch: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) (watch.Interface, error) {
			return cs.CoreV1().Services(ns).Watch(ctx, opts)
		},
	},
	"deployments": {
		kind: "Deployment",
		list: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) ([]runtime.Object, error) {
			result, err := cs.AppsV1().Deployments(ns).List(ctx, opts)
			if err != nil {
				return nil, err
			}
			objs := make([]runtime.Object, 0, len(result.Items))
			for i := range result.Items {
				objs = append(objs, &result.Items[i])
			}
			return objs, nil
		},
		watch: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) (watch.Interface, error) {
			return cs.AppsV1().Deployments(ns).Watch(ctx, opts)
		},
	},
	"statefulsets": {
		kind: "StatefulSet",
		list: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) ([]runtime.Object, error) {
			result, err := cs.AppsV1().StatefulSets(ns).List(ctx, opts)
			if err != nil {
				return nil, err
			}
			objs := make([]runtime.Object, 0, len(result.Items))
			for i := range result.Items {
				objs = append(objs, &result.Items[i])
			}
			return objs, nil
		},
		watch: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) (watch.Interface, error) {
			return cs.AppsV1().StatefulSets(ns).Watch(ctx, opts)
		},
	},
	"daemonsets": {
		kind: "DaemonSet",
		list: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) ([]runtime.Object, error) {
			result, err := cs.AppsV1().DaemonSets(ns).List(ctx, opts)
			if err != nil {
				return nil, err
			}
			objs := make([]runtime.Object, 0, len(result.Items))
			for i := range result.Items {
				objs = append(objs, &result.Items[i])
			}
			return objs, nil
		},
		watch: func(ctx context.Context, cs kubernetes.Interface, ns string, opts metav1.ListOptions) (watch.Interface, error) {
			return cs.AppsV1().DaemonSets(ns).Watch(ctx, opts)
		},
	},
}

// SupportedResourceTypes returns the resource type names the tracker can
// watch, sorted for stable output.
func SupportedResourceTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupportedResourceType reports whether the tracker knows how to watch
// the named resource type.
func IsSupportedResourceType(name string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
