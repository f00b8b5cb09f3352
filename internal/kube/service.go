package kube

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

var ErrServiceNotFound = errors.New("booking API service not found")

// ServiceOptions locates the booking service's REST API inside the cluster.
type ServiceOptions struct {
	Namespace string // empty searches all namespaces when using Selector
	Name      string // exact service name; takes precedence over Selector
	Selector  string // label selector, e.g. "app.kubernetes.io/name=booking-api"
}

// Service is a discovered booking API service.
type Service struct {
	Name      string
	Namespace string
	Port      int32
}

// URL returns the in-cluster DNS address of the service.
func (s Service) URL() string {
	return fmt.Sprintf("http://%s.%s.svc:%d", s.Name, s.Namespace, s.Port)
}

// FindService looks up the booking API service by name, or by label
// selector when no name is given. With a selector the first service that
// exposes a TCP port wins.
func FindService(ctx context.Context, client kubernetes.Interface, opts ServiceOptions) (*Service, error) {
	if opts.Name != "" {
		ns := opts.Namespace
		if ns == "" {
			ns = metav1.NamespaceDefault
		}
		svc, err := client.CoreV1().Services(ns).Get(ctx, opts.Name, metav1.GetOptions{})
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrServiceNotFound, ns, opts.Name, err)
		}
		port := extractPort(*svc)
		if port == 0 {
			return nil, fmt.Errorf("service %s/%s exposes no TCP port", ns, opts.Name)
		}
		return &Service{Name: svc.Name, Namespace: svc.Namespace, Port: port}, nil
	}

	if opts.Selector == "" {
		return nil, fmt.Errorf("%w: set a service name or label selector", ErrServiceNotFound)
	}

	list, err := client.CoreV1().Services(opts.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: opts.Selector,
	})
	if err != nil {
		return nil, fmt.Errorf("listing services matching %q: %w", opts.Selector, err)
	}
	for _, svc := range list.Items {
		if port := extractPort(svc); port != 0 {
			return &Service{Name: svc.Name, Namespace: svc.Namespace, Port: port}, nil
		}
	}
	return nil, fmt.Errorf("%w: no service matches %q", ErrServiceNotFound, opts.Selector)
}

// extractPort returns the best port from a Service, preferring well-known
// HTTP port names.
func extractPort(svc corev1.Service) int32 {
	preferredNames := map[string]bool{
		"http": true,
		"api":  true,
		"web":  true,
	}

	for _, p := range svc.Spec.Ports {
		if preferredNames[p.Name] {
			return p.Port
		}
	}

	for _, p := range svc.Spec.Ports {
		if p.Protocol == corev1.ProtocolTCP || p.Protocol == "" {
			return p.Port
		}
	}
	return 0
}
