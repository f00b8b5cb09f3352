package kube

import (
	"context"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes/fake"
)

func pod(name string, phase corev1.PodPhase, labels map[string]string, ports ...corev1.ContainerPort) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "dining", Labels: labels},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "api", Ports: ports}},
		},
		Status: corev1.PodStatus{Phase: phase},
	}
}

func TestResolveTargetPort(t *testing.T) {
	p := pod("booking-api-0", corev1.PodRunning, nil, corev1.ContainerPort{Name: "http", ContainerPort: 3000})

	tests := []struct {
		name string
		sp   corev1.ServicePort
		want int32
	}{
		{"numeric target", corev1.ServicePort{Port: 80, TargetPort: intstr.FromInt32(8080)}, 8080},
		{"named target", corev1.ServicePort{Port: 80, TargetPort: intstr.FromString("http")}, 3000},
		{"unknown name falls back", corev1.ServicePort{Port: 80, TargetPort: intstr.FromString("grpc")}, 80},
		{"unset falls back", corev1.ServicePort{Port: 80}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTargetPort(tt.sp, p); got != tt.want {
				t.Errorf("resolveTargetPort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBackingPod(t *testing.T) {
	labels := map[string]string{"app": "booking-api"}
	client := fake.NewSimpleClientset( //nolint:staticcheck // NewClientset requires generated apply configs
		service("booking-api", "dining", nil, corev1.ServicePort{Name: "http", Port: 8000, TargetPort: intstr.FromString("http")}),
		pod("booking-api-pending", corev1.PodPending, labels),
		pod("booking-api-running", corev1.PodRunning, labels, corev1.ContainerPort{Name: "http", ContainerPort: 3000}),
	)

	p, sp, err := backingPod(context.Background(), client, &Service{Name: "booking-api", Namespace: "dining", Port: 8000})
	if err != nil {
		t.Fatalf("backingPod: %v", err)
	}
	if p.Name != "booking-api-running" {
		t.Errorf("pod = %s, want booking-api-running", p.Name)
	}
	if got := resolveTargetPort(sp, p); got != 3000 {
		t.Errorf("target port = %d, want 3000", got)
	}
}

func TestBackingPod_Errors(t *testing.T) {
	noSelector := service("headless", "dining", nil, corev1.ServicePort{Port: 8000})
	noSelector.Spec.Selector = nil

	client := fake.NewSimpleClientset( //nolint:staticcheck // NewClientset requires generated apply configs
		service("booking-api", "dining", nil, corev1.ServicePort{Name: "http", Port: 8000}),
		noSelector,
	)

	tests := []struct {
		name string
		svc  Service
		want string
	}{
		{"missing service", Service{Name: "gone", Namespace: "dining", Port: 8000}, "getting service"},
		{"no selector", Service{Name: "headless", Namespace: "dining", Port: 8000}, "no pod selector"},
		{"wrong port", Service{Name: "booking-api", Namespace: "dining", Port: 9999}, "has no port 9999"},
		{"no running pod", Service{Name: "booking-api", Namespace: "dining", Port: 8000}, "no running pod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := backingPod(context.Background(), client, &tt.svc)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConnect_InCluster(t *testing.T) {
	c := &Client{InCluster: true}
	ep, err := Connect(context.Background(), c, &Service{Name: "booking-api", Namespace: "dining", Port: 8000})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ep.Close()
	if ep.URL != "http://booking-api.dining.svc:8000" || ep.PodName != "" {
		t.Errorf("endpoint = %+v", ep)
	}
}

func TestEndpoint_CloseTwice(t *testing.T) {
	ep := &Endpoint{stop: make(chan struct{})}
	ep.Close()
	ep.Close()
	select {
	case <-ep.stop:
	default:
		t.Error("stop channel not closed")
	}
}
