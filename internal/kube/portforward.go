package kube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

// Endpoint is a reachable base URL for a cluster service. Out of cluster it
// is backed by a port-forward tunnel that Close tears down.
type Endpoint struct {
	URL     string
	PodName string // set when tunnelled

	stop chan struct{}
	once sync.Once
}

// Close terminates the tunnel, if any. It is safe to call more than once.
func (e *Endpoint) Close() {
	if e.stop == nil {
		return
	}
	e.once.Do(func() { close(e.stop) })
}

// Connect returns an endpoint for svc. In cluster the service DNS name is
// used directly; from a laptop a port-forward to a backing pod is opened.
func Connect(ctx context.Context, c *Client, svc *Service) (*Endpoint, error) {
	if c.InCluster {
		return &Endpoint{URL: svc.URL()}, nil
	}

	pod, sp, err := backingPod(ctx, c.Clientset, svc)
	if err != nil {
		return nil, err
	}

	localPort, stop, err := startPortForward(c.RESTConfig, c.Clientset, pod.Name, svc.Namespace, resolveTargetPort(sp, pod))
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		URL:     fmt.Sprintf("http://127.0.0.1:%d", localPort),
		PodName: pod.Name,
		stop:    stop,
	}, nil
}

// backingPod finds a running pod behind svc and the ServicePort in use.
func backingPod(ctx context.Context, client kubernetes.Interface, svc *Service) (*corev1.Pod, corev1.ServicePort, error) {
	obj, err := client.CoreV1().Services(svc.Namespace).Get(ctx, svc.Name, metav1.GetOptions{})
	if err != nil {
		return nil, corev1.ServicePort{}, fmt.Errorf("getting service %s/%s: %w", svc.Namespace, svc.Name, err)
	}
	if len(obj.Spec.Selector) == 0 {
		return nil, corev1.ServicePort{}, fmt.Errorf("service %s/%s has no pod selector", svc.Namespace, svc.Name)
	}

	var sp *corev1.ServicePort
	for i := range obj.Spec.Ports {
		if obj.Spec.Ports[i].Port == svc.Port {
			sp = &obj.Spec.Ports[i]
			break
		}
	}
	if sp == nil {
		return nil, corev1.ServicePort{}, fmt.Errorf("service %s/%s has no port %d", svc.Namespace, svc.Name, svc.Port)
	}

	pods, err := client.CoreV1().Pods(svc.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: metav1.FormatLabelSelector(&metav1.LabelSelector{MatchLabels: obj.Spec.Selector}),
	})
	if err != nil {
		return nil, corev1.ServicePort{}, fmt.Errorf("listing pods for service %s/%s: %w", svc.Namespace, svc.Name, err)
	}
	for i := range pods.Items {
		if pods.Items[i].Status.Phase == corev1.PodRunning {
			return &pods.Items[i], *sp, nil
		}
	}
	return nil, corev1.ServicePort{}, fmt.Errorf("no running pod found for service %s/%s", svc.Namespace, svc.Name)
}

// resolveTargetPort maps a ServicePort's targetPort to a container port:
// a number is used as is, a name is looked up in the pod's containers, and
// anything unresolved falls back to the service port.
func resolveTargetPort(sp corev1.ServicePort, pod *corev1.Pod) int32 {
	tp := sp.TargetPort
	if tp.IntValue() != 0 {
		return int32(tp.IntValue())
	}
	if name := tp.String(); name != "" && name != "0" {
		for _, c := range pod.Spec.Containers {
			for _, cp := range c.Ports {
				if cp.Name == name {
					return cp.ContainerPort
				}
			}
		}
	}
	return sp.Port
}

// startPortForward opens a tunnel to podPort on a random local port.
func startPortForward(restConfig *rest.Config, client kubernetes.Interface, podName, namespace string, podPort int32) (uint16, chan struct{}, error) {
	transport, upgrader, err := spdy.RoundTripperFor(restConfig)
	if err != nil {
		return 0, nil, fmt.Errorf("creating SPDY round-tripper: %w", err)
	}

	reqURL := client.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(podName).
		SubResource("portforward").
		URL()
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, reqURL)

	stop := make(chan struct{}, 1)
	ready := make(chan struct{})
	fw, err := portforward.New(dialer, []string{fmt.Sprintf("0:%d", podPort)}, stop, ready, io.Discard, io.Discard)
	if err != nil {
		return 0, nil, fmt.Errorf("creating port-forwarder: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- fw.ForwardPorts()
	}()

	select {
	case <-ready:
	case err := <-errCh:
		return 0, nil, fmt.Errorf("port-forward to %s/%s failed: %w", namespace, podName, err)
	}

	ports, err := fw.GetPorts()
	if err != nil {
		close(stop)
		return 0, nil, fmt.Errorf("getting forwarded ports: %w", err)
	}
	return ports[0].Local, stop, nil
}
