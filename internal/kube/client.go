package kube

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client bundles a clientset with the REST config it was built from.
type Client struct {
	Clientset  kubernetes.Interface
	RESTConfig *rest.Config
	Context    string // empty when in-cluster
	InCluster  bool
}

// NewClient creates a Kubernetes clientset and reports the context in use.
// The kubeconfig is resolved in this order:
// 1. Explicit path (--kubeconfig / kubernetes.kubeconfig)
// 2. KUBECONFIG environment variable
// 3. ~/.kube/config
// 4. In-cluster config, when tablefit runs as a pod next to the booking service
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	cfg, current, err := restConfig(kubeconfig, kubeContext)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return &Client{
		Clientset:  clientset,
		RESTConfig: cfg,
		Context:    current,
		InCluster:  kubeconfigPath(kubeconfig) == "",
	}, nil
}

func restConfig(kubeconfig, kubeContext string) (*rest.Config, string, error) {
	path := kubeconfigPath(kubeconfig)
	if path == "" {
		cfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, "", fmt.Errorf("no kubeconfig found and not running in-cluster: %w", err)
		}
		return cfg, "", nil
	}

	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: path},
		&clientcmd.ConfigOverrides{CurrentContext: kubeContext},
	)

	raw, err := loader.RawConfig()
	if err != nil {
		return nil, "", err
	}
	current := raw.CurrentContext
	if kubeContext != "" {
		current = kubeContext
	}

	cfg, err := loader.ClientConfig()
	if err != nil {
		return nil, "", err
	}
	return cfg, current, nil
}

// kubeconfigPath returns the first kubeconfig candidate that applies, or ""
// to fall back to in-cluster config.
func kubeconfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	def := filepath.Join(home, ".kube", "config")
	if _, err := os.Stat(def); err != nil {
		return ""
	}
	return def
}
