package kube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/guimove/tablefit/internal/model"
)

var (
	ErrConfigMapNotFound   = errors.New("settings configmap not found")
	ErrConfigMapKeyMissing = errors.New("settings key missing from configmap")
)

// DefaultSettingsKey is the ConfigMap data key holding the settings JSON.
const DefaultSettingsKey = "settings.json"

// ConfigMapSettings reads restaurant settings from a ConfigMap, letting the
// dining-room layout be managed alongside the booking service's manifests.
type ConfigMapSettings struct {
	Client    kubernetes.Interface
	Namespace string
	Name      string
	Key       string
}

// BackendType returns "configmap".
func (c *ConfigMapSettings) BackendType() string { return "configmap" }

// Ping checks that the ConfigMap can be read.
func (c *ConfigMapSettings) Ping(ctx context.Context) error {
	_, err := c.get(ctx)
	return err
}

// Settings decodes the settings JSON stored under Key.
func (c *ConfigMapSettings) Settings(ctx context.Context) (*model.Settings, error) {
	data, err := c.get(ctx)
	if err != nil {
		return nil, err
	}

	key := c.key()
	raw, ok := data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s has no %q", ErrConfigMapKeyMissing, c.namespace(), c.Name, key)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("parsing %s/%s[%s]: %w", c.namespace(), c.Name, key, err)
	}
	return &settings, nil
}

func (c *ConfigMapSettings) get(ctx context.Context) (map[string]string, error) {
	cm, err := c.Client.CoreV1().ConfigMaps(c.namespace()).Get(ctx, c.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s/%s", ErrConfigMapNotFound, c.namespace(), c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading configmap %s/%s: %w", c.namespace(), c.Name, err)
	}
	return cm.Data, nil
}

func (c *ConfigMapSettings) key() string {
	if c.Key == "" {
		return DefaultSettingsKey
	}
	return c.Key
}

func (c *ConfigMapSettings) namespace() string {
	if c.Namespace == "" {
		return metav1.NamespaceDefault
	}
	return c.Namespace
}
