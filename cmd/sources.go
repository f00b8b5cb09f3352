package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/guimove/tablefit/internal/config"
	"github.com/guimove/tablefit/internal/kube"
	"github.com/guimove/tablefit/internal/orchestrator"
	"github.com/guimove/tablefit/internal/publish"
	"github.com/guimove/tablefit/internal/snapshot"
)

func newKubeClient() (*kube.Client, error) {
	client, err := kube.NewClient(cfg.Kubernetes.Kubeconfig, cfg.Kubernetes.Context)
	if err != nil {
		return nil, fmt.Errorf("connecting to Kubernetes: %w", err)
	}
	return client, nil
}

// resolveAPIURL returns the booking API base URL. When sources.api_url is
// empty the service is looked up in Kubernetes and, outside the cluster,
// reached through a port-forward that the cleanup function closes.
func resolveAPIURL(ctx context.Context) (string, func(), error) {
	noop := func() {}
	if !cfg.UsesAPI() {
		return "", noop, nil
	}
	if !cfg.DiscoverAPI() {
		return cfg.Sources.APIURL, noop, nil
	}

	client, err := newKubeClient()
	if err != nil {
		return "", noop, err
	}
	svc, err := kube.FindService(ctx, client.Clientset, kube.ServiceOptions{
		Namespace: cfg.Kubernetes.Namespace,
		Name:      cfg.Kubernetes.APIService,
		Selector:  cfg.Kubernetes.APISelector,
	})
	if err != nil {
		return "", noop, err
	}
	ep, err := kube.Connect(ctx, client, svc)
	if err != nil {
		return "", noop, fmt.Errorf("connecting to %s/%s: %w", svc.Namespace, svc.Name, err)
	}

	ev := log.Info().
		Str("service", svc.Namespace+"/"+svc.Name).
		Str("url", ep.URL)
	if ep.PodName != "" {
		ev = ev.Str("context", client.Context).Str("pod", ep.PodName)
	}
	ev.Msg("discovered booking API")
	return ep.URL, ep.Close, nil
}

func httpSource(apiURL string) (*snapshot.HTTP, error) {
	return snapshot.NewHTTP(snapshot.HTTPOptions{
		BaseURL:  apiURL,
		Token:    cfg.Sources.APIToken,
		Timeout:  cfg.Sources.Timeout,
		CacheDir: cfg.Sources.CacheDir,
		CacheTTL: cfg.Sources.CacheTTL,
	})
}

// resolveSettings creates the settings source named by sources.settings.
func resolveSettings(apiURL string) (snapshot.SettingsSource, error) {
	switch cfg.Sources.Settings {
	case config.SourceConfig:
		restaurant := cfg.Restaurant
		return snapshot.NewStaticFromSnapshot(&restaurant, nil), nil
	case config.SourceFile:
		return snapshot.NewStatic(cfg.Sources.SettingsFile, ""), nil
	case config.SourceHTTP:
		return httpSource(apiURL)
	case config.SourceConfigMap:
		client, err := newKubeClient()
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("context", client.Context).
			Str("configmap", cfg.Kubernetes.Namespace+"/"+cfg.Kubernetes.ConfigMap).
			Msg("reading settings from configmap")
		return &kube.ConfigMapSettings{
			Client:    client.Clientset,
			Namespace: cfg.Kubernetes.Namespace,
			Name:      cfg.Kubernetes.ConfigMap,
			Key:       cfg.Kubernetes.Key,
		}, nil
	default:
		return nil, fmt.Errorf("%w: settings source %q", snapshot.ErrUnknownSource, cfg.Sources.Settings)
	}
}

// resolveBookings creates the booking source named by sources.bookings. The
// returned cleanup function is nil when there is nothing to release.
func resolveBookings(ctx context.Context, apiURL string) (snapshot.BookingSource, func(), error) {
	switch cfg.Sources.Bookings {
	case config.SourceNone, "":
		return snapshot.Empty{}, nil, nil
	case config.SourceFile:
		return snapshot.NewStatic("", cfg.Sources.BookingsFile), nil, nil
	case config.SourceHTTP:
		src, err := httpSource(apiURL)
		return src, nil, err
	case config.SourcePostgres:
		pg, err := snapshot.OpenPostgres(ctx, cfg.Sources.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: bookings source %q", snapshot.ErrUnknownSource, cfg.Sources.Bookings)
	}
}

// newOrchestrator wires the configured sources into an orchestrator and
// checks that both answer. The cleanup function must always be called.
func newOrchestrator(ctx context.Context, w io.Writer) (*orchestrator.Orchestrator, func(), error) {
	noop := func() {}

	apiURL, closeTunnel, err := resolveAPIURL(ctx)
	if err != nil {
		return nil, noop, fmt.Errorf("resolving booking API: %w", err)
	}

	settings, err := resolveSettings(apiURL)
	if err != nil {
		closeTunnel()
		return nil, noop, fmt.Errorf("creating settings source: %w", err)
	}
	bookings, closeBookings, err := resolveBookings(ctx, apiURL)
	if err != nil {
		closeTunnel()
		return nil, noop, fmt.Errorf("creating bookings source: %w", err)
	}
	cleanup := func() {
		if closeBookings != nil {
			closeBookings()
		}
		closeTunnel()
	}

	if err := settings.Ping(ctx); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("connecting to %s settings source: %w", settings.BackendType(), err)
	}
	if err := bookings.Ping(ctx); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("connecting to %s bookings source: %w", bookings.BackendType(), err)
	}

	o := orchestrator.New(settings, bookings, cfg)
	o.Writer = w
	return o, cleanup, nil
}

// newPublisher creates the S3 publisher from the publish section.
func newPublisher(ctx context.Context) (*publish.S3Publisher, error) {
	return publish.NewS3Publisher(ctx, publish.Options{
		Bucket:          cfg.Publish.Bucket,
		Prefix:          cfg.Publish.Prefix,
		Region:          cfg.Publish.Region,
		Endpoint:        cfg.Publish.Endpoint,
		AccessKeyID:     cfg.Publish.AccessKeyID,
		SecretAccessKey: cfg.Publish.SecretAccessKey,
	})
}
