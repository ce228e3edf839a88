package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/singlebase/singlebase-go/internal/api"
	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/metrics"
)

var (
	metricsOnce     sync.Once
	metricsRegistry *prometheus.Registry
	cliMetrics      *metrics.Metrics
)

// sharedMetrics returns the process-wide collectors, creating them on first use.
func sharedMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		metricsRegistry = prometheus.NewRegistry()
		cliMetrics = metrics.New(metricsRegistry)
	})
	return cliMetrics
}

type clientFactory struct {
	overrides config.Overrides
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		overrides: config.Overrides{
			Profile:     flags.Profile,
			APIURL:      flags.APIURL,
			EndpointKey: flags.EndpointKey,
		},
	}
}

// client resolves settings and builds an API client. The resolved settings
// are returned so callers can read the default bearer token.
func (f *clientFactory) client() (*api.Client, config.Resolved, error) {
	resolved, err := config.Resolve(f.overrides)
	if err != nil {
		return nil, config.Resolved{}, err
	}

	cfg := api.Config{
		APIKey:      resolved.APIKey,
		APIURL:      resolved.APIURL,
		EndpointKey: resolved.EndpointKey,
		Headers:     resolved.Headers,
		Metrics:     sharedMetrics(),
	}
	if resolved.Timeout > 0 && resolved.Timeout != api.DefaultTimeout {
		cfg.HTTPClient = api.NewHTTPClient(resolved.Timeout)
	}

	client, err := api.New(cfg)
	if err != nil {
		return nil, config.Resolved{}, err
	}
	return client, resolved, nil
}

// writeMetricsSummary prints the gathered families in the Prometheus text
// exposition format.
func writeMetricsSummary(w io.Writer) {
	sharedMetrics()
	families, err := metricsRegistry.Gather()
	if err != nil {
		_, _ = fmt.Fprintf(w, "metrics unavailable: %v\n", err)
		return
	}

	for _, mf := range families {
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			_, _ = fmt.Fprintf(w, "metrics unavailable: %v\n", err)
			return
		}
	}
}
