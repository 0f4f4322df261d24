package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all calendar client metrics
const namespace = "calendar_client"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes client version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Client version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

var initOnce sync.Once

// Init registers runtime collectors and sets version information. Safe to call
// more than once; only the first call registers collectors.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// WriteFile dumps the registry to path in the Prometheus text format, for
// pickup by a node_exporter textfile collector.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
