package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/castlebay/warroom-go/internal/adapters/metrics"
)

// NewMetricsCommand creates the metrics command group.
func NewMetricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Metrics exposition",
	}
	cmd.AddCommand(newMetricsServeCommand())
	return cmd
}

func newMetricsServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Prometheus exposition endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			if !metrics.IsEnabled() {
				return fmt.Errorf("metrics are disabled; set metrics.enabled in the config")
			}
			if addr == "" {
				addr = c.Config.Metrics.Addr
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			fmt.Printf("Serving metrics on %s/metrics\n", addr)
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: metrics.addr from config)")
	return cmd
}
