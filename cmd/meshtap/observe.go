package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gridwatch/meshtap/internal/link"
	"github.com/gridwatch/meshtap/internal/metrics"
	"github.com/gridwatch/meshtap/internal/observer"
	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/transport"
)

var (
	observeProm    string
	observeVerbose bool
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Decode the full pipeline, emitting one JSON event per line",
	Run: func(cmd *cobra.Command, args []string) {
		conn := openSource()
		defer conn.Close()
		observe(conn)
	},
}

func init() {
	observeCmd.Flags().StringVar(&observeProm, "prom", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")
	observeCmd.Flags().BoolVar(&observeVerbose, "verbose", false, "also emit the supplemental node table / topology / identity / version events")
	rootCmd.AddCommand(observeCmd)
}

func observe(r io.Reader) {
	sink := observer.NewJSONLineSink(os.Stdout)
	sink.Verbose = observeVerbose

	obs := observer.NewObserver(sink)
	pvappRx := pvapp.NewReceiver(obs)
	transportRx := transport.NewReceiver(pvappRx)
	rx := link.NewReceiver(transportRx)

	if observeProm != "" {
		startPrometheusServer(observeProm)
		stop := publishMetricsPeriodically(rx, transportRx, pvappRx, obs)
		defer stop()
	}

	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			rx.Write(buf[:n])
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Println("error reading:", err)
			os.Exit(1)
		}
	}
}

// startPrometheusServer serves /metrics on addr in the background,
// mirroring the teacher's prometheusx.MustStartPrometheus but wired
// directly to promhttp, since this module does not otherwise need
// prometheusx's health-check and autodiscovery machinery.
func startPrometheusServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println("prometheus server error:", err)
		}
	}()
	return srv
}

// publishMetricsPeriodically snapshots and resets each layer's counters
// once a second, publishing the deltas to internal/metrics. It returns a
// function that stops the ticker.
func publishMetricsPeriodically(linkRx *link.Receiver, transportRx *transport.Receiver, pvappRx *pvapp.Receiver, obs *observer.Observer) func() {
	ticker := time.NewTicker(time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				metrics.PublishLink(linkRx.Counters())
				linkRx.ResetCounters()
				metrics.PublishTransport(transportRx.Counters())
				transportRx.ResetCounters()
				metrics.PublishPVApp(pvappRx.Counters())
				pvappRx.ResetCounters()
				metrics.PublishObserver(obs.Counters())
				obs.ResetCounters()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
