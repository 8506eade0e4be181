package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wayfind-go/wayfind/internal/routefile"
	"github.com/wayfind-go/wayfind/pkg/devtools"
	"github.com/wayfind-go/wayfind/pkg/history"
	"github.com/wayfind-go/wayfind/pkg/middleware"
	"github.com/wayfind-go/wayfind/pkg/router"
)

func serveCmd() *cobra.Command {
	var (
		file string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the navigation inspector for a route file",
		Long: `Compile a route file, attach the devtools inspector and Prometheus
metrics, and serve them over HTTP.

Endpoints:
  GET /debug/events → WebSocket navigation event stream
  GET /debug/routes → JSON route table
  GET /metrics      → Prometheus metrics
  GET /go?to=PATH   → trigger a navigation (drives the event stream)

Examples:
  wayfind serve -f routes.yaml
  wayfind serve -f routes.yaml --addr :7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(file, addr)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.yaml", "Route file to serve")
	cmd.Flags().StringVar(&addr, "addr", "localhost:6060", "Address to listen on")

	return cmd
}

func runServe(file, addr string) error {
	records, err := routefile.Load(file)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r, err := router.New(
		router.WithHistory(history.NewMemory("/")),
		router.WithRoutes(records...),
		router.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("compile %s: %w", file, err)
	}
	defer r.Close()

	detach := r.Use(middleware.Prometheus())
	defer detach()

	insp := devtools.NewInspector(r, devtools.WithInspectorLogger(logger))
	defer insp.Close()

	mux := chi.NewRouter()
	mux.Use(chimiddleware.Recoverer)
	mux.Mount("/debug", insp.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/go", func(w http.ResponseWriter, req *http.Request) {
		to := req.URL.Query().Get("to")
		if to == "" {
			http.Error(w, "missing to parameter", http.StatusBadRequest)
			return
		}
		fail, err := r.Push(req.Context(), router.To(to))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if fail != nil {
			fmt.Fprintf(w, "navigation failed: %s\n", fail.Kind)
			return
		}
		fmt.Fprintf(w, "navigated to %s\n", r.CurrentLocation().FullPath)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printBanner()
	info("inspector on http://%s/debug/routes", addr)
	info("metrics on http://%s/metrics", addr)
	info("trigger navigations via http://%s/go?to=/some/path", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
