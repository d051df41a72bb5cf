package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/oliver-os/canvas"
	httpAdapter "github.com/oliver-os/canvas/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the canvas engine in server mode, exposing a JSON command API, an SSE event stream, and Prometheus metrics over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		reg := prometheus.NewRegistry()
		eng, cfg, logger, err := newEngine(cmd, canvas.WithMetrics(reg))
		if err != nil {
			fmt.Printf("Error initializing canvas: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		ctx := context.Background()
		if err := eng.LoadRegistry(ctx); err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}

		// Load assets in the background so the server is ready immediately;
		// clients follow along via /assets/progress.
		go func() {
			if failed, err := eng.LoadAssets(context.Background()); err != nil {
				logger.Error("asset load aborted", "err", err)
			} else if failed > 0 {
				logger.Warn("asset load finished with failures", "failed", failed)
			}
		}()

		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			addr = cfg.HTTPAddr
		}

		r := chi.NewRouter()
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		r.Mount("/", httpAdapter.NewHandler(eng, logger))

		srv := &http.Server{
			Addr:    addr,
			Handler: r,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Canvas Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Canvas Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides CANVAS_HTTP_ADDR)")
}
