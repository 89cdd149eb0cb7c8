package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli"
	weftHTTP "github.com/weftlabs/weft/pkg/adapters/http"
	"github.com/weftlabs/weft/pkg/adapters/ws"
	"github.com/weftlabs/weft/pkg/observability"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow engine over HTTP",
	Long:  `Starts the REST API for graph editing and execution, a WebSocket event stream on /ws, and Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		promReg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(promReg)

		hub := ws.NewHub(logger)
		go hub.Run()
		defer hub.Close()

		engine, cleanup, err := cli.BuildEngine(cfg, logger, metrics.Hooks(), hub.Hooks())
		if err != nil {
			fmt.Printf("Error initializing weft: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		if workflow, _ := cmd.Flags().GetString("workflow"); workflow != "" {
			wf, err := cli.LoadWorkflowFile(workflow)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if err := engine.LoadWorkflow(wf); err != nil {
				fmt.Printf("Error loading workflow: %v\n", err)
				os.Exit(1)
			}
			logger.Info("workflow loaded", "path", workflow, "nodes", len(wf.Nodes))
		}

		router := chi.NewRouter()
		router.Get("/ws", hub.Handler())
		router.Mount("/", weftHTTP.NewHandler(engine, logger, promReg))

		server := &http.Server{
			Addr:    cfg.Listen,
			Handler: router,
		}

		go func() {
			logger.Info("weft serving", "addr", cfg.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server failed", "error", err)
				os.Exit(1)
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		engine.Quiesce()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("workflow", "", "Workflow file to load at startup")
}
