package cli

import (
	"DocuGraph/internal/api"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP ingestion and query service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	router := gin.Default()
	api.RegisterRoutes(router, api.NewAPI(a.Pipeline, a.Batch, a.Query, a.Storages, a.Logger))

	server := &http.Server{
		Addr:    a.Config.Service.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info(fmt.Sprintf("HTTP server listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
