package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/episim/episim/api"
)

var (
	serveAddr     string
	serveScenario string
	serveSeed     bool
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the region registry over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := loadRegistry(serveScenario, serveSeed)
		if err != nil {
			logrus.Fatalf("Failed to load regions: %v", err)
		}
		if logrus.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := &http.Server{
			Addr:    serveAddr,
			Handler: api.NewRouter(api.NewHandler(reg)),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatalf("listen: %v", err)
			}
		}()
		logrus.Warnf("Serving %d regions on %s", reg.Len(), serveAddr)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Warn("Shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Fatalf("Server shutdown: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveScenario, "scenario", "", "Scenario YAML file to preload")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Preload the built-in demo regions")

	rootCmd.AddCommand(serveCmd)
}
