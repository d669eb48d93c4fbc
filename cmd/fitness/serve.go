// ABOUTME: CLI command for starting the HTTP API.
// ABOUTME: Serves the diary endpoints until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/fitness/internal/api"
	"github.com/spf13/cobra"
)

var (
	serveListen  string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

ENDPOINTS:

  GET    /healthz
  POST   /v1/users/{user}/meals                      Log a food
  GET    /v1/users/{user}/meals?start=&end=          Meal diaries in a range
  GET    /v1/users/{user}/meals/{date}               One meal diary
  DELETE /v1/users/{user}/meals/{date}/{type}/{i}    Remove a food
  POST   /v1/users/{user}/exercise                   Log exercise
  GET    /v1/users/{user}/exercise/{date}            One exercise diary
  DELETE /v1/users/{user}/exercise/{date}/{i}?exercise_type=
  POST   /v1/users/{user}/weight                     Log a weight
  GET    /v1/users/{user}/weight?range=1w            Weight history
  GET    /v1/users/{user}/summary/nutrition          Weekly nutrition
  GET    /v1/users/{user}/summary/exercise           Weekly exercise
  GET    /v1/users/{user}/balance/{date}             Caloric balance

EXAMPLES:

  fitness serve
  fitness serve --listen :8080 --cors-origin https://example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveListen
		if addr == "" {
			addr = cfg.GetListen()
		}

		server := api.NewServer(tracker, api.Options{
			Logger:         logger,
			AllowedOrigins: serveOrigins,
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Debug("starting api", "backend", cfg.GetBackend())
		return server.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default: config listen, then 127.0.0.1:8080)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "allowed CORS origin (repeatable)")
	rootCmd.AddCommand(serveCmd)
}
