package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/velora/commerce/internal/common/constants"
	"github.com/velora/commerce/internal/log"
)

func Start() {
	logger := log.InitLogger("/var/log/velora-storefront.log", os.Getenv("APP_ENV")).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "storefront"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "server",
		Short: "Run the storefront HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			RunStorefrontService(cmd.Context())
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
