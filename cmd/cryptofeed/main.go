package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpforge/adapters/internal/adapters/cryptofeed"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "cryptofeed",
	Short: "Crypto market-feed MCP adapter (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logging.ForLevel(config.LogLevel()))
		svc := cryptofeed.NewService(log)
		return cryptofeed.New(svc, log).ServeStdio()
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("log-level", "", "Log level: info or debug (overrides LOG_LEVEL)")
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cryptofeed: %v\n", err)
		os.Exit(1)
	}
}
