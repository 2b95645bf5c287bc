package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpforge/adapters/internal/adapters/bigquery"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "BigQuery MCP adapter (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logging.ForLevel(config.LogLevel()))
		svc := bigquery.NewService(log)
		defer svc.Close()
		return bigquery.New(svc, log).ServeStdio()
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("project", "", "Google Cloud project ID (overrides BIGQUERY_PROJECT_ID)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info or debug (overrides LOG_LEVEL)")
	_ = viper.BindPFlag(config.KeyBigQueryProjectID, rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bigquery: %v\n", err)
		os.Exit(1)
	}
}
