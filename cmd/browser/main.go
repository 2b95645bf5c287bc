package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpforge/adapters/internal/adapters/browser"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "browser",
	Short: "Headless-browser MCP adapter (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logging.ForLevel(config.LogLevel()))
		svc := browser.NewService(log)
		defer svc.Close()
		return browser.New(svc, log).ServeStdio()
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("exec-path", "", "Chrome/Chromium binary to launch (overrides BROWSER_EXEC_PATH)")
	rootCmd.PersistentFlags().Bool("headless", true, "Run the browser headless (overrides BROWSER_HEADLESS)")
	rootCmd.PersistentFlags().Int("nav-timeout", 0, "Per-operation timeout in seconds (overrides BROWSER_NAV_TIMEOUT_SECONDS)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info or debug (overrides LOG_LEVEL)")
	_ = viper.BindPFlag(config.KeyBrowserExecPath, rootCmd.PersistentFlags().Lookup("exec-path"))
	_ = viper.BindPFlag(config.KeyBrowserHeadless, rootCmd.PersistentFlags().Lookup("headless"))
	_ = viper.BindPFlag(config.KeyBrowserNavTimeout, rootCmd.PersistentFlags().Lookup("nav-timeout"))
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "browser: %v\n", err)
		os.Exit(1)
	}
}
