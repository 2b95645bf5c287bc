package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpforge/adapters/internal/adapters/forge"
	"github.com/mcpforge/adapters/internal/config"
	"github.com/mcpforge/adapters/internal/logging"
	"github.com/mcpforge/adapters/internal/registry"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Adapter-creator MCP server (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logging.ForLevel(config.LogLevel()))

		reg, err := registry.Default(log)
		if err != nil {
			return fmt.Errorf("resolve registration document: %w", err)
		}

		svc := forge.NewService(forge.Options{
			Fs:         afero.NewOsFs(),
			ServersDir: config.ServersDir(),
			Registry:   reg,
			NodeBin:    config.NodeBin(),
			RunTimeout: time.Duration(config.RunTimeoutSeconds()) * time.Second,
			Logger:     log,
		})
		return forge.New(svc, log).ServeStdio()
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("servers-dir", "", "Directory holding generated adapter sources (overrides SERVERS_DIR)")
	rootCmd.PersistentFlags().String("registry", "", "Path of the host registration document (overrides REGISTRY_PATH)")
	rootCmd.PersistentFlags().String("node", "", "Node binary used for trial runs (overrides NODE_BIN)")
	rootCmd.PersistentFlags().Int("run-timeout", 0, "Trial-run window in seconds (overrides RUN_TIMEOUT_SECONDS)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info or debug (overrides LOG_LEVEL)")
	_ = viper.BindPFlag(config.KeyServersDir, rootCmd.PersistentFlags().Lookup("servers-dir"))
	_ = viper.BindPFlag(config.KeyRegistryPath, rootCmd.PersistentFlags().Lookup("registry"))
	_ = viper.BindPFlag(config.KeyNodeBin, rootCmd.PersistentFlags().Lookup("node"))
	_ = viper.BindPFlag(config.KeyRunTimeout, rootCmd.PersistentFlags().Lookup("run-timeout"))
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "forge: %v\n", err)
		os.Exit(1)
	}
}
