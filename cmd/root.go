package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guimove/tablefit/internal/config"
	"github.com/guimove/tablefit/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tablefit",
	Short: "Table allocation and availability engine for restaurant bookings",
	Long: `TableFit answers two questions for a restaurant booking flow: can a party
be seated on a given day or at a given time, and which combination of free
tables should a confirmed booking get with as few empty seats as possible.

It reads the restaurant's tables, opening hours and booking policy together
with a snapshot of existing bookings, from a config file, JSON files, the
booking service's REST API, a Kubernetes ConfigMap or Postgres.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	d := config.Default()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: tablefit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Global flags that map to config. Defaults mirror config.Default so an
	// unset flag never clears a value from the config file.
	rootCmd.PersistentFlags().String("log-format", d.Log.Format, "log format: console, json")
	rootCmd.PersistentFlags().String("settings-source", d.Sources.Settings, "settings source: config, file, http, configmap")
	rootCmd.PersistentFlags().String("bookings-source", d.Sources.Bookings, "bookings source: none, file, http, postgres")
	rootCmd.PersistentFlags().String("api-url", "", "booking service REST API base URL")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres URL for the bookings table")
	rootCmd.PersistentFlags().String("kubeconfig", "", "path to kubeconfig file")
	rootCmd.PersistentFlags().String("kube-context", "", "Kubernetes context name")

	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("sources.settings", rootCmd.PersistentFlags().Lookup("settings-source"))
	_ = viper.BindPFlag("sources.bookings", rootCmd.PersistentFlags().Lookup("bookings-source"))
	_ = viper.BindPFlag("sources.api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("sources.database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("kubernetes.kubeconfig", rootCmd.PersistentFlags().Lookup("kubeconfig"))
	_ = viper.BindPFlag("kubernetes.context", rootCmd.PersistentFlags().Lookup("kube-context"))
}

func loadConfig() error {
	// A .env file is optional; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	c, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.Setup(level, cfg.Log.Format, os.Stderr)
}
