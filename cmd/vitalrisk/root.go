package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/vitalrisk/internal/config"
)

var (
	cfg        = config.Defaults()
	configPath string
)

// envFlags maps flags to the environment variables that seed their defaults.
var envFlags = map[string]string{
	"base-url": "VITALRISK_BASE_URL",
	"api-key":  "VITALRISK_API_KEY",
	"dsn":      "VITALRISK_DB_URL",
}

var rootCmd = &cobra.Command{
	Use:          "vitalrisk",
	Short:        "Patient vital-sign risk assessment",
	Long:         "Fetches patient records from the assessment API, scores blood pressure, temperature and age, and submits the high-risk, fever and data-quality summary.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		return cfg.LoadFromFile(configPath, func(name string) bool {
			if cmd.Flags().Changed(name) {
				return true
			}
			env, ok := envFlags[name]
			return ok && os.Getenv(env) != ""
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("VITALRISK_DB_URL"), "Postgres connection string (or set VITALRISK_DB_URL); enables run persistence")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
}
