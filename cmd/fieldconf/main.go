package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/fieldconf/internal/bootstrap"
	"github.com/creamcroissant/fieldconf/internal/config"
	"github.com/creamcroissant/fieldconf/internal/support/logging"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	lang       string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "fieldconf",
	Short:         "Hook-driven field configuration and validation",
	Long:          `fieldconf loads model field configurations and validates, renders and updates records against them.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if lang == "" {
			lang = cfg.I18n.DefaultLang
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./fieldconf.yaml)")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Language for error messages (default i18n.default_lang)")
}

// newEngine builds the engine with a logger writing to stderr.
func newEngine() (*bootstrap.Engine, error) {
	logger := logging.New(logging.Options{
		Level:     cfg.Log.SlogLevel(),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	return bootstrap.BuildEngine(cfg, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
