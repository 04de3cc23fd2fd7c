package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"attentionos/internal/app"
	"attentionos/pkg/config"
	"attentionos/pkg/logger"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configFile string
	source     string
	sourceURL  string
	dbPath     string
	timeZone   string
	logLevel   string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "focusctl",
		Short: "Inspect AttentionOS focus grades, streaks and achievements",
		Long: `focusctl reads tracked work sessions from the local SQLite store or the
tracking backend and prints the derived focus metrics.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLoggers(logger.ParseLevel(opts.logLevel), false)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "config.yml", "path to config file")
	flags.StringVar(&opts.source, "source", "", "session source: sqlite or http (overrides config)")
	flags.StringVar(&opts.sourceURL, "url", "", "tracking backend base URL for the http source")
	flags.StringVar(&opts.dbPath, "db", "", "path to the SQLite database (overrides config)")
	flags.StringVar(&opts.timeZone, "tz", "", "IANA time zone for calendar days (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(NewReportCommand(opts))
	rootCmd.AddCommand(NewAchievementsCommand(opts))
	rootCmd.AddCommand(NewImportCommand(opts))
	rootCmd.AddCommand(NewBackupCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// config loads the config file and applies flag overrides
func (o *options) config() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}

	if o.sourceURL != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.BaseURL = o.sourceURL
	}
	if o.source != "" {
		cfg.Source.Kind = o.source
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.timeZone != "" {
		cfg.Analytics.TimeZone = o.timeZone
		if _, err := cfg.Location(); err != nil {
			return nil, err
		}
	}

	switch cfg.Source.Kind {
	case config.SourceSQLite:
	case config.SourceHTTP:
		if cfg.Source.BaseURL == "" {
			return nil, fmt.Errorf("the http source needs --url or source.base_url")
		}
	default:
		return nil, fmt.Errorf("unknown source %q (want sqlite or http)", cfg.Source.Kind)
	}

	return cfg, nil
}

// open builds the analytics stack for a subcommand
func (o *options) open() (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session source: %w", err)
	}
	return a, nil
}
