package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bmohb/iiroc-scrape/internal/config"
	"github.com/bmohb/iiroc-scrape/internal/logger"
	"github.com/bmohb/iiroc-scrape/internal/pipeline"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig    string
	flagURL       string
	flagOutputDir string
	flagLogFile   string
	flagLogFormat string
	flagRowFormat string
	flagYear      int
	flagTimeout   time.Duration
	flagFormat    string
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iiroc-scrape",
		Short: "Scrape IIROC enforcement notices into a dated CSV",
		Long: `A CLI tool that fetches the IIROC enforcement listing page, extracts the
documents published this year and writes them to /Scrapes/<MMDDYYYY>_IIROC_Scrape.csv.
Progress is appended to /Logs/pylog_IIROC.txt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file overlaid on the defaults")
	cmd.Flags().StringVar(&flagURL, "url", config.DefaultURL, "Enforcement listing page URL")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", config.DefaultOutputDir, "Directory for the dated CSV")
	cmd.Flags().StringVar(&flagLogFile, "log-file", config.DefaultLogFile, "Run log file (appended)")
	cmd.Flags().StringVar(&flagLogFormat, "log-format", string(config.LogText), "Run log format: text or json")
	cmd.Flags().StringVar(&flagRowFormat, "row-format", string(config.RowLegacySingleField), "CSV rows: legacy-single-field or proper-two-column")
	cmd.Flags().IntVar(&flagYear, "year", 0, "Document year to keep (default current year)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().StringVar(&flagFormat, "format", string(FormatText), "Summary output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// loadConfig builds the run configuration from the optional config file and explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		cfg, err = config.LoadFile(flagConfig)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = flagURL
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = config.LogFormat(strings.ToLower(flagLogFormat))
	}
	if flags.Changed("row-format") {
		cfg.RowFormat = config.RowFormat(strings.ToLower(flagRowFormat))
	}
	if flags.Changed("year") {
		cfg.Year = flagYear
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRunLog opens the run log. A log that cannot be opened only produces a warning.
func openRunLog(cfg *config.Config) *logger.Logger {
	log, err := logger.Open(cfg.LogFile, cfg.LogFormat)
	if err != nil {
		logger.Warn(fmt.Sprintf("%v; continuing without run log", err), logger.Fields{"log_file": cfg.LogFile})
		return logger.New(logger.LevelInfo, cfg.LogFormat, io.Discard)
	}
	return log
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, config.LogText, cmd.ErrOrStderr()))

	if flagVerbose {
		logger.Debug(fmt.Sprintf("Scraping %s into %s (year %d)", cfg.URL, cfg.OutputDir, cfg.RunYear()), nil)
	}

	log := openRunLog(cfg)
	defer log.Close()
	if flagVerbose {
		log.SetLevel(logger.LevelDebug)
	}

	result, err := pipeline.Run(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	logger.Debug(fmt.Sprintf("Wrote %d entries to %s", len(result.Entries), result.OutputPath), nil)

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("Run failed", nil, err)
		stop()
		os.Exit(ExitError)
	}
}
