package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

const (
	DefaultURL       = "http://www.iiroc.ca/industry/enforcement/Pages/Enforcement.aspx"
	DefaultLinkHost  = "http://www.iiroc.ca"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/45.0.2454.85 Safari/537.36"
	DefaultSelector  = `[class="ms-vb"]`
	DefaultYearPath  = "/Documents/"
	DefaultOutputDir = "/Scrapes"
	DefaultLogFile   = "/Logs/pylog_IIROC.txt"
	DefaultTimeout   = 30 * time.Second

	// FileDateLayout is MMDDYYYY, used for the output file name and the log banner.
	FileDateLayout = "01022006"
)

// RowFormat selects how entries are laid out in the output CSV
type RowFormat string

const (
	// RowLegacySingleField writes "<title>,<link>" as one unquoted field per row.
	RowLegacySingleField RowFormat = "legacy-single-field"
	// RowTwoColumn writes title and link as two properly quoted CSV columns.
	RowTwoColumn RowFormat = "proper-two-column"
)

// LogFormat selects the run log line format
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

var (
	ErrInvalidRowFormat = errors.New("invalid row format")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidSelector  = errors.New("invalid candidate selector")
)

// Config holds every setting of a scrape run
type Config struct {
	URL            string        `yaml:"url"`
	LinkHost       string        `yaml:"link_host"`
	UserAgent      string        `yaml:"user_agent"`
	Selector       string        `yaml:"selector"`
	YearPathPrefix string        `yaml:"year_path_prefix"`
	OutputDir      string        `yaml:"output_dir"`
	LogFile        string        `yaml:"log_file"`
	LogFormat      LogFormat     `yaml:"log_format"`
	RowFormat      RowFormat     `yaml:"row_format"`
	Timeout        time.Duration `yaml:"timeout"`

	// Year overrides the run year used for the document path filter. Zero means
	// the current year according to Now.
	Year int `yaml:"year"`

	// Now is the clock used for the run year and file dates
	Now func() time.Time `yaml:"-"`
}

// Default returns the configuration of the IIROC enforcement scrape
func Default() *Config {
	return &Config{
		URL:            DefaultURL,
		LinkHost:       DefaultLinkHost,
		UserAgent:      DefaultUserAgent,
		Selector:       DefaultSelector,
		YearPathPrefix: DefaultYearPath,
		OutputDir:      DefaultOutputDir,
		LogFile:        DefaultLogFile,
		LogFormat:      LogText,
		RowFormat:      RowLegacySingleField,
		Timeout:        DefaultTimeout,
		Now:            time.Now,
	}
}

// LoadFile reads a YAML file and overlays it on the defaults.
// Keys absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration and compiles the candidate selector
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}

	switch c.RowFormat {
	case RowLegacySingleField, RowTwoColumn:
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidRowFormat, c.RowFormat, RowLegacySingleField, RowTwoColumn)
	}

	switch c.LogFormat {
	case LogText, LogJSON:
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidLogFormat, c.LogFormat, LogText, LogJSON)
	}

	if _, err := c.CandidateSelector(); err != nil {
		return err
	}

	return nil
}

// CandidateSelector compiles Selector into a cascadia matcher
func (c *Config) CandidateSelector() (cascadia.Selector, error) {
	sel, err := cascadia.Compile(c.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, c.Selector, err)
	}
	return sel, nil
}

// RunYear returns the year used to scope document links
func (c *Config) RunYear() int {
	if c.Year != 0 {
		return c.Year
	}
	return c.now().Year()
}

// FileDate returns today's date formatted as MMDDYYYY
func (c *Config) FileDate() string {
	return c.now().Format(FileDateLayout)
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
