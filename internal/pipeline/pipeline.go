// Package pipeline runs one IIROC enforcement scrape from fetch to CSV.
//
// The stages run strictly in sequence: fetch the listing page, parse it, extract entries,
// drop duplicates and write the dated CSV. Each stage logs its progress to the run log,
// and any failure is logged before it is returned, which ends the run without writing output.
package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bmohb/iiroc-scrape/internal/config"
	"github.com/bmohb/iiroc-scrape/internal/logger"
	"github.com/bmohb/iiroc-scrape/internal/notice"
	"github.com/bmohb/iiroc-scrape/internal/scraper"
	"github.com/bmohb/iiroc-scrape/internal/storage"
	"github.com/bmohb/iiroc-scrape/internal/timer"
)

// RunLabel names the whole-run timing in metrics
const RunLabel = "iiroc-scrape"

// Result describes a finished run
type Result struct {
	URL        string                 `json:"url"`
	OutputPath string                 `json:"output_path"`
	Year       int                    `json:"year"`
	Entries    []notice.Entry         `json:"entries"`
	Stats      scraper.Stats          `json:"stats"`
	Duplicates int                    `json:"duplicates"`
	Elapsed    string                 `json:"elapsed"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// Run performs a single scrape described by cfg, logging progress to log
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Result, error) {
	metrics := logger.NewMetrics()
	tm := timer.New(metrics)
	start := tm.Start()

	fileDate := cfg.FileDate()
	log.Banner(fileDate)

	candidates, err := cfg.CandidateSelector()
	if err != nil {
		log.Error("Invalid configuration", nil, err)
		return nil, err
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		log.Error("Preparing output directory failed", logger.Fields{"dir": cfg.OutputDir}, err)
		return nil, fmt.Errorf("preparing output: %w", err)
	}
	outputPath := store.OutputPath(fileDate)

	fetcher := scraper.NewFetcher(cfg)

	step := tm.Start()
	page, err := fetcher.Fetch(ctx)
	if err != nil {
		log.Error("Fetching listing page failed", logger.Fields{"url": fetcher.URL()}, err)
		return nil, fmt.Errorf("fetching listing page: %w", err)
	}
	tm.End(step, "fetch")
	metrics.AddCounter("page.bytes", int64(len(page)))

	doc, err := scraper.Parse(bytes.NewReader(page))
	if err != nil {
		log.Error("Parsing listing page failed", nil, err)
		return nil, fmt.Errorf("parsing listing page: %w", err)
	}
	log.Info("Scraping URL: "+fetcher.URL(), logger.Fields{"url": fetcher.URL()})

	year := cfg.RunYear()
	extractor := scraper.NewExtractor(candidates, cfg.LinkHost, cfg.YearPathPrefix, year)
	entries, stats, err := extractor.Extract(doc)
	if err != nil {
		log.Error("Extracting entries failed", nil, err)
		return nil, fmt.Errorf("extracting entries: %w", err)
	}
	recordStats(metrics, stats)
	log.Debug(fmt.Sprintf("Classified %d candidates, %d matched for %s", stats.Candidates, stats.Matched, extractor.YearPath()), logger.Fields{
		"candidates":             stats.Candidates,
		"matched":                stats.Matched,
		"skipped_no_anchor":      stats.NoAnchor,
		"skipped_wrong_year":     stats.WrongYear,
		"skipped_no_date_marker": stats.NoDateMarker,
	})

	log.Info("Removing Duplicates", nil)
	unique := notice.Dedupe(entries)
	duplicates := len(entries) - len(unique)
	metrics.AddCounter("entries.duplicates", int64(duplicates))

	log.Info("Creating CSV", logger.Fields{"path": outputPath})
	log.Info("Writing to CSV", logger.Fields{"rows": len(unique), "row_format": string(cfg.RowFormat)})
	if err := store.WriteEntries(outputPath, unique, cfg.RowFormat); err != nil {
		log.Error("Writing CSV failed", logger.Fields{"path": outputPath}, err)
		return nil, fmt.Errorf("writing output: %w", err)
	}
	metrics.AddCounter("entries.written", int64(len(unique)))

	elapsed := tm.End(start, RunLabel)
	log.Info("Program took "+elapsed+" to complete.", nil)

	return &Result{
		URL:        fetcher.URL(),
		OutputPath: outputPath,
		Year:       year,
		Entries:    unique,
		Stats:      stats,
		Duplicates: duplicates,
		Elapsed:    elapsed,
		Metrics:    metrics.GetSnapshot(),
	}, nil
}

func recordStats(m *logger.Metrics, s scraper.Stats) {
	m.AddCounter("candidates.total", int64(s.Candidates))
	m.AddCounter("candidates."+scraper.Matched.String(), int64(s.Matched))
	m.AddCounter("candidates."+scraper.SkippedNoAnchor.String(), int64(s.NoAnchor))
	m.AddCounter("candidates."+scraper.SkippedWrongYear.String(), int64(s.WrongYear))
	m.AddCounter("candidates."+scraper.SkippedNoDateMarker.String(), int64(s.NoDateMarker))
}
