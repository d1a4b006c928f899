// Package cli implements the command-line interface for iiroc-scrape.
//
// The cli package provides the Cobra root command. With no flags it reproduces the
// scheduled scrape job: default URL, /Scrapes output and /Logs run log. Flags and an
// optional YAML config file override individual settings, and a short summary of the run
// is printed as text or JSON.
package cli
