// Package config holds the settings of an IIROC enforcement scrape.
//
// Default returns the fixed values of the original scrape job (listing URL, link host,
// browser User-Agent, candidate selector and the /Scrapes and /Logs paths). LoadFile
// overlays a YAML file on those defaults, and command-line flags override both.
package config
