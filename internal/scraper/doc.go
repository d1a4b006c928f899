// Package scraper fetches the IIROC enforcement listing page and extracts notice entries.
//
// Fetcher performs the single HTTP GET with a browser User-Agent. Parse builds a goquery
// document from the markup. Extractor classifies every candidate cell: each one is either
// Matched with an Entry, or skipped because it has no anchor, links to a document from
// another year, or has no EN DASH separating the case prefix from the title.
package scraper
