// Package storage writes scraped enforcement notices to dated CSV files.
//
// Each run produces <dir>/<MMDDYYYY>_IIROC_Scrape.csv with a Name,Link header. Rows are
// written in one of two layouts: the legacy single-field layout, where title and link are
// joined by a comma inside one unquoted field, or a proper two-column CSV.
// The default output directory is /Scrapes.
package storage
