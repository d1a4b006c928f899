// Package notice provides the enforcement notice entry type scraped from the IIROC listing page.
//
// An Entry pairs the descriptive title of an enforcement document with its absolute link.
// Entries are plain comparable values, so two entries are duplicates exactly when both
// fields match; Dedupe removes such duplicates while keeping first-seen order.
package notice
