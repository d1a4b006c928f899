package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmohb/iiroc-scrape/internal/notice"
	"golang.org/x/net/html"
)

const (
	// DateMarker separates the case number prefix from the document title (EN DASH)
	DateMarker = '–'

	// PrefixLen is the fixed-width label stripped from the start of every anchor text
	PrefixLen = 17
)

// Reason classifies what happened to a single candidate
type Reason int

const (
	Matched Reason = iota
	SkippedNoAnchor
	SkippedWrongYear
	SkippedNoDateMarker
)

func (r Reason) String() string {
	switch r {
	case Matched:
		return "matched"
	case SkippedNoAnchor:
		return "skipped_no_anchor"
	case SkippedWrongYear:
		return "skipped_wrong_year"
	case SkippedNoDateMarker:
		return "skipped_no_date_marker"
	default:
		return "unknown"
	}
}

// Outcome is the result of classifying one candidate. Entry is only set when Reason is Matched.
type Outcome struct {
	Reason Reason
	Entry  notice.Entry
}

// Stats counts candidate outcomes for one extraction pass
type Stats struct {
	Candidates   int `json:"candidates"`
	Matched      int `json:"matched"`
	NoAnchor     int `json:"skipped_no_anchor"`
	WrongYear    int `json:"skipped_wrong_year"`
	NoDateMarker int `json:"skipped_no_date_marker"`
}

// Add records one outcome
func (s *Stats) Add(r Reason) {
	s.Candidates++
	switch r {
	case Matched:
		s.Matched++
	case SkippedNoAnchor:
		s.NoAnchor++
	case SkippedWrongYear:
		s.WrongYear++
	case SkippedNoDateMarker:
		s.NoDateMarker++
	}
}

// Extractor turns listing page candidates into notice entries
type Extractor struct {
	candidates goquery.Matcher
	linkHost   string
	yearPath   string
}

// NewExtractor creates an Extractor. Only links whose href contains
// yearPrefix followed by year (e.g. "/Documents/2016") are kept.
func NewExtractor(candidates goquery.Matcher, linkHost, yearPrefix string, year int) *Extractor {
	return &Extractor{
		candidates: candidates,
		linkHost:   linkHost,
		yearPath:   yearPrefix + strconv.Itoa(year),
	}
}

// YearPath returns the href fragment a document link must contain
func (e *Extractor) YearPath() string {
	return e.yearPath
}

// Extract classifies every candidate in document order and returns the matched
// entries, duplicates included.
func (e *Extractor) Extract(doc *goquery.Document) ([]notice.Entry, Stats, error) {
	var stats Stats
	entries := make([]notice.Entry, 0)

	var classifyErr error
	doc.FindMatcher(e.candidates).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		out, err := e.Classify(sel)
		if err != nil {
			classifyErr = fmt.Errorf("candidate %d: %w", i, err)
			return false
		}

		stats.Add(out.Reason)
		if out.Reason == Matched {
			entries = append(entries, out.Entry)
		}
		return true
	})
	if classifyErr != nil {
		return nil, stats, classifyErr
	}

	return entries, stats, nil
}

// Classify decides whether a candidate holds a document link for the run year
func (e *Extractor) Classify(sel *goquery.Selection) (Outcome, error) {
	// Re-parse the candidate on its own so the anchor lookup cannot see the rest of the page.
	fragment, err := goquery.OuterHtml(sel)
	if err != nil {
		return Outcome{}, fmt.Errorf("serializing candidate: %w", err)
	}
	isolated, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Outcome{}, fmt.Errorf("parsing candidate: %w", err)
	}

	anchor := isolated.Find("a").First()
	if anchor.Length() == 0 {
		return Outcome{Reason: SkippedNoAnchor}, nil
	}

	href, _ := anchor.Attr("href")
	if !strings.Contains(href, e.yearPath) {
		return Outcome{Reason: SkippedWrongYear}, nil
	}

	text := leadingText(anchor.Get(0))
	if !strings.ContainsRune(text, DateMarker) {
		return Outcome{Reason: SkippedNoDateMarker}, nil
	}

	return Outcome{
		Reason: Matched,
		Entry: notice.Entry{
			Title: trimTitle(text),
			Link:  e.linkHost + href,
		},
	}, nil
}

// leadingText returns the text of n that precedes its first child element
func leadingText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil && c.Type == html.TextNode; c = c.NextSibling {
		sb.WriteString(c.Data)
	}
	return sb.String()
}

// trimTitle drops the fixed-width prefix and cuts the text at the first date marker.
// A marker inside the prefix yields an empty title.
func trimTitle(text string) string {
	runes := []rune(text)
	end := 0
	for i, r := range runes {
		if r == DateMarker {
			end = i
			break
		}
	}
	if end <= PrefixLen {
		return ""
	}
	return string(runes[PrefixLen:end])
}
