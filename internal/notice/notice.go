package notice

// Entry represents one enforcement document found on the listing page
type Entry struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Dedupe returns entries with exact duplicates removed.
// The first occurrence of each entry is kept and survivors stay in their original order.
func Dedupe(entries []Entry) []Entry {
	seen := make(map[Entry]bool, len(entries))
	unique := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !seen[e] {
			seen[e] = true
			unique = append(unique, e)
		}
	}
	return unique
}

// Fields returns the entry as CSV columns in header order (Name, Link)
func (e Entry) Fields() []string {
	return []string{e.Title, e.Link}
}
