package profile

import "time"

// HistoryEntry is one visited page. Entries are append-only and keep their
// insertion order.
type HistoryEntry struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

const timestampLayout = "2006-01-02 15:04:05"

type History struct {
	entries []HistoryEntry
	persist func() error
	now     func() time.Time
}

func newHistory(initial []HistoryEntry, persist func() error) *History {
	return &History{entries: initial, persist: persist, now: time.Now}
}

// Append records a visit. Untitled pages get a placeholder title.
func (h *History) Append(title, url string) error {
	if title == "" {
		title = "Untitled"
	}
	h.entries = append(h.entries, HistoryEntry{
		Title:     title,
		URL:       url,
		Timestamp: h.now().Format(timestampLayout),
	})
	return h.persist()
}

// All returns the entries oldest-first.
func (h *History) All() []HistoryEntry {
	return append([]HistoryEntry{}, h.entries...)
}
