// Package news defines the canonical article and trend shapes shared by the
// aggregation service and the refresh controller, along with the text
// helpers that derive tags, slugs and trending keywords.
package news

import (
	"strings"
	"time"
)

// Article is the canonical unit of content exposed to clients.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Slug        string    `json:"slug,omitempty"`
}

// HasTag reports whether the article carries the given tag.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Trend is a transient popularity signal. Count is a presentation value.
type Trend struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Source  string `json:"source"`
}

const (
	// UnknownSource is used when the provider gives no publisher name.
	UnknownSource = "Unknown"
	// DefaultURL is the local link used when an article has none.
	DefaultURL = "#"
)

// ValidTitle reports whether a title is displayable. Providers use
// "[Removed]" and the literal "null" for withdrawn items.
func ValidTitle(title string) bool {
	t := strings.TrimSpace(title)
	if t == "" || t == "null" {
		return false
	}
	return !strings.Contains(t, "[Removed]")
}

// Valid reports whether the article may be handed to a client.
func (a Article) Valid() bool {
	return ValidTitle(a.Title) && len(a.Tags) > 0
}
