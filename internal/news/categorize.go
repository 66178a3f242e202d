package news

import "strings"

// GeneralTag is assigned when no category keyword matches.
const GeneralTag = "General"

type category struct {
	name     string
	keywords []string
}

// categories is tested in this order; result order follows it.
var categories = []category{
	{"Tech", []string{"technology", "tech", "ai", "artificial intelligence", "computer", "software", "digital", "internet", "app", "startup"}},
	{"Politics", []string{"politics", "government", "election", "president", "congress", "senate", "policy", "law", "legislation"}},
	{"Health", []string{"health", "medical", "medicine", "doctor", "hospital", "disease", "treatment", "vaccine", "covid"}},
	{"Sports", []string{"sports", "football", "basketball", "baseball", "soccer", "olympics", "championship", "game", "player"}},
	{"Business", []string{"business", "economy", "market", "stock", "finance", "company", "corporate", "earnings", "revenue"}},
	{"Entertainment", []string{"entertainment", "movie", "film", "music", "celebrity", "hollywood", "tv", "show", "actor"}},
	{"Science", []string{"science", "research", "study", "discovery", "space", "climate", "environment", "energy"}},
	{"World", []string{"world", "international", "global", "country", "nation", "war", "peace", "trade", "diplomacy"}},
}

// Categories returns the category names in their declared order.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Categorize tags free text by keyword substring. A text can match several
// categories. It never returns an empty slice.
func Categorize(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, c.name)
				break
			}
		}
	}
	if len(tags) == 0 {
		return []string{GeneralTag}
	}
	return tags
}
