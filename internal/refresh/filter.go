package refresh

import "github.com/RobinCoderZhao/happening-now/internal/news"

// AllTag selects every article.
const AllTag = "All"

// FilterArticles returns the articles carrying tag, in order. AllTag
// returns a copy of every article. The result is never nil.
func FilterArticles(articles []news.Article, tag string) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if tag == AllTag || a.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out
}

// AvailableTags returns AllTag followed by every tag in first-seen order.
func AvailableTags(articles []news.Article) []string {
	tags := []string{AllTag}
	seen := map[string]bool{AllTag: true}
	for _, a := range articles {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}
