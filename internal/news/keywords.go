package news

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\w\s]`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "can": true,
	"this": true, "that": true, "these": true, "those": true,
}

// maxKeywordsPerTitle bounds how many keywords one title contributes.
const maxKeywordsPerTitle = 2

// ExtractKeywords pulls up to two title-cased keywords out of a headline.
// Words of three characters or fewer and stop words are skipped.
func ExtractKeywords(title string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(title), "")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		keywords = append(keywords, strings.ToUpper(word[:1])+word[1:])
		if len(keywords) == maxKeywordsPerTitle {
			break
		}
	}
	return keywords
}
