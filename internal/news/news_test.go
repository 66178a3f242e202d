package news

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize_OrderFollowsDeclaration(t *testing.T) {
	tags := Categorize("World leaders debate new software policy")
	assert.Equal(t, []string{"Tech", "Politics", "World"}, tags)
}

func TestCategorize_NoMatchIsGeneral(t *testing.T) {
	assert.Equal(t, []string{GeneralTag}, Categorize("Quiet afternoon by the lake"))
	assert.Equal(t, []string{GeneralTag}, Categorize(""))
}

func TestCategorize_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"Sports"}, Categorize("OLYMPICS OPENING"))
}

func TestCategorize_NeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "!!!", "Vaccine rollout", "Hollywood film festival", "zzz"}
	for _, in := range inputs {
		require.NotEmpty(t, Categorize(in), "input %q", in)
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Tech", "Politics", "Health", "Sports", "Business", "Entertainment", "Science", "World"}, Categories())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Breaking: AI's New Era!":     "breaking-ais-new-era",
		"  Leading and trailing  ":    "leading-and-trailing",
		"Already-hyphenated -- title": "already-hyphenated-title",
		"snake_case stays":            "snake_case-stays",
		"":                            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestValidTitle(t *testing.T) {
	assert.False(t, ValidTitle(""))
	assert.False(t, ValidTitle("   "))
	assert.False(t, ValidTitle("null"))
	assert.False(t, ValidTitle("[Removed]"))
	assert.False(t, ValidTitle("Story [Removed] by publisher"))
	assert.True(t, ValidTitle("Markets open higher"))
}

func TestExtractKeywords(t *testing.T) {
	assert.Equal(t, []string{"Senate", "Passes"}, ExtractKeywords("The Senate passes a new budget bill"))
	assert.Equal(t, []string{"Storm", "Hits"}, ExtractKeywords("Storm hits coast, thousands evacuated!"))
	assert.Empty(t, ExtractKeywords("It is on the way"))
}

func TestExtractKeywords_StripsPunctuation(t *testing.T) {
	assert.Equal(t, []string{"Nasas", "Rover"}, ExtractKeywords("NASA's rover: found water?"))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "5m ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", TimeAgo(now.Add(-3*time.Hour-10*time.Minute), now))
	assert.Equal(t, "2d ago", TimeAgo(now.Add(-49*time.Hour), now))
}

func TestFallbackArticles(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	articles := FallbackArticles(now)
	require.Len(t, articles, 6)

	seen := map[string]bool{}
	for _, a := range articles {
		assert.True(t, a.Valid(), "article %s", a.ID)
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.False(t, a.PublishedAt.After(now))
	}
	assert.Equal(t, "mock-1", articles[0].ID)
	assert.Equal(t, now.Add(-2*time.Hour), articles[1].PublishedAt)
}

func TestClientFallbackArticles(t *testing.T) {
	articles := ClientFallbackArticles(time.Now(), "/placeholder.png")
	require.Len(t, articles, 5)
	for _, a := range articles {
		assert.True(t, a.Valid())
		assert.Equal(t, DefaultURL, a.URL)
		assert.True(t, strings.HasPrefix(a.Image, "/placeholder.png?text="), a.Image)
	}
}

func TestArticleHasTag(t *testing.T) {
	a := Article{Tags: []string{"Tech", "World"}}
	assert.True(t, a.HasTag("World"))
	assert.False(t, a.HasTag("Sports"))
}
