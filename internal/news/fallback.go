package news

import (
	"net/url"
	"strconv"
	"time"
)

// FallbackSource labels results that come from the built-in sample data.
const FallbackSource = "Mock Data"

// FallbackNote explains a degraded response to the client.
const FallbackNote = "Using fallback data due to API limitations"

type sample struct {
	slug    string
	title   string
	summary string
	image   string
	label   string
	source  string
	age     time.Duration
	tags    []string
}

var serverSamples = []sample{
	{
		slug:    "major-tech-company-ai-breakthrough",
		title:   "Breaking: Major Tech Company Announces Revolutionary AI Breakthrough",
		summary: "Scientists demonstrate unprecedented problem-solving abilities in artificial intelligence, marking a significant leap forward in machine learning technology.",
		image:   "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800&h=400&fit=crop",
		source:  "Tech News",
		tags:    []string{"Tech", "AI", "Science"},
	},
	{
		slug:    "global-climate-summit-historic-agreement",
		title:   "Global Climate Summit Reaches Historic Agreement on Carbon Reduction",
		summary: "World leaders commit to ambitious new targets for reducing greenhouse gas emissions by 2030, with unprecedented international cooperation.",
		image:   "https://images.unsplash.com/photo-1569163139394-de4e4f43e4e3?w=800&h=400&fit=crop",
		source:  "Climate News",
		age:     2 * time.Hour,
		tags:    []string{"World", "Environment", "Politics"},
	},
	{
		slug:    "stock-markets-surge-tech-giants-earnings",
		title:   "Stock Markets Surge as Tech Giants Report Record Earnings",
		summary: "Major technology companies exceed expectations in quarterly reports, driving significant gains across global financial markets.",
		image:   "https://images.unsplash.com/photo-1611974789855-9c2a0a7236a3?w=800&h=400&fit=crop",
		source:  "Financial Times",
		age:     4 * time.Hour,
		tags:    []string{"Finance", "Tech", "Business"},
	},
	{
		slug:    "medical-treatment-promise-rare-disease",
		title:   "New Medical Treatment Shows Promise for Rare Disease",
		summary: "Clinical trials demonstrate significant improvement in patients with previously untreatable genetic condition, offering hope to thousands.",
		image:   "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=800&h=400&fit=crop",
		source:  "Medical Journal",
		age:     6 * time.Hour,
		tags:    []string{"Health", "Science", "Medicine"},
	},
	{
		slug:    "sports-championship-finals-record-viewership",
		title:   "Major Sports Championship Finals Draw Record Viewership",
		summary: "The championship game attracts over 100 million viewers worldwide, setting new records for sports broadcasting and streaming platforms.",
		image:   "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?w=800&h=400&fit=crop",
		source:  "Sports Network",
		age:     8 * time.Hour,
		tags:    []string{"Sports", "Entertainment", "Media"},
	},
	{
		slug:    "quantum-computing-breakthrough-research-team",
		title:   "Breakthrough in Quantum Computing Achieved by Research Team",
		summary: "Scientists demonstrate stable quantum entanglement at room temperature, potentially revolutionizing computing and communication technologies.",
		image:   "https://images.unsplash.com/photo-1635070041078-e363dbe005cb?w=800&h=400&fit=crop",
		source:  "Science Daily",
		age:     10 * time.Hour,
		tags:    []string{"Science", "Tech", "Research"},
	},
}

// clientSamples back the refresh controller when its very first load fails.
var clientSamples = []sample{
	{
		title:   "Breaking: Major Tech Conference Announces AI Breakthrough",
		summary: "Leading technology companies unveil revolutionary artificial intelligence capabilities that could transform multiple industries.",
		label:   "Tech News",
		source:  "Tech News",
		tags:    []string{"Tech", "World"},
	},
	{
		title:   "Global Markets React to Economic Policy Changes",
		summary: "Stock markets worldwide show mixed reactions following announcement of new economic policies by major world economies.",
		label:   "Business News",
		source:  "Business Today",
		tags:    []string{"Business", "World"},
	},
	{
		title:   "Championship Finals Draw Record Viewership",
		summary: "Sports fans around the globe tune in for what experts are calling one of the most exciting championship matches in recent history.",
		label:   "Sports News",
		source:  "Sports Central",
		tags:    []string{"Sports", "Entertainment"},
	},
	{
		title:   "New Health Study Reveals Surprising Findings",
		summary: "Researchers publish groundbreaking study that challenges conventional wisdom about nutrition and wellness practices.",
		label:   "Health News",
		source:  "Health Today",
		tags:    []string{"Health", "World"},
	},
	{
		title:   "Political Leaders Meet for Climate Summit",
		summary: "World leaders gather to discuss urgent climate action and sustainable development goals for the coming decade.",
		label:   "Politics News",
		source:  "Global Politics",
		tags:    []string{"Politics", "World"},
	},
}

// FallbackArticles returns the sample set served when the upstream
// provider cannot be used. Timestamps are relative to now.
func FallbackArticles(now time.Time) []Article {
	articles := make([]Article, 0, len(serverSamples))
	for i, s := range serverSamples {
		ts := now.Add(-s.age).UTC()
		articles = append(articles, Article{
			ID:          "mock-" + strconv.Itoa(i+1),
			Title:       s.title,
			Summary:     s.summary,
			URL:         "https://example.com/" + s.slug,
			Image:       s.image,
			Source:      s.source,
			Timestamp:   ts,
			PublishedAt: ts,
			Tags:        append([]string(nil), s.tags...),
			Slug:        s.slug,
		})
	}
	return articles
}

// ClientFallbackArticles returns the local sample set the refresh
// controller shows when it has nothing else. Images point at the
// placeholder endpoint under placeholderURL.
func ClientFallbackArticles(now time.Time, placeholderURL string) []Article {
	articles := make([]Article, 0, len(clientSamples))
	for i, s := range clientSamples {
		ts := now.UTC()
		articles = append(articles, Article{
			ID:          "mock-" + strconv.Itoa(i+1),
			Title:       s.title,
			Summary:     s.summary,
			URL:         DefaultURL,
			Image:       PlaceholderImage(placeholderURL, s.label),
			Source:      s.source,
			Timestamp:   ts,
			PublishedAt: ts,
			Tags:        append([]string(nil), s.tags...),
			Slug:        Slugify(s.title),
		})
	}
	return articles
}

// PlaceholderImage builds a placeholder image URL carrying a label.
func PlaceholderImage(placeholderURL, label string) string {
	if label == "" {
		return placeholderURL
	}
	return placeholderURL + "?text=" + url.QueryEscape(label)
}

// MockGoogleTrends are merged after the forum trends on every response.
func MockGoogleTrends() []Trend {
	return []Trend{
		{Keyword: "AI Revolution", Count: 1250, Source: "Google Trends"},
		{Keyword: "Climate Action", Count: 980, Source: "Google Trends"},
		{Keyword: "Space Exploration", Count: 750, Source: "Google Trends"},
	}
}

// FallbackTrends is the trend list used when nothing else is available.
func FallbackTrends() []Trend {
	return []Trend{
		{Keyword: "Breaking News", Count: 1500, Source: FallbackSource},
		{Keyword: "Tech Innovation", Count: 1200, Source: FallbackSource},
		{Keyword: "Global Events", Count: 950, Source: FallbackSource},
		{Keyword: "Sports Update", Count: 800, Source: FallbackSource},
		{Keyword: "Market Analysis", Count: 650, Source: FallbackSource},
		{Keyword: "Health News", Count: 500, Source: FallbackSource},
	}
}
