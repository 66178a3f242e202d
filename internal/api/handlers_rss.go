package api

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"
)

type feedItem struct {
	title       string
	path        string
	description string
	guid        string
	category    string
}

// feedItems is the fixed item set of the public feed, newest first. Item
// i is dated i hours before the build time.
var feedItems = []feedItem{
	{
		title:       "Breaking: Global Climate Summit Reaches Historic Agreement",
		path:        "/news/climate-summit-agreement",
		description: "World leaders unite on ambitious climate targets for 2030, marking a turning point in global environmental policy.",
		guid:        "climate-summit-2024-001",
		category:    "Environment",
	},
	{
		title:       "Tech Giants Announce Revolutionary AI Partnership",
		path:        "/news/ai-partnership-announcement",
		description: "Major technology companies collaborate on next-generation artificial intelligence research and development.",
		guid:        "ai-partnership-2024-002",
		category:    "Technology",
	},
	{
		title:       "Global Markets Rally on Economic Recovery Signs",
		path:        "/news/markets-rally-recovery",
		description: "Stock markets worldwide show strong gains as economic indicators point to sustained recovery.",
		guid:        "markets-rally-2024-003",
		category:    "Finance",
	},
	{
		title:       "Space Mission Discovers Potential Signs of Life",
		path:        "/news/space-mission-life-discovery",
		description: "NASA's latest deep space probe transmits data suggesting possible biological activity on distant exoplanet.",
		guid:        "space-discovery-2024-004",
		category:    "Science",
	},
	{
		title:       "International Sports Championship Breaks Viewership Records",
		path:        "/news/sports-championship-records",
		description: "Global sporting event attracts largest television and streaming audience in history.",
		guid:        "sports-championship-2024-005",
		category:    "Sports",
	},
}

const (
	feedTitle       = "Happening Now - Real-Time News Feed"
	feedDescription = "Stay updated with the latest trending news from around the world. Real-time updates on politics, technology, business, and more."
	feedTTL         = 60
	feedLogoSize    = 144
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	PubDate       string    `xml:"pubDate"`
	TTL           int       `xml:"ttl"`
	Image         rssImage  `xml:"image"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type rssImage struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width"`
	Height int    `xml:"height"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata   `xml:"title"`
	Link        string  `xml:"link"`
	Description cdata   `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
	Category    string  `xml:"category"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

const rssContentType = "application/rss+xml; charset=utf-8"

// buildFeed renders the feed as of now.
func (s *Server) buildFeed(now time.Time) ([]byte, error) {
	build := now.UTC().Format(http.TimeFormat)
	doc := rssDocument{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         feedTitle,
			Link:          s.siteURL,
			Description:   feedDescription,
			Language:      "en-us",
			LastBuildDate: build,
			PubDate:       build,
			TTL:           feedTTL,
			Image: rssImage{
				URL:    s.siteURL + "/logo.png",
				Title:  "Happening Now",
				Link:   s.siteURL,
				Width:  feedLogoSize,
				Height: feedLogoSize,
			},
			AtomLink: atomLink{Href: s.siteURL + "/api/rss", Rel: "self", Type: "application/rss+xml"},
		},
	}
	for i, item := range feedItems {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       cdata{item.title},
			Link:        s.siteURL + item.path,
			Description: cdata{item.description},
			PubDate:     now.Add(-time.Duration(i) * time.Hour).UTC().Format(http.TimeFormat),
			GUID:        rssGUID{IsPermaLink: "false", Value: item.guid},
			Category:    item.category,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleRSS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.buildFeed(s.now())
		if err != nil {
			s.logger.Error("build rss feed failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to generate RSS feed")
			return
		}
		w.Header().Set("Content-Type", rssContentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
