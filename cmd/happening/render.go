package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/internal/refresh"
	"github.com/RobinCoderZhao/happening-now/internal/subscriber"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	summaryStyle = lipgloss.NewStyle().Width(88).PaddingLeft(3)
)

func printHeadlines(w io.Writer, st refresh.State, articles []news.Article, tag string, now time.Time) {
	header := "Happening Now"
	if tag != "" && tag != refresh.AllTag {
		header += " · " + tag
	}
	fmt.Fprintln(w, headerStyle.Render(header))
	if !st.LastUpdated.IsZero() {
		fmt.Fprintln(w, metaStyle.Render("Updated "+humanize.RelTime(st.LastUpdated, now, "ago", "from now")))
	}
	if st.Error != "" {
		fmt.Fprintln(w, errorStyle.Render("Refresh failed: "+st.Error+" (retry with --force)"))
	}
	fmt.Fprintln(w, metaStyle.Render("Tags: "+strings.Join(st.AvailableTags, ", ")))
	fmt.Fprintln(w)

	if len(articles) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No articles."))
		return
	}
	for i, a := range articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, titleStyle.Render(a.Title))
		meta := a.Source
		if !a.PublishedAt.IsZero() {
			meta += " · " + news.TimeAgo(a.PublishedAt, now)
		}
		fmt.Fprintf(w, "    %s %s\n", metaStyle.Render(meta), tagStyle.Render(strings.Join(a.Tags, " ")))
		if a.Summary != "" {
			fmt.Fprintln(w, summaryStyle.Render(a.Summary))
		}
		if a.URL != "" && a.URL != news.DefaultURL {
			fmt.Fprintln(w, metaStyle.Render("    "+a.URL))
		}
	}
}

func printTrends(w io.Writer, trends []news.Trend) {
	fmt.Fprintln(w, headerStyle.Render("Trending"))
	for i, t := range trends {
		fmt.Fprintf(w, "%2d. %-24s %8s  %s\n", i+1, t.Keyword, humanize.Comma(int64(t.Count)), metaStyle.Render(t.Source))
	}
}

func printSubscribers(w io.Writer, subs []subscriber.Subscription, now time.Time) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Subscribers (%s)", humanize.Comma(int64(len(subs))))))
	for _, s := range subs {
		fmt.Fprintf(w, "  %-40s %s\n", s.Email, metaStyle.Render(humanize.RelTime(s.CreatedAt, now, "ago", "from now")))
	}
}
