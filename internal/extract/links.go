package extract

import (
	"regexp"
	"strings"

	"resumelift/internal/types"
)

var textLinkPattern = regexp.MustCompile(`(?:https?://|www\.|mailto:)[^\s<>()\[\]{}"']+`)

// DiscoverTextLinks scans plain text for URLs and mail addresses. These
// carry text provenance and no page number.
func DiscoverTextLinks(text string) []types.Link {
	matches := textLinkPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]types.Link, 0, len(matches))
	for _, m := range matches {
		url := strings.TrimRight(m, ".,;:")
		if url == "" {
			continue
		}
		links = append(links, types.Link{
			URL:        url,
			Provenance: types.LinkFromText,
		})
	}
	return links
}

// FilterRelevant keeps the links a resume plausibly needs: profile and
// portfolio hosts, mail addresses, and any explicit http(s) URL.
func FilterRelevant(links []types.Link) []types.Link {
	var kept []types.Link
	for _, link := range links {
		if isRelevantURL(link.URL) {
			kept = append(kept, link)
		}
	}
	return kept
}

func isRelevantURL(url string) bool {
	lower := strings.ToLower(url)
	for _, host := range []string{"linkedin", "github", "kaggle"} {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "http")
}

// dedupeLinks drops repeated URLs, keeping the first occurrence so
// annotation links win over their text duplicates
func dedupeLinks(links []types.Link) []types.Link {
	if len(links) < 2 {
		return links
	}

	seen := make(map[string]bool, len(links))
	deduped := links[:0]
	for _, link := range links {
		key := strings.TrimSuffix(link.URL, "/")
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, link)
	}
	return deduped
}
