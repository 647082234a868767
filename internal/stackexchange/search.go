// internal/stackexchange/search.go
package stackexchange

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// maxAnswerRunes caps the rendered answer body; longer bodies are cut and
// marked with an ellipsis.
const maxAnswerRunes = 1024

// Searcher answers free-text questions against the site catalog.
type Searcher struct {
	catalog   *Catalog
	client    *Client
	converter *md.Converter
}

func NewSearcher(catalog *Catalog, client *Client) *Searcher {
	return &Searcher{catalog: catalog, client: client, converter: md.NewConverter("", true, nil)}
}

// Catalog exposes the site catalog backing this searcher.
func (s *Searcher) Catalog() *Catalog { return s.catalog }

// SearchAnswer finds the top-voted answer to the most relevant question for
// query on the given site, rendered as a chat-ready reply.
func (s *Searcher) SearchAnswer(ctx context.Context, query, siteSlug string) (string, error) {
	site, err := s.catalog.SiteBySlug(siteSlug)
	if err != nil {
		return "", err
	}
	question, err := s.client.SearchRelevantQuestion(ctx, query, site)
	if err != nil {
		return "", err
	}
	answer, err := s.client.SearchBestAnswer(ctx, question.ID, site)
	if err != nil {
		return "", err
	}
	return s.render(site, question, answer)
}

func (s *Searcher) render(site Site, question Question, answer Answer) (string, error) {
	body, err := s.converter.ConvertString("<blockquote>" + answer.Body + "</blockquote>")
	if err != nil {
		return "", fmt.Errorf("render answer: %w", err)
	}
	body = truncate(strings.TrimSpace(body), maxAnswerRunes)

	var b strings.Builder
	fmt.Fprintf(&b, "Below is what I found on %s:\n\n", site.Name)
	fmt.Fprintf(&b, "## Q: %s\n\n", question.Title)
	b.WriteString(body)
	fmt.Fprintf(&b, "\n\nSource: %s/a/%d", site.SiteURL, answer.ID)
	return b.String(), nil
}

// truncate cuts s at max runes, appending an ellipsis when anything was cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
