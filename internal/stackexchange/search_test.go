package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI serves /search/advanced and /questions/{id}/answers with canned
// items, recording the query parameters it saw.
func fakeAPI(t *testing.T, questions []Question, answers []Answer, seen *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.URL.Path+"?"+r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/search/advanced":
			require.Equal(t, "relevance", r.URL.Query().Get("sort"))
			require.Equal(t, "1", r.URL.Query().Get("answers"))
			require.Equal(t, "withbody", r.URL.Query().Get("filter"))
			_ = json.NewEncoder(w).Encode(map[string]any{"items": questions})
		case strings.HasSuffix(r.URL.Path, "/answers"):
			require.Equal(t, "votes", r.URL.Query().Get("sort"))
			_ = json.NewEncoder(w).Encode(map[string]any{"items": answers})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newTestSearcher(t *testing.T, baseURL, apiKey string) *Searcher {
	t.Helper()
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	return NewSearcher(catalog, NewClient(baseURL, apiKey, nil, zap.NewNop().Sugar()))
}

func TestSearchAnswerHappyPath(t *testing.T) {
	var seen []string
	srv := fakeAPI(t,
		[]Question{{ID: 7, Title: "How do I parse a date with a regex?"}},
		[]Answer{{ID: 42, Body: "<p>Use <code>time.Parse</code> instead.</p>"}},
		&seen,
	)
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "")
	reply, err := s.SearchAnswer(context.Background(), "regex date", "stackoverflow")
	require.NoError(t, err)

	assert.Contains(t, reply, "Below is what I found on Stack Overflow:")
	assert.Contains(t, reply, "## Q: How do I parse a date with a regex?")
	assert.Contains(t, reply, "time.Parse")
	assert.Contains(t, reply, "Source: https://stackoverflow.com/a/42")

	require.Len(t, seen, 2)
	assert.Contains(t, seen[0], "/search/advanced")
	assert.Contains(t, seen[0], "q=regex+date")
	assert.Contains(t, seen[0], "site=stackoverflow")
	assert.Contains(t, seen[1], "/questions/7/answers")
}

func TestSearchAnswerPassesAPIKey(t *testing.T) {
	var seen []string
	srv := fakeAPI(t,
		[]Question{{ID: 1, Title: "t"}},
		[]Answer{{ID: 2, Body: "<p>b</p>"}},
		&seen,
	)
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "my-key")
	_, err := s.SearchAnswer(context.Background(), "q", "stackoverflow")
	require.NoError(t, err)
	for _, u := range seen {
		assert.Contains(t, u, "key=my-key")
	}
}

func TestSearchAnswerSiteNotFound(t *testing.T) {
	s := newTestSearcher(t, "http://unused", "")

	_, err := s.SearchAnswer(context.Background(), "foo", "nonexistent-slug")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestSearchAnswerNoQuestion(t *testing.T) {
	var seen []string
	srv := fakeAPI(t, nil, nil, &seen)
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "")
	_, err := s.SearchAnswer(context.Background(), "gibberish", "stackoverflow")
	assert.ErrorIs(t, err, ErrNoQuestionFound)
}

func TestSearchAnswerNoAnswer(t *testing.T) {
	var seen []string
	srv := fakeAPI(t, []Question{{ID: 7, Title: "t"}}, nil, &seen)
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "")
	_, err := s.SearchAnswer(context.Background(), "q", "stackoverflow")
	assert.ErrorIs(t, err, ErrNoAnswerFound)
}

func TestSearchAnswerUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "")
	_, err := s.SearchAnswer(context.Background(), "q", "stackoverflow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSearchAnswerTruncatesLongBody(t *testing.T) {
	long := "<p>" + strings.Repeat("lorem ipsum dolor sit amet ", 100) + "</p>"
	var seen []string
	srv := fakeAPI(t,
		[]Question{{ID: 7, Title: "long one"}},
		[]Answer{{ID: 42, Body: long}},
		&seen,
	)
	defer srv.Close()

	s := newTestSearcher(t, srv.URL, "")
	reply, err := s.SearchAnswer(context.Background(), "q", "stackoverflow")
	require.NoError(t, err)

	// The body segment sits between the question heading and the source line.
	_, rest, found := strings.Cut(reply, "## Q: long one\n\n")
	require.True(t, found)
	body, _, found := strings.Cut(rest, "\n\nSource:")
	require.True(t, found)

	assert.LessOrEqual(t, utf8.RuneCountInString(body), 1024)
	assert.True(t, strings.HasSuffix(body, "…"), "truncated body must end with an ellipsis")
}

func TestTruncateShortStringUntouched(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 1024))
	exact := strings.Repeat("a", 1024)
	assert.Equal(t, exact, truncate(exact, 1024))
	cut := truncate(strings.Repeat("a", 1025), 1024)
	assert.Equal(t, 1024, utf8.RuneCountInString(cut))
	assert.True(t, strings.HasSuffix(cut, "…"))
}

func TestRenderComposesSourceURL(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	s := NewSearcher(catalog, NewClient("http://unused", "", nil, zap.NewNop().Sugar()))

	site, err := catalog.SiteBySlug("serverfault")
	require.NoError(t, err)
	reply, err := s.render(site, Question{ID: 1, Title: "q"}, Answer{ID: 99, Body: "<p>a</p>"})
	require.NoError(t, err)
	assert.Contains(t, reply, fmt.Sprintf("Source: %s/a/99", site.SiteURL))
	assert.Contains(t, reply, "Below is what I found on Server Fault:")
}
